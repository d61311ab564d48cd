package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/foodlist/internal/repository"
)

var _ repository.OwnershipGuard = (*DB)(nil)

// ownedItemPredicate restricts a food_items statement to items whose parent
// list belongs to the principal. It expects two trailing args: item id, then
// principal.
const ownedItemPredicate = `id = ? AND list_id IN (SELECT id FROM food_lists WHERE user_id = ?)`

// OwnsList reports whether listID exists and belongs to principal.
func (db *DB) OwnsList(ctx context.Context, principal, listID int64) (bool, error) {
	return exists(ctx, db.conn,
		`SELECT 1 FROM food_lists WHERE id = ? AND user_id = ?`,
		listID, principal,
	)
}

// OwnsItem reports whether itemID exists and its parent list belongs to
// principal. One join, so there is no window between reading the item's
// list id and checking that list's owner.
func (db *DB) OwnsItem(ctx context.Context, principal, itemID int64) (bool, error) {
	return exists(ctx, db.conn,
		`SELECT 1
		 FROM food_items fi
		 JOIN food_lists fl ON fi.list_id = fl.id
		 WHERE fi.id = ? AND fl.user_id = ?`,
		itemID, principal,
	)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func exists(ctx context.Context, q queryer, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking ownership: %w", err)
	}
	return true, nil
}
