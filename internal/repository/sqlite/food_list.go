package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/foodlist/internal/apperror"
	"github.com/sakif/foodlist/internal/model"
	"github.com/sakif/foodlist/internal/repository"
)

var _ repository.FoodRepository = (*DB)(nil)

const listCols = `id, user_id, list_name, created_at`

// CreateList inserts list and fills in its ID and CreatedAt.
// A UserID that references no user fails the foreign key.
func (db *DB) CreateList(ctx context.Context, list *model.FoodList) error {
	list.CreatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO food_lists (user_id, list_name, created_at) VALUES (?, ?, ?)`,
		list.UserID,
		list.Name,
		list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating list for user %d: %w", list.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new list id: %w", err)
	}
	list.ID = id
	return nil
}

// GetList fetches one list through the owner predicate.
func (db *DB) GetList(ctx context.Context, principal, listID int64) (*model.FoodList, error) {
	var l model.FoodList
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+listCols+` FROM food_lists WHERE id = ? AND user_id = ?`,
		listID, principal,
	).Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.AccessDenied()
		}
		return nil, fmt.Errorf("sqlite: getting list %d: %w", listID, err)
	}
	return &l, nil
}

// RenameList updates the name only when the list belongs to principal.
// The ownership check and the write are the same statement.
func (db *DB) RenameList(ctx context.Context, principal, listID int64, name string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE food_lists SET list_name = ? WHERE id = ? AND user_id = ?`,
		name, listID, principal,
	)
	if err != nil {
		return fmt.Errorf("sqlite: renaming list %d: %w", listID, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.AccessDenied()
	}
	return nil
}

// DeleteList removes the list and all its items in one transaction.
//
// The items are deleted explicitly before the list even though the foreign
// key cascades, so a connection opened without foreign_keys still leaves no
// orphans. If the list turns out not to be the principal's, the transaction
// rolls back and nothing is removed.
func (db *DB) DeleteList(ctx context.Context, principal, listID int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM food_items
			 WHERE list_id = (SELECT id FROM food_lists WHERE id = ? AND user_id = ?)`,
			listID, principal,
		); err != nil {
			return fmt.Errorf("sqlite: deleting items of list %d: %w", listID, err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM food_lists WHERE id = ? AND user_id = ?`,
			listID, principal,
		)
		if err != nil {
			return fmt.Errorf("sqlite: deleting list %d: %w", listID, err)
		}

		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.AccessDenied()
		}
		return nil
	})
}

// ListListsForUser returns the owner's lists, newest first. Lists created
// within the same clock tick fall back to id order, newest first too.
func (db *DB) ListListsForUser(ctx context.Context, owner int64) ([]model.FoodList, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+listCols+`
		 FROM food_lists
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing lists for user %d: %w", owner, err)
	}
	defer rows.Close()

	lists := []model.FoodList{}
	for rows.Next() {
		var l model.FoodList
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning list row: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating lists: %w", err)
	}
	return lists, nil
}

// ListListsWithItems builds the "my lists" view in one read transaction so
// the lists and their items come from the same snapshot. The owner
// predicate on the list query is the guard; items are then fetched per
// owned list. List order is unspecified.
func (db *DB) ListListsWithItems(ctx context.Context, owner int64) ([]model.ListWithItems, error) {
	var out []model.ListWithItems

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+listCols+` FROM food_lists WHERE user_id = ?`,
			owner,
		)
		if err != nil {
			return fmt.Errorf("sqlite: listing lists for user %d: %w", owner, err)
		}

		var lists []model.FoodList
		for rows.Next() {
			var l model.FoodList
			if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("sqlite: scanning list row: %w", err)
			}
			lists = append(lists, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("sqlite: iterating lists: %w", err)
		}

		out = make([]model.ListWithItems, 0, len(lists))
		for _, l := range lists {
			items, err := listItems(ctx, tx, l.ID)
			if err != nil {
				return err
			}
			out = append(out, model.ListWithItems{List: l, Items: items})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
