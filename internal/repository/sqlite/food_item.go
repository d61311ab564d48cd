package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/foodlist/internal/apperror"
	"github.com/sakif/foodlist/internal/model"
)

// AddItem inserts item into its list only if that list belongs to
// principal. The INSERT ... SELECT reads the owning list in the same
// statement, so a list deleted concurrently simply yields zero rows.
func (db *DB) AddItem(ctx context.Context, principal int64, item *model.FoodItem) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO food_items (list_id, food_name, is_checked)
		 SELECT id, ?, 0 FROM food_lists WHERE id = ? AND user_id = ?`,
		item.FoodName, item.ListID, principal,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding item to list %d: %w", item.ListID, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.AccessDenied()
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new item id: %w", err)
	}
	item.ID = id
	item.Checked = false
	return nil
}

// SetItemChecked writes the flag. SQLite counts a matched row as affected
// even when the value is unchanged, so setting the same value twice is not
// mistaken for a denial.
func (db *DB) SetItemChecked(ctx context.Context, principal, itemID int64, checked bool) error {
	return db.updateOwnedItem(ctx, `UPDATE food_items SET is_checked = ? WHERE `+ownedItemPredicate,
		boolToInt(checked), itemID, principal)
}

func (db *DB) RenameItem(ctx context.Context, principal, itemID int64, name string) error {
	return db.updateOwnedItem(ctx, `UPDATE food_items SET food_name = ? WHERE `+ownedItemPredicate,
		name, itemID, principal)
}

func (db *DB) DeleteItem(ctx context.Context, principal, itemID int64) error {
	return db.updateOwnedItem(ctx, `DELETE FROM food_items WHERE `+ownedItemPredicate,
		itemID, principal)
}

func (db *DB) updateOwnedItem(ctx context.Context, query string, args ...any) error {
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: writing item: %w", err)
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

// ListItemsForList returns the list's items by ascending id. It performs
// no ownership check.
func (db *DB) ListItemsForList(ctx context.Context, listID int64) ([]model.FoodItem, error) {
	return listItems(ctx, db.conn, listID)
}

type rowsQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listItems(ctx context.Context, q rowsQueryer, listID int64) ([]model.FoodItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, list_id, food_name, is_checked
		 FROM food_items
		 WHERE list_id = ?
		 ORDER BY id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items of list %d: %w", listID, err)
	}
	defer rows.Close()

	items := []model.FoodItem{}
	for rows.Next() {
		var (
			it      model.FoodItem
			checked int
		)
		if err := rows.Scan(&it.ID, &it.ListID, &it.FoodName, &checked); err != nil {
			return nil, fmt.Errorf("sqlite: scanning item row: %w", err)
		}
		it.Checked = checked != 0
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items: %w", err)
	}
	return items, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
