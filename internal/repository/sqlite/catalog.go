package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/foodlist/internal/apperror"
	"github.com/sakif/foodlist/internal/model"
	"github.com/sakif/foodlist/internal/repository"
)

var _ repository.CatalogRepository = (*DB)(nil)

// RandomEntry counts the catalog and fetches the row at offset pick(n),
// ordered by id, inside one transaction so the count and the fetch see the
// same rows. Each entry is equally likely as long as pick is uniform over
// [0, n); row ids play no part in the odds.
func (db *DB) RandomEntry(ctx context.Context, pick func(n int) int) (*model.CatalogEntry, error) {
	var entry model.CatalogEntry

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM global_random_foods`).Scan(&n); err != nil {
			return fmt.Errorf("sqlite: counting catalog: %w", err)
		}
		if n == 0 {
			return apperror.CatalogEmpty()
		}

		offset := pick(n)
		if offset < 0 || offset >= n {
			return fmt.Errorf("sqlite: random offset %d outside [0, %d)", offset, n)
		}

		var cuisine sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT id, food_name, cuisine_type
			 FROM global_random_foods
			 ORDER BY id
			 LIMIT 1 OFFSET ?`,
			offset,
		).Scan(&entry.ID, &entry.FoodName, &cuisine)
		if err != nil {
			return fmt.Errorf("sqlite: fetching catalog entry %d: %w", offset, err)
		}
		entry.Cuisine = cuisine.String
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ReplaceCatalog deletes every entry and inserts entries in their place.
// Re-running a seed therefore never duplicates rows.
func (db *DB) ReplaceCatalog(ctx context.Context, entries []model.CatalogEntry) (int, error) {
	var count int

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM global_random_foods`); err != nil {
			return fmt.Errorf("sqlite: clearing catalog: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO global_random_foods (food_name, cuisine_type) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("sqlite: preparing catalog insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			cuisine := sql.NullString{String: e.Cuisine, Valid: e.Cuisine != ""}
			if _, err := stmt.ExecContext(ctx, e.FoodName, cuisine); err != nil {
				return fmt.Errorf("sqlite: inserting catalog entry %q: %w", e.FoodName, err)
			}
		}

		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM global_random_foods`).Scan(&count)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
