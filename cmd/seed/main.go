// Command seed replaces the global random-food catalog with the built-in
// list of dishes and prints how many rows the table holds afterwards.
//
//	DB_PATH=data/foodlist.db go run ./cmd/seed
//
// It runs migrations first, so it also works on a brand new database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/foodlist/internal/config"
	sqliteRepo "github.com/sakif/foodlist/internal/repository/sqlite"
	"github.com/sakif/foodlist/internal/service"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadCommon()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sqliteRepo.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	suggestions := service.NewSuggestionService(db, db, logger)
	n, err := suggestions.SeedCatalog(ctx, service.DefaultCatalog)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d foods into %s\n", n, cfg.DBPath)
	return nil
}
