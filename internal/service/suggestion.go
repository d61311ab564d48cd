package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/sakif/foodlist/internal/apperror"
	"github.com/sakif/foodlist/internal/model"
	"github.com/sakif/foodlist/internal/repository"
)

// SuggestionService picks random foods from the global catalog.
type SuggestionService struct {
	catalog repository.CatalogRepository
	foods   repository.FoodRepository
	logger  *slog.Logger

	// pick returns a uniform index in [0, n).
	pick func(n int) int
}

func NewSuggestionService(
	catalog repository.CatalogRepository,
	foods repository.FoodRepository,
	logger *slog.Logger,
) *SuggestionService {
	return &SuggestionService{
		catalog: catalog,
		foods:   foods,
		logger:  logger,
		pick:    rand.IntN,
	}
}

// Suggestion is a random food together with the principal's lists, so the
// client can offer to add it to one of them.
type Suggestion struct {
	Food  model.CatalogEntry `json:"food"`
	Lists []model.FoodList   `json:"lists"`
}

// PickRandom returns one catalog entry, each with equal probability.
// An empty catalog is apperror.ErrCatalogEmpty, never a blank name.
func (s *SuggestionService) PickRandom(ctx context.Context) (*model.CatalogEntry, error) {
	entry, err := s.catalog.RandomEntry(ctx, s.pick)
	if err != nil {
		return nil, wrapSuggestion(err, "picking random food")
	}
	return entry, nil
}

// Suggest is PickRandom plus the principal's lists, newest first.
func (s *SuggestionService) Suggest(ctx context.Context, principal int64) (*Suggestion, error) {
	entry, err := s.PickRandom(ctx)
	if err != nil {
		return nil, err
	}

	lists, err := s.foods.ListListsForUser(ctx, principal)
	if err != nil {
		return nil, wrapSuggestion(err, "listing lists for user %d", principal)
	}

	return &Suggestion{Food: *entry, Lists: lists}, nil
}

// SeedCatalog replaces the catalog with names. Blank names are skipped.
// It returns the number of rows now in the catalog.
func (s *SuggestionService) SeedCatalog(ctx context.Context, names []string) (int, error) {
	entries := make([]model.CatalogEntry, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			entries = append(entries, model.CatalogEntry{FoodName: n})
		}
	}

	count, err := s.catalog.ReplaceCatalog(ctx, entries)
	if err != nil {
		return 0, wrapSuggestion(err, "replacing catalog")
	}
	if count != len(entries) {
		s.logger.Warn("catalog count mismatch after seed",
			slog.Int("expected", len(entries)),
			slog.Int("found", count),
		)
	}

	s.logger.Info("catalog seeded", slog.Int("entries", count))
	return count, nil
}

func wrapSuggestion(err error, format string, args ...any) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("service/suggestion: "+format+": %w", append(args, err)...)
}
