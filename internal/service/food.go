package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/foodlist/internal/apperror"
	"github.com/sakif/foodlist/internal/model"
	"github.com/sakif/foodlist/internal/repository"
)

// MaxNameLength bounds list and food names.
const MaxNameLength = 200

// FoodService runs list and item operations on behalf of a principal.
//
// The repository folds the ownership check into each write, so a write on
// something the principal does not own (or that does not exist) comes back
// as apperror.ErrForbidden without the service having to look first.
type FoodService struct {
	repo   repository.FoodRepository
	logger *slog.Logger
}

func NewFoodService(repo repository.FoodRepository, logger *slog.Logger) *FoodService {
	return &FoodService{
		repo:   repo,
		logger: logger,
	}
}

// cleanName trims name and checks it is non-empty and not too long.
func cleanName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed(field, field+" required")
	}
	if len(name) > MaxNameLength {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d characters or less", field, MaxNameLength))
	}
	return name, nil
}

// wrap passes domain errors through untouched and prefixes the rest.
func wrap(err error, format string, args ...any) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("service/food: "+format+": %w", append(args, err)...)
}

// =========================================================================
// LISTS
// =========================================================================

func (s *FoodService) CreateList(ctx context.Context, owner int64, name string) (*model.FoodList, error) {
	name, err := cleanName("list_name", name)
	if err != nil {
		return nil, err
	}

	list := &model.FoodList{UserID: owner, Name: name}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return nil, wrap(err, "creating list")
	}

	s.logger.Info("list created",
		slog.Int64("userID", owner),
		slog.Int64("listID", list.ID),
	)
	return list, nil
}

func (s *FoodService) GetList(ctx context.Context, principal, listID int64) (*model.FoodList, error) {
	list, err := s.repo.GetList(ctx, principal, listID)
	if err != nil {
		return nil, wrap(err, "getting list %d", listID)
	}
	return list, nil
}

// RenameList validates the name before the ownership check, so a blank
// name is InvalidInput even on someone else's list.
func (s *FoodService) RenameList(ctx context.Context, principal, listID int64, name string) error {
	name, err := cleanName("list_name", name)
	if err != nil {
		return err
	}

	if err := s.repo.RenameList(ctx, principal, listID, name); err != nil {
		return wrap(err, "renaming list %d", listID)
	}

	s.logger.Info("list renamed", slog.Int64("userID", principal), slog.Int64("listID", listID))
	return nil
}

// DeleteList removes the list and, atomically, every item on it.
func (s *FoodService) DeleteList(ctx context.Context, principal, listID int64) error {
	if err := s.repo.DeleteList(ctx, principal, listID); err != nil {
		return wrap(err, "deleting list %d", listID)
	}

	s.logger.Info("list deleted", slog.Int64("userID", principal), slog.Int64("listID", listID))
	return nil
}

// ListListsForUser returns the owner's lists newest first (dashboard order).
func (s *FoodService) ListListsForUser(ctx context.Context, owner int64) ([]model.FoodList, error) {
	lists, err := s.repo.ListListsForUser(ctx, owner)
	if err != nil {
		return nil, wrap(err, "listing lists for user %d", owner)
	}
	return lists, nil
}

// ListListsWithItems returns every list of the owner with its items.
// The order of lists is unspecified.
func (s *FoodService) ListListsWithItems(ctx context.Context, owner int64) ([]model.ListWithItems, error) {
	lists, err := s.repo.ListListsWithItems(ctx, owner)
	if err != nil {
		return nil, wrap(err, "listing lists with items for user %d", owner)
	}
	return lists, nil
}

// =========================================================================
// ITEMS
// =========================================================================

// AddItem checks list ownership first and only then the food name, so a
// caller probing someone else's list always gets AccessDenied.
func (s *FoodService) AddItem(ctx context.Context, principal, listID int64, foodName string) (*model.FoodItem, error) {
	owns, err := s.repo.OwnsList(ctx, principal, listID)
	if err != nil {
		return nil, wrap(err, "checking list %d", listID)
	}
	if !owns {
		return nil, apperror.AccessDenied()
	}

	foodName, err = cleanName("food_name", foodName)
	if err != nil {
		return nil, err
	}

	item := &model.FoodItem{ListID: listID, FoodName: foodName}
	if err := s.repo.AddItem(ctx, principal, item); err != nil {
		return nil, wrap(err, "adding item to list %d", listID)
	}

	s.logger.Info("item added",
		slog.Int64("userID", principal),
		slog.Int64("listID", listID),
		slog.Int64("itemID", item.ID),
	)
	return item, nil
}

// ToggleItem sets the checked flag. Setting the value it already has is a
// no-op success.
func (s *FoodService) ToggleItem(ctx context.Context, principal, itemID int64, checked bool) error {
	if err := s.repo.SetItemChecked(ctx, principal, itemID, checked); err != nil {
		return wrap(err, "toggling item %d", itemID)
	}
	return nil
}

func (s *FoodService) RenameItem(ctx context.Context, principal, itemID int64, foodName string) error {
	foodName, err := cleanName("food_name", foodName)
	if err != nil {
		return err
	}

	if err := s.repo.RenameItem(ctx, principal, itemID, foodName); err != nil {
		return wrap(err, "renaming item %d", itemID)
	}
	return nil
}

func (s *FoodService) DeleteItem(ctx context.Context, principal, itemID int64) error {
	if err := s.repo.DeleteItem(ctx, principal, itemID); err != nil {
		return wrap(err, "deleting item %d", itemID)
	}

	s.logger.Info("item deleted", slog.Int64("userID", principal), slog.Int64("itemID", itemID))
	return nil
}

// ListItems is the guarded read used by GET /api/list_items/{id}: one
// ownership check for the list, then the items by ascending id.
func (s *FoodService) ListItems(ctx context.Context, principal, listID int64) ([]model.FoodItem, error) {
	owns, err := s.repo.OwnsList(ctx, principal, listID)
	if err != nil {
		return nil, wrap(err, "checking list %d", listID)
	}
	if !owns {
		return nil, apperror.AccessDenied()
	}
	return s.ListItemsForList(ctx, listID)
}

// ListItemsForList performs no ownership check. Callers must already have
// confirmed the list belongs to the principal.
func (s *FoodService) ListItemsForList(ctx context.Context, listID int64) ([]model.FoodItem, error) {
	items, err := s.repo.ListItemsForList(ctx, listID)
	if err != nil {
		return nil, wrap(err, "listing items of list %d", listID)
	}
	return items, nil
}
