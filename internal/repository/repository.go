// Package repository declares the persistence contracts the service layer
// depends on. The sqlite subpackage is the only production implementation;
// service tests use in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/foodlist/internal/model"
)

type UserRepository interface {
	// CreateUser inserts the user and sets its ID and CreatedAt.
	// A taken username yields apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// OwnershipGuard answers whether a principal may act on a list or an item.
// A missing target and a target owned by someone else both answer false.
type OwnershipGuard interface {
	OwnsList(ctx context.Context, principal, listID int64) (bool, error)
	OwnsItem(ctx context.Context, principal, itemID int64) (bool, error)
}

// FoodRepository covers lists and items. Every method taking a principal
// folds the ownership check into the mutation itself and returns
// apperror.ErrForbidden when nothing owned by the principal matched.
type FoodRepository interface {
	OwnershipGuard

	CreateList(ctx context.Context, list *model.FoodList) error
	GetList(ctx context.Context, principal, listID int64) (*model.FoodList, error)
	RenameList(ctx context.Context, principal, listID int64, name string) error
	DeleteList(ctx context.Context, principal, listID int64) error
	// ListListsForUser returns the owner's lists, newest first.
	ListListsForUser(ctx context.Context, owner int64) ([]model.FoodList, error)
	// ListListsWithItems returns every list of the owner with its items.
	// List order is unspecified.
	ListListsWithItems(ctx context.Context, owner int64) ([]model.ListWithItems, error)

	AddItem(ctx context.Context, principal int64, item *model.FoodItem) error
	SetItemChecked(ctx context.Context, principal, itemID int64, checked bool) error
	RenameItem(ctx context.Context, principal, itemID int64, name string) error
	DeleteItem(ctx context.Context, principal, itemID int64) error
	// ListItemsForList is unguarded: callers confirm list ownership first.
	ListItemsForList(ctx context.Context, listID int64) ([]model.FoodItem, error)
}

type CatalogRepository interface {
	// RandomEntry returns the entry at pick(n), where n is the current row
	// count. It returns apperror.ErrCatalogEmpty when n is zero.
	RandomEntry(ctx context.Context, pick func(n int) int) (*model.CatalogEntry, error)
	// ReplaceCatalog swaps the whole catalog in one transaction and returns
	// the resulting row count.
	ReplaceCatalog(ctx context.Context, entries []model.CatalogEntry) (int, error)
}
