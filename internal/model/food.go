package model

import "time"

// FoodList is a named list owned by exactly one user.
// UserID never changes after creation.
type FoodList struct {
	ID        int64     `json:"id"         db:"id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	Name      string    `json:"list_name"  db:"list_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FoodItem belongs to a FoodList. Ownership is always derived through the
// list, never stored on the item.
type FoodItem struct {
	ID       int64  `json:"id"        db:"id"`
	ListID   int64  `json:"list_id"   db:"list_id"`
	FoodName string `json:"food_name" db:"food_name"`
	Checked  bool   `json:"-"         db:"is_checked"`
}

// ListWithItems is one row of the "my lists" view.
type ListWithItems struct {
	List  FoodList   `json:"list"`
	Items []FoodItem `json:"items"`
}

// CatalogEntry is a global, non-owned suggestion.
// Cuisine is empty when the seed did not tag one.
type CatalogEntry struct {
	ID       int64  `json:"id"        db:"id"`
	FoodName string `json:"food_name" db:"food_name"`
	Cuisine  string `json:"cuisine,omitempty" db:"cuisine_type"`
}
