// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account.
//
// Hash holds the bcrypt output and is never serialised; the json:"-" tag
// keeps it out of every API response even if a handler encodes a User
// directly.
type User struct {
	ID        int64     `json:"id"        db:"id"`
	Username  string    `json:"username"  db:"username"`
	Hash      string    `json:"-"         db:"hash"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
