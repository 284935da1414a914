// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is one registered principal. PasswordSecret is the encoded output of
// the password hasher and never leaves the server: it is excluded from JSON
// and must not be logged.
type User struct {
	ID             string    `db:"id" json:"id"`
	UserName       string    `db:"username" json:"username"`
	PasswordSecret string    `db:"password_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
