// Package models defines server-side data models persisted in the database.
package models

import "time"

type User struct {
	ID        string    `db:"id"`
	UserName  string    `db:"username"`
	PinHash   string    `db:"pin_hash"`
	CreatedAt time.Time `db:"created_at"`
}

// Session is a server-side credential record. Only the hash of the bearer
// value is stored.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}
