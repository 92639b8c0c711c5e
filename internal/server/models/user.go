// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a credential-bearing identity. PasswordHash holds a bcrypt hash
// and is never exposed through the API.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	IsStaff      bool
	DateJoined   time.Time
}
