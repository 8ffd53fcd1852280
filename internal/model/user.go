package model

import "time"

// User is an account that owns trips, favorites and addresses.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// AuthContext holds the identity of an authenticated request.
type AuthContext struct {
	UserID string
	Email  string
}
