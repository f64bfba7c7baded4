// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a classroom account. Accounts are created out-of-band
// (via the adduser CLI) — there is no signup endpoint.
//
// WHY PasswordHash AND NOT Password?
// We never store or compare plaintext credentials. The hash is a full
// bcrypt string (salt and cost embedded), produced by auth.PasswordService.
// The `json:"-"` tag keeps it out of every JSON response — a User struct
// can be encoded to the client without leaking the credential.
//
// LastActive is refreshed on each successful login. The teacher dashboard
// uses it for the "active today" count and to order the student list.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"` // unique, case-sensitive
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	LastActive   time.Time `json:"lastActive"`
	CreatedAt    time.Time `json:"createdAt"`
}
