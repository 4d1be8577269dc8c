// Package domain contains entities without logic, just meta-data
// and the invariants that make them valid.
package domain

import "errors"

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// ConnID identifies one live transport connection. It is assigned by the
// server at connect time and is not stable across reconnects.
type ConnID string

// Player is an occupant of a room: a connection plus the display name the
// connection asserted for itself.
type Player struct {
	ID       ConnID `json:"id"`
	Username string `json:"username"`
}

// ValidateUsername enforces the display-name constraints shared by every
// place a username enters the system.
func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
