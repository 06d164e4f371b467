package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StartingBalance is credited to every new account on registration.
var StartingBalance = decimal.NewFromInt(100)

// User represents a registered account and its cash balance.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Transfers address
	// recipients by email.
	Email string

	// Name is the display name of the user.
	Name string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized in API responses.
	PasswordHash string

	// Balance is the user's current cash balance. Non-negative after any
	// committed operation; mutated only through the transfer engine.
	Balance decimal.Decimal

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last balance mutation.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID, the starting balance and current
// timestamps.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Balance:      StartingBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
