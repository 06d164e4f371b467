// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/models"
)

// ErrInsufficientFunds is returned by Transfer when the conditional debit
// finds less than the requested amount on the sender's row. The check and the
// debit are one atomic statement, so two concurrent transfers can never both
// pass it against the same balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// UserStore persists registered users. Lookups return (nil, nil) when no user
// matches, so callers can distinguish "not found" from storage failures.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AccountStore mutates balances. Both mutation primitives append their ledger
// entries in the same database transaction as the balance change: a committed
// balance is always consistent with the ledger, and a failed call leaves
// neither behind.
//
// When idemKey is non-empty and a transfer with that key was already applied,
// the call is a no-op that reports the actor's current balance.
type AccountStore interface {
	// GetBalance reads the current balance of an account.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// Credit increments userID's balance by entry.Amount and appends the
	// single charge entry. Returns the new balance.
	Credit(ctx context.Context, userID string, entry *models.LedgerEntry, idemKey string) (decimal.Decimal, error)

	// Transfer debits fromID and credits toID by the pair's amount and
	// appends both entries, all in one transaction. The debit is
	// conditional on the sender holding at least the amount; otherwise
	// ErrInsufficientFunds is returned and nothing is written.
	// Returns the sender's new balance.
	Transfer(ctx context.Context, fromID, toID string, send, receive *models.LedgerEntry, idemKey string) (decimal.Decimal, error)
}

// Ledger reads the append-only transaction log.
type Ledger interface {
	// HistoryByParticipant returns every entry whose sender or recipient
	// email matches, newest first.
	HistoryByParticipant(ctx context.Context, email string) ([]*models.LedgerEntry, error)
}

// NotificationStore persists per-user notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	ClearNotifications(ctx context.Context, userID string) error
}

// Store is the full persistence surface the service needs. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the engine or handlers.
type Store interface {
	UserStore
	AccountStore
	Ledger
	NotificationStore

	// Close releases any resources held by the store.
	Close() error
}
