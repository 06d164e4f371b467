package models

import "github.com/shopspring/decimal"

// EntryType distinguishes the three kinds of ledger entries.
type EntryType string

const (
	// EntrySend is the sender's view of a two-party transfer.
	EntrySend EntryType = "send"
	// EntryReceive is the recipient's view of a two-party transfer.
	EntryReceive EntryType = "receive"
	// EntryCharge is a one-party top-up.
	EntryCharge EntryType = "charge"
)

// EntryStatus is the lifecycle state of a ledger entry. Entries are immutable,
// so a status never changes after the entry is written; the engine only ever
// writes completed entries.
type EntryStatus string

const (
	StatusCompleted EntryStatus = "completed"
	StatusPending   EntryStatus = "pending"
	StatusFailed    EntryStatus = "failed"
)

// LedgerEntry is one immutable record in the append-only transaction ledger.
//
// A send entry and its paired receive entry share TransferID, Amount,
// SenderEmail, RecipientEmail and CreatedAt, and are written together or not
// at all. Charge entries stand alone.
type LedgerEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// TransferID links the two entries of a send/receive pair. For a charge
	// it identifies the single entry's transfer.
	TransferID string

	// Type is send, receive or charge.
	Type EntryType

	// Amount is the transferred amount, always positive.
	Amount decimal.Decimal

	// SenderEmail is the debited party's email. Empty only for charges,
	// where it holds the charging user's email for history lookups.
	SenderEmail string

	// RecipientEmail is the credited party's email. Empty for charges.
	RecipientEmail string

	// Description is an optional free-text note supplied by the sender.
	Description string

	// Status is always StatusCompleted in the current engine.
	Status EntryStatus

	// CreatedAt is the creation time in Unix nanoseconds. Identical for
	// both halves of a pair; history is ordered by it, newest first.
	CreatedAt int64
}
