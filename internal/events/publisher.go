// Package events publishes transfer-completed events for downstream
// consumers. Publishing is fire-and-forget: a failed publish is logged by the
// caller and never affects the outcome of the transfer, which has already
// committed.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransferCompleted is emitted after a transfer has durably committed.
type TransferCompleted struct {
	TransferID     string          `json:"transfer_id"`
	Type           string          `json:"type"`
	SenderEmail    string          `json:"sender_email,omitempty"`
	RecipientEmail string          `json:"recipient_email,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// Publisher delivers transfer-completed events.
type Publisher interface {
	Publish(ctx context.Context, event TransferCompleted) error
}

// Nop is a Publisher that discards every event. Used when no broker is
// configured.
type Nop struct{}

func (Nop) Publish(context.Context, TransferCompleted) error { return nil }
