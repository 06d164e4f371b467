// Package notify records per-user notifications for completed transfers.
// These back the notifications tab in the mobile client.
package notify

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/models"
	"github.com/swiftpay/swiftpay/internal/storage"
)

// Notifier writes notifications through the store. Failures are returned to
// the caller for logging only; by the time a notification is written the
// transfer has already committed.
type Notifier struct {
	store storage.NotificationStore
}

// New creates a Notifier backed by the given store.
func New(store storage.NotificationStore) *Notifier {
	return &Notifier{store: store}
}

// Sent records the sender-side notification for a completed send.
func (n *Notifier) Sent(ctx context.Context, userID, recipientEmail string, amount decimal.Decimal) error {
	return n.store.CreateNotification(ctx, &models.Notification{
		UserID:  userID,
		Message: fmt.Sprintf("You sent $%s to %s", amount.StringFixed(2), recipientEmail),
		Kind:    models.NotifySuccess,
	})
}

// Received records the recipient-side notification for a completed send.
func (n *Notifier) Received(ctx context.Context, userID, senderEmail string, amount decimal.Decimal) error {
	return n.store.CreateNotification(ctx, &models.Notification{
		UserID:  userID,
		Message: fmt.Sprintf("You received $%s from %s", amount.StringFixed(2), senderEmail),
		Kind:    models.NotifySuccess,
	})
}

// Charged records the notification for a completed top-up.
func (n *Notifier) Charged(ctx context.Context, userID string, amount decimal.Decimal) error {
	return n.store.CreateNotification(ctx, &models.Notification{
		UserID:  userID,
		Message: fmt.Sprintf("You added $%s to your balance", amount.StringFixed(2)),
		Kind:    models.NotifySuccess,
	})
}
