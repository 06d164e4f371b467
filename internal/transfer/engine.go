// Package transfer implements the balance-transfer engine: validation,
// atomic two-account mutation and ledger append for send and charge
// transactions.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/events"
	"github.com/swiftpay/swiftpay/internal/models"
	"github.com/swiftpay/swiftpay/internal/notify"
	"github.com/swiftpay/swiftpay/internal/storage"
)

// DefaultCeiling is the maximum amount a single transfer may move unless the
// engine is configured otherwise.
var DefaultCeiling = decimal.NewFromInt(1000)

// Engine orchestrates transfers. It holds no balance state of its own; every
// check-then-mutate sequence happens inside a single store transaction, so
// concurrent engines (or instances) stay consistent.
type Engine struct {
	store     storage.Store
	notifier  *notify.Notifier
	publisher events.Publisher
	ceiling   decimal.Decimal
}

// NewEngine creates an engine over the given store. A nil publisher disables
// event publishing; a zero ceiling selects DefaultCeiling.
func NewEngine(store storage.Store, publisher events.Publisher, ceiling decimal.Decimal) *Engine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if ceiling.IsZero() {
		ceiling = DefaultCeiling
	}
	return &Engine{
		store:     store,
		notifier:  notify.New(store),
		publisher: publisher,
		ceiling:   ceiling,
	}
}

// Ceiling reports the configured per-transfer maximum.
func (e *Engine) Ceiling() decimal.Decimal {
	return e.ceiling
}

// ExecuteTransfer validates and applies one transfer on behalf of actorID and
// returns the actor's new balance. Any failure leaves balances and the ledger
// completely unchanged.
//
// idemKey is an optional client-supplied idempotency token; a replay with a
// key that was already applied succeeds without mutating anything.
func (e *Engine) ExecuteTransfer(ctx context.Context, actorID string, req Request, idemKey string) (decimal.Decimal, error) {
	actor, err := e.store.GetUserByID(ctx, actorID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if actor == nil {
		return decimal.Zero, ErrUnauthenticated
	}

	if err := e.validateAmount(req.amount()); err != nil {
		return decimal.Zero, err
	}

	switch r := req.(type) {
	case Send:
		return e.executeSend(ctx, actor, r, idemKey)
	case Charge:
		return e.executeCharge(ctx, actor, r, idemKey)
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown transfer kind %T", ErrInvalidAmount, req)
	}
}

// History returns the actor's transaction history: every ledger entry whose
// sender or recipient email is the actor's, newest first. Read-only.
func (e *Engine) History(ctx context.Context, actorID string) ([]*models.LedgerEntry, error) {
	actor, err := e.store.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	entries, err := e.store.HistoryByParticipant(ctx, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return entries, nil
}

func (e *Engine) validateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if !amount.Shift(2).IsInteger() {
		return fmt.Errorf("%w: at most two decimal places allowed", ErrInvalidAmount)
	}
	if amount.Cmp(e.ceiling) > 0 {
		return fmt.Errorf("%w: amount exceeds per-transfer ceiling of %s", ErrInvalidAmount, e.ceiling.StringFixed(2))
	}
	return nil
}

func (e *Engine) executeSend(ctx context.Context, actor *models.User, req Send, idemKey string) (decimal.Decimal, error) {
	recipient, err := e.store.GetUserByEmail(ctx, req.RecipientEmail)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if recipient == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrRecipientNotFound, req.RecipientEmail)
	}
	if recipient.ID == actor.ID {
		return decimal.Zero, ErrSelfTransfer
	}

	// Both halves of the pair share the transfer id and timestamp.
	transferID := uuid.New().String()
	now := time.Now().UnixNano()

	send := &models.LedgerEntry{
		ID:             uuid.New().String(),
		TransferID:     transferID,
		Type:           models.EntrySend,
		Amount:         req.Amount,
		SenderEmail:    actor.Email,
		RecipientEmail: recipient.Email,
		Description:    req.Description,
		Status:         models.StatusCompleted,
		CreatedAt:      now,
	}
	receive := &models.LedgerEntry{
		ID:             uuid.New().String(),
		TransferID:     transferID,
		Type:           models.EntryReceive,
		Amount:         req.Amount,
		SenderEmail:    actor.Email,
		RecipientEmail: recipient.Email,
		Description:    req.Description,
		Status:         models.StatusCompleted,
		CreatedAt:      now,
	}

	balance, err := e.store.Transfer(ctx, actor.ID, recipient.ID, send, receive, idemKey)
	if errors.Is(err, storage.ErrInsufficientFunds) {
		return decimal.Zero, ErrInsufficientBalance
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.completed(ctx, events.TransferCompleted{
		TransferID:     transferID,
		Type:           string(models.EntrySend),
		SenderEmail:    actor.Email,
		RecipientEmail: recipient.Email,
		Amount:         req.Amount,
		OccurredAt:     time.Unix(0, now),
	})
	if err := e.notifier.Sent(ctx, actor.ID, recipient.Email, req.Amount); err != nil {
		slog.Warn("failed to notify sender", "transfer_id", transferID, "error", err)
	}
	if err := e.notifier.Received(ctx, recipient.ID, actor.Email, req.Amount); err != nil {
		slog.Warn("failed to notify recipient", "transfer_id", transferID, "error", err)
	}

	return balance, nil
}

func (e *Engine) executeCharge(ctx context.Context, actor *models.User, req Charge, idemKey string) (decimal.Decimal, error) {
	description := req.Description
	if description == "" {
		description = "Added funds"
	}

	transferID := uuid.New().String()
	now := time.Now().UnixNano()

	entry := &models.LedgerEntry{
		ID:          uuid.New().String(),
		TransferID:  transferID,
		Type:        models.EntryCharge,
		Amount:      req.Amount,
		SenderEmail: actor.Email,
		Description: description,
		Status:      models.StatusCompleted,
		CreatedAt:   now,
	}

	balance, err := e.store.Credit(ctx, actor.ID, entry, idemKey)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.completed(ctx, events.TransferCompleted{
		TransferID:  transferID,
		Type:        string(models.EntryCharge),
		SenderEmail: actor.Email,
		Amount:      req.Amount,
		OccurredAt:  time.Unix(0, now),
	})
	if err := e.notifier.Charged(ctx, actor.ID, req.Amount); err != nil {
		slog.Warn("failed to notify on charge", "transfer_id", transferID, "error", err)
	}

	return balance, nil
}

// completed publishes the post-commit event. The transfer is already durable,
// so a publish failure is logged and otherwise ignored.
func (e *Engine) completed(ctx context.Context, event events.TransferCompleted) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish transfer event", "transfer_id", event.TransferID, "error", err)
	}
}
