package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/models"
	"github.com/swiftpay/swiftpay/internal/storage"
)

// GetBalance reads the current balance of an account.
func (s *SQLiteStore) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx,
		"SELECT balance_cents FROM users WHERE id = ?", userID,
	).Scan(&cents)
	if err == sql.ErrNoRows {
		return decimal.Zero, fmt.Errorf("account not found: %s", userID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return fromCents(cents), nil
}

// Credit increments userID's balance and appends the charge entry in one
// transaction. Returns the new balance.
func (s *SQLiteStore) Credit(ctx context.Context, userID string, entry *models.LedgerEntry, idemKey string) (decimal.Decimal, error) {
	cents, err := toCents(entry.Amount)
	if err != nil {
		return decimal.Zero, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if replayed, balance, err := s.checkReplay(ctx, tx, idemKey, userID); err != nil {
		return decimal.Zero, err
	} else if replayed {
		return balance, nil
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?",
		cents, time.Now().Unix(), userID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to credit account: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return decimal.Zero, err
	} else if n == 0 {
		return decimal.Zero, fmt.Errorf("account not found: %s", userID)
	}

	if err := insertTransfer(ctx, tx, entry.TransferID, idemKey, time.Now().Unix()); err != nil {
		return decimal.Zero, err
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		return decimal.Zero, err
	}

	balance, err := balanceInTx(ctx, tx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

// Transfer debits fromID, credits toID and appends the send/receive pair,
// all in one transaction. The debit is conditional on the sender holding at
// least the amount, which makes the check-then-mutate sequence of two
// concurrent transfers from the same sender linearizable: only one can win
// the remaining balance.
func (s *SQLiteStore) Transfer(ctx context.Context, fromID, toID string, send, receive *models.LedgerEntry, idemKey string) (decimal.Decimal, error) {
	cents, err := toCents(send.Amount)
	if err != nil {
		return decimal.Zero, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if replayed, balance, err := s.checkReplay(ctx, tx, idemKey, fromID); err != nil {
		return decimal.Zero, err
	} else if replayed {
		return balance, nil
	}

	now := time.Now().Unix()

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET balance_cents = balance_cents - ?, updated_at = ? WHERE id = ? AND balance_cents >= ?",
		cents, now, fromID, cents,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to debit sender: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return decimal.Zero, err
	} else if n == 0 {
		return decimal.Zero, storage.ErrInsufficientFunds
	}

	res, err = tx.ExecContext(ctx,
		"UPDATE users SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?",
		cents, now, toID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to credit recipient: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return decimal.Zero, err
	} else if n == 0 {
		return decimal.Zero, fmt.Errorf("recipient account not found: %s", toID)
	}

	if err := insertTransfer(ctx, tx, send.TransferID, idemKey, now); err != nil {
		return decimal.Zero, err
	}
	if err := insertEntry(ctx, tx, send); err != nil {
		return decimal.Zero, err
	}
	if err := insertEntry(ctx, tx, receive); err != nil {
		return decimal.Zero, err
	}

	balance, err := balanceInTx(ctx, tx, fromID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

// checkReplay reports whether a transfer with the given idempotency key was
// already applied. On replay it returns the actor's current balance so the
// caller can answer the retry without mutating anything.
func (s *SQLiteStore) checkReplay(ctx context.Context, tx *sql.Tx, idemKey, actorID string) (bool, decimal.Decimal, error) {
	if idemKey == "" {
		return false, decimal.Zero, nil
	}

	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM transfers WHERE idempotency_key = ?", idemKey,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, decimal.Zero, nil
	}
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	balance, err := balanceInTx(ctx, tx, actorID)
	if err != nil {
		return false, decimal.Zero, err
	}
	return true, balance, nil
}

func insertTransfer(ctx context.Context, tx *sql.Tx, transferID, idemKey string, createdAt int64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO transfers (id, idempotency_key, created_at) VALUES (?, ?, ?)",
		transferID, nullable(idemKey), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, e *models.LedgerEntry) error {
	cents, err := toCents(e.Amount)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (id, transfer_id, type, amount_cents, sender_email, recipient_email, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TransferID, string(e.Type), cents,
		nullable(e.SenderEmail), nullable(e.RecipientEmail), nullable(e.Description),
		string(e.Status), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

func balanceInTx(ctx context.Context, tx *sql.Tx, userID string) (decimal.Decimal, error) {
	var cents int64
	if err := tx.QueryRowContext(ctx,
		"SELECT balance_cents FROM users WHERE id = ?", userID,
	).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}
	return fromCents(cents), nil
}
