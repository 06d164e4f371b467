package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/swiftpay/swiftpay/internal/models"
)

// HistoryByParticipant retrieves every ledger entry whose sender or recipient
// email matches, newest first. Entries of a pair share a timestamp, so the
// entry ID breaks the tie to keep repeated reads identically ordered.
func (s *SQLiteStore) HistoryByParticipant(ctx context.Context, email string) ([]*models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transfer_id, type, amount_cents, sender_email, recipient_email, description, status, created_at
		 FROM ledger_entries
		 WHERE sender_email = ? OR recipient_email = ?
		 ORDER BY created_at DESC, id`,
		email, email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry := &models.LedgerEntry{}
		var (
			cents                          int64
			entryType, status              string
			sender, recipient, description sql.NullString
		)

		if err := rows.Scan(&entry.ID, &entry.TransferID, &entryType, &cents,
			&sender, &recipient, &description, &status, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		entry.Type = models.EntryType(entryType)
		entry.Status = models.EntryStatus(status)
		entry.Amount = fromCents(cents)
		entry.SenderEmail = sender.String
		entry.RecipientEmail = recipient.String
		entry.Description = description.String

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
