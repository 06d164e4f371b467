// Package models defines the core domain models for SwiftPay.
//
// # Models
//
//   - User: a registered account holding the user's cash balance
//   - LedgerEntry: one immutable record in the append-only transaction ledger
//   - Notification: a per-user message created when a transfer completes
//
// # Design Principles
//
// 1. **Money is decimal**: amounts and balances are shopspring decimals with at
// most two fraction digits, persisted as integer cents. Floats never touch money.
//
// 2. **The ledger is append-only**: a LedgerEntry is never updated or deleted.
// A send and its paired receive entry share a TransferID, amount, parties and
// creation timestamp, and are written in the same database transaction.
//
// 3. **Balances live on the user row**: each user carries one materialized
// balance rather than deriving it from entries; the storage layer guarantees
// the row never goes negative.
package models
