package transfer

import "errors"

// The engine reports every failure as exactly one of these kinds. All are
// terminal for the request except ErrStoreUnavailable, which a caller may
// retry once it has confirmed no mutation was applied (the store's
// transaction semantics guarantee a failed call wrote nothing).
var (
	// ErrUnauthenticated means the actor id did not resolve to an account.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidAmount means the amount is non-positive, carries sub-cent
	// precision, or exceeds the per-transfer ceiling.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrRecipientNotFound means the recipient email matches no account.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrSelfTransfer means the recipient is the sender's own account.
	ErrSelfTransfer = errors.New("cannot send funds to yourself")

	// ErrInsufficientBalance means the sender holds less than the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrStoreUnavailable wraps transient storage failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)
