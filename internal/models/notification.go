package models

// NotificationKind mirrors the display styles the mobile client knows about.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a per-user message created when a transfer touches the
// user's account.
type Notification struct {
	// ID is the unique identifier for the notification (UUID format).
	ID string

	// UserID is the user this notification belongs to.
	UserID string

	// Message is the display text.
	Message string

	// Kind selects the display style (success, error, info).
	Kind NotificationKind

	// Read reports whether the user has opened the notification.
	Read bool

	// CreatedAt is the Unix timestamp when the notification was created.
	CreatedAt int64
}
