package service

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swiftpay/swiftpay/internal/middleware"
	"github.com/swiftpay/swiftpay/internal/models"
	"github.com/swiftpay/swiftpay/internal/service/response"
	"github.com/swiftpay/swiftpay/internal/storage"
)

// NotificationService serves the notifications tab.
type NotificationService struct {
	store storage.NotificationStore
}

// NewNotificationService creates a NotificationService over the given store.
func NewNotificationService(store storage.NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

type notificationView struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Kind      string `json:"type"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"createdAt"`
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notifications, err := s.store.ListNotifications(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list notifications", "user_id", userID, "error", err)
		response.Error(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	views := make([]*notificationView, len(notifications))
	for i, n := range notifications {
		views[i] = newNotificationView(n)
	}
	response.JSON(w, http.StatusOK, views)
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notificationID := chi.URLParam(r, "id")
	if err := s.store.MarkNotificationRead(r.Context(), userID, notificationID); err != nil {
		response.Error(w, http.StatusNotFound, "notification not found")
		return
	}

	response.Message(w, http.StatusOK, "notification marked read")
}

// Clear deletes all of the caller's notifications.
func (s *NotificationService) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.store.ClearNotifications(r.Context(), userID); err != nil {
		slog.Error("failed to clear notifications", "user_id", userID, "error", err)
		response.Error(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	response.Message(w, http.StatusOK, "notifications cleared")
}

func newNotificationView(n *models.Notification) *notificationView {
	return &notificationView{
		ID:        n.ID,
		Message:   n.Message,
		Kind:      string(n.Kind),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
