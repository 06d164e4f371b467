package service

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/middleware"
	"github.com/swiftpay/swiftpay/internal/models"
	"github.com/swiftpay/swiftpay/internal/service/response"
	"github.com/swiftpay/swiftpay/internal/storage"
)

// userView is the public shape of a user; the password hash never leaves
// the server.
type userView struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
}

func newUserView(u *models.User) *userView {
	return &userView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Balance:   u.Balance,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserService serves profile, recipient search and balance reads.
type UserService struct {
	store storage.Store
}

// NewUserService creates a UserService over the given store.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// Profile returns the authenticated user's own record.
func (s *UserService) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, newUserView(user))
}

// Search resolves a recipient by email before the client submits a send.
func (s *UserService) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentUser(w, r); !ok {
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		response.Error(w, http.StatusBadRequest, "email parameter required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		slog.Error("user search failed", "error", err)
		response.Error(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	if user == nil {
		response.Error(w, http.StatusNotFound, "user not found")
		return
	}

	response.JSON(w, http.StatusOK, newUserView(user))
}

// Balance returns the authenticated user's current balance. Callers re-fetch
// it here after a transfer; the stored balance is the source of truth.
func (s *UserService) Balance(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	response.JSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": user.Balance})
}

// currentUser resolves the authenticated user or writes the error response.
func (s *UserService) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load user", "user_id", userID, "error", err)
		response.Error(w, http.StatusServiceUnavailable, "store unavailable")
		return nil, false
	}
	if user == nil {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return user, true
}
