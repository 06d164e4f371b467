package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/swiftpay/swiftpay/internal/auth"
	"github.com/swiftpay/swiftpay/internal/models"
	"github.com/swiftpay/swiftpay/internal/service/response"
)

// AuthService handles registration and login. On success both return the
// user and a bearer token for subsequent requests.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
}

// NewAuthService creates an AuthService over the given authenticator and
// token manager.
func NewAuthService(authenticator auth.Authenticator, tokens *auth.JWTManager) *AuthService {
	return &AuthService{authenticator: authenticator, tokens: tokens}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	User  *userView `json:"user"`
	Token string    `json:"token"`
}

// Register creates a new account seeded with the starting balance.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		response.Error(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) || errors.Is(err, auth.ErrWeakPassword) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("registration failed", "email", req.Email, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.respondWithToken(w, user)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "missing email or password")
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.respondWithToken(w, user)
}

func (s *AuthService) respondWithToken(w http.ResponseWriter, user *models.User) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		slog.Error("failed to generate token", "user_id", user.ID, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.JSON(w, http.StatusOK, authPayload{
		User:  newUserView(user),
		Token: token,
	})
}
