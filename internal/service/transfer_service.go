package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/middleware"
	"github.com/swiftpay/swiftpay/internal/models"
	"github.com/swiftpay/swiftpay/internal/service/response"
	"github.com/swiftpay/swiftpay/internal/transfer"
)

var transfersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "swiftpay_transfers_total",
		Help: "Transfers processed, by type and outcome.",
	},
	[]string{"type", "outcome"},
)

// TransferService exposes the transfer engine over HTTP.
type TransferService struct {
	engine *transfer.Engine
}

// NewTransferService creates a TransferService over the given engine.
func NewTransferService(engine *transfer.Engine) *TransferService {
	return &TransferService{engine: engine}
}

// createTransactionRequest is the wire shape of a transfer request.
type createTransactionRequest struct {
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	RecipientEmail string          `json:"recipientEmail,omitempty"`
	Description    string          `json:"description,omitempty"`
}

// entryView is the wire shape of a ledger entry in history responses.
type entryView struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	SenderEmail    string          `json:"senderEmail,omitempty"`
	RecipientEmail string          `json:"recipientEmail,omitempty"`
	Description    string          `json:"description,omitempty"`
	Status         string          `json:"status"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Create decodes the tagged transaction request and runs it through the
// engine. The optional Idempotency-Key header makes client retries safe.
func (s *TransferService) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var request transfer.Request
	switch req.Type {
	case "send":
		if req.RecipientEmail == "" {
			response.Error(w, http.StatusBadRequest, "recipient email required")
			return
		}
		request = transfer.Send{
			Amount:         req.Amount,
			RecipientEmail: req.RecipientEmail,
			Description:    req.Description,
		}
	case "charge":
		request = transfer.Charge{
			Amount:      req.Amount,
			Description: req.Description,
		}
	default:
		response.Error(w, http.StatusBadRequest, "invalid transaction type")
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")

	balance, err := s.engine.ExecuteTransfer(r.Context(), userID, request, idemKey)
	if err != nil {
		transfersTotal.WithLabelValues(req.Type, outcome(err)).Inc()
		status := transferStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("transfer failed", "type", req.Type, "user_id", userID, "error", err)
		}
		response.Error(w, status, err.Error())
		return
	}

	transfersTotal.WithLabelValues(req.Type, "completed").Inc()
	response.JSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

// History returns the caller's transaction history, newest first.
func (s *TransferService) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entries, err := s.engine.History(r.Context(), userID)
	if err != nil {
		response.Error(w, transferStatus(err), err.Error())
		return
	}

	views := make([]*entryView, len(entries))
	for i, e := range entries {
		views[i] = newEntryView(e)
	}
	response.JSON(w, http.StatusOK, views)
}

func newEntryView(e *models.LedgerEntry) *entryView {
	return &entryView{
		ID:             e.ID,
		Type:           string(e.Type),
		Amount:         e.Amount,
		SenderEmail:    e.SenderEmail,
		RecipientEmail: e.RecipientEmail,
		Description:    e.Description,
		Status:         string(e.Status),
		Timestamp:      time.Unix(0, e.CreatedAt).UTC(),
	}
}

// transferStatus maps the engine's error taxonomy to HTTP status codes.
func transferStatus(err error) int {
	switch {
	case errors.Is(err, transfer.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, transfer.ErrInvalidAmount), errors.Is(err, transfer.ErrSelfTransfer):
		return http.StatusBadRequest
	case errors.Is(err, transfer.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, transfer.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, transfer.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// outcome labels the metrics counter with the failure kind.
func outcome(err error) string {
	switch {
	case errors.Is(err, transfer.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, transfer.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, transfer.ErrRecipientNotFound):
		return "recipient_not_found"
	case errors.Is(err, transfer.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, transfer.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, transfer.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
