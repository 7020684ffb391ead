package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/lumora/playshare/internal/middleware"
	"github.com/lumora/playshare/internal/withdrawal"
)

// WithdrawalHandlers holds dependencies for the withdrawal HTTP handlers.
type WithdrawalHandlers struct {
	service *withdrawal.Service
	logger  *slog.Logger
}

// NewWithdrawalHandlers creates a new WithdrawalHandlers instance.
func NewWithdrawalHandlers(service *withdrawal.Service, logger *slog.Logger) *WithdrawalHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &WithdrawalHandlers{service: service, logger: logger}
}

// withdrawAmount accepts the amount either as a JSON number or as a numeric
// string, which existing dashboard clients send interchangeably.
type withdrawAmount struct {
	value float64
	valid bool
}

func (a *withdrawAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	a.value = v
	a.valid = true
	return nil
}

// WithdrawRequest represents the request body for a withdrawal.
type WithdrawRequest struct {
	Amount withdrawAmount `json:"amount"`
}

// Summary returns the authenticated provider's withdrawal position.
// GET /provider/withdrawals (ContentCreator only)
func (h *WithdrawalHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	providerID := middleware.GetUserID(ctx)
	if providerID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "authentication required")
		return
	}

	summary, err := h.service.Summary(ctx, providerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load withdrawal summary", "error", err, "provider_id", providerID)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load withdrawal summary")
		return
	}

	WriteJSON(w, ctx, http.StatusOK, summary)
}

// Request submits a withdrawal for the authenticated provider.
// POST /provider/withdrawals (ContentCreator only)
func (h *WithdrawalHandlers) Request(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	providerID := middleware.GetUserID(ctx)
	if providerID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "authentication required")
		return
	}

	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if !req.Amount.valid {
		ctx = middleware.SetErrorCode(ctx, ErrCodeInvalidAmount)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidAmount, "Please enter a valid withdrawal amount")
		return
	}

	receipt, err := h.service.Request(ctx, providerID, req.Amount.value, withdrawal.RequestInfo{
		RequestID: middleware.GetRequestID(ctx),
		IPAddress: clientIP(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrInvalidAmount):
			ctx = middleware.SetErrorCode(ctx, ErrCodeInvalidAmount)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidAmount, "Please enter a valid withdrawal amount")
		case errors.Is(err, withdrawal.ErrInsufficientBalance):
			ctx = middleware.SetErrorCode(ctx, ErrCodeInsufficientBalance)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInsufficientBalance, "Withdrawal amount exceeds your available balance")
		default:
			h.logger.ErrorContext(ctx, "failed to submit withdrawal", "error", err, "provider_id", providerID)
			ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to submit withdrawal request")
		}
		return
	}

	WriteJSON(w, ctx, http.StatusOK, receipt)
}

// clientIP extracts the caller's IP, preferring the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
