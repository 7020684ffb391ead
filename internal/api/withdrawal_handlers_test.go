package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumora/playshare/internal/analytics"
	"github.com/lumora/playshare/internal/audit"
	"github.com/lumora/playshare/internal/billing"
	"github.com/lumora/playshare/internal/catalog"
	"github.com/lumora/playshare/internal/middleware"
	"github.com/lumora/playshare/internal/watch"
	"github.com/lumora/playshare/internal/withdrawal"
)

// newWithdrawalHandlers wires a provider with 100 in lifetime earnings.
func newWithdrawalHandlers(t *testing.T) *WithdrawalHandlers {
	t.Helper()

	billingRepo := billing.NewInMemoryRepository()
	catalogRepo := catalog.NewInMemoryRepository()
	watchRepo := watch.NewInMemoryRepository()
	auditRepo := audit.NewInMemoryRepository()

	past := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	err := billingRepo.RecordTransaction(context.Background(), &billing.Transaction{
		UserID:    "subscriber-1",
		Amount:    200,
		CreatedAt: past,
	})
	if err != nil {
		t.Fatalf("Expected no error recording transaction, got %v", err)
	}

	providerID := "provider-1"
	catalogRepo.AddProvider(&catalog.Provider{ID: providerID, Name: "Solo", Email: "solo@example.com"})
	catalogRepo.AddMediaItem(&catalog.MediaItem{ID: "media-1", Title: "Only", ProviderID: &providerID})
	err = watchRepo.Insert(context.Background(), &watch.Record{
		UserID:          "subscriber-1",
		MediaID:         "media-1",
		ProgressSeconds: 3600,
		WatchedAt:       past,
	})
	if err != nil {
		t.Fatalf("Expected no error inserting watch record, got %v", err)
	}

	engine := analytics.NewEngine(billingRepo, catalogRepo, watchRepo, nil)
	service := withdrawal.NewService(engine, auditRepo, nil)
	return NewWithdrawalHandlers(service, nil)
}

func authenticatedRequest(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

func TestWithdrawalSummary_ReturnsPosition(t *testing.T) {
	h := newWithdrawalHandlers(t)

	req := authenticatedRequest(http.MethodGet, "/provider/withdrawals", "", "provider-1")
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var summary withdrawal.Summary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if summary.TotalEarned != 100 || summary.AvailableBalance != 100 {
		t.Errorf("Expected 100 earned / 100 available, got %v/%v", summary.TotalEarned, summary.AvailableBalance)
	}
}

func TestWithdrawalSummary_Unauthenticated(t *testing.T) {
	h := newWithdrawalHandlers(t)

	req := authenticatedRequest(http.MethodGet, "/provider/withdrawals", "", "")
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestWithdrawalRequest_NumberAmount(t *testing.T) {
	h := newWithdrawalHandlers(t)

	req := authenticatedRequest(http.MethodPost, "/provider/withdrawals", `{"amount":30}`, "provider-1")
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var receipt withdrawal.Receipt
	if err := json.NewDecoder(rec.Body).Decode(&receipt); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if receipt.Message != "Withdrawal request submitted successfully" {
		t.Errorf("Expected success message, got %q", receipt.Message)
	}
	if receipt.AvailableBalance != 70 {
		t.Errorf("Expected 70 available, got %v", receipt.AvailableBalance)
	}
}

func TestWithdrawalRequest_StringAmount(t *testing.T) {
	h := newWithdrawalHandlers(t)

	req := authenticatedRequest(http.MethodPost, "/provider/withdrawals", `{"amount":"25.50"}`, "provider-1")
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var receipt withdrawal.Receipt
	if err := json.NewDecoder(rec.Body).Decode(&receipt); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if receipt.WithdrawnTotal != 25.5 {
		t.Errorf("Expected 25.5 withdrawn, got %v", receipt.WithdrawnTotal)
	}
}

func TestWithdrawalRequest_InvalidAmounts(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero", `{"amount":0}`},
		{"negative", `{"amount":-10}`},
		{"non-numeric string", `{"amount":"lots"}`},
		{"missing", `{}`},
		{"null", `{"amount":null}`},
		{"empty string", `{"amount":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newWithdrawalHandlers(t)
			req := authenticatedRequest(http.MethodPost, "/provider/withdrawals", tt.body, "provider-1")
			rec := httptest.NewRecorder()
			h.Request(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Expected error JSON, got %v", err)
			}
			if resp.Error.Code != ErrCodeInvalidAmount {
				t.Errorf("Expected code %s, got %s", ErrCodeInvalidAmount, resp.Error.Code)
			}
			if resp.Error.Message != "Please enter a valid withdrawal amount" {
				t.Errorf("Unexpected message %q", resp.Error.Message)
			}
		})
	}
}

func TestWithdrawalRequest_ExceedsBalance(t *testing.T) {
	h := newWithdrawalHandlers(t)

	req := authenticatedRequest(http.MethodPost, "/provider/withdrawals", `{"amount":150}`, "provider-1")
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Expected error JSON, got %v", err)
	}
	if resp.Error.Code != ErrCodeInsufficientBalance {
		t.Errorf("Expected code %s, got %s", ErrCodeInsufficientBalance, resp.Error.Code)
	}
	if resp.Error.Message != "Withdrawal amount exceeds your available balance" {
		t.Errorf("Unexpected message %q", resp.Error.Message)
	}
}

func TestWithdrawalRequest_MalformedBody(t *testing.T) {
	h := newWithdrawalHandlers(t)

	req := authenticatedRequest(http.MethodPost, "/provider/withdrawals", `{not json`, "provider-1")
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
