package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(ctx context.Context) error {
	return s.err
}

func TestHealth_AlwaysHealthy(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected healthy status, got %q", resp.Status)
	}
}

func TestHealth_RejectsNonGet(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}

func TestReady_NoCheckersIsReady(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 with no checkers, got %d", rec.Code)
	}
}

func TestReady_AllDependenciesUp(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{
		DBChecker:    stubChecker{},
		RedisChecker: stubChecker{},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if resp.Checks["database"] != "ok" || resp.Checks["redis"] != "ok" {
		t.Errorf("Expected ok checks, got %v", resp.Checks)
	}
}

func TestReady_DatabaseDown(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{
		DBChecker:    stubChecker{err: errors.New("connection refused")},
		RedisChecker: stubChecker{},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if resp.Status != "not_ready" {
		t.Errorf("Expected not_ready status, got %q", resp.Status)
	}
	if resp.Checks["database"] != "unavailable" {
		t.Errorf("Expected database unavailable, got %v", resp.Checks)
	}
	if resp.Checks["redis"] != "ok" {
		t.Errorf("Expected redis ok, got %v", resp.Checks)
	}
}
