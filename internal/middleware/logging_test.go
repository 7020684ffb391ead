package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogging_RecordsStatusAndErrorCode(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := SetErrorCode(r.Context(), "not_found")
		UpdateResponseContext(w, ctx)
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON log line, got %v: %s", err, buf.String())
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("Expected status 404 in log, got %v", entry["status"])
	}
	if entry["error_code"] != "not_found" {
		t.Errorf("Expected error_code not_found in log, got %v", entry["error_code"])
	}
	if entry["path"] != "/missing" {
		t.Errorf("Expected path /missing in log, got %v", entry["path"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("Expected WARN level for a 4xx, got %v", entry["level"])
	}
}

func TestLogging_InfoForSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Fatalf("Expected no write error, got %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON log line, got %v", err)
	}
	if entry["level"] != "INFO" {
		t.Errorf("Expected INFO level for a 200, got %v", entry["level"])
	}
	if entry["size"] != float64(2) {
		t.Errorf("Expected response size 2, got %v", entry["size"])
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/revenue", "/revenue"},
		{"/admin/analytics", "/admin/analytics"},
		{"/provider/withdrawals", "/provider/withdrawals"},
		{"/health", "/health"},
		{"/some/unknown/route", "/some/unknown/route"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
