package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okCheck(_ context.Context) error { return nil }

func failCheck(_ context.Context) error { return errors.New("connection refused") }

func TestLive_Always200(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("test-version", map[string]Checker{"database": failCheck})

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()

	h.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
	if resp.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestReady_AllUp(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("test-version", map[string]Checker{"database": okCheck})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestReady_OneDown(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("test-version", map[string]Checker{
		"database": okCheck,
		"media":    failCheck,
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "down" {
		t.Errorf("expected status 'down', got %q", resp.Status)
	}
}

func TestHealth_ReportsComponents(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("v1.2.3", map[string]Checker{
		"database": okCheck,
		"media":    failCheck,
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Version != "v1.2.3" {
		t.Errorf("expected version 'v1.2.3', got %q", resp.Version)
	}

	db, ok := resp.Components["database"]
	if !ok {
		t.Fatal("expected 'database' component")
	}
	if db.Status != "ok" || db.Latency == "" {
		t.Errorf("database = %+v, want ok with latency", db)
	}

	media := resp.Components["media"]
	if media.Status != "down" {
		t.Errorf("media status = %q, want 'down'", media.Status)
	}
}

func TestHealth_NoChecks(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler("dev", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
