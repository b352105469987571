package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/pipapal/internal/app/features/health"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"go.uber.org/zap"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestServe_DatabaseConnected(t *testing.T) {
	handler := health.NewHandler(memory.New(), "memory", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: got %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status: got %v, want ok", body["status"])
	}
	if body["database"] != "connected" {
		t.Errorf("database: got %v, want connected", body["database"])
	}
	if body["backend"] != "memory" {
		t.Errorf("backend: got %v, want memory", body["backend"])
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	handler := health.NewHandler(downStore{}, "postgres", zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}
	if body["status"] != "error" || body["database"] != "disconnected" {
		t.Errorf("unexpected body: %v", body)
	}
	if body["error"] != "connection refused" {
		t.Errorf("error: got %v", body["error"])
	}
}

func TestRoutes_MountsServe(t *testing.T) {
	r := health.Routes(health.NewHandler(memory.New(), "memory", zap.NewNop()))

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected status %d, got %d", method, http.StatusOK, rec.Code)
		}
	}
}
