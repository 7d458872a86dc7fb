package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetHealthReportsOK(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.GetHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %q", resp.Status)
	}
	if resp.Uptime == "" {
		t.Fatal("expected an uptime value")
	}
}

func TestGetReadyPassesWhenAllProbesPass(t *testing.T) {
	h := NewHandler(Probe{
		Name:  "mongodb",
		Check: func(ctx context.Context) error { return nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	rec := httptest.NewRecorder()
	h.GetReady(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetReadyFailsWhenAProbeFails(t *testing.T) {
	h := NewHandler(
		Probe{Name: "mongodb", Check: func(ctx context.Context) error { return nil }},
		Probe{Name: "rabbitmq", Check: func(ctx context.Context) error { return errors.New("connection refused") }},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	rec := httptest.NewRecorder()
	h.GetReady(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "not_ready" {
		t.Fatalf("expected not_ready, got %q", resp.Status)
	}
	if resp.Checks["mongodb"] != "ok" {
		t.Fatalf("expected mongodb ok, got %q", resp.Checks["mongodb"])
	}
	if resp.Checks["rabbitmq"] != "connection refused" {
		t.Fatalf("expected probe error text, got %q", resp.Checks["rabbitmq"])
	}
}
