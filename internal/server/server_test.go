package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joshp123/kiturami"
)

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestStatusHandler(t *testing.T) {
	noDelay := time.Duration(0)
	client, err := kiturami.NewClient(kiturami.Config{
		BaseURL:      "http://127.0.0.1:0",
		MemberID:     "user@example.com",
		Password:     "hunter2",
		RequestDelay: &noDelay,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	rec := httptest.NewRecorder()
	StatusHandler(client).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
