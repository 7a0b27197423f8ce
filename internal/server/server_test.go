package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/astrelia/tarotbot/pkg/billing"
)

// staticProvider is a billing.Provider stub with a fixed webhook handler.
type staticProvider struct {
	handler http.Handler
}

func (staticProvider) Name() string { return "stub" }
func (staticProvider) CheckoutURL(ctx context.Context, req billing.CheckoutRequest) (string, error) {
	return "https://example.com/checkout", nil
}
func (p staticProvider) WebhookHandler() http.Handler { return p.handler }

func TestHealthEndpoint(t *testing.T) {
	s := New(Config{}, nil, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("Expected body ok, got %q", w.Body.String())
	}
}

func TestWebhookRouteMounted(t *testing.T) {
	called := false
	provider := staticProvider{handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})}

	s := New(Config{}, provider, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/webhook/stub", http.NoBody)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)

	if !called {
		t.Error("webhook handler was not invoked")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	s := New(Config{}, nil, registry, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestNoMetricsWithoutRegistry(t *testing.T) {
	s := New(Config{}, nil, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
