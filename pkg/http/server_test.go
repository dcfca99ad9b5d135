package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMetricsEndpointConfigurablePath(t *testing.T) {
	s := NewServer(nil, WithMetrics(true, "/internal/metrics"))

	req := httptest.NewRequest(http.MethodGet, "/internal/metrics", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("configured metrics path returned %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("default path should be unregistered, got %d", rec.Code)
	}
}

func TestMetricsEndpointDisabled(t *testing.T) {
	s := NewServer(nil, WithMetrics(false, ""))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled metrics endpoint returned %d", rec.Code)
	}
}
