package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker()
	c.Register("database", func(context.Context) error { return nil })
	c.Register("ollama", func(context.Context) error { return nil })

	result := c.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %s", result.Status)
	}
	if result.Details["database"] != "ok" || result.Details["ollama"] != "ok" {
		t.Errorf("Details = %v", result.Details)
	}
}

func TestChecker_ReadinessReportsFailure(t *testing.T) {
	c := NewChecker()
	c.Register("database", func(context.Context) error { return nil })
	c.Register("kubernetes", func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	result := c.Check(context.Background())
	if result.Details["kubernetes"] != "connection refused" {
		t.Errorf("Details = %v", result.Details)
	}
}

func TestChecker_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
