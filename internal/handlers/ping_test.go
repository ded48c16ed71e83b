package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestPing(t *testing.T) {
	e := echo.New()
	NewPingHandler(nil).Register(e)
	if rec := serve(e, http.MethodGet, "/ping"); rec.Code != http.StatusOK {
		t.Fatalf("GET /ping = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	okCheck := HealthCheck{Name: "postgres", Ping: func(context.Context) error { return nil }}
	badCheck := HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	e := echo.New()
	NewPingHandler(nil, okCheck).Register(e)
	rec := serve(e, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthy GET /health = %d", rec.Code)
	}

	e = echo.New()
	NewPingHandler(nil, okCheck, badCheck).Register(e)
	rec = serve(e, http.MethodGet, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded GET /health = %d", rec.Code)
	}
	var body HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "degraded" || body.Checks["postgres"] != "ok" || body.Checks["redis"] != "error: connection refused" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if rec := serve(e, http.MethodHead, "/health"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded HEAD /health = %d", rec.Code)
	}
}
