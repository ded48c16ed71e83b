package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck is one dependency probe.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// PingHandler serves /ping for liveness and /health for dependency readiness.
type PingHandler struct {
	checks  []HealthCheck
	timeout time.Duration
	logger  *slog.Logger
}

// NewPingHandler creates a ping handler probing checks on /health.
func NewPingHandler(log *slog.Logger, checks ...HealthCheck) *PingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PingHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  log.With(slog.String("handler", "ping")),
	}
}

// Register mounts GET /ping, GET /health and HEAD /health.
func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.GET("/health", h.Health)
	e.HEAD("/health", h.HealthHead)
}

// Ping returns 200 JSON {"status":"ok"}.
func (h *PingHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Health probes every dependency; 503 when any is down.
func (h *PingHandler) Health(c echo.Context) error {
	resp, healthy := h.probe(c.Request().Context())
	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// HealthHead is Health without a body.
func (h *PingHandler) HealthHead(c echo.Context) error {
	if _, healthy := h.probe(c.Request().Context()); !healthy {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}

func (h *PingHandler) probe(ctx context.Context) (HealthResponse, bool) {
	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	healthy := true
	for _, check := range h.checks {
		pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := check.Ping(pingCtx)
		cancel()
		if err != nil {
			healthy = false
			resp.Checks[check.Name] = "error: " + err.Error()
			h.logger.Warn("health check failed", slog.String("check", check.Name), slog.Any("error", err))
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	if !healthy {
		resp.Status = "degraded"
	}
	return resp, healthy
}
