package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/memohai/scholarbot/internal/logger"
	"github.com/memohai/scholarbot/internal/telegram"
)

// DefaultUpdateTimeout bounds processing of one update once it was accepted.
const DefaultUpdateTimeout = 30 * time.Second

// Deduper marks update ids as processed.
type Deduper interface {
	MarkIfNew(ctx context.Context, updateID int64) (bool, error)
}

// UpdateRouter processes a decoded update.
type UpdateRouter interface {
	Handle(ctx context.Context, update tgbotapi.Update) error
}

// WebhookHandler receives Telegram updates. It always answers 200 so Telegram never
// retries an update the bot already saw or cannot process.
type WebhookHandler struct {
	path    string
	dedup   Deduper
	router  UpdateRouter
	timeout time.Duration
	logger  *slog.Logger
}

// NewWebhookHandler creates the webhook handler mounted at path.
func NewWebhookHandler(log *slog.Logger, path string, dedup Deduper, router UpdateRouter) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	if path == "" {
		path = "/webhook"
	}
	return &WebhookHandler{
		path:    path,
		dedup:   dedup,
		router:  router,
		timeout: DefaultUpdateTimeout,
		logger:  log.With(slog.String("handler", "webhook")),
	}
}

// Register mounts POST <path>.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST(h.path, h.Receive)
}

// Receive handles one webhook delivery.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Warn("read webhook body failed", slog.Any("error", err))
		return ok(c)
	}
	update, err := telegram.DecodeUpdate(body)
	if err != nil {
		h.logger.Warn("malformed webhook body", slog.Any("error", err))
		return ok(c)
	}
	if update.UpdateID == 0 {
		h.logger.Warn("no update_id in webhook request")
		return ok(c)
	}

	reqLog := h.logger.With(
		slog.Int("update_id", update.UpdateID),
		slog.String("correlation_id", uuid.NewString()),
	)
	// Processing continues if Telegram drops the connection; dedup already claimed the id.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), h.timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, reqLog)

	fresh, err := h.dedup.MarkIfNew(ctx, int64(update.UpdateID))
	if err != nil {
		reqLog.Error("dedup check failed", slog.Any("error", err))
		return ok(c)
	}
	if !fresh {
		return ok(c)
	}
	if err := h.router.Handle(ctx, update); err != nil {
		reqLog.Error("update handling failed", slog.Any("error", err))
		return ok(c)
	}
	reqLog.Info("processed update")
	return ok(c)
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
