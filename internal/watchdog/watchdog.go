// Package watchdog keeps the Telegram webhook registration healthy. It runs on its own
// cron schedule; its failures are logged and never reach request handling.
package watchdog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/memohai/scholarbot/internal/flow"
	"github.com/memohai/scholarbot/internal/telegram"
)

const (
	DefaultSpec            = "@every 10m"
	DefaultMaxPendingCount = 10
	checkTimeout           = 30 * time.Second
)

// Webhook is the webhook management surface of the Bot API.
type Webhook interface {
	WebhookInfo(ctx context.Context) (telegram.WebhookInfo, error)
	DeleteWebhook(ctx context.Context, dropPending bool) error
	SetWebhook(ctx context.Context, url, secret string) error
}

// Notifier delivers the reset notice to an operator.
type Notifier interface {
	Deliver(ctx context.Context, reply flow.Reply) error
}

// Options configures the watchdog.
type Options struct {
	URL             string
	Secret          string
	Spec            string
	MaxPendingCount int
	// NotifyChatID receives a notice after each reset; 0 disables it.
	NotifyChatID int64
}

// Watchdog periodically verifies and repairs the webhook.
type Watchdog struct {
	webhook  Webhook
	notifier Notifier
	opts     Options
	cron     *cron.Cron
	logger   *slog.Logger
}

// New creates a watchdog; call Start to begin the schedule.
func New(log *slog.Logger, webhook Webhook, notifier Notifier, opts Options) (*Watchdog, error) {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(opts.URL) == "" {
		return nil, errors.New("webhook url is required")
	}
	if opts.Spec == "" {
		opts.Spec = DefaultSpec
	}
	if opts.MaxPendingCount <= 0 {
		opts.MaxPendingCount = DefaultMaxPendingCount
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	w := &Watchdog{
		webhook:  webhook,
		notifier: notifier,
		opts:     opts,
		cron:     cron.New(cron.WithParser(parser)),
		logger:   log.With(slog.String("service", "watchdog")),
	}
	if _, err := w.cron.AddFunc(opts.Spec, w.run); err != nil {
		return nil, fmt.Errorf("parse watchdog schedule %q: %w", opts.Spec, err)
	}
	return w, nil
}

// Register sets the webhook once, used at startup.
func (w *Watchdog) Register(ctx context.Context) error {
	return w.webhook.SetWebhook(ctx, w.opts.URL, w.opts.Secret)
}

// Start begins the periodic check.
func (w *Watchdog) Start() {
	w.logger.Info("watchdog started", slog.String("spec", w.opts.Spec))
	w.cron.Start()
}

// Stop halts the schedule and waits for a running check to finish or ctx to expire.
func (w *Watchdog) Stop(ctx context.Context) error {
	done := w.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Check inspects the webhook and re-registers it when the url drifted or too many updates
// are pending. It reports whether a reset happened.
func (w *Watchdog) Check(ctx context.Context) (bool, error) {
	info, err := w.webhook.WebhookInfo(ctx)
	if err != nil {
		return false, err
	}
	w.logger.Info("webhook info",
		slog.String("url", info.URL),
		slog.Int("pending_update_count", info.PendingUpdateCount),
		slog.String("last_error", info.LastErrorMessage))
	if info.URL == w.opts.URL && info.PendingUpdateCount <= w.opts.MaxPendingCount {
		return false, nil
	}
	w.logger.Warn("resetting webhook",
		slog.String("url", info.URL),
		slog.Int("pending_update_count", info.PendingUpdateCount))
	if err := w.webhook.DeleteWebhook(ctx, true); err != nil {
		return false, err
	}
	if err := w.webhook.SetWebhook(ctx, w.opts.URL, w.opts.Secret); err != nil {
		return false, err
	}
	if w.opts.NotifyChatID != 0 && w.notifier != nil {
		reply := flow.Reply{ChatID: w.opts.NotifyChatID, Template: flow.TemplateWebhookReset}
		if err := w.notifier.Deliver(ctx, reply); err != nil {
			w.logger.Warn("notify operator failed", slog.Any("error", err))
		}
	}
	return true, nil
}

func (w *Watchdog) run() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	if _, err := w.Check(ctx); err != nil {
		w.logger.Error("webhook check failed", slog.Any("error", err))
	}
}
