package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/memohai/scholarbot/internal/flow"
	"github.com/memohai/scholarbot/internal/templates"
)

// Messenger delivers rendered messages and callback answers.
type Messenger interface {
	Send(ctx context.Context, chatID int64, msg templates.Message) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Outbox renders replies and sends them through a Messenger.
type Outbox struct {
	renderer  *templates.Renderer
	messenger Messenger
	logger    *slog.Logger
}

// NewOutbox creates an outbox.
func NewOutbox(log *slog.Logger, renderer *templates.Renderer, messenger Messenger) *Outbox {
	if log == nil {
		log = slog.Default()
	}
	return &Outbox{
		renderer:  renderer,
		messenger: messenger,
		logger:    log.With(slog.String("service", "outbox")),
	}
}

// Deliver renders and sends one reply.
func (o *Outbox) Deliver(ctx context.Context, reply flow.Reply) error {
	msg, err := o.renderer.Render(reply.Template, reply.ProfileID)
	if err != nil {
		return err
	}
	if err := o.messenger.Send(ctx, reply.ChatID, msg); err != nil {
		return fmt.Errorf("deliver %s: %w", reply.Template, err)
	}
	return nil
}

// DeliverText sends preformatted text.
func (o *Outbox) DeliverText(ctx context.Context, chatID int64, text string) error {
	return o.messenger.Send(ctx, chatID, templates.Plain(text))
}

// Answer acknowledges a button press.
func (o *Outbox) Answer(ctx context.Context, callbackID, text string) error {
	return o.messenger.AnswerCallback(ctx, callbackID, text)
}
