// Package router classifies Telegram updates and dispatches them to the conversation flow
// or to operator commands, then delivers the resulting replies in order.
package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/scholarbot/internal/broadcast"
	"github.com/memohai/scholarbot/internal/flow"
	"github.com/memohai/scholarbot/internal/logger"
	"github.com/memohai/scholarbot/internal/profiles"
)

// CallbackAck is the text shown when a button press is acknowledged.
const CallbackAck = "Принято"

// Commands understood by the bot.
const (
	CommandStart      = "start"
	CommandFAQ        = "faq"
	CommandBankOK     = "bank_ok_row"
	CommandBankFixRow = "bank_fix_row"
)

// Flow is the conversation state machine.
type Flow interface {
	Start(ctx context.Context, meta profiles.ChatMeta) (flow.Result, error)
	FAQ(chatID int64) flow.Result
	HandleText(ctx context.Context, ev flow.TextEvent) (flow.Result, error)
	HandleAction(ctx context.Context, ev flow.ActionEvent) (flow.Result, error)
	InvalidAction(chatID int64) flow.Result
}

// Broadcaster runs operator commands.
type Broadcaster interface {
	BankConfirmed(ctx context.Context, operatorID int64, args string) (broadcast.Report, error)
	DocsNeedFix(ctx context.Context, operatorID int64, args string) (broadcast.Report, error)
}

// Router dispatches updates.
type Router struct {
	flow      Flow
	broadcast Broadcaster
	outbox    *Outbox
	logger    *slog.Logger
}

// New creates a router.
func New(log *slog.Logger, f Flow, b Broadcaster, outbox *Outbox) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		flow:      f,
		broadcast: b,
		outbox:    outbox,
		logger:    log.With(slog.String("service", "router")),
	}
}

// Handle processes one update. Failures are logged and answered with a reply where
// possible; the returned error is only informational.
func (r *Router) Handle(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return r.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return r.handleMessage(ctx, update.Message)
	default:
		r.log(ctx).Debug("update ignored", slog.Int("update_id", update.UpdateID))
		return nil
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID
	meta := chatMeta(chatID, msg.From)
	if msg.IsCommand() {
		return r.handleCommand(ctx, msg, meta)
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	r.log(ctx).Info("text received", slog.Int64("chat_id", chatID), slog.Int("length", len([]rune(text))))
	res, err := r.flow.HandleText(ctx, flow.TextEvent{ChatID: chatID, Text: text, Meta: meta})
	return r.finish(ctx, "text", res, err)
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message, meta profiles.ChatMeta) error {
	chatID := meta.ChatID
	cmd := msg.Command()
	r.log(ctx).Info("command received", slog.String("command", cmd), slog.Int64("chat_id", chatID))
	switch cmd {
	case CommandStart:
		res, err := r.flow.Start(ctx, meta)
		return r.finish(ctx, cmd, res, err)
	case CommandFAQ:
		return r.finish(ctx, cmd, r.flow.FAQ(chatID), nil)
	case CommandBankOK:
		return r.runBroadcast(ctx, chatID, msg, r.broadcast.BankConfirmed, flow.TemplateBankOKUsage)
	case CommandBankFixRow:
		return r.runBroadcast(ctx, chatID, msg, r.broadcast.DocsNeedFix, flow.TemplateBankFixUsage)
	default:
		r.log(ctx).Info("unknown command ignored", slog.String("command", cmd))
		return nil
	}
}

type broadcastFunc func(ctx context.Context, operatorID int64, args string) (broadcast.Report, error)

func (r *Router) runBroadcast(ctx context.Context, chatID int64, msg *tgbotapi.Message, run broadcastFunc, usage flow.Template) error {
	var operatorID int64
	if msg.From != nil {
		operatorID = msg.From.ID
	}
	report, err := run(ctx, operatorID, msg.CommandArguments())
	switch {
	case errors.Is(err, broadcast.ErrForbidden):
		return r.outbox.Deliver(ctx, flow.Reply{ChatID: chatID, Template: flow.TemplateForbidden})
	case errors.Is(err, broadcast.ErrNoRows):
		return r.outbox.Deliver(ctx, flow.Reply{ChatID: chatID, Template: usage})
	case err != nil:
		r.log(ctx).Error("broadcast failed", slog.Any("error", err))
		return r.outbox.Deliver(ctx, flow.Reply{ChatID: chatID, Template: flow.TemplateTryLater})
	}
	return r.outbox.DeliverText(ctx, chatID, report.Text())
}

func (r *Router) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	chatID := callbackChatID(cq)
	defer func() {
		if err := r.outbox.Answer(ctx, cq.ID, CallbackAck); err != nil {
			r.log(ctx).Warn("answer callback failed", slog.Any("error", err))
		}
	}()
	if chatID == 0 {
		return nil
	}
	cb, err := flow.ParseCallback(cq.Data)
	if err != nil {
		r.log(ctx).Warn("malformed callback", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return r.finish(ctx, "callback", r.flow.InvalidAction(chatID), nil)
	}
	r.log(ctx).Info("callback received",
		slog.Int64("chat_id", chatID),
		slog.String("action", string(cb.Action)),
		slog.Int64("profile_id", cb.ProfileID))
	res, err := r.flow.HandleAction(ctx, flow.ActionEvent{ChatID: chatID, Callback: cb})
	return r.finish(ctx, string(cb.Action), res, err)
}

// finish logs a flow error and delivers every reply, continuing past send failures.
func (r *Router) finish(ctx context.Context, event string, res flow.Result, flowErr error) error {
	if flowErr != nil {
		r.log(ctx).Error("flow failed", slog.String("event", event), slog.Any("error", flowErr))
	}
	var errs []error
	for _, reply := range res.Replies {
		if err := r.outbox.Deliver(ctx, reply); err != nil {
			r.log(ctx).Error("send reply failed",
				slog.String("template", string(reply.Template)),
				slog.Int64("chat_id", reply.ChatID),
				slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(append(errs, flowErr)...)
}

// log prefers the request-scoped logger so lines carry the update id.
func (r *Router) log(ctx context.Context) *slog.Logger {
	if l := logger.FromContextOr(ctx, nil); l != nil {
		return l.With(slog.String("service", "router"))
	}
	return r.logger
}

func chatMeta(chatID int64, from *tgbotapi.User) profiles.ChatMeta {
	meta := profiles.ChatMeta{ChatID: chatID}
	if from != nil {
		meta.Username = from.UserName
		meta.FirstName = from.FirstName
		meta.LastName = from.LastName
	}
	return meta
}

func callbackChatID(cq *tgbotapi.CallbackQuery) int64 {
	if cq.Message != nil && cq.Message.Chat != nil {
		return cq.Message.Chat.ID
	}
	if cq.From != nil {
		return cq.From.ID
	}
	return 0
}
