// Package telegram is the Bot API adapter: outbound messages, callback answers and webhook
// registration.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/scholarbot/internal/templates"
)

// AllowedUpdates are the update kinds requested from Telegram.
var AllowedUpdates = []string{"message", "callback_query"}

// ErrEmptyMessage is returned when a message has no text.
var ErrEmptyMessage = errors.New("message text is required")

// WebhookInfo is the subset of getWebhookInfo the service acts on.
type WebhookInfo struct {
	URL                string
	PendingUpdateCount int
	LastErrorMessage   string
	LastErrorDate      time.Time
}

// Options configures a Client.
type Options struct {
	Token string
	// APIEndpoint overrides tgbotapi.APIEndpoint; used by tests.
	APIEndpoint string
	HTTPClient  *http.Client
}

// Client wraps tgbotapi.BotAPI.
type Client struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewClient authenticates against the Bot API (getMe) and returns a client.
func NewClient(log *slog.Logger, opts Options) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("adapter", "telegram"))
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, errors.New("telegram token is required")
	}
	endpoint := opts.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	_ = tgbotapi.SetLogger(&slogBotLogger{log: log})
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		log.Error("create bot failed", slog.Any("error", err))
		return nil, fmt.Errorf("create bot: %w", err)
	}
	log.Info("bot authorized", slog.String("username", bot.Self.UserName))
	return &Client{bot: bot, logger: log}, nil
}

// Username is the bot's own username.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// Send delivers msg to chatID as HTML with its inline keyboard.
func (c *Client) Send(ctx context.Context, chatID int64, msg templates.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.Text) == "" {
		return ErrEmptyMessage
	}
	out := tgbotapi.NewMessage(chatID, markdownToTelegramHTML(msg.Text))
	out.ParseMode = tgbotapi.ModeHTML
	if kb, ok := inlineKeyboard(msg.Buttons); ok {
		out.ReplyMarkup = kb
	}
	if _, err := c.bot.Send(out); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// AnswerCallback acknowledges a button press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// SetWebhook registers url with an optional secret token echoed back in
// X-Telegram-Bot-Api-Secret-Token.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(url) == "" {
		return errors.New("webhook url is required")
	}
	params := tgbotapi.Params{}
	params["url"] = url
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", AllowedUpdates); err != nil {
		return err
	}
	if _, err := c.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	c.logger.Info("webhook set", slog.String("url", url))
	return nil
}

// DeleteWebhook removes the webhook, optionally dropping pending updates.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// WebhookInfo reads the current webhook registration.
func (c *Client) WebhookInfo(ctx context.Context) (WebhookInfo, error) {
	if err := ctx.Err(); err != nil {
		return WebhookInfo{}, err
	}
	info, err := c.bot.GetWebhookInfo()
	if err != nil {
		return WebhookInfo{}, fmt.Errorf("get webhook info: %w", err)
	}
	out := WebhookInfo{
		URL:                info.URL,
		PendingUpdateCount: info.PendingUpdateCount,
		LastErrorMessage:   info.LastErrorMessage,
	}
	if info.LastErrorDate > 0 {
		out.LastErrorDate = time.Unix(int64(info.LastErrorDate), 0).UTC()
	}
	return out, nil
}

// DecodeUpdate parses a webhook request body.
func DecodeUpdate(body []byte) (tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return tgbotapi.Update{}, fmt.Errorf("decode update: %w", err)
	}
	return update, nil
}

// IsForbidden reports whether err is Telegram refusing delivery, typically because the
// user blocked the bot.
func IsForbidden(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusForbidden
	}
	return false
}

func inlineKeyboard(rows [][]templates.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	var out [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			switch {
			case b.URL != "":
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			case b.Callback != "":
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Callback))
			}
		}
		if len(buttons) > 0 {
			out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
	}
	if len(out) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...), true
}
