// Package broadcast implements the operator commands that push a status change to many
// applicants addressed by row id.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/memohai/scholarbot/internal/flow"
	"github.com/memohai/scholarbot/internal/profiles"
	"github.com/memohai/scholarbot/internal/telegram"
)

var (
	// ErrForbidden is returned when the caller is not on the operator allow-list.
	ErrForbidden = errors.New("insufficient rights")
	// ErrNoRows is returned when the arguments contain no row ids.
	ErrNoRows = errors.New("no rows given")
)

// SendRate caps outgoing broadcast messages per second, below the Bot API bulk limit.
const SendRate = 25

// ProfileStore is the subset of the profile store the commands use.
type ProfileStore interface {
	FindByID(ctx context.Context, id int64) (profiles.Profile, error)
	UpdateByID(ctx context.Context, id int64, patch profiles.Patch) (int64, error)
}

// Deliverer renders and sends a reply.
type Deliverer interface {
	Deliver(ctx context.Context, reply flow.Reply) error
}

// Allowlist decides who may run operator commands.
type Allowlist interface {
	Allowed(userID int64) bool
}

// Report is the per-row outcome of a command.
type Report struct {
	Sent    []int64
	NoChat  []int64
	Missing []int64
	// Blocked rows refused delivery because the applicant blocked the bot.
	Blocked []int64
	Failed  []int64
}

// Text renders the report for the operator.
func (r Report) Text() string {
	var b strings.Builder
	b.WriteString("Результат:\n")
	writeLine := func(prefix string, ids []int64) {
		if len(ids) == 0 {
			return
		}
		b.WriteString(prefix)
		b.WriteString(joinIDs(ids))
		b.WriteString("\n")
	}
	writeLine("✅ Отправлено: ", r.Sent)
	writeLine("⚠️ Нет CHAT_ID: ", r.NoChat)
	writeLine("❔ Не найдено: ", r.Missing)
	writeLine("🚫 Бот заблокирован: ", r.Blocked)
	writeLine("❌ Ошибка: ", r.Failed)
	if len(r.Sent)+len(r.NoChat)+len(r.Missing)+len(r.Blocked)+len(r.Failed) == 0 {
		b.WriteString("нет строк")
	}
	return strings.TrimRight(b.String(), "\n")
}

// command is one broadcast kind: the template sent and the patch applied afterwards.
type command struct {
	name     string
	template flow.Template
	patch    profiles.Patch
}

var (
	bankConfirmed = command{
		name:     "bank_ok_row",
		template: flow.TemplateBankConfirmed,
		patch:    profiles.Patch{Status: profiles.StatusBankConfirmed},
	}
	docsNeedFix = command{
		name:     "bank_fix_row",
		template: flow.TemplateDocsNeedFix,
		patch: profiles.Patch{
			Status:     profiles.StatusDocsNeedFix,
			LastAction: profiles.LastActionFixRequested,
		},
	}
)

// Service runs broadcast commands.
type Service struct {
	profiles  ProfileStore
	deliverer Deliverer
	operators Allowlist
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewService creates the broadcast service.
func NewService(log *slog.Logger, profileStore ProfileStore, deliverer Deliverer, operators Allowlist) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		profiles:  profileStore,
		deliverer: deliverer,
		operators: operators,
		limiter:   rate.NewLimiter(rate.Limit(SendRate), 1),
		logger:    log.With(slog.String("service", "broadcast")),
	}
}

// BankConfirmed tells each row's applicant the bank confirmed their documents.
func (s *Service) BankConfirmed(ctx context.Context, operatorID int64, args string) (Report, error) {
	return s.run(ctx, bankConfirmed, operatorID, args)
}

// DocsNeedFix tells each row's applicant their documents need changes.
func (s *Service) DocsNeedFix(ctx context.Context, operatorID int64, args string) (Report, error) {
	return s.run(ctx, docsNeedFix, operatorID, args)
}

func (s *Service) run(ctx context.Context, cmd command, operatorID int64, args string) (Report, error) {
	if s.operators == nil || !s.operators.Allowed(operatorID) {
		s.logger.Warn("operator command rejected", slog.String("command", cmd.name), slog.Int64("user_id", operatorID))
		return Report{}, ErrForbidden
	}
	rows := ParseRows(args)
	if len(rows) == 0 {
		return Report{}, ErrNoRows
	}
	var report Report
	for _, id := range rows {
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, id)
			continue
		}
		outcome, err := s.row(ctx, cmd, id)
		switch outcome {
		case outcomeSent:
			report.Sent = append(report.Sent, id)
		case outcomeNoChat:
			report.NoChat = append(report.NoChat, id)
		case outcomeMissing:
			report.Missing = append(report.Missing, id)
		case outcomeBlocked:
			report.Blocked = append(report.Blocked, id)
			s.logger.Warn("recipient blocked the bot",
				slog.String("command", cmd.name), slog.Int64("row", id), slog.Any("error", err))
		default:
			report.Failed = append(report.Failed, id)
			s.logger.Error("broadcast row failed",
				slog.String("command", cmd.name), slog.Int64("row", id), slog.Any("error", err))
		}
	}
	s.logger.Info("broadcast finished",
		slog.String("command", cmd.name),
		slog.Int64("operator_id", operatorID),
		slog.Int("sent", len(report.Sent)),
		slog.Int("no_chat", len(report.NoChat)),
		slog.Int("missing", len(report.Missing)),
		slog.Int("blocked", len(report.Blocked)),
		slog.Int("failed", len(report.Failed)))
	return report, nil
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeSent
	outcomeNoChat
	outcomeMissing
	outcomeBlocked
)

func (s *Service) row(ctx context.Context, cmd command, id int64) (outcome, error) {
	p, err := s.profiles.FindByID(ctx, id)
	if errors.Is(err, profiles.ErrProfileNotFound) {
		return outcomeMissing, nil
	}
	if err != nil {
		return outcomeFailed, fmt.Errorf("find profile: %w", err)
	}
	if !p.HasChat {
		return outcomeNoChat, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return outcomeFailed, err
	}
	if err := s.deliverer.Deliver(ctx, flow.Reply{ChatID: p.ChatID, Template: cmd.template, ProfileID: p.ID}); err != nil {
		if telegram.IsForbidden(err) {
			return outcomeBlocked, err
		}
		return outcomeFailed, fmt.Errorf("deliver: %w", err)
	}
	if _, err := s.profiles.UpdateByID(ctx, id, cmd.patch); err != nil {
		return outcomeFailed, fmt.Errorf("update status: %w", err)
	}
	return outcomeSent, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
