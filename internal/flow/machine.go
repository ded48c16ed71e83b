// Package flow is the conversation state machine of the application workflow.
//
// The machine reads the profile, conversation state and eligibility stores, writes field
// level profile updates, and returns the replies to deliver. It never talks to the
// messenger directly.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/scholarbot/internal/convstate"
	"github.com/memohai/scholarbot/internal/normalize"
	"github.com/memohai/scholarbot/internal/profiles"
)

// ProfileStore is the subset of the profile store the machine uses.
type ProfileStore interface {
	FindByChatID(ctx context.Context, chatID int64) (profiles.Profile, error)
	FindByName(ctx context.Context, canonical string) (profiles.Profile, error)
	CreateFromMatch(ctx context.Context, canonical string, meta profiles.ChatMeta) (profiles.Profile, error)
	TouchChatMeta(ctx context.Context, meta profiles.ChatMeta) error
	UpdateScoped(ctx context.Context, id, chatID int64, patch profiles.Patch) (int64, error)
	UpdateByChatID(ctx context.Context, chatID int64, patch profiles.Patch) (int64, error)
}

// StateStore holds the per-chat pending input.
type StateStore interface {
	Get(ctx context.Context, chatID int64) (convstate.State, bool, error)
	Set(ctx context.Context, chatID int64, st convstate.State) error
	Clear(ctx context.Context, chatID int64) error
}

// Eligibility answers whether a canonical name may apply.
type Eligibility interface {
	Contains(ctx context.Context, canonical string) (bool, error)
}

// TextEvent is an inbound free-text message.
type TextEvent struct {
	ChatID int64
	Text   string
	Meta   profiles.ChatMeta
}

// ActionEvent is an inbound button press.
type ActionEvent struct {
	ChatID   int64
	Callback Callback
}

// Machine handles conversation events.
type Machine struct {
	profiles    ProfileStore
	states      StateStore
	eligibility Eligibility
	logger      *slog.Logger
}

// NewMachine creates the state machine.
func NewMachine(log *slog.Logger, profileStore ProfileStore, states StateStore, eligibility Eligibility) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		profiles:    profileStore,
		states:      states,
		eligibility: eligibility,
		logger:      log.With(slog.String("service", "flow")),
	}
}

// Start greets a chat and asks for the full name. A linked profile gets its chat meta
// refreshed; failing to do so does not block the greeting.
func (m *Machine) Start(ctx context.Context, meta profiles.ChatMeta) (Result, error) {
	var res Result
	var err error
	if terr := m.profiles.TouchChatMeta(ctx, meta); terr != nil {
		err = fmt.Errorf("start: %w", terr)
	}
	res.reply(meta.ChatID, TemplateWelcome, 0)
	res.reply(meta.ChatID, TemplateAskName, 0)
	return res, err
}

// FAQ answers the static FAQ.
func (m *Machine) FAQ(chatID int64) Result {
	var res Result
	res.reply(chatID, TemplateFAQ, 0)
	return res
}

// HandleText processes a free-text message. A non-nil error is always accompanied by a
// result carrying the retry-later reply.
func (m *Machine) HandleText(ctx context.Context, ev TextEvent) (Result, error) {
	text := strings.TrimSpace(ev.Text)
	st, ok, err := m.states.Get(ctx, ev.ChatID)
	if err != nil {
		return m.tryLater(ev.ChatID, false, fmt.Errorf("read state: %w", err))
	}
	if ok && st.Awaiting == convstate.AwaitingEmail && st.ProfileID > 0 {
		return m.receiveEmail(ctx, ev.ChatID, st.ProfileID, text)
	}
	if normalize.LooksLikeEmail(text) {
		return m.receiveBareEmail(ctx, ev.ChatID, text)
	}
	return m.receiveName(ctx, ev, text)
}

// HandleAction processes a button press.
func (m *Machine) HandleAction(ctx context.Context, ev ActionEvent) (Result, error) {
	cb := ev.Callback
	switch cb.Action {
	case ActionFAQ:
		res := m.FAQ(ev.ChatID)
		res.Ack = true
		return res, nil
	case ActionAgree:
		return m.scoped(ctx, ev, profiles.Patch{
			Status:  profiles.StatusConsentAgreedAwaitingDocs,
			Consent: profiles.ConsentYes,
		}, TemplateAgreed, TemplateDocsSentPrompt)
	case ActionDecline:
		return m.scoped(ctx, ev, profiles.Patch{
			Status:  profiles.StatusConsentDeclined,
			Consent: profiles.ConsentNo,
		}, TemplateDeclined)
	case ActionDocsSent:
		return m.docsSent(ctx, ev)
	case ActionDocsUndo:
		return m.docsUndo(ctx, ev)
	case ActionSurveyDone:
		return m.scoped(ctx, ev, profiles.Patch{
			Status:     profiles.StatusSurveyCompleted,
			Survey:     profiles.SurveyDone,
			LastAction: profiles.LastActionSurveyCompleted,
		}, TemplateSurveyThanks, TemplateContactReminder)
	default:
		return m.InvalidAction(ev.ChatID), nil
	}
}

// InvalidAction is the reply to a button payload that failed to parse.
func (m *Machine) InvalidAction(chatID int64) Result {
	res := Result{Ack: true}
	res.reply(chatID, TemplateGenericError, 0)
	return res
}

func (m *Machine) receiveEmail(ctx context.Context, chatID, profileID int64, text string) (Result, error) {
	var res Result
	if !normalize.LooksLikeEmail(text) {
		res.reply(chatID, TemplateNotEmail, 0)
		return res, nil
	}
	n, err := m.profiles.UpdateScoped(ctx, profileID, chatID, emailPatch(text))
	if err != nil {
		return m.tryLater(chatID, false, fmt.Errorf("store email: %w", err))
	}
	if n == 0 {
		m.logger.Warn("pending email references foreign profile",
			slog.Int64("chat_id", chatID), slog.Int64("profile_id", profileID))
		res.reply(chatID, TemplateGenericError, 0)
		return res, nil
	}
	if err := m.states.Clear(ctx, chatID); err != nil {
		m.logger.Warn("clear state failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
	res.reply(chatID, TemplateDocsReceived, 0)
	res.reply(chatID, TemplateSurveyPrompt, profileID)
	return res, nil
}

// receiveBareEmail handles an email sent outside the pending-email step. Chats without a
// profile are ignored.
func (m *Machine) receiveBareEmail(ctx context.Context, chatID int64, text string) (Result, error) {
	var res Result
	p, err := m.profiles.FindByChatID(ctx, chatID)
	if errors.Is(err, profiles.ErrProfileNotFound) {
		m.logger.Info("email from chat without profile ignored", slog.Int64("chat_id", chatID))
		return res, nil
	}
	if err != nil {
		return m.tryLater(chatID, false, fmt.Errorf("find profile: %w", err))
	}
	n, err := m.profiles.UpdateByChatID(ctx, chatID, emailPatch(text))
	if err != nil {
		return m.tryLater(chatID, false, fmt.Errorf("store email: %w", err))
	}
	if n == 0 {
		return res, nil
	}
	if err := m.states.Clear(ctx, chatID); err != nil {
		m.logger.Warn("clear state failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
	res.reply(chatID, TemplateDocsReceived, 0)
	res.reply(chatID, TemplateSurveyPrompt, p.ID)
	return res, nil
}

func (m *Machine) receiveName(ctx context.Context, ev TextEvent, text string) (Result, error) {
	var res Result
	chatID := ev.ChatID
	canonical := normalize.FullName(text)
	if normalize.TooShort(canonical) {
		res.reply(chatID, TemplateNameTooShort, 0)
		return res, nil
	}
	eligible, err := m.eligibility.Contains(ctx, canonical)
	if err != nil {
		return m.tryLater(chatID, false, fmt.Errorf("check eligibility: %w", err))
	}
	if !eligible {
		res.reply(chatID, TemplateNotEligible, 0)
		return res, nil
	}
	p, err := m.findOrCreate(ctx, ev, canonical)
	if err != nil {
		return m.tryLater(chatID, false, err)
	}
	res.reply(chatID, TemplateOffer, p.ID)
	return res, nil
}

func (m *Machine) findOrCreate(ctx context.Context, ev TextEvent, canonical string) (profiles.Profile, error) {
	p, err := m.profiles.FindByChatID(ctx, ev.ChatID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, profiles.ErrProfileNotFound) {
		return profiles.Profile{}, fmt.Errorf("find profile by chat: %w", err)
	}
	p, err = m.profiles.FindByName(ctx, canonical)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, profiles.ErrProfileNotFound) {
		return profiles.Profile{}, fmt.Errorf("find profile by name: %w", err)
	}
	meta := ev.Meta
	meta.ChatID = ev.ChatID
	p, err = m.profiles.CreateFromMatch(ctx, canonical, meta)
	if err != nil {
		return profiles.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

func (m *Machine) docsSent(ctx context.Context, ev ActionEvent) (Result, error) {
	res, applied, err := m.apply(ctx, ev, profiles.Patch{
		Status:    profiles.StatusDocsSentAwaitingEmail,
		DocsEmail: profiles.DocsMarkerSent,
	})
	if err != nil || !applied {
		return res, err
	}
	st := convstate.State{Awaiting: convstate.AwaitingEmail, ProfileID: ev.Callback.ProfileID}
	if err := m.states.Set(ctx, ev.ChatID, st); err != nil {
		return m.tryLater(ev.ChatID, true, fmt.Errorf("set state: %w", err))
	}
	res.reply(ev.ChatID, TemplateAskEmail, ev.Callback.ProfileID)
	return res, nil
}

func (m *Machine) docsUndo(ctx context.Context, ev ActionEvent) (Result, error) {
	res, applied, err := m.apply(ctx, ev, profiles.Patch{
		Status:    profiles.StatusConsentAgreedAwaitingDocs,
		ClearDocs: true,
	})
	if err != nil || !applied {
		return res, err
	}
	if err := m.states.Clear(ctx, ev.ChatID); err != nil {
		m.logger.Warn("clear state failed", slog.Int64("chat_id", ev.ChatID), slog.Any("error", err))
	}
	res.reply(ev.ChatID, TemplateDocsUndone, 0)
	return res, nil
}

// scoped applies patch to the button's profile and on success replies with templates.
func (m *Machine) scoped(ctx context.Context, ev ActionEvent, patch profiles.Patch, templates ...Template) (Result, error) {
	res, applied, err := m.apply(ctx, ev, patch)
	if err != nil || !applied {
		return res, err
	}
	for _, t := range templates {
		res.reply(ev.ChatID, t, ev.Callback.ProfileID)
	}
	return res, nil
}

// apply runs a scoped update for a button event. When it returns applied=false the result
// already holds the reply to send.
func (m *Machine) apply(ctx context.Context, ev ActionEvent, patch profiles.Patch) (Result, bool, error) {
	res := Result{Ack: true}
	id := ev.Callback.ProfileID
	if id <= 0 {
		res.reply(ev.ChatID, TemplateGenericError, 0)
		return res, false, nil
	}
	n, err := m.profiles.UpdateScoped(ctx, id, ev.ChatID, patch)
	if err != nil {
		res, err := m.tryLater(ev.ChatID, true, fmt.Errorf("%s: %w", ev.Callback.Action, err))
		return res, false, err
	}
	if n == 0 {
		m.logger.Warn("button for foreign or missing profile",
			slog.String("action", string(ev.Callback.Action)),
			slog.Int64("chat_id", ev.ChatID),
			slog.Int64("profile_id", id))
		res.reply(ev.ChatID, TemplateGenericError, 0)
		return res, false, nil
	}
	return res, true, nil
}

func (m *Machine) tryLater(chatID int64, ack bool, err error) (Result, error) {
	res := Result{Ack: ack}
	res.reply(chatID, TemplateTryLater, 0)
	return res, err
}

func emailPatch(email string) profiles.Patch {
	return profiles.Patch{
		Status:    profiles.StatusDocsUnderReview,
		Email:     email,
		DocsEmail: profiles.DocsMarkerSent,
	}
}
