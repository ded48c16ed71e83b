package router

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/scholarbot/internal/broadcast"
	"github.com/memohai/scholarbot/internal/config"
	"github.com/memohai/scholarbot/internal/flow"
	"github.com/memohai/scholarbot/internal/profiles"
	"github.com/memohai/scholarbot/internal/templates"
)

type sent struct {
	ChatID int64
	Msg    templates.Message
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []sent
	answered []string
	failSend error
}

func (f *fakeMessenger) Send(_ context.Context, chatID int64, msg templates.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return f.failSend
	}
	f.sent = append(f.sent, sent{ChatID: chatID, Msg: msg})
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID+":"+text)
	return nil
}

type fakeFlow struct {
	texts   []flow.TextEvent
	actions []flow.ActionEvent
	starts  []profiles.ChatMeta
	result  flow.Result
	err     error
}

func (f *fakeFlow) Start(_ context.Context, meta profiles.ChatMeta) (flow.Result, error) {
	f.starts = append(f.starts, meta)
	return flow.Result{Replies: []flow.Reply{
		{ChatID: meta.ChatID, Template: flow.TemplateWelcome},
		{ChatID: meta.ChatID, Template: flow.TemplateAskName},
	}}, nil
}

func (f *fakeFlow) FAQ(chatID int64) flow.Result {
	return flow.Result{Replies: []flow.Reply{{ChatID: chatID, Template: flow.TemplateFAQ}}}
}

func (f *fakeFlow) HandleText(_ context.Context, ev flow.TextEvent) (flow.Result, error) {
	f.texts = append(f.texts, ev)
	return f.result, f.err
}

func (f *fakeFlow) HandleAction(_ context.Context, ev flow.ActionEvent) (flow.Result, error) {
	f.actions = append(f.actions, ev)
	return f.result, f.err
}

func (f *fakeFlow) InvalidAction(chatID int64) flow.Result {
	return flow.Result{Ack: true, Replies: []flow.Reply{{ChatID: chatID, Template: flow.TemplateGenericError}}}
}

type fakeBroadcaster struct {
	operator int64
	args     []string
	report   broadcast.Report
	err      error
}

func (f *fakeBroadcaster) BankConfirmed(_ context.Context, operatorID int64, args string) (broadcast.Report, error) {
	f.operator = operatorID
	f.args = append(f.args, "ok:"+args)
	return f.report, f.err
}

func (f *fakeBroadcaster) DocsNeedFix(_ context.Context, operatorID int64, args string) (broadcast.Report, error) {
	f.operator = operatorID
	f.args = append(f.args, "fix:"+args)
	return f.report, f.err
}

type fixture struct {
	router    *Router
	flow      *fakeFlow
	broadcast *fakeBroadcaster
	messenger *fakeMessenger
	renderer  *templates.Renderer
}

func newFixture() *fixture {
	f := &fixture{
		flow:      &fakeFlow{},
		broadcast: &fakeBroadcaster{},
		messenger: &fakeMessenger{},
		renderer:  templates.NewRenderer(config.Defaults().Links),
	}
	f.router = New(nil, f.flow, f.broadcast, NewOutbox(nil, f.renderer, f.messenger))
	return f
}

func (f *fixture) render(t *testing.T, tpl flow.Template, id int64) templates.Message {
	t.Helper()
	msg, err := f.renderer.Render(tpl, id)
	require.NoError(t, err)
	return msg
}

func command(chatID int64, text string) tgbotapi.Update {
	name, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			Text:     text,
			Chat:     &tgbotapi.Chat{ID: chatID},
			From:     &tgbotapi.User{ID: chatID, UserName: "user", FirstName: "Ivan"},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
		},
	}
}

func text(chatID int64, body string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		Message: &tgbotapi.Message{
			Text: body,
			Chat: &tgbotapi.Chat{ID: chatID},
			From: &tgbotapi.User{ID: chatID, UserName: "user"},
		},
	}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 3,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: chatID},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
			Data:    data,
		},
	}
}

func TestStartCommand(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.router.Handle(context.Background(), command(10, "/start")))

	require.Len(t, f.flow.starts, 1)
	assert.Equal(t, profiles.ChatMeta{ChatID: 10, Username: "user", FirstName: "Ivan"}, f.flow.starts[0])
	require.Len(t, f.messenger.sent, 2)
	assert.Equal(t, f.render(t, flow.TemplateWelcome, 0), f.messenger.sent[0].Msg)
	assert.Equal(t, f.render(t, flow.TemplateAskName, 0), f.messenger.sent[1].Msg)
}

func TestFAQCommand(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.router.Handle(context.Background(), command(10, "/faq")))
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, f.render(t, flow.TemplateFAQ, 0), f.messenger.sent[0].Msg)
}

func TestTextGoesToFlow(t *testing.T) {
	f := newFixture()
	f.flow.result = flow.Result{Replies: []flow.Reply{{ChatID: 10, Template: flow.TemplateOffer, ProfileID: 5}}}

	require.NoError(t, f.router.Handle(context.Background(), text(10, "  Иванов Иван ")))
	require.Len(t, f.flow.texts, 1)
	assert.Equal(t, "Иванов Иван", f.flow.texts[0].Text)
	assert.Equal(t, int64(10), f.flow.texts[0].Meta.ChatID)
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, f.render(t, flow.TemplateOffer, 5), f.messenger.sent[0].Msg)
}

func TestEmptyTextIgnored(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.router.Handle(context.Background(), text(10, "   ")))
	assert.Empty(t, f.flow.texts)
	assert.Empty(t, f.messenger.sent)
}

func TestFlowErrorStillDeliversReplies(t *testing.T) {
	f := newFixture()
	f.flow.result = flow.Result{Replies: []flow.Reply{{ChatID: 10, Template: flow.TemplateTryLater}}}
	f.flow.err = errors.New("db down")

	err := f.router.Handle(context.Background(), text(10, "Иванов"))
	require.Error(t, err)
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, f.render(t, flow.TemplateTryLater, 0), f.messenger.sent[0].Msg)
}

func TestCallbackIsAlwaysAnswered(t *testing.T) {
	f := newFixture()
	f.flow.result = flow.Result{Ack: true, Replies: []flow.Reply{{ChatID: 10, Template: flow.TemplateAgreed}}}

	require.NoError(t, f.router.Handle(context.Background(), callback(10, "agree|5")))
	require.Len(t, f.flow.actions, 1)
	assert.Equal(t, flow.ActionEvent{ChatID: 10, Callback: flow.Callback{Action: flow.ActionAgree, ProfileID: 5}}, f.flow.actions[0])
	assert.Equal(t, []string{"cb-1:" + CallbackAck}, f.messenger.answered)
}

func TestMalformedCallback(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.router.Handle(context.Background(), callback(10, "agree|abc")))
	assert.Empty(t, f.flow.actions)
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, f.render(t, flow.TemplateGenericError, 0), f.messenger.sent[0].Msg)
	assert.Equal(t, []string{"cb-1:" + CallbackAck}, f.messenger.answered)
}

func TestCallbackAnsweredWhenSendFails(t *testing.T) {
	f := newFixture()
	f.flow.result = flow.Result{Ack: true, Replies: []flow.Reply{{ChatID: 10, Template: flow.TemplateDeclined}}}
	f.messenger.failSend = errors.New("network")

	err := f.router.Handle(context.Background(), callback(10, "decline|5"))
	require.Error(t, err)
	assert.Equal(t, []string{"cb-1:" + CallbackAck}, f.messenger.answered)
}

func TestBroadcastCommands(t *testing.T) {
	f := newFixture()
	f.broadcast.report = broadcast.Report{Sent: []int64{12}, NoChat: []int64{18}}

	require.NoError(t, f.router.Handle(context.Background(), command(99, "/bank_fix_row 12 18")))
	assert.Equal(t, int64(99), f.broadcast.operator)
	assert.Equal(t, []string{"fix:12 18"}, f.broadcast.args)
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, f.broadcast.report.Text(), f.messenger.sent[0].Msg.Text)

	require.NoError(t, f.router.Handle(context.Background(), command(99, "/bank_ok_row 257")))
	assert.Equal(t, "ok:257", f.broadcast.args[1])
}

func TestBroadcastErrors(t *testing.T) {
	cases := []struct {
		err  error
		cmd  string
		want flow.Template
	}{
		{broadcast.ErrForbidden, "/bank_ok_row 1", flow.TemplateForbidden},
		{broadcast.ErrNoRows, "/bank_ok_row", flow.TemplateBankOKUsage},
		{broadcast.ErrNoRows, "/bank_fix_row", flow.TemplateBankFixUsage},
		{errors.New("boom"), "/bank_fix_row 1", flow.TemplateTryLater},
	}
	for _, tc := range cases {
		f := newFixture()
		f.broadcast.err = tc.err
		require.NoError(t, f.router.Handle(context.Background(), command(7, tc.cmd)))
		require.Len(t, f.messenger.sent, 1, tc.cmd)
		assert.Equal(t, f.render(t, tc.want, 0), f.messenger.sent[0].Msg, tc.cmd)
	}
}

func TestUnknownCommandAndUpdateIgnored(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.router.Handle(context.Background(), command(7, "/help")))
	require.NoError(t, f.router.Handle(context.Background(), tgbotapi.Update{UpdateID: 9}))
	assert.Empty(t, f.messenger.sent)
	assert.Empty(t, f.flow.texts)
}
