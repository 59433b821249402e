package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"eventbot/internal/application"
	"eventbot/internal/infrastructure/memory"
	"eventbot/internal/ports/output"
)

type keyT struct{}

func (keyT) T(_, key string, data map[string]any) string {
	if len(data) == 0 {
		return key
	}
	return fmt.Sprintf("%s %v", key, data)
}

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	callbacks []tgbotapi.CallbackConfig
	inline    []tgbotapi.InlineConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) AnswerCallbackQuery(c tgbotapi.CallbackConfig) (tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, c)
	return tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) AnswerInlineQuery(c tgbotapi.InlineConfig) (tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inline = append(f.inline, c)
	return tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("nothing sent")
	}
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	}
	t.Fatalf("unexpected chattable %T", f.sent[len(f.sent)-1])
	return ""
}

type noRunner struct{}

func (noRunner) Every(time.Duration, func()) func() { return func() {} }

func newHandler(repo output.EventRepository) (*Handler, *fakeAPI) {
	renderer := application.NewRenderer(keyT{}, "en", time.UTC)
	coordinator := application.NewCoordinator(
		repo,
		application.NewDraftService(repo, time.UTC),
		application.NewRSVPService(repo),
		application.NewReminderService(repo, nil, noRunner{}, renderer),
		renderer,
		application.Permissions{},
	)
	api := &fakeAPI{}
	return NewHandler(api, coordinator, renderer.T, "eventbot"), api
}

var alice = &tgbotapi.User{ID: 11, UserName: "alice", FirstName: "Alice"}

func command(text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     alice,
		Chat:     &tgbotapi.Chat{ID: 500},
		Text:     text,
		Entities: &[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func text(s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{From: alice, Chat: &tgbotapi.Chat{ID: 500}, Text: s}}
}

func TestConversation(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewEventRepository()
	h, api := newHandler(repo)

	steps := []struct {
		update tgbotapi.Update
		want   string
	}{
		{command("/create"), "draft.step.title"},
		{text("Launch Party"), "draft.step.description"},
		{command("/skip"), "draft.step.datetime"},
		{text("31/12/2999 23:59"), "draft.step.location"},
		{text("Rooftop"), "draft.created"},
	}
	for _, s := range steps {
		h.HandleUpdate(ctx, s.update)
		if got := api.lastText(t); !strings.HasPrefix(got, s.want) {
			t.Fatalf("after %q got %q, want prefix %q", s.update.Message.Text, got, s.want)
		}
	}

	sent := len(api.sent)
	h.HandleUpdate(ctx, text("just chatting"))
	if len(api.sent) != sent {
		t.Error("replied to text outside a draft")
	}

	h.HandleUpdate(ctx, command("/reminder 2 launch party"))
	if got := api.lastText(t); got != "reminder.set map[Hours:2 Title:Launch Party]" {
		t.Errorf("reminder reply = %q", got)
	}
	h.HandleUpdate(ctx, command("/reminder soon"))
	if got := api.lastText(t); got != "reminder.usage" {
		t.Errorf("bad reminder args reply = %q", got)
	}
}

func TestCallbackEditsSummary(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewEventRepository()
	h, api := newHandler(repo)
	for _, u := range []tgbotapi.Update{command("/create"), text("Launch Party"), command("/skip"), text("31/12/2999 23:59"), command("/skip")} {
		h.HandleUpdate(ctx, u)
	}

	h.HandleUpdate(ctx, tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:              "cb1",
		From:            &tgbotapi.User{ID: 22, UserName: "bob"},
		InlineMessageID: "inline-1",
		Data:            application.RSVPAction(1, "confirmed"),
	}})

	if len(api.callbacks) != 1 || api.callbacks[0].Text != "rsvp.saved" {
		t.Fatalf("callbacks = %+v", api.callbacks)
	}
	edit, ok := api.sent[len(api.sent)-1].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("last sent = %T", api.sent[len(api.sent)-1])
	}
	if edit.InlineMessageID != "inline-1" || !strings.Contains(edit.Text, "@bob") || edit.ReplyMarkup == nil {
		t.Errorf("edit = %+v", edit)
	}

	h.HandleUpdate(ctx, tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb2", From: &tgbotapi.User{ID: 22}, Data: "rsvp:confirmed:999",
	}})
	if got := api.callbacks[1].Text; got != "errors.event_not_found" {
		t.Errorf("unknown event toast = %q", got)
	}
}

func TestInlineQuery(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewEventRepository()
	h, api := newHandler(repo)
	for _, u := range []tgbotapi.Update{command("/create"), text("Launch Party"), command("/skip"), text("31/12/2999 23:59"), command("/skip")} {
		h.HandleUpdate(ctx, u)
	}
	h.HandleUpdate(ctx, command("/create"))
	h.HandleUpdate(ctx, text("Launch draft"))

	h.HandleUpdate(ctx, tgbotapi.Update{InlineQuery: &tgbotapi.InlineQuery{ID: "q1", From: alice, Query: "launch"}})
	if len(api.inline) != 1 {
		t.Fatalf("inline answers = %d", len(api.inline))
	}
	results := api.inline[0].Results
	if len(results) != 1 {
		t.Fatalf("results = %d, want only the finalized event", len(results))
	}
	article := results[0].(tgbotapi.InlineQueryResultArticle)
	if article.Title != "Launch Party" || article.ReplyMarkup == nil || len(article.ReplyMarkup.InlineKeyboard[0]) != 3 {
		t.Errorf("article = %+v", article)
	}
}

func TestParseReminderArgs(t *testing.T) {
	tests := []struct {
		in    string
		hours int
		title string
		ok    bool
	}{
		{"2 Launch Party", 2, "Launch Party", true},
		{"  0   Dinner ", 0, "Dinner", true},
		{"Dinner", 0, "", false},
		{"two Dinner", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		hours, title, ok := parseReminderArgs(tt.in)
		if hours != tt.hours || title != tt.title || ok != tt.ok {
			t.Errorf("parseReminderArgs(%q) = %d, %q, %v", tt.in, hours, title, ok)
		}
	}
}
