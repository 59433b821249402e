package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/input"
)

// Translate renders a catalog message in the bot's locale.
type Translate func(key string, data map[string]any) string

// botAPI is the part of tgbotapi.BotAPI the handler uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	AnswerCallbackQuery(config tgbotapi.CallbackConfig) (tgbotapi.APIResponse, error)
	AnswerInlineQuery(config tgbotapi.InlineConfig) (tgbotapi.APIResponse, error)
}

// Handler maps Telegram updates to coordinator calls.
type Handler struct {
	api     botAPI
	events  input.EventCoordinator
	t       Translate
	botName string
}

func NewHandler(api botAPI, events input.EventCoordinator, t Translate, botName string) *Handler {
	return &Handler{api: api, events: events, t: t, botName: botName}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.InlineQuery != nil:
		h.handleInlineQuery(ctx, update.InlineQuery)
	case update.Message != nil && update.Message.From != nil:
		if update.Message.IsCommand() {
			h.handleCommand(ctx, update.Message)
			return
		}
		h.handleText(ctx, update.Message)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := userKey(msg.From)
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	var reply input.Reply
	switch msg.Command() {
	case "start", "help":
		reply.Text = h.t("bot.help", map[string]any{"Bot": h.botName})
	case "create", "new":
		reply = h.events.StartDraft(ctx, attendee(msg.From))
	case "skip":
		reply = h.events.SkipStep(ctx, userID)
	case "cancel":
		reply = h.events.CancelDraft(ctx, userID)
	case "events":
		reply = h.events.MyEvents(ctx, userID)
	case "reminder":
		hours, title, ok := parseReminderArgs(msg.CommandArguments())
		if !ok {
			reply.Text = h.t("reminder.usage", nil)
			break
		}
		reply = h.events.ScheduleReminder(ctx, attendee(msg.From), chatID, title, hours)
	case "stopreminder":
		reply = h.events.CancelReminder(ctx, userID, chatID)
	default:
		return
	}
	h.send(msg.Chat.ID, reply)
}

// handleText feeds free text to the creation flow of its author; any other
// chatter is ignored.
func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	userID := userKey(msg.From)
	if msg.Text == "" || !h.events.InDraft(ctx, userID) {
		return
	}
	h.send(msg.Chat.ID, h.events.SubmitText(ctx, userID, msg.Text))
}

func (h *Handler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil {
		return
	}
	reply := h.events.HandleAction(ctx, cq.Data, attendee(cq.From))

	toast := h.t("rsvp.saved", nil)
	if reply.Err != nil {
		toast = reply.Text
	}
	if _, err := h.api.AnswerCallbackQuery(tgbotapi.NewCallback(cq.ID, toast)); err != nil {
		slog.Warn("telegram: answer callback", slog.String("error", err.Error()))
	}
	if reply.Err != nil {
		return
	}

	markup := keyboard(reply.Buttons)
	var edit tgbotapi.EditMessageTextConfig
	switch {
	case cq.InlineMessageID != "":
		edit = tgbotapi.EditMessageTextConfig{
			BaseEdit: tgbotapi.BaseEdit{InlineMessageID: cq.InlineMessageID, ReplyMarkup: markup},
			Text:     reply.Text,
		}
	case cq.Message != nil:
		edit = tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, reply.Text)
		edit.ReplyMarkup = markup
	default:
		return
	}
	if _, err := h.api.Send(edit); err != nil {
		slog.Warn("telegram: edit summary", slog.String("error", err.Error()))
	}
}

func (h *Handler) handleInlineQuery(ctx context.Context, q *tgbotapi.InlineQuery) {
	if q.From == nil {
		return
	}
	cards, err := h.events.ListEventsMatching(ctx, q.Query, userKey(q.From))
	if err != nil {
		cards = nil
	}

	results := make([]interface{}, 0, len(cards))
	for _, card := range cards {
		article := tgbotapi.NewInlineQueryResultArticle(strconv.FormatUint(uint64(card.EventID), 10), card.Title, card.Text)
		article.Description = card.Subtitle
		article.ReplyMarkup = keyboard(card.Buttons)
		results = append(results, article)
	}

	_, err = h.api.AnswerInlineQuery(tgbotapi.InlineConfig{
		InlineQueryID:     q.ID,
		Results:           results,
		IsPersonal:        true,
		SwitchPMText:      h.t("inline.create", nil),
		SwitchPMParameter: "create",
	})
	if err != nil {
		slog.Warn("telegram: answer inline query", slog.String("error", err.Error()))
	}
}

func (h *Handler) send(chatID int64, reply input.Reply) {
	if reply.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if markup := keyboard(reply.Buttons); markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := h.api.Send(msg); err != nil {
		slog.Error("telegram: send", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

// parseReminderArgs splits "<hours> <title>".
func parseReminderArgs(args string) (int, string, bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return 0, "", false
	}
	hours, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", false
	}
	return hours, strings.Join(fields[1:], " "), true
}

func userKey(u *tgbotapi.User) string {
	return strconv.Itoa(u.ID)
}

func attendee(u *tgbotapi.User) entities.Attendee {
	return entities.Attendee{
		ID:        userKey(u),
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
