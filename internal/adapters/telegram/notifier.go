package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"eventbot/internal/ports/output"
)

var _ output.Notifier = (*Notifier)(nil)

// Notifier pushes reminder summaries to Telegram chats.
type Notifier struct {
	api botAPI
}

func NewNotifier(api botAPI) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) Notify(_ context.Context, chatID, text string, buttons []output.Button) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: chat id %q: %w", chatID, err)
	}
	msg := tgbotapi.NewMessage(id, text)
	if markup := keyboard(buttons); markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send to %d: %w", id, err)
	}
	return nil
}
