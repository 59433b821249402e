package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"eventbot/internal/ports/output"
)

// keyboard lays buttons out on a single row; nil when there are none.
func keyboard(buttons []output.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(row)
	return &markup
}
