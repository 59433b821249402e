package output

import "context"

// Button is a transport-neutral inline button. Data is echoed back by the
// transport when the button is pressed.
type Button struct {
	Label string
	Data  string
}

// Notifier pushes a message to a chat outside of any user interaction.
type Notifier interface {
	Notify(ctx context.Context, chatID, text string, buttons []Button) error
}
