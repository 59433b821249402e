package input

import (
	"context"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

// Reply is the rendered outcome of a use case. Err carries the domain or
// store error behind Text, nil on success.
type Reply struct {
	Text    string
	Buttons []output.Button
	Err     error
}

// EventCoordinator is what chat transports call for every user intent.
type EventCoordinator interface {
	StartDraft(ctx context.Context, user entities.Attendee) Reply
	SubmitText(ctx context.Context, userID, text string) Reply
	SkipStep(ctx context.Context, userID string) Reply
	CancelDraft(ctx context.Context, userID string) Reply
	// InDraft reports whether free text from userID belongs to the creation flow.
	InDraft(ctx context.Context, userID string) bool

	SetRSVP(ctx context.Context, eventID uint, user entities.Attendee, status domain.RSVPStatus) Reply
	// HandleAction dispatches a button payload produced by the renderer.
	HandleAction(ctx context.Context, data string, user entities.Attendee) Reply

	ScheduleReminder(ctx context.Context, user entities.Attendee, chatID, titleQuery string, hours int) Reply
	CancelReminder(ctx context.Context, userID, chatID string) Reply

	ListEventsMatching(ctx context.Context, query, userID string) ([]EventCard, error)
	MyEvents(ctx context.Context, userID string) Reply
}

// EventCard is a rendered event used by inline search results.
type EventCard struct {
	EventID  uint
	Title    string
	Subtitle string
	Text     string
	Buttons  []output.Button
}
