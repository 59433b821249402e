package output

import (
	"context"

	"eventbot/internal/domain/entities"
)

// EventRepository persists events and their RSVP answers. Reads always reflect
// the latest completed write.
type EventRepository interface {
	// Create stores a new event and assigns its ID.
	Create(ctx context.Context, event *entities.Event) error
	// Update overwrites a stored event, responses included. Unknown IDs fail
	// with domain.ErrEventNotFound.
	Update(ctx context.Context, event *entities.Event) error
	// SetResponse records one attendee's answer without touching the other
	// answers, so concurrent answers to one event are all kept. Answering with
	// the current status keeps the original answer time. Unknown IDs fail with
	// domain.ErrEventNotFound.
	SetResponse(ctx context.Context, eventID uint, resp entities.Response) error
	// FindByID fails with domain.ErrEventNotFound when id is unknown.
	FindByID(ctx context.Context, id uint) (*entities.Event, error)
	// FindDraft returns the open draft of userID, or domain.ErrNoOpenDraft.
	FindDraft(ctx context.Context, userID string) (*entities.Event, error)
	// RemoveDraft deletes the open draft of userID, if any.
	RemoveDraft(ctx context.Context, userID string) error
	// SearchByTitle returns finalized events whose title contains text
	// (case-insensitive). A non-empty ownerID restricts results to that owner.
	SearchByTitle(ctx context.Context, text, ownerID string) ([]entities.Event, error)
	// FindByUser returns the finalized events created by userID.
	FindByUser(ctx context.Context, userID string, onlyFuture bool) ([]entities.Event, error)
}
