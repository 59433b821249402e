package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

// RSVPService records attendance answers. A user holds at most one answer
// per event, so moving between statuses cannot list them twice.
type RSVPService struct {
	eventRepo output.EventRepository
	now       func() time.Time
}

func NewRSVPService(eventRepo output.EventRepository) *RSVPService {
	return &RSVPService{eventRepo: eventRepo, now: time.Now}
}

// Register stores the answer of user on event eventID and returns the event
// as it is after the write. Only that user's answer is written, so users
// answering the same event at once do not overwrite each other. The draft
// flag is not checked.
func (s *RSVPService) Register(ctx context.Context, eventID uint, user entities.Attendee, status domain.RSVPStatus) (*entities.Event, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidRSVP
	}
	resp := entities.Response{Attendee: user, Status: status, RespondedAt: s.now()}
	if err := s.eventRepo.SetResponse(ctx, eventID, resp); err != nil {
		return nil, fmt.Errorf("save rsvp: %w", err)
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}
	slog.Info("rsvp registered",
		slog.Uint64("event_id", uint64(eventID)),
		slog.String("user_id", user.ID),
		slog.String("status", string(status)),
	)
	return event, nil
}
