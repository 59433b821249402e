// Package memory is an in-process EventRepository for development and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	mu     sync.RWMutex
	nextID uint
	events map[uint]*entities.Event
	now    func() time.Time
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		nextID: 1,
		events: map[uint]*entities.Event{},
		now:    time.Now,
	}
}

func (r *EventRepository) Create(_ context.Context, event *entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	event.ID = r.nextID
	event.CreatedAt = now
	event.UpdatedAt = now
	r.nextID++
	r.events[event.ID] = event.Clone()
	return nil
}

func (r *EventRepository) Update(_ context.Context, event *entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.events[event.ID]
	if !ok {
		return fmt.Errorf("update event %d: %w", event.ID, domain.ErrEventNotFound)
	}
	event.CreatedAt = stored.CreatedAt
	event.UpdatedAt = r.now()
	r.events[event.ID] = event.Clone()
	return nil
}

func (r *EventRepository) SetResponse(_ context.Context, eventID uint, resp entities.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.events[eventID]
	if !ok {
		return fmt.Errorf("set rsvp on event %d: %w", eventID, domain.ErrEventNotFound)
	}
	stored.SetRSVP(resp.Attendee, resp.Status, resp.RespondedAt)
	stored.UpdatedAt = r.now()
	return nil
}

func (r *EventRepository) FindByID(_ context.Context, id uint) (*entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, fmt.Errorf("get event %d: %w", id, domain.ErrEventNotFound)
	}
	return e.Clone(), nil
}

func (r *EventRepository) FindDraft(_ context.Context, userID string) (*entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *entities.Event
	for _, e := range r.events {
		if e.Draft && e.UserID == userID && (found == nil || e.ID < found.ID) {
			found = e
		}
	}
	if found == nil {
		return nil, domain.ErrNoOpenDraft
	}
	return found.Clone(), nil
}

func (r *EventRepository) RemoveDraft(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.events {
		if e.Draft && e.UserID == userID {
			delete(r.events, id)
		}
	}
	return nil
}

func (r *EventRepository) SearchByTitle(_ context.Context, text, ownerID string) ([]entities.Event, error) {
	needle := strings.ToLower(text)
	return r.collect(func(e *entities.Event) bool {
		if ownerID != "" && e.UserID != ownerID {
			return false
		}
		return strings.Contains(strings.ToLower(e.Title), needle)
	}), nil
}

func (r *EventRepository) FindByUser(_ context.Context, userID string, onlyFuture bool) ([]entities.Event, error) {
	now := r.now()
	return r.collect(func(e *entities.Event) bool {
		return e.UserID == userID && (!onlyFuture || e.ScheduledAt.After(now))
	}), nil
}

// collect returns finalized events matching keep, ordered by date then id.
func (r *EventRepository) collect(keep func(*entities.Event) bool) []entities.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.Event, 0)
	for _, e := range r.events {
		if !e.Draft && keep(e) {
			out = append(out, *e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
