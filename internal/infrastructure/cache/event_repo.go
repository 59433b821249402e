// Package cache puts a read-through cache in front of an EventRepository.
// Single-event reads are cached; list queries always hit the store. Every
// write invalidates the affected keys before it returns, and a read that
// loaded from the store before such an invalidation never fills the cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

// ErrMiss is returned by KV.Get for absent keys.
var ErrMiss = errors.New("cache miss")

// KV is the key/value backend of the cache.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

const keyPrefix = "eventbot:"

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	next output.EventRepository
	kv   KV
	ttl  time.Duration

	// fillMu orders cache fills against invalidations; gen counts
	// invalidations.
	fillMu sync.Mutex
	gen    uint64
}

func NewEventRepository(next output.EventRepository, kv KV, ttl time.Duration) *EventRepository {
	return &EventRepository{next: next, kv: kv, ttl: ttl}
}

func eventKey(id uint) string { return keyPrefix + "event:" + strconv.FormatUint(uint64(id), 10) }
func draftKey(userID string) string { return keyPrefix + "draft:" + userID }

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	if err := r.next.Create(ctx, event); err != nil {
		return err
	}
	return r.invalidate(ctx, eventKey(event.ID), draftKey(event.UserID))
}

func (r *EventRepository) Update(ctx context.Context, event *entities.Event) error {
	if err := r.next.Update(ctx, event); err != nil {
		return err
	}
	return r.invalidate(ctx, eventKey(event.ID), draftKey(event.UserID))
}

// SetResponse drops the event and its owner's draft entry; the owner is
// looked up first since it never changes.
func (r *EventRepository) SetResponse(ctx context.Context, eventID uint, resp entities.Response) error {
	event, err := r.next.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := r.next.SetResponse(ctx, eventID, resp); err != nil {
		return err
	}
	return r.invalidate(ctx, eventKey(eventID), draftKey(event.UserID))
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	return r.cached(ctx, eventKey(id), func() (*entities.Event, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *EventRepository) FindDraft(ctx context.Context, userID string) (*entities.Event, error) {
	return r.cached(ctx, draftKey(userID), func() (*entities.Event, error) {
		return r.next.FindDraft(ctx, userID)
	})
}

// RemoveDraft also drops the by-id entry of the removed draft.
func (r *EventRepository) RemoveDraft(ctx context.Context, userID string) error {
	keys := []string{draftKey(userID)}
	if draft, err := r.next.FindDraft(ctx, userID); err == nil {
		keys = append(keys, eventKey(draft.ID))
	}
	if err := r.next.RemoveDraft(ctx, userID); err != nil {
		return err
	}
	return r.invalidate(ctx, keys...)
}

func (r *EventRepository) SearchByTitle(ctx context.Context, text, ownerID string) ([]entities.Event, error) {
	return r.next.SearchByTitle(ctx, text, ownerID)
}

func (r *EventRepository) FindByUser(ctx context.Context, userID string, onlyFuture bool) ([]entities.Event, error) {
	return r.next.FindByUser(ctx, userID, onlyFuture)
}

// cached serves key from the KV, falling back to load. An unavailable cache
// degrades to direct store reads.
func (r *EventRepository) cached(ctx context.Context, key string, load func() (*entities.Event, error)) (*entities.Event, error) {
	b, err := r.kv.Get(ctx, key)
	switch {
	case err == nil:
		var e entities.Event
		if err := json.Unmarshal(b, &e); err == nil {
			if e.Responses == nil {
				e.Responses = map[string]entities.Response{}
			}
			return &e, nil
		}
		slog.Warn("cache: corrupt entry", slog.String("key", key))
	case !errors.Is(err, ErrMiss):
		slog.Warn("cache: get", slog.String("key", key), slog.String("error", err.Error()))
	}

	gen := r.generation()
	e, err := load()
	if err != nil {
		return nil, err
	}
	r.fill(ctx, key, e, gen)
	return e, nil
}

func (r *EventRepository) generation() uint64 {
	r.fillMu.Lock()
	defer r.fillMu.Unlock()
	return r.gen
}

// fill stores e unless a write was invalidated since gen was read: e may
// then predate that write.
func (r *EventRepository) fill(ctx context.Context, key string, e *entities.Event, gen uint64) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	r.fillMu.Lock()
	defer r.fillMu.Unlock()
	if r.gen != gen {
		slog.Debug("cache: skip fill after concurrent write", slog.String("key", key))
		return
	}
	if err := r.kv.Set(ctx, key, b, r.ttl); err != nil {
		slog.Warn("cache: set", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// invalidate fails the write when keys cannot be dropped, since the next
// read would otherwise see the previous state.
func (r *EventRepository) invalidate(ctx context.Context, keys ...string) error {
	r.fillMu.Lock()
	defer r.fillMu.Unlock()
	r.gen++
	if err := r.kv.Del(ctx, keys...); err != nil {
		slog.Error("cache: invalidate", slog.Any("keys", keys), slog.String("error", err.Error()))
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}
