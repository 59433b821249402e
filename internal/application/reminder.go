package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

const (
	minReminderHours = 1
	// fireTimeout bounds the store read and push of a single firing.
	fireTimeout = 30 * time.Second
)

// Reminder is an active recurring reminder, one per chat.
type Reminder struct {
	ID         string
	ChatID     string
	OwnerID    string
	EventID    uint
	EventTitle string
	Interval   time.Duration
	CreatedAt  time.Time

	stop func()
}

// ScheduleResult reports the new reminder and the one it replaced, if any.
type ScheduleResult struct {
	Reminder Reminder
	Event    *entities.Event
	Replaced *Reminder
}

// ReminderService keeps a registry of recurring reminders keyed by chat. Each
// firing re-reads the event and pushes its RSVP summary to the chat; a
// reminder whose event is gone removes itself.
type ReminderService struct {
	eventRepo output.EventRepository
	notifier  output.Notifier
	runner    output.JobRunner
	renderer  *Renderer
	now       func() time.Time

	mu   sync.Mutex
	jobs map[string]*Reminder
}

func NewReminderService(
	eventRepo output.EventRepository,
	notifier output.Notifier,
	runner output.JobRunner,
	renderer *Renderer,
) *ReminderService {
	return &ReminderService{
		eventRepo: eventRepo,
		notifier:  notifier,
		runner:    runner,
		renderer:  renderer,
		now:       time.Now,
		jobs:      map[string]*Reminder{},
	}
}

// SetNotifier swaps the outbound sink; transports call it once connected.
func (s *ReminderService) SetNotifier(n output.Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Schedule starts a reminder every hours (at least one) for the event whose
// title matches titleQuery. Only the event owner may schedule it. An active
// reminder of the same user in the chat is replaced; one owned by somebody
// else is left alone and ErrReminderActive is returned.
func (s *ReminderService) Schedule(ctx context.Context, userID, chatID, titleQuery string, hours int) (ScheduleResult, error) {
	event, err := s.resolve(ctx, titleQuery)
	if err != nil {
		return ScheduleResult{}, err
	}
	if !event.IsOwner(userID) {
		return ScheduleResult{}, domain.ErrNotOwner
	}
	if hours < minReminderHours {
		hours = minReminderHours
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, active := s.jobs[chatID]
	if active && prev.OwnerID != userID {
		return ScheduleResult{}, domain.ErrReminderActive
	}

	job := &Reminder{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		OwnerID:    userID,
		EventID:    event.ID,
		EventTitle: event.Title,
		Interval:   time.Duration(hours) * time.Hour,
		CreatedAt:  s.now(),
	}
	job.stop = s.runner.Every(job.Interval, func() { s.fire(job) })

	var replaced *Reminder
	if active {
		prev.stop()
		snapshot := prev.snapshot()
		replaced = &snapshot
	}
	s.jobs[chatID] = job

	slog.Info("reminder scheduled",
		slog.String("reminder_id", job.ID),
		slog.String("chat_id", chatID),
		slog.String("user_id", userID),
		slog.Uint64("event_id", uint64(event.ID)),
		slog.Duration("interval", job.Interval),
		slog.Bool("replaced", active),
	)
	return ScheduleResult{Reminder: job.snapshot(), Event: event, Replaced: replaced}, nil
}

// Cancel stops the reminder of chatID. Only the user who scheduled it may.
func (s *ReminderService) Cancel(_ context.Context, userID, chatID string) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[chatID]
	if !ok {
		return Reminder{}, domain.ErrNoActiveReminder
	}
	if job.OwnerID != userID {
		return Reminder{}, domain.ErrNotOwner
	}
	job.stop()
	delete(s.jobs, chatID)
	slog.Info("reminder cancelled", slog.String("reminder_id", job.ID), slog.String("chat_id", chatID))
	return job.snapshot(), nil
}

// Active lists the registered reminders ordered by creation time.
func (s *ReminderService) Active() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Reminder, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// StopAll stops every timer; used on shutdown.
func (s *ReminderService) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for chatID, job := range s.jobs {
		job.stop()
		delete(s.jobs, chatID)
	}
}

func (s *ReminderService) fire(job *Reminder) {
	// A replaced or cancelled job may still have one firing in flight.
	if !s.isActive(job) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	event, err := s.eventRepo.FindByID(ctx, job.EventID)
	if errors.Is(err, domain.ErrEventNotFound) {
		s.remove(job)
		slog.Info("reminder removed, event no longer exists",
			slog.String("reminder_id", job.ID),
			slog.Uint64("event_id", uint64(job.EventID)),
		)
		return
	}
	if err != nil {
		slog.Error("reminder: load event", slog.String("reminder_id", job.ID), slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	notifier := s.notifier
	s.mu.Unlock()
	if notifier == nil {
		slog.Warn("reminder: no notifier", slog.String("reminder_id", job.ID))
		return
	}
	if err := notifier.Notify(ctx, job.ChatID, s.renderer.Summary(event), s.renderer.Buttons(event)); err != nil {
		slog.Error("reminder: push summary",
			slog.String("reminder_id", job.ID),
			slog.String("chat_id", job.ChatID),
			slog.String("error", err.Error()),
		)
		return
	}
	slog.Debug("reminder fired", slog.String("reminder_id", job.ID), slog.String("chat_id", job.ChatID))
}

func (s *ReminderService) isActive(job *Reminder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[job.ChatID] == job
}

func (s *ReminderService) remove(job *Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobs[job.ChatID] == job {
		job.stop()
		delete(s.jobs, job.ChatID)
	}
}

// resolve picks the event a reminder refers to: an exact title match if
// there is one, otherwise the earliest event containing the query.
func (s *ReminderService) resolve(ctx context.Context, titleQuery string) (*entities.Event, error) {
	titleQuery = strings.TrimSpace(titleQuery)
	if titleQuery == "" {
		return nil, domain.ErrEventNotFound
	}
	events, err := s.eventRepo.SearchByTitle(ctx, titleQuery, "")
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	if len(events) == 0 {
		return nil, domain.ErrEventNotFound
	}
	for i := range events {
		if strings.EqualFold(events[i].Title, titleQuery) {
			return &events[i], nil
		}
	}
	return &events[0], nil
}

func (r *Reminder) snapshot() Reminder {
	c := *r
	c.stop = nil
	return c
}

// Hours is the interval in whole hours.
func (r Reminder) Hours() int {
	return int(r.Interval / time.Hour)
}
