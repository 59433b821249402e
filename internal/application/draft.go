package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
	"eventbot/pkg/datetime"
)

// DraftResult is the state of a creation flow after an input.
type DraftResult struct {
	Event *entities.Event
	Step  domain.DraftStep
}

// sessions tracks the current step of each user's creation flow, and which
// users are known to have no open draft.
type sessions struct {
	mu      sync.RWMutex
	steps   map[string]domain.DraftStep
	settled map[string]struct{}
}

func newSessions() *sessions {
	return &sessions{steps: map[string]domain.DraftStep{}, settled: map[string]struct{}{}}
}

// get returns the step of an open flow.
func (s *sessions) get(userID string) (domain.DraftStep, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	step, ok := s.steps[userID]
	return step, ok
}

// known is like get, but also answers StepNone for users known to have no
// draft. It reports false when the store has to be asked.
func (s *sessions) known(userID string) (domain.DraftStep, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if step, ok := s.steps[userID]; ok {
		return step, true
	}
	_, ok := s.settled[userID]
	return domain.StepNone, ok
}

func (s *sessions) set(userID string, step domain.DraftStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step.Terminal() {
		delete(s.steps, userID)
		s.settled[userID] = struct{}{}
		return
	}
	delete(s.settled, userID)
	s.steps[userID] = step
}

// DraftService builds an event from sequential user input. The store is the
// source of truth for the draft's fields; the session table remembers which
// step comes next and, once the store has been asked, whether a user has a
// draft at all. Drafts never expire.
type DraftService struct {
	eventRepo output.EventRepository
	sessions  *sessions
	loc       *time.Location
	now       func() time.Time
}

func NewDraftService(eventRepo output.EventRepository, loc *time.Location) *DraftService {
	if loc == nil {
		loc = time.Local
	}
	return &DraftService{
		eventRepo: eventRepo,
		sessions:  newSessions(),
		loc:       loc,
		now:       time.Now,
	}
}

// Start opens a new draft for userID. Any previous open draft of the user is
// discarded first, so a user never holds two.
func (s *DraftService) Start(ctx context.Context, userID string, allowed bool) (DraftResult, error) {
	if !allowed {
		return DraftResult{Step: domain.StepNone}, domain.ErrPermissionDenied
	}
	if err := s.eventRepo.RemoveDraft(ctx, userID); err != nil {
		return DraftResult{}, fmt.Errorf("discard previous draft: %w", err)
	}
	event := entities.NewDraft(userID)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		// The previous draft is gone already.
		s.sessions.set(userID, domain.StepNone)
		return DraftResult{}, fmt.Errorf("create draft: %w", err)
	}
	s.sessions.set(userID, domain.StepTitle)
	slog.Info("draft started", slog.String("user_id", userID), slog.Uint64("event_id", uint64(event.ID)))
	return DraftResult{Event: event, Step: domain.StepTitle}, nil
}

// Submit feeds text to the current step. Validation errors keep the step
// unchanged and are returned alongside the current result.
func (s *DraftService) Submit(ctx context.Context, userID, text string) (DraftResult, error) {
	event, step, err := s.load(ctx, userID)
	if err != nil {
		return DraftResult{}, err
	}
	current := DraftResult{Event: event, Step: step}
	text = strings.TrimSpace(text)

	switch step {
	case domain.StepTitle:
		if text == "" {
			return current, domain.ErrTitleRequired
		}
		event.Title = text
	case domain.StepDescription:
		event.Description = text
	case domain.StepDateTime:
		at, err := datetime.Parse(text, s.loc)
		if err != nil {
			return current, err
		}
		if !at.After(s.now()) {
			return current, domain.ErrDateTimeInPast
		}
		event.ScheduledAt = at
	case domain.StepLocation:
		event.Location = text
		event.Draft = false
	}
	return s.advance(ctx, event, step)
}

// Skip moves past an optional step (description, location) leaving the
// field as it is.
func (s *DraftService) Skip(ctx context.Context, userID string) (DraftResult, error) {
	event, step, err := s.load(ctx, userID)
	if err != nil {
		return DraftResult{}, err
	}
	if !step.Skippable() {
		return DraftResult{Event: event, Step: step}, domain.ErrStepNotSkippable
	}
	if step == domain.StepLocation {
		event.Draft = false
	}
	return s.advance(ctx, event, step)
}

// Cancel deletes the user's open draft, whatever step it is at. On a store
// failure the flow is left where it was.
func (s *DraftService) Cancel(ctx context.Context, userID string) error {
	if _, err := s.eventRepo.FindDraft(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNoOpenDraft) {
			s.sessions.set(userID, domain.StepNone)
			return domain.ErrNoOpenDraft
		}
		return fmt.Errorf("load draft: %w", err)
	}
	if err := s.eventRepo.RemoveDraft(ctx, userID); err != nil {
		return fmt.Errorf("remove draft: %w", err)
	}
	s.sessions.set(userID, domain.StepCancelled)
	slog.Info("draft cancelled", slog.String("user_id", userID))
	return nil
}

// Step returns the tracked step of userID, if a flow is in progress.
func (s *DraftService) Step(userID string) (domain.DraftStep, bool) {
	return s.sessions.get(userID)
}

// HasDraft reports whether userID has an open draft. The store is asked
// once per user, the first time after a restart; the answer is kept in the
// session table, which every flow change updates.
func (s *DraftService) HasDraft(ctx context.Context, userID string) bool {
	if step, ok := s.sessions.known(userID); ok {
		return !step.Terminal()
	}
	event, err := s.eventRepo.FindDraft(ctx, userID)
	switch {
	case err == nil:
		s.sessions.set(userID, inferStep(event))
		return true
	case errors.Is(err, domain.ErrNoOpenDraft):
		s.sessions.set(userID, domain.StepNone)
	default:
		slog.Warn("draft lookup", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
	return false
}

func (s *DraftService) load(ctx context.Context, userID string) (*entities.Event, domain.DraftStep, error) {
	event, err := s.eventRepo.FindDraft(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoOpenDraft) {
			s.sessions.set(userID, domain.StepNone)
			return nil, domain.StepNone, domain.ErrNoOpenDraft
		}
		return nil, domain.StepNone, fmt.Errorf("load draft: %w", err)
	}
	step, ok := s.sessions.get(userID)
	if !ok {
		step = inferStep(event)
		slog.Debug("draft step inferred", slog.String("user_id", userID), slog.String("step", step.String()))
	}
	return event, step, nil
}

func (s *DraftService) advance(ctx context.Context, event *entities.Event, step domain.DraftStep) (DraftResult, error) {
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return DraftResult{Event: event, Step: step}, fmt.Errorf("save draft: %w", err)
	}
	next := step.Next()
	s.sessions.set(event.UserID, next)
	if next == domain.StepComplete {
		slog.Info("event created", slog.String("user_id", event.UserID), slog.Uint64("event_id", uint64(event.ID)))
	}
	return DraftResult{Event: event, Step: next}, nil
}

// inferStep guesses the step of a stored draft when no session exists. A
// skipped description cannot be told apart from an unanswered one, so the
// description is asked again in that case.
func inferStep(e *entities.Event) domain.DraftStep {
	switch {
	case e.Title == "":
		return domain.StepTitle
	case e.ScheduledAt.IsZero() && e.Description == "":
		return domain.StepDescription
	case e.ScheduledAt.IsZero():
		return domain.StepDateTime
	}
	return domain.StepLocation
}
