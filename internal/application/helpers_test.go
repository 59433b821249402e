package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventbot/internal/domain/entities"
	"eventbot/internal/infrastructure/memory"
	"eventbot/internal/ports/output"
)

// keyT renders the key followed by its template data, so assertions can
// check both without loading catalogs.
type keyT struct{}

func (keyT) T(_, key string, data map[string]any) string {
	if len(data) == 0 {
		return key
	}
	return fmt.Sprintf("%s %v", key, data)
}

type fakeJob struct {
	interval time.Duration
	fn       func()
	stopped  bool
}

type fakeRunner struct {
	mu   sync.Mutex
	jobs []*fakeJob
}

func (r *fakeRunner) Every(interval time.Duration, fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	job := &fakeJob{interval: interval, fn: fn}
	r.jobs = append(r.jobs, job)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		job.stopped = true
	}
}

func (r *fakeRunner) last(t *testing.T) *fakeJob {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.jobs) == 0 {
		t.Fatal("no job registered")
	}
	return r.jobs[len(r.jobs)-1]
}

type sentMessage struct {
	chatID  string
	text    string
	buttons []output.Button
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *fakeNotifier) Notify(_ context.Context, chatID, text string, buttons []output.Button) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text, buttons: buttons})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

func publishEvent(t *testing.T, repo output.EventRepository, owner, title string, at time.Time) *entities.Event {
	t.Helper()
	ctx := context.Background()
	e := entities.NewDraft(owner)
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	e.Title = title
	e.ScheduledAt = at
	e.Draft = false
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return e
}

func newRepo() *memory.EventRepository {
	return memory.NewEventRepository()
}

func newDraftWith(title, description string, at time.Time) *entities.Event {
	e := entities.NewDraft("u1")
	e.Title = title
	e.Description = description
	e.ScheduledAt = at
	return e
}
