package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/infrastructure/memory"
	"eventbot/internal/infrastructure/storetest"
	"eventbot/internal/ports/output"
)

type mapKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	gets   int
	hits   int
	delErr error
}

func newMapKV() *mapKV { return &mapKV{data: map[string][]byte{}} }

func (m *mapKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	b, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	m.hits++
	return b, nil
}

func (m *mapKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mapKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(*testing.T) output.EventRepository {
		return NewEventRepository(memory.NewEventRepository(), newMapKV(), time.Minute)
	})
}

func TestDraftReadsSeeEveryWrite(t *testing.T) {
	ctx := context.Background()
	kv := newMapKV()
	repo := NewEventRepository(memory.NewEventRepository(), kv, time.Minute)

	d := entities.NewDraft("u1")
	if err := repo.Create(ctx, d); err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{"a", "b", "c"} {
		if _, err := repo.FindDraft(ctx, "u1"); err != nil {
			t.Fatal(err)
		}
		d.Title = title
		if err := repo.Update(ctx, d); err != nil {
			t.Fatal(err)
		}
		got, err := repo.FindDraft(ctx, "u1")
		if err != nil || got.Title != title {
			t.Fatalf("FindDraft after update = %+v, %v; want title %q", got, err, title)
		}
	}

	if _, err := repo.FindByID(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.RemoveDraft(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindDraft(ctx, "u1"); !errors.Is(err, domain.ErrNoOpenDraft) {
		t.Errorf("draft served from cache after removal: %v", err)
	}
	if _, err := repo.FindByID(ctx, d.ID); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("removed draft served by id: %v", err)
	}
}

func TestRepeatedReadsHitCache(t *testing.T) {
	ctx := context.Background()
	kv := newMapKV()
	repo := NewEventRepository(memory.NewEventRepository(), kv, time.Minute)
	e := entities.NewDraft("u1")
	e.SetRSVP(entities.Attendee{ID: "1", Username: "ann"}, domain.StatusConfirmed, time.Now())
	if err := repo.Create(ctx, e); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		got, err := repo.FindByID(ctx, e.ID)
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := got.StatusOf("1"); s != domain.StatusConfirmed {
			t.Fatalf("read %d lost responses: %+v", i, got.Responses)
		}
	}
	if kv.hits != 2 {
		t.Errorf("hits = %d, want 2", kv.hits)
	}
}

func TestFailedInvalidationFailsWrite(t *testing.T) {
	ctx := context.Background()
	kv := newMapKV()
	repo := NewEventRepository(memory.NewEventRepository(), kv, time.Minute)
	e := entities.NewDraft("u1")
	if err := repo.Create(ctx, e); err != nil {
		t.Fatal(err)
	}

	kv.delErr = errors.New("redis down")
	e.Title = "x"
	if err := repo.Update(ctx, e); err == nil {
		t.Error("Update succeeded although the cache kept a stale entry")
	}
}

// pausedRepo lets the first FindByID load its snapshot, then holds it until
// release is closed. Later calls pass straight through.
type pausedRepo struct {
	output.EventRepository
	calls   atomic.Int32
	loaded  chan struct{}
	release chan struct{}
}

func (r *pausedRepo) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	e, err := r.EventRepository.FindByID(ctx, id)
	if r.calls.Add(1) == 1 {
		close(r.loaded)
		<-r.release
	}
	return e, err
}

func TestSlowReadDoesNotCacheOverWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventRepository()
	e := entities.NewDraft("owner")
	if err := store.Create(ctx, e); err != nil {
		t.Fatal(err)
	}
	e.Title = "Dinner"
	e.Draft = false
	if err := store.Update(ctx, e); err != nil {
		t.Fatal(err)
	}

	slow := &pausedRepo{EventRepository: store, loaded: make(chan struct{}), release: make(chan struct{})}
	repo := NewEventRepository(slow, newMapKV(), time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := repo.FindByID(ctx, e.ID); err != nil {
			t.Errorf("slow FindByID: %v", err)
		}
	}()
	<-slow.loaded

	resp := entities.Response{Attendee: entities.Attendee{ID: "1"}, Status: domain.StatusConfirmed, RespondedAt: time.Now()}
	if err := repo.SetResponse(ctx, e.ID, resp); err != nil {
		t.Fatal(err)
	}
	close(slow.release)
	<-done

	got, err := repo.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Responses) != 1 {
		t.Errorf("cache serves %d responses, store holds 1", len(got.Responses))
	}
}

func TestSetResponseInvalidatesEntry(t *testing.T) {
	ctx := context.Background()
	kv := newMapKV()
	repo := NewEventRepository(memory.NewEventRepository(), kv, time.Minute)
	e := entities.NewDraft("owner")
	if err := repo.Create(ctx, e); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, e.ID); err != nil {
		t.Fatal(err)
	}

	resp := entities.Response{Attendee: entities.Attendee{ID: "1"}, Status: domain.StatusTentative, RespondedAt: time.Now()}
	if err := repo.SetResponse(ctx, e.ID, resp); err != nil {
		t.Fatal(err)
	}
	got, err := repo.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := got.StatusOf("1"); s != domain.StatusTentative {
		t.Errorf("status after SetResponse = %q", s)
	}
	draft, err := repo.FindDraft(ctx, "owner")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := draft.StatusOf("1"); !ok {
		t.Error("draft entry not refreshed")
	}
}
