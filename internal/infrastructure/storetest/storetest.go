// Package storetest holds the behaviour every output.EventRepository must
// share, run by each implementation's tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

// Run exercises repo built by newRepo; each subtest gets a fresh repository.
func Run(t *testing.T, newRepo func(t *testing.T) output.EventRepository) {
	t.Run("CreateAssignsID", func(t *testing.T) { testCreate(t, newRepo(t)) })
	t.Run("UpdateUnknown", func(t *testing.T) { testUpdateUnknown(t, newRepo(t)) })
	t.Run("DraftLifecycle", func(t *testing.T) { testDraftLifecycle(t, newRepo(t)) })
	t.Run("ResponsesRoundTrip", func(t *testing.T) { testResponses(t, newRepo(t)) })
	t.Run("SetResponse", func(t *testing.T) { testSetResponse(t, newRepo(t)) })
	t.Run("ConcurrentResponses", func(t *testing.T) { testConcurrentResponses(t, newRepo(t)) })
	t.Run("SearchByTitle", func(t *testing.T) { testSearch(t, newRepo(t)) })
	t.Run("FindByUser", func(t *testing.T) { testFindByUser(t, newRepo(t)) })
}

func publish(t *testing.T, repo output.EventRepository, owner, title string, at time.Time) *entities.Event {
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

func testCreate(t *testing.T, repo output.EventRepository) {
	ctx := context.Background()
	a := entities.NewDraft("u1")
	b := entities.NewDraft("u2")
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == 0 || b.ID == 0 || a.ID == b.ID {
		t.Fatalf("ids = %d, %d", a.ID, b.ID)
	}
	got, err := repo.FindByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.UserID != "u1" || !got.Draft {
		t.Errorf("FindByID = %+v", got)
	}
	if _, err := repo.FindByID(ctx, 9999); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("FindByID(unknown) err = %v", err)
	}
}

func testUpdateUnknown(t *testing.T, repo output.EventRepository) {
	e := entities.NewDraft("u1")
	e.ID = 4242
	if err := repo.Update(context.Background(), e); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("Update(unknown) err = %v, want ErrEventNotFound", err)
	}
}

func testDraftLifecycle(t *testing.T, repo output.EventRepository) {
	ctx := context.Background()
	if _, err := repo.FindDraft(ctx, "u1"); !errors.Is(err, domain.ErrNoOpenDraft) {
		t.Fatalf("FindDraft(none) err = %v", err)
	}

	d := entities.NewDraft("u1")
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	d.Title = "Launch Party"
	if err := repo.Update(ctx, d); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.FindDraft(ctx, "u1")
	if err != nil {
		t.Fatalf("FindDraft: %v", err)
	}
	if got.ID != d.ID || got.Title != "Launch Party" {
		t.Errorf("FindDraft = %+v", got)
	}
	if _, err := repo.FindDraft(ctx, "u2"); !errors.Is(err, domain.ErrNoOpenDraft) {
		t.Errorf("FindDraft(other user) err = %v", err)
	}

	if err := repo.RemoveDraft(ctx, "u1"); err != nil {
		t.Fatalf("RemoveDraft: %v", err)
	}
	if _, err := repo.FindDraft(ctx, "u1"); !errors.Is(err, domain.ErrNoOpenDraft) {
		t.Errorf("draft still present after RemoveDraft: %v", err)
	}
	if _, err := repo.FindByID(ctx, d.ID); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("removed draft still found by id: %v", err)
	}

	// Finalized events are not drafts and survive RemoveDraft.
	e := publish(t, repo, "u1", "Kept", time.Now().Add(time.Hour))
	if err := repo.RemoveDraft(ctx, "u1"); err != nil {
		t.Fatalf("RemoveDraft: %v", err)
	}
	if _, err := repo.FindByID(ctx, e.ID); err != nil {
		t.Errorf("finalized event removed: %v", err)
	}
}

func testResponses(t *testing.T, repo output.EventRepository) {
	ctx := context.Background()
	e := publish(t, repo, "owner", "Dinner", time.Now().Add(24*time.Hour))
	at := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	e.SetRSVP(entities.Attendee{ID: "1", Username: "alice", FirstName: "Alice"}, domain.StatusConfirmed, at)
	e.SetRSVP(entities.Attendee{ID: "2", FirstName: "Bob", LastName: "B"}, domain.StatusDeclined, at.Add(time.Minute))
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}

	e.SetRSVP(entities.Attendee{ID: "1", Username: "alice", FirstName: "Alice"}, domain.StatusTentative, at.Add(time.Hour))
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Responses) != 2 {
		t.Fatalf("responses = %+v", got.Responses)
	}
	if s, _ := got.StatusOf("1"); s != domain.StatusTentative {
		t.Errorf("status of 1 = %s", s)
	}
	if len(got.Attendees(domain.StatusConfirmed)) != 0 {
		t.Errorf("confirmed should be empty: %+v", got.Attendees(domain.StatusConfirmed))
	}
	bob := got.Responses["2"]
	if bob.Attendee.FirstName != "Bob" || bob.Attendee.LastName != "B" || !bob.RespondedAt.Equal(at.Add(time.Minute)) {
		t.Errorf("bob = %+v", bob)
	}
}

func testSetResponse(t *testing.T, repo output.EventRepository) {
	ctx := context.Background()
	e := publish(t, repo, "owner", "Dinner", time.Now().Add(24*time.Hour))
	at := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	alice := entities.Attendee{ID: "1", Username: "alice", FirstName: "Alice"}
	bob := entities.Attendee{ID: "2", FirstName: "Bob"}

	steps := []entities.Response{
		{Attendee: alice, Status: domain.StatusConfirmed, RespondedAt: at},
		{Attendee: bob, Status: domain.StatusTentative, RespondedAt: at.Add(time.Minute)},
		{Attendee: alice, Status: domain.StatusDeclined, RespondedAt: at.Add(2 * time.Minute)},
		// Same status again: the answer time stays, the name is refreshed.
		{Attendee: entities.Attendee{ID: "2", FirstName: "Robert"}, Status: domain.StatusTentative, RespondedAt: at.Add(time.Hour)},
	}
	for _, resp := range steps {
		if err := repo.SetResponse(ctx, e.ID, resp); err != nil {
			t.Fatalf("SetResponse(%s, %s): %v", resp.Attendee.ID, resp.Status, err)
		}
	}

	got, err := repo.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Responses) != 2 {
		t.Fatalf("responses = %+v", got.Responses)
	}
	a := got.Responses["1"]
	if a.Status != domain.StatusDeclined || !a.RespondedAt.Equal(at.Add(2*time.Minute)) {
		t.Errorf("alice = %+v", a)
	}
	b := got.Responses["2"]
	if b.Status != domain.StatusTentative || b.Attendee.FirstName != "Robert" || !b.RespondedAt.Equal(at.Add(time.Minute)) {
		t.Errorf("bob = %+v", b)
	}

	err = repo.SetResponse(ctx, 4242, entities.Response{Attendee: alice, Status: domain.StatusConfirmed, RespondedAt: at})
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("SetResponse(unknown) err = %v, want ErrEventNotFound", err)
	}
}

func testConcurrentResponses(t *testing.T, repo output.EventRepository) {
	ctx := context.Background()
	e := publish(t, repo, "owner", "Launch Party", time.Now().Add(time.Hour))

	const users = 20
	var wg sync.WaitGroup
	errs := make(chan error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := entities.Response{
				Attendee:    entities.Attendee{ID: fmt.Sprintf("u%d", i)},
				Status:      domain.StatusConfirmed,
				RespondedAt: time.Now(),
			}
			errs <- repo.SetResponse(ctx, e.ID, resp)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("SetResponse: %v", err)
		}
	}

	got, err := repo.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if n := len(got.Attendees(domain.StatusConfirmed)); n != users {
		t.Errorf("confirmed = %d, want %d", n, users)
	}
}

func testSearch(t *testing.T, repo output.EventRepository) {
	ctx := context.Background()
	soon := time.Now().Add(time.Hour)
	publish(t, repo, "u1", "Launch Party", soon.Add(time.Hour))
	publish(t, repo, "u2", "After party", soon)
	publish(t, repo, "u2", "Board meeting", soon)
	draft := entities.NewDraft("u1")
	draft.Title = "party draft"
	if err := repo.Create(ctx, draft); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := repo.SearchByTitle(ctx, "PARTY", "")
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if len(all) != 2 || all[0].Title != "After party" || all[1].Title != "Launch Party" {
		t.Errorf("search all = %v", titles(all))
	}

	mine, err := repo.SearchByTitle(ctx, "party", "u1")
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "Launch Party" {
		t.Errorf("search owner = %v", titles(mine))
	}

	everything, err := repo.SearchByTitle(ctx, "", "")
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if len(everything) != 3 {
		t.Errorf("empty query = %v", titles(everything))
	}
}

func testFindByUser(t *testing.T, repo output.EventRepository) {
	ctx := context.Background()
	publish(t, repo, "u1", "Past", time.Now().Add(-time.Hour))
	publish(t, repo, "u1", "Future", time.Now().Add(time.Hour))
	publish(t, repo, "u2", "Other", time.Now().Add(time.Hour))

	all, err := repo.FindByUser(ctx, "u1", false)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %v", titles(all))
	}
	future, err := repo.FindByUser(ctx, "u1", true)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(future) != 1 || future[0].Title != "Future" {
		t.Errorf("future = %v", titles(future))
	}
}

func titles(events []entities.Event) []string {
	out := make([]string, len(events))
	for i := range events {
		out[i] = events[i].Title
	}
	return out
}
