package application

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

func TestRSVPMoveBetweenStatuses(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	e := publishEvent(t, repo, "owner", "Launch Party", time.Now().Add(time.Hour))
	svc := NewRSVPService(repo)
	a := entities.Attendee{ID: "1", FirstName: "A"}

	if _, err := svc.Register(ctx, e.ID, a, domain.StatusConfirmed); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, e.ID, a, domain.StatusDeclined); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(got.Attendees(domain.StatusConfirmed)); n != 0 {
		t.Errorf("confirmed has %d users", n)
	}
	declined := got.Attendees(domain.StatusDeclined)
	if len(declined) != 1 || declined[0].ID != "1" {
		t.Errorf("declined = %+v", declined)
	}
}

func TestRSVPRepeatedChoice(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	e := publishEvent(t, repo, "owner", "Launch Party", time.Now().Add(time.Hour))
	svc := NewRSVPService(repo)
	u := entities.Attendee{ID: "1"}

	once, err := svc.Register(ctx, e.ID, u, domain.StatusTentative)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := svc.Register(ctx, e.ID, u, domain.StatusTentative)
	if err != nil {
		t.Fatal(err)
	}
	if len(twice.Responses) != 1 || !twice.Responses["1"].RespondedAt.Equal(once.Responses["1"].RespondedAt) {
		t.Errorf("responses after repeat = %+v", twice.Responses)
	}
}

func TestRSVPErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewRSVPService(newRepo())
	if _, err := svc.Register(ctx, 99, entities.Attendee{ID: "1"}, domain.StatusConfirmed); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("unknown event err = %v", err)
	}
	if _, err := svc.Register(ctx, 1, entities.Attendee{ID: "1"}, "going"); !errors.Is(err, domain.ErrInvalidRSVP) {
		t.Errorf("bad status err = %v", err)
	}
}

// rendezvousRepo holds every FindByID until n callers are inside it, so the
// registrations under test overlap.
type rendezvousRepo struct {
	output.EventRepository
	arrived sync.WaitGroup
}

func newRendezvousRepo(n int) *rendezvousRepo {
	r := &rendezvousRepo{EventRepository: newRepo()}
	r.arrived.Add(n)
	return r
}

func (r *rendezvousRepo) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	r.arrived.Done()
	r.arrived.Wait()
	return r.EventRepository.FindByID(ctx, id)
}

func TestRSVPConcurrentAnswersAreKept(t *testing.T) {
	ctx := context.Background()
	repo := newRendezvousRepo(2)
	e := publishEvent(t, repo.EventRepository, "owner", "Launch Party", time.Now().Add(time.Hour))
	svc := NewRSVPService(repo)

	users := []entities.Attendee{{ID: "1", Username: "alice"}, {ID: "2", Username: "bob"}}
	results := make([]*entities.Event, len(users))
	errs := make([]error, len(users))
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, u entities.Attendee) {
			defer wg.Done()
			results[i], errs[i] = svc.Register(ctx, e.ID, u, domain.StatusConfirmed)
		}(i, u)
	}
	wg.Wait()

	for i := range users {
		if errs[i] != nil {
			t.Fatalf("Register(%s): %v", users[i].Username, errs[i])
		}
		if n := len(results[i].Attendees(domain.StatusConfirmed)); n != 2 {
			t.Errorf("event returned to %s lists %d confirmed, want 2", users[i].Username, n)
		}
	}
	got, err := repo.EventRepository.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Responses) != 2 {
		t.Errorf("stored responses = %+v", got.Responses)
	}
}

func TestRSVPManyUsersAtOnce(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	e := publishEvent(t, repo, "owner", "Launch Party", time.Now().Add(time.Hour))
	svc := NewRSVPService(repo)
	statuses := domain.RSVPStatuses

	const users = 30
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := entities.Attendee{ID: fmt.Sprintf("u%d", i)}
			if _, err := svc.Register(ctx, e.ID, u, statuses[i%len(statuses)]); err != nil {
				t.Errorf("Register(%s): %v", u.ID, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, status := range statuses {
		total += len(got.Attendees(status))
	}
	if len(got.Responses) != users || total != users {
		t.Errorf("responses = %d, listed = %d, want %d", len(got.Responses), total, users)
	}
}
