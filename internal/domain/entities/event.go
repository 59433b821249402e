package entities

import (
	"sort"
	"time"

	"eventbot/internal/domain"
)

// Event is a user-created event. It stays a draft until the creation flow
// reaches its last step.
type Event struct {
	ID          uint // zero until persisted
	UserID      string
	Title       string
	Description string
	Location    string
	ScheduledAt time.Time // zero = not set yet
	Draft       bool
	// Responses holds at most one answer per user, keyed by Attendee.ID.
	Responses map[string]Response
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDraft returns an empty draft owned by userID.
func NewDraft(userID string) *Event {
	return &Event{
		UserID:    userID,
		Draft:     true,
		Responses: map[string]Response{},
	}
}

// IsOwner reports whether userID created the event.
func (e *Event) IsOwner(userID string) bool {
	return e.UserID == userID
}

// SetRSVP records the answer of user, replacing any previous one. Answering
// with the current status again leaves the event untouched.
func (e *Event) SetRSVP(user Attendee, status domain.RSVPStatus, at time.Time) {
	if e.Responses == nil {
		e.Responses = map[string]Response{}
	}
	if prev, ok := e.Responses[user.ID]; ok && prev.Status == status {
		prev.Attendee = user
		e.Responses[user.ID] = prev
		return
	}
	e.Responses[user.ID] = Response{Attendee: user, Status: status, RespondedAt: at}
}

// StatusOf returns the answer of userID, if any.
func (e *Event) StatusOf(userID string) (domain.RSVPStatus, bool) {
	r, ok := e.Responses[userID]
	return r.Status, ok
}

// Attendees returns the users that answered with status, oldest answer first.
func (e *Event) Attendees(status domain.RSVPStatus) []Attendee {
	rs := make([]Response, 0, len(e.Responses))
	for _, r := range e.Responses {
		if r.Status == status {
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].RespondedAt.Equal(rs[j].RespondedAt) {
			return rs[i].RespondedAt.Before(rs[j].RespondedAt)
		}
		return rs[i].Attendee.ID < rs[j].Attendee.ID
	})
	out := make([]Attendee, len(rs))
	for i := range rs {
		out[i] = rs[i].Attendee
	}
	return out
}

// Clone returns a deep copy, so stores never share the response map with callers.
func (e *Event) Clone() *Event {
	c := *e
	c.Responses = make(map[string]Response, len(e.Responses))
	for k, v := range e.Responses {
		c.Responses[k] = v
	}
	return &c
}
