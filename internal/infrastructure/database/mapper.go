package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
)

type eventRow struct {
	ID          int64              `db:"id"`
	UserID      string             `db:"user_id"`
	Title       string             `db:"title"`
	Description string             `db:"description"`
	Location    string             `db:"location"`
	ScheduledAt pgtype.Timestamptz `db:"scheduled_at"`
	Draft       bool               `db:"draft"`
	CreatedAt   pgtype.Timestamptz `db:"created_at"`
	UpdatedAt   pgtype.Timestamptz `db:"updated_at"`
}

type rsvpRow struct {
	EventID     int64              `db:"event_id"`
	UserID      string             `db:"user_id"`
	Username    string             `db:"username"`
	FirstName   string             `db:"first_name"`
	LastName    string             `db:"last_name"`
	Status      string             `db:"status"`
	RespondedAt pgtype.Timestamptz `db:"responded_at"`
}

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

// timeToPgtype maps the zero time to NULL.
func timeToPgtype(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func eventToDomain(r eventRow) entities.Event {
	return entities.Event{
		ID:          uint(r.ID),
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		ScheduledAt: pgtypeTimestamptzToTime(r.ScheduledAt),
		Draft:       r.Draft,
		Responses:   map[string]entities.Response{},
		CreatedAt:   pgtypeTimestamptzToTime(r.CreatedAt),
		UpdatedAt:   pgtypeTimestamptzToTime(r.UpdatedAt),
	}
}

func rsvpToDomain(r rsvpRow) entities.Response {
	return entities.Response{
		Attendee: entities.Attendee{
			ID:        r.UserID,
			Username:  r.Username,
			FirstName: r.FirstName,
			LastName:  r.LastName,
		},
		Status:      domain.RSVPStatus(r.Status),
		RespondedAt: pgtypeTimestamptzToTime(r.RespondedAt),
	}
}
