package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

// Timestamps are stored as unix microseconds.
type eventRow struct {
	ID          int64         `db:"id"`
	UserID      string        `db:"user_id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Location    string        `db:"location"`
	ScheduledAt sql.NullInt64 `db:"scheduled_at"`
	Draft       bool          `db:"draft"`
	CreatedAt   int64         `db:"created_at"`
	UpdatedAt   int64         `db:"updated_at"`
}

type rsvpRow struct {
	EventID     int64  `db:"event_id"`
	UserID      string `db:"user_id"`
	Username    string `db:"username"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	Status      string `db:"status"`
	RespondedAt int64  `db:"responded_at"`
}

const selectEvents = `SELECT id, user_id, title, description, location, scheduled_at, draft, created_at, updated_at FROM events`

type EventRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db, now: time.Now}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	now := r.now()
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO events (user_id, title, description, location, scheduled_at, draft, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			event.UserID, event.Title, event.Description, event.Location,
			toNullMicro(event.ScheduledAt), event.Draft, now.UnixMicro(), now.UnixMicro(),
		)
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if err := insertResponses(ctx, tx, id, event.Responses); err != nil {
			return err
		}
		event.ID = uint(id)
		event.CreatedAt = now
		event.UpdatedAt = now
		return nil
	})
}

func (r *EventRepository) Update(ctx context.Context, event *entities.Event) error {
	now := r.now()
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE events
			SET title = ?, description = ?, location = ?, scheduled_at = ?, draft = ?, updated_at = ?
			WHERE id = ?`,
			event.Title, event.Description, event.Location,
			toNullMicro(event.ScheduledAt), event.Draft, now.UnixMicro(), int64(event.ID),
		)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update event: %w", err)
		} else if n == 0 {
			return fmt.Errorf("update event %d: %w", event.ID, domain.ErrEventNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_rsvps WHERE event_id = ?`, int64(event.ID)); err != nil {
			return fmt.Errorf("clear rsvps: %w", err)
		}
		if err := insertResponses(ctx, tx, int64(event.ID), event.Responses); err != nil {
			return err
		}
		event.UpdatedAt = now
		return nil
	})
}

// SetResponse upserts a single answer; the other answers are left alone.
func (r *EventRepository) SetResponse(ctx context.Context, eventID uint, resp entities.Response) error {
	now := r.now()
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE events SET updated_at = ? WHERE id = ?`, now.UnixMicro(), int64(eventID))
		if err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		} else if n == 0 {
			return fmt.Errorf("set rsvp on event %d: %w", eventID, domain.ErrEventNotFound)
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO event_rsvps (event_id, user_id, username, first_name, last_name, status, responded_at)
			VALUES (:event_id, :user_id, :username, :first_name, :last_name, :status, :responded_at)
			ON CONFLICT (event_id, user_id) DO UPDATE SET
				username     = excluded.username,
				first_name   = excluded.first_name,
				last_name    = excluded.last_name,
				responded_at = CASE WHEN event_rsvps.status = excluded.status
				                    THEN event_rsvps.responded_at ELSE excluded.responded_at END,
				status       = excluded.status`,
			toRSVPRow(int64(eventID), resp),
		)
		if err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		}
		return nil
	})
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	events, err := r.query(ctx, selectEvents+` WHERE id = ?`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("get event %d: %w", id, domain.ErrEventNotFound)
	}
	return &events[0], nil
}

func (r *EventRepository) FindDraft(ctx context.Context, userID string) (*entities.Event, error) {
	events, err := r.query(ctx, selectEvents+` WHERE user_id = ? AND draft = 1 ORDER BY id LIMIT 1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if len(events) == 0 {
		return nil, domain.ErrNoOpenDraft
	}
	return &events[0], nil
}

func (r *EventRepository) RemoveDraft(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE user_id = ? AND draft = 1`, userID); err != nil {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}

// SearchByTitle matches case-insensitively for ASCII titles; sqlite's lower()
// leaves other letters untouched.
func (r *EventRepository) SearchByTitle(ctx context.Context, text, ownerID string) ([]entities.Event, error) {
	events, err := r.query(ctx, selectEvents+`
		WHERE draft = 0
		  AND instr(lower(title), lower(?)) > 0
		  AND (? = '' OR user_id = ?)
		ORDER BY scheduled_at IS NULL, scheduled_at, id`,
		text, ownerID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) FindByUser(ctx context.Context, userID string, onlyFuture bool) ([]entities.Event, error) {
	q := selectEvents + ` WHERE draft = 0 AND user_id = ?`
	args := []any{userID}
	if onlyFuture {
		q += ` AND scheduled_at > ?`
		args = append(args, r.now().UnixMicro())
	}
	events, err := r.query(ctx, q+` ORDER BY scheduled_at IS NULL, scheduled_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("get events by user: %w", err)
	}
	return events, nil
}

func (r *EventRepository) query(ctx context.Context, q string, args ...any) ([]entities.Event, error) {
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]entities.Event, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	index := make(map[int64]int, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		out[i] = eventToDomain(row)
		index[row.ID] = i
		ids[i] = row.ID
	}

	inQuery, inArgs, err := sqlx.In(`SELECT * FROM event_rsvps WHERE event_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build rsvp query: %w", err)
	}
	var rsvps []rsvpRow
	if err := r.db.SelectContext(ctx, &rsvps, r.db.Rebind(inQuery), inArgs...); err != nil {
		return nil, fmt.Errorf("get rsvps: %w", err)
	}
	for _, rec := range rsvps {
		out[index[rec.EventID]].Responses[rec.UserID] = rsvpToDomain(rec)
	}
	return out, nil
}

func (r *EventRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertResponses(ctx context.Context, tx *sqlx.Tx, eventID int64, responses map[string]entities.Response) error {
	if len(responses) == 0 {
		return nil
	}
	rows := make([]rsvpRow, 0, len(responses))
	for _, resp := range responses {
		rows = append(rows, toRSVPRow(eventID, resp))
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO event_rsvps (event_id, user_id, username, first_name, last_name, status, responded_at)
		VALUES (:event_id, :user_id, :username, :first_name, :last_name, :status, :responded_at)`, rows)
	if err != nil {
		return fmt.Errorf("save rsvps: %w", err)
	}
	return nil
}

func toRSVPRow(eventID int64, resp entities.Response) rsvpRow {
	return rsvpRow{
		EventID:     eventID,
		UserID:      resp.Attendee.ID,
		Username:    resp.Attendee.Username,
		FirstName:   resp.Attendee.FirstName,
		LastName:    resp.Attendee.LastName,
		Status:      string(resp.Status),
		RespondedAt: resp.RespondedAt.UnixMicro(),
	}
}

func toNullMicro(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMicro(), Valid: true}
}

func eventToDomain(r eventRow) entities.Event {
	e := entities.Event{
		ID:          uint(r.ID),
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Draft:       r.Draft,
		Responses:   map[string]entities.Response{},
		CreatedAt:   time.UnixMicro(r.CreatedAt),
		UpdatedAt:   time.UnixMicro(r.UpdatedAt),
	}
	if r.ScheduledAt.Valid {
		e.ScheduledAt = time.UnixMicro(r.ScheduledAt.Int64)
	}
	return e
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
		RespondedAt: time.UnixMicro(r.RespondedAt),
	}
}
