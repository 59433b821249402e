package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

const eventColumns = `id, user_id, title, description, location, scheduled_at, draft, created_at, updated_at`

var rsvpColumns = []string{"event_id", "user_id", "username", "first_name", "last_name", "status", "responded_at"}

type EventRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool, now: time.Now}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO events (user_id, title, description, location, scheduled_at, draft)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`,
			event.UserID, event.Title, event.Description, event.Location,
			timeToPgtype(event.ScheduledAt), event.Draft,
		)
		var id int64
		var created, updated time.Time
		if err := row.Scan(&id, &created, &updated); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if err := insertResponses(ctx, tx, id, event.Responses); err != nil {
			return err
		}
		event.ID = uint(id)
		event.CreatedAt = created
		event.UpdatedAt = updated
		return nil
	})
}

// Update rewrites the event row and replaces its answers in one transaction.
func (r *EventRepository) Update(ctx context.Context, event *entities.Event) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE events
			SET title = $2, description = $3, location = $4, scheduled_at = $5, draft = $6, updated_at = now()
			WHERE id = $1
			RETURNING created_at, updated_at`,
			int64(event.ID), event.Title, event.Description, event.Location,
			timeToPgtype(event.ScheduledAt), event.Draft,
		)
		var created, updated time.Time
		if err := row.Scan(&created, &updated); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("update event %d: %w", event.ID, domain.ErrEventNotFound)
			}
			return fmt.Errorf("update event: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM event_rsvps WHERE event_id = $1`, int64(event.ID)); err != nil {
			return fmt.Errorf("clear rsvps: %w", err)
		}
		if err := insertResponses(ctx, tx, int64(event.ID), event.Responses); err != nil {
			return err
		}
		event.CreatedAt = created
		event.UpdatedAt = updated
		return nil
	})
}

// SetResponse upserts a single answer. The event row is updated first, which
// locks it for the rest of the transaction.
func (r *EventRepository) SetResponse(ctx context.Context, eventID uint, resp entities.Response) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE events SET updated_at = now() WHERE id = $1`, int64(eventID))
		if err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("set rsvp on event %d: %w", eventID, domain.ErrEventNotFound)
		}
		a := resp.Attendee
		_, err = tx.Exec(ctx, `
			INSERT INTO event_rsvps (`+strings.Join(rsvpColumns, ", ")+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (event_id, user_id) DO UPDATE SET
				username     = EXCLUDED.username,
				first_name   = EXCLUDED.first_name,
				last_name    = EXCLUDED.last_name,
				responded_at = CASE WHEN event_rsvps.status = EXCLUDED.status
				                    THEN event_rsvps.responded_at ELSE EXCLUDED.responded_at END,
				status       = EXCLUDED.status`,
			int64(eventID), a.ID, a.Username, a.FirstName, a.LastName, string(resp.Status), resp.RespondedAt,
		)
		if err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		}
		return nil
	})
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	events, err := r.query(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("get event %d: %w", id, domain.ErrEventNotFound)
	}
	return &events[0], nil
}

func (r *EventRepository) FindDraft(ctx context.Context, userID string) (*entities.Event, error) {
	events, err := r.query(ctx, `SELECT `+eventColumns+` FROM events WHERE user_id = $1 AND draft ORDER BY id LIMIT 1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if len(events) == 0 {
		return nil, domain.ErrNoOpenDraft
	}
	return &events[0], nil
}

func (r *EventRepository) RemoveDraft(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM events WHERE user_id = $1 AND draft`, userID); err != nil {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}

func (r *EventRepository) SearchByTitle(ctx context.Context, text, ownerID string) ([]entities.Event, error) {
	events, err := r.query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE NOT draft
		  AND title ILIKE '%' || $1::text || '%'
		  AND ($2::text = '' OR user_id = $2)
		ORDER BY scheduled_at NULLS LAST, id`,
		escapeLike(text), ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) FindByUser(ctx context.Context, userID string, onlyFuture bool) ([]entities.Event, error) {
	var after *time.Time
	if onlyFuture {
		now := r.now()
		after = &now
	}
	events, err := r.query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE NOT draft
		  AND user_id = $1
		  AND ($2::timestamptz IS NULL OR scheduled_at > $2)
		ORDER BY scheduled_at NULLS LAST, id`,
		userID, after,
	)
	if err != nil {
		return nil, fmt.Errorf("get events by user: %w", err)
	}
	return events, nil
}

// query loads events and attaches their answers with a second query.
func (r *EventRepository) query(ctx context.Context, sql string, args ...any) ([]entities.Event, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[eventRow])
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []entities.Event{}, nil
	}

	out := make([]entities.Event, len(records))
	index := make(map[int64]int, len(records))
	ids := make([]int64, len(records))
	for i := range records {
		out[i] = eventToDomain(records[i])
		index[records[i].ID] = i
		ids[i] = records[i].ID
	}
	if err := r.attachResponses(ctx, out, index, ids); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EventRepository) attachResponses(ctx context.Context, events []entities.Event, index map[int64]int, ids []int64) error {
	rows, err := r.pool.Query(ctx, `
		SELECT `+strings.Join(rsvpColumns, ", ")+`
		FROM event_rsvps WHERE event_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("get rsvps: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[rsvpRow])
	if err != nil {
		return fmt.Errorf("get rsvps: %w", err)
	}
	for _, rec := range records {
		e := &events[index[rec.EventID]]
		e.Responses[rec.UserID] = rsvpToDomain(rec)
	}
	return nil
}

func insertResponses(ctx context.Context, tx pgx.Tx, eventID int64, responses map[string]entities.Response) error {
	if len(responses) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(responses))
	for _, resp := range responses {
		a := resp.Attendee
		rows = append(rows, []any{eventID, a.ID, a.Username, a.FirstName, a.LastName, string(resp.Status), resp.RespondedAt})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"event_rsvps"}, rsvpColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("save rsvps: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards so the text is matched literally.
func escapeLike(text string) string {
	return likeEscaper.Replace(text)
}
