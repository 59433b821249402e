package application

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
	"eventbot/pkg/datetime"
)

const rsvpActionPrefix = "rsvp"

// Renderer turns events into localized plain text and RSVP buttons.
type Renderer struct {
	translator output.T
	locale     string
	loc        *time.Location
}

func NewRenderer(translator output.T, locale string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{translator: translator, locale: locale, loc: loc}
}

// T translates key in the configured locale.
func (r *Renderer) T(key string, data map[string]any) string {
	return r.translator.T(r.locale, key, data)
}

// Location is the zone dates are parsed and shown in.
func (r *Renderer) Location() *time.Location {
	return r.loc
}

// FormatDate renders the event date, or a placeholder while unset.
func (r *Renderer) FormatDate(e *entities.Event) string {
	if e.ScheduledAt.IsZero() {
		return r.T("event.no_date", nil)
	}
	return datetime.Format(e.ScheduledAt, r.loc)
}

// Summary is the RSVP summary pushed by reminders and shown under buttons.
func (r *Renderer) Summary(e *entities.Event) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s - %s\n", e.Title, r.FormatDate(e)))
	if e.Description != "" {
		b.WriteString(e.Description + "\n")
	}
	if e.Location != "" {
		b.WriteString(r.T("event.location", map[string]any{"Location": e.Location}) + "\n")
	}
	b.WriteString("\n")

	for _, status := range domain.RSVPStatuses {
		users := e.Attendees(status)
		if len(users) == 0 {
			continue
		}
		b.WriteString(r.T("rsvp.header."+string(status), map[string]any{"Total": len(users)}) + "\n")
		for _, u := range users {
			b.WriteString(u.DisplayName() + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Buttons returns the join / not go / maybe buttons of an event.
func (r *Renderer) Buttons(e *entities.Event) []output.Button {
	return []output.Button{
		{Label: r.T("ui.rsvp.confirmed", nil), Data: RSVPAction(e.ID, domain.StatusConfirmed)},
		{Label: r.T("ui.rsvp.declined", nil), Data: RSVPAction(e.ID, domain.StatusDeclined)},
		{Label: r.T("ui.rsvp.tentative", nil), Data: RSVPAction(e.ID, domain.StatusTentative)},
	}
}

// RSVPAction encodes a button payload: "rsvp:<status>:<event id>".
func RSVPAction(eventID uint, status domain.RSVPStatus) string {
	return fmt.Sprintf("%s:%s:%d", rsvpActionPrefix, status, eventID)
}

// ParseRSVPAction decodes RSVPAction payloads as well as the legacy
// "<yes|no|maybe>_<event id>" form.
func ParseRSVPAction(data string) (uint, domain.RSVPStatus, error) {
	var choice, id string
	if parts := strings.Split(data, ":"); len(parts) == 3 && parts[0] == rsvpActionPrefix {
		choice, id = parts[1], parts[2]
	} else if parts := strings.SplitN(data, "_", 2); len(parts) == 2 {
		choice, id = parts[0], parts[1]
	} else {
		return 0, "", fmt.Errorf("action %q: %w", data, domain.ErrInvalidRSVP)
	}
	status, err := domain.ParseRSVPStatus(choice)
	if err != nil {
		return 0, "", fmt.Errorf("action %q: %w", data, err)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, "", fmt.Errorf("action %q: %w", data, domain.ErrEventNotFound)
	}
	return uint(n), status, nil
}
