package datetime

import (
	"fmt"
	"strings"
	"time"

	"eventbot/internal/domain"
)

// Layout is the user-facing date/time format (dd/mm/yyyy HH:MM).
const Layout = "02/01/2006 15:04"

// Parse reads a "dd/mm/yyyy HH:MM" value in loc. Extra inner spaces between
// date and time are tolerated.
func Parse(s string, loc *time.Location) (time.Time, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, domain.ErrInvalidDateTime)
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, fields[0]+" "+fields[1], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, domain.ErrInvalidDateTime)
	}
	return t, nil
}

// Format renders t in loc, or "" for the zero time.
func Format(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(Layout)
}
