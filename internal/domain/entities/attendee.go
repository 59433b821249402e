package entities

import (
	"strings"
	"time"

	"eventbot/internal/domain"
)

// Attendee identifies a chat user answering an event.
type Attendee struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
}

// FullName is "First Last", trimmed.
func (a Attendee) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// DisplayName renders "@username (First Last)", dropping whichever part is empty.
func (a Attendee) DisplayName() string {
	full := a.FullName()
	switch {
	case a.Username != "" && full != "":
		return "@" + a.Username + " (" + full + ")"
	case a.Username != "":
		return "@" + a.Username
	case full != "":
		return full
	}
	return a.ID
}

// Response is one user's answer to an event.
type Response struct {
	Attendee    Attendee
	Status      domain.RSVPStatus
	RespondedAt time.Time
}
