package domain

import "strings"

// RSVPStatus is the answer a user gave to an event invitation.
type RSVPStatus string

const (
	StatusConfirmed RSVPStatus = "confirmed"
	StatusDeclined  RSVPStatus = "declined"
	StatusTentative RSVPStatus = "tentative"
)

// RSVPStatuses lists the statuses in display order.
var RSVPStatuses = []RSVPStatus{StatusConfirmed, StatusDeclined, StatusTentative}

// Valid reports whether s is one of the known statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusDeclined, StatusTentative:
		return true
	}
	return false
}

// ParseRSVPStatus accepts the canonical names as well as the yes/no/maybe
// aliases used by older inline keyboards.
func ParseRSVPStatus(v string) (RSVPStatus, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "confirmed", "yes":
		return StatusConfirmed, nil
	case "declined", "no":
		return StatusDeclined, nil
	case "tentative", "maybe":
		return StatusTentative, nil
	}
	return "", ErrInvalidRSVP
}
