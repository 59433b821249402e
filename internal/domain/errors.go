package domain

import "errors"

// Domain errors.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNoOpenDraft      = errors.New("no draft in progress")
	ErrInvalidDateTime  = errors.New("invalid date and time (expected dd/mm/yyyy HH:MM)")
	ErrDateTimeInPast   = errors.New("date and time must be in the future")
	ErrTitleRequired    = errors.New("title is required")
	ErrStepNotSkippable = errors.New("this step cannot be skipped")
	ErrEventNotFound    = errors.New("event not found")
	ErrNotOwner         = errors.New("only the event owner can perform this action")
	ErrNoActiveReminder = errors.New("no active reminder in this chat")
	ErrReminderActive   = errors.New("another user already has a reminder in this chat")
	ErrInvalidRSVP      = errors.New("unknown rsvp choice")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrPermissionDenied, "permission_denied"},
	{ErrNoOpenDraft, "no_open_draft"},
	{ErrInvalidDateTime, "datetime_invalid"},
	{ErrDateTimeInPast, "datetime_in_past"},
	{ErrTitleRequired, "title_required"},
	{ErrStepNotSkippable, "step_not_skippable"},
	{ErrEventNotFound, "event_not_found"},
	{ErrNotOwner, "not_owner"},
	{ErrNoActiveReminder, "no_active_reminder"},
	{ErrReminderActive, "reminder_active"},
	{ErrInvalidRSVP, "invalid_rsvp"},
}

// Code returns the stable code of a domain error, or "" when err does not
// wrap one. Codes are used as translation keys ("errors.<code>").
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// IsValidation reports whether err is a user-correctable input error: the
// current draft step is prompted again without advancing.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDateTime) ||
		errors.Is(err, ErrDateTimeInPast) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrStepNotSkippable)
}
