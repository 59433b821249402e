package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/input"
	"eventbot/internal/ports/output"
)

// Policy decides whether a user may perform an action.
type Policy interface {
	Allows(userID, username string) bool
}

// Permissions groups the policies checked before each use case.
type Permissions struct {
	Create   Policy
	Reminder Policy
	// OwnerScope restricts inline search to the requester's own events.
	OwnerScope bool
}

// Coordinator implements input.EventCoordinator. Every domain error is
// translated into a user-facing reply; nothing propagates to the transport.
type Coordinator struct {
	eventRepo output.EventRepository
	drafts    *DraftService
	rsvps     *RSVPService
	reminders *ReminderService
	renderer  *Renderer
	perms     Permissions
}

var _ input.EventCoordinator = (*Coordinator)(nil)

func NewCoordinator(
	eventRepo output.EventRepository,
	drafts *DraftService,
	rsvps *RSVPService,
	reminders *ReminderService,
	renderer *Renderer,
	perms Permissions,
) *Coordinator {
	return &Coordinator{
		eventRepo: eventRepo,
		drafts:    drafts,
		rsvps:     rsvps,
		reminders: reminders,
		renderer:  renderer,
		perms:     perms,
	}
}

func (c *Coordinator) StartDraft(ctx context.Context, user entities.Attendee) input.Reply {
	allowed := allows(c.perms.Create, user)
	res, err := c.drafts.Start(ctx, user.ID, allowed)
	if err != nil {
		return c.fail(err, "start draft", user.ID)
	}
	return input.Reply{Text: c.prompt(res.Step)}
}

func (c *Coordinator) SubmitText(ctx context.Context, userID, text string) input.Reply {
	res, err := c.drafts.Submit(ctx, userID, text)
	return c.draftReply(res, err, "submit draft text", userID)
}

func (c *Coordinator) SkipStep(ctx context.Context, userID string) input.Reply {
	res, err := c.drafts.Skip(ctx, userID)
	return c.draftReply(res, err, "skip draft step", userID)
}

func (c *Coordinator) CancelDraft(ctx context.Context, userID string) input.Reply {
	if err := c.drafts.Cancel(ctx, userID); err != nil {
		return c.fail(err, "cancel draft", userID)
	}
	return input.Reply{Text: c.renderer.T("draft.cancelled", nil)}
}

func (c *Coordinator) InDraft(ctx context.Context, userID string) bool {
	return c.drafts.HasDraft(ctx, userID)
}

func (c *Coordinator) SetRSVP(ctx context.Context, eventID uint, user entities.Attendee, status domain.RSVPStatus) input.Reply {
	event, err := c.rsvps.Register(ctx, eventID, user, status)
	if err != nil {
		return c.fail(err, "register rsvp", user.ID)
	}
	return input.Reply{Text: c.renderer.Summary(event), Buttons: c.renderer.Buttons(event)}
}

func (c *Coordinator) HandleAction(ctx context.Context, data string, user entities.Attendee) input.Reply {
	eventID, status, err := ParseRSVPAction(data)
	if err != nil {
		return c.fail(err, "parse action", user.ID)
	}
	return c.SetRSVP(ctx, eventID, user, status)
}

func (c *Coordinator) ScheduleReminder(ctx context.Context, user entities.Attendee, chatID, titleQuery string, hours int) input.Reply {
	if !allows(c.perms.Reminder, user) {
		return c.fail(domain.ErrPermissionDenied, "schedule reminder", user.ID)
	}
	res, err := c.reminders.Schedule(ctx, user.ID, chatID, titleQuery, hours)
	if err != nil {
		return c.fail(err, "schedule reminder", user.ID)
	}

	text := c.renderer.T("reminder.set", map[string]any{
		"Title": res.Reminder.EventTitle,
		"Hours": res.Reminder.Hours(),
	})
	if res.Replaced != nil {
		text = c.renderer.T("reminder.replaced", map[string]any{"Title": res.Replaced.EventTitle}) + "\n" + text
	}
	return input.Reply{Text: text}
}

func (c *Coordinator) CancelReminder(ctx context.Context, userID, chatID string) input.Reply {
	job, err := c.reminders.Cancel(ctx, userID, chatID)
	if err != nil {
		return c.fail(err, "cancel reminder", userID)
	}
	return input.Reply{Text: c.renderer.T("reminder.removed", map[string]any{"Title": job.EventTitle})}
}

// ListEventsMatching backs inline search. Drafts are never listed.
func (c *Coordinator) ListEventsMatching(ctx context.Context, query, userID string) ([]input.EventCard, error) {
	owner := ""
	if c.perms.OwnerScope {
		owner = userID
	}
	events, err := c.eventRepo.SearchByTitle(ctx, strings.TrimSpace(query), owner)
	if err != nil {
		slog.Error("search events", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("search events: %w", err)
	}

	cards := make([]input.EventCard, 0, len(events))
	for i := range events {
		e := &events[i]
		subtitle := c.renderer.FormatDate(e)
		if e.Location != "" {
			subtitle += " - " + e.Location
		}
		cards = append(cards, input.EventCard{
			EventID:  e.ID,
			Title:    e.Title,
			Subtitle: subtitle,
			Text:     c.renderer.Summary(e),
			Buttons:  c.renderer.Buttons(e),
		})
	}
	return cards, nil
}

// MyEvents lists the caller's upcoming finalized events.
func (c *Coordinator) MyEvents(ctx context.Context, userID string) input.Reply {
	events, err := c.eventRepo.FindByUser(ctx, userID, true)
	if err != nil {
		return c.fail(fmt.Errorf("list events: %w", err), "my events", userID)
	}
	if len(events) == 0 {
		return input.Reply{Text: c.renderer.T("events.none", nil)}
	}

	var b strings.Builder
	b.WriteString(c.renderer.T("events.header", map[string]any{"Total": len(events)}))
	for i := range events {
		fmt.Fprintf(&b, "\n%s - %s", events[i].Title, c.renderer.FormatDate(&events[i]))
	}
	return input.Reply{Text: b.String()}
}

func (c *Coordinator) draftReply(res DraftResult, err error, op, userID string) input.Reply {
	if err != nil {
		reply := c.fail(err, op, userID)
		if domain.IsValidation(err) {
			reply.Text += "\n" + c.prompt(res.Step)
		}
		return reply
	}
	if res.Step == domain.StepComplete {
		text := c.renderer.T("draft.created", nil) + "\n\n" + c.renderer.Summary(res.Event)
		return input.Reply{Text: text, Buttons: c.renderer.Buttons(res.Event)}
	}
	return input.Reply{Text: c.prompt(res.Step)}
}

func (c *Coordinator) prompt(step domain.DraftStep) string {
	return c.renderer.T("draft.step."+step.String(), nil)
}

// fail renders err for the user. Errors without a domain code are store or
// transport failures.
func (c *Coordinator) fail(err error, op, userID string) input.Reply {
	code := domain.Code(err)
	if code == "" {
		slog.Error(op, slog.String("user_id", userID), slog.String("error", err.Error()))
		return input.Reply{Text: c.renderer.T("errors.generic", nil), Err: err}
	}
	slog.Debug(op, slog.String("user_id", userID), slog.String("code", code))
	return input.Reply{Text: c.renderer.T("errors."+code, nil), Err: err}
}

func allows(p Policy, user entities.Attendee) bool {
	if p == nil {
		return true
	}
	return p.Allows(user.ID, user.Username)
}
