package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/ports/input"
)

var minHours = 1.0

var commands = []*discordgo.ApplicationCommand{
	{Name: "create", Description: "Create a new event"},
	{Name: "skip", Description: "Skip the current optional step"},
	{Name: "cancel", Description: "Cancel the event being created"},
	{Name: "events", Description: "List your upcoming events"},
	{
		Name:        "reminder",
		Description: "Remind this channel about one of your events",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "hours", Description: "Interval in hours", Required: true, MinValue: &minHours},
			{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Event title", Required: true},
		},
	},
	{Name: "stopreminder", Description: "Stop the reminder of this channel"},
}

func (h *Handler) HandleCommand(ctx context.Context, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	user := attendee(interactionUser(i.Interaction), i.Member)

	var reply input.Reply
	switch data.Name {
	case "create":
		reply = h.events.StartDraft(ctx, user)
	case "skip":
		reply = h.events.SkipStep(ctx, user.ID)
	case "cancel":
		reply = h.events.CancelDraft(ctx, user.ID)
	case "events":
		reply = h.events.MyEvents(ctx, user.ID)
	case "reminder":
		var hours int
		var title string
		for _, opt := range data.Options {
			switch opt.Name {
			case "hours":
				hours = int(opt.IntValue())
			case "title":
				title = opt.StringValue()
			}
		}
		reply = h.events.ScheduleReminder(ctx, user, i.ChannelID, title, hours)
	case "stopreminder":
		reply = h.events.CancelReminder(ctx, user.ID, i.ChannelID)
	default:
		return
	}

	// Creation prompts and errors only concern the caller.
	public := len(reply.Buttons) > 0 || data.Name == "reminder" || data.Name == "stopreminder"
	if reply.Err != nil || !public {
		respondEphemeral(h.s, i.Interaction, reply.Text)
		return
	}
	respondPublic(h.s, i.Interaction, reply)
}
