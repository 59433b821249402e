package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/ports/output"
)

// HandleButton applies an RSVP button press and refreshes the summary in
// place.
func (h *Handler) HandleButton(ctx context.Context, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	reply := h.events.HandleAction(ctx, data.CustomID, attendee(interactionUser(i.Interaction), i.Member))
	if reply.Err != nil {
		respondEphemeral(h.s, i.Interaction, reply.Text)
		return
	}
	components := buildComponents(reply.Buttons)
	_ = h.s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    reply.Text,
			Components: components,
		},
	})
}

const buttonsPerRow = 5

func buildComponents(buttons []output.Button) []discordgo.MessageComponent {
	styles := []discordgo.ButtonStyle{discordgo.SuccessButton, discordgo.DangerButton, discordgo.SecondaryButton}
	var row []discordgo.MessageComponent
	for n, b := range buttons {
		row = append(row, discordgo.Button{Label: b.Label, Style: styles[n%len(styles)], CustomID: b.Data})
	}
	var components []discordgo.MessageComponent
	for i := 0; i < len(row); i += buttonsPerRow {
		end := min(i+buttonsPerRow, len(row))
		components = append(components, discordgo.ActionsRow{Components: row[i:end]})
	}
	return components
}
