package discord

import (
	"github.com/bwmarrin/discordgo"

	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/input"
)

// Nick > GlobalName > Username
func resolveDisplayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// interactionUser is the member's user in guilds, the plain user in DMs.
func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func attendee(u *discordgo.User, member *discordgo.Member) entities.Attendee {
	return entities.Attendee{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: resolveDisplayName(member, u),
	}
}

func respondEphemeral(s session, i *discordgo.Interaction, content string) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondPublic(s session, i *discordgo.Interaction, reply input.Reply) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    reply.Text,
			Components: buildComponents(reply.Buttons),
		},
	})
}
