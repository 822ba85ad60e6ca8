package discord

import (
	"fmt"

	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
	"github.com/bwmarrin/discordgo"
)

// respondEphemeral sends a private text reply to the interaction
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondError maps a service error onto a player-facing ephemeral message.
// Player mistakes get a friendly phrasing; everything else surfaces as a
// generic failure so internals stay out of chat.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	return respondEphemeral(s, i, errorMessage(err))
}

func errorMessage(err error) string {
	switch dungerr.GetCode(err) {
	case dungerr.CodeIneligiblePlayer:
		return fmt.Sprintf("❌ You can't enter that dungeon: %s", err.Error())
	case dungerr.CodeAlreadyQueued:
		return "❌ You're already in a queue! Use `/dungeon leave` first."
	case dungerr.CodeQueueFull:
		return "❌ That queue just filled up. Try again in a moment."
	case dungerr.CodeNotQueued:
		return "❌ You're not in a queue right now."
	case dungerr.CodeWrongRoomType:
		return "❌ You can't do that in this room."
	case dungerr.CodePlayerIncapacitated:
		return "💀 You're down! Your party must finish this room without you."
	case dungerr.CodeActionCooldown:
		return "⏳ Too fast! Give it a second."
	case dungerr.CodeInsufficientMana:
		return "🔵 Not enough mana for that ability."
	case dungerr.CodeTooManyAttempts:
		return fmt.Sprintf("🧩 %s", err.Error())
	case dungerr.CodeAlreadyClaimed:
		return "❌ That chest has already been claimed."
	case dungerr.CodeAlreadyChosen:
		return "❌ The party already made its choice here."
	case dungerr.CodeNoChoiceRequired:
		return "❌ There's nothing to choose here."
	case dungerr.CodeNotFound:
		return fmt.Sprintf("❌ %s", err.Error())
	case dungerr.CodeInvalidArgument:
		return fmt.Sprintf("❌ %s", err.Error())
	default:
		return "❌ Something went wrong. Please try again."
	}
}
