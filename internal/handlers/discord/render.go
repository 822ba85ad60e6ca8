package discord

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/queue"
	rewardService "github.com/KirkDiggler/dungeon-run-discord/internal/services/reward"
	runService "github.com/KirkDiggler/dungeon-run-discord/internal/services/run"
	"github.com/bwmarrin/discordgo"
)

const (
	colorActive   = 0x3498db // Blue
	colorSuccess  = 0x2ecc71 // Green
	colorDanger   = 0xe74c3c // Red
	colorTreasure = 0xf1c40f // Gold
)

// statusEmbed turns the run view model into a Discord embed
func statusEmbed(view *runService.StatusView) *discordgo.MessageEmbed {
	var desc strings.Builder
	desc.WriteString(view.Subtitle)
	desc.WriteString("\n\n**")
	desc.WriteString(view.RoomLine)
	desc.WriteString("**")
	for _, line := range view.Detail {
		desc.WriteString("\n")
		desc.WriteString(line)
	}

	embed := &discordgo.MessageEmbed{
		Title:       view.Title,
		Description: desc.String(),
		Color:       colorActive,
		Footer: &discordgo.MessageEmbedFooter{
			Text: view.Footer,
		},
	}

	if len(view.PartyLines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Party",
			Value: strings.Join(view.PartyLines, "\n"),
		})
	}
	if len(view.BuffLines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Team Buffs",
			Value:  strings.Join(view.BuffLines, "\n"),
			Inline: true,
		})
	}

	return embed
}

// actionComponents turns action affordances into button rows. A view ID of
// the form "choice:<opt>" becomes the choice action with the option as the
// trailing custom ID segment.
func actionComponents(runID string, actions []runService.ActionView) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent

	for _, action := range actions {
		customID := fmt.Sprintf("dungeon:%s:%s", action.ID, runID)
		if opt, ok := strings.CutPrefix(action.ID, "choice:"); ok {
			customID = fmt.Sprintf("dungeon:choice:%s:%s", runID, opt)
		}

		style := discordgo.PrimaryButton
		if action.Danger {
			style = discordgo.DangerButton
		}

		row = append(row, discordgo.Button{
			Label:    action.Label,
			Style:    style,
			CustomID: customID,
			Disabled: action.Disabled,
		})
		if len(row) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}

	return rows
}

// queueEmbed renders a waiting queue
func queueEmbed(q *queue.Queue, def *dungeon.Definition) *discordgo.MessageEmbed {
	var members []string
	for _, m := range q.Members {
		members = append(members, fmt.Sprintf("• %s", m.Username))
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⚔️ Queue: %s", def.Name),
		Description: fmt.Sprintf("Waiting for adventurers (%d/%d). The run launches when the party is full.", len(q.Members), queue.MaxPartySize),
		Color:       colorActive,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Party",
				Value: strings.Join(members, "\n"),
			},
		},
	}
}

// summaryEmbed renders the end-of-run reward summary with the requeue vote
func summaryEmbed(dungeonName string, summary *rewardService.Summary, voteSeconds int) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("The party conquered **%s**! Vote below within %d seconds to run it again.", dungeonName, voteSeconds)

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Dungeon Cleared!",
		Description: desc,
		Color:       colorTreasure,
	}
	if len(summary.Lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Rewards",
			Value: strings.Join(summary.Lines, "\n"),
		})
	}

	return embed
}

// voteComponents builds the requeue/leave ballot buttons
func voteComponents(runID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Run It Again",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("dungeon:vote_requeue:%s", runID),
				},
				discordgo.Button{
					Label:    "Head Home",
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("dungeon:vote_leave:%s", runID),
				},
			},
		},
	}
}

// defeatEmbed renders a party wipe
func defeatEmbed(dungeonName string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💀 Party Wiped",
		Description: fmt.Sprintf("The dungeon **%s** claimed the whole party. No rewards this time. Queue up to try again!", dungeonName),
		Color:       colorDanger,
	}
}

// resolutionEmbed renders the settled requeue vote
func resolutionEmbed(res *rewardService.Resolution) *discordgo.MessageEmbed {
	if len(res.Requeued) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "🗳️ Vote Settled",
			Description: fmt.Sprintf("Nobody chose to run **%s** again. The party heads home.", res.DungeonName),
			Color:       colorActive,
		}
	}

	var names []string
	for _, m := range res.Requeued {
		names = append(names, m.Username)
	}

	desc := fmt.Sprintf("**%s** rejoin the queue for **%s**.", strings.Join(names, "**, **"), res.DungeonName)
	if res.ByTimeout {
		desc += " The rest timed out and head home."
	}

	return &discordgo.MessageEmbed{
		Title:       "🗳️ Vote Settled",
		Description: desc,
		Color:       colorSuccess,
	}
}
