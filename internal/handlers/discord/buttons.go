package discord

import (
	"context"
	"fmt"
	"log"

	actionService "github.com/KirkDiggler/dungeon-run-discord/internal/services/action"
	rewardService "github.com/KirkDiggler/dungeon-run-discord/internal/services/reward"
	"github.com/bwmarrin/discordgo"
)

// handleRunButton dispatches a run button press. Navigation and voting go to
// the run and reward services; room actions go to the action resolver.
func (h *Handler) handleRunButton(s *discordgo.Session, i *discordgo.InteractionCreate, action, runID, argument string) error {
	userID, _ := interactionUserID(i)
	if userID == "" {
		return respondEphemeral(s, i, "❌ Could not identify you. Try again.")
	}

	switch action {
	case "advance", "complete":
		return h.handleAdvance(s, i, runID, userID)
	case "leave":
		return h.handleRunLeave(s, i, runID, userID)
	case "solve":
		return h.openSolveModal(s, i, runID)
	case "vote_requeue":
		return h.handleVote(s, i, runID, userID, rewardService.VoteRequeue)
	case "vote_leave":
		return h.handleVote(s, i, runID, userID, rewardService.VoteLeave)
	case "choice":
		return h.handleAction(s, i, runID, userID, "event_choice", argument)
	default:
		return h.handleAction(s, i, runID, userID, action, argument)
	}
}

// handleAction resolves a room action and refreshes the run message
func (h *Handler) handleAction(s *discordgo.Session, i *discordgo.InteractionCreate, runID, userID, action, argument string) error {
	result, err := h.ServiceProvider.ActionService.HandleAction(context.Background(), &actionService.Input{
		RunID:    runID,
		PlayerID: userID,
		Action:   action,
		Argument: argument,
	})
	if err != nil {
		return respondError(s, i, err)
	}

	if result.RunWiped {
		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{defeatEmbed(result.Run.DungeonName)},
				Components: []discordgo.MessageComponent{},
			},
		})
	}

	return h.updateRunMessage(s, i, result)
}

// handleAdvance moves the party to the next room, or closes out the run when
// the final room is done
func (h *Handler) handleAdvance(s *discordgo.Session, i *discordgo.InteractionCreate, runID, userID string) error {
	result, err := h.ServiceProvider.RunService.AdvanceRoom(context.Background(), runID, userID)
	if err != nil {
		return respondError(s, i, err)
	}

	if result.RunCompleted {
		voteSeconds := int(h.ServiceProvider.VoteWindow().Seconds())
		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{summaryEmbed(result.Run.DungeonName, result.Summary, voteSeconds)},
				Components: voteComponents(runID),
			},
		})
	}

	view := h.ServiceProvider.RunService.RenderStatus(result.Run)
	actions := h.ServiceProvider.RunService.RenderActions(result.Run)
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{statusEmbed(view)},
			Components: actionComponents(runID, actions),
		},
	})
}

// handleRunLeave drops the player from the run mid-delve
func (h *Handler) handleRunLeave(s *discordgo.Session, i *discordgo.InteractionCreate, runID, userID string) error {
	result, err := h.ServiceProvider.RunService.LeaveRun(context.Background(), runID, userID)
	if err != nil {
		return respondError(s, i, err)
	}

	if result.Discarded {
		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{{
					Title:       "🚪 Run Abandoned",
					Description: "Everyone left. The dungeon reclaims its halls.",
					Color:       colorDanger,
				}},
				Components: []discordgo.MessageComponent{},
			},
		})
	}

	view := h.ServiceProvider.RunService.RenderStatus(result.Run)
	actions := h.ServiceProvider.RunService.RenderActions(result.Run)
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{statusEmbed(view)},
			Components: actionComponents(runID, actions),
		},
	})
}

// handleVote casts a requeue ballot. Resolution is announced by the vote
// resolution hook, so the ballot itself only gets an ephemeral ack.
func (h *Handler) handleVote(s *discordgo.Session, i *discordgo.InteractionCreate, runID, userID string, vote rewardService.Vote) error {
	result, err := h.ServiceProvider.RewardService.CastVote(context.Background(), runID, userID, vote)
	if err != nil {
		return respondError(s, i, err)
	}

	return respondEphemeral(s, i, fmt.Sprintf("🗳️ Vote recorded (%d/%d in).", result.VotesCast, result.VotesTotal))
}

// openSolveModal prompts the player for a puzzle answer
func (h *Handler) openSolveModal(s *discordgo.Session, i *discordgo.InteractionCreate, runID string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("dungeon:solve_submit:%s", runID),
			Title:    "Solve the Puzzle",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "puzzle_answer",
							Label:       "Your answer",
							Style:       discordgo.TextInputShort,
							Placeholder: "Type your answer",
							Required:    true,
							MaxLength:   100,
						},
					},
				},
			},
		},
	})
}

// handleSolveSubmit resolves a submitted puzzle answer
func (h *Handler) handleSolveSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, runID string, data discordgo.ModalSubmitInteractionData) error {
	userID, _ := interactionUserID(i)

	var answer string
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == "puzzle_answer" {
				answer = input.Value
			}
		}
	}

	result, err := h.ServiceProvider.ActionService.HandleAction(context.Background(), &actionService.Input{
		RunID:    runID,
		PlayerID: userID,
		Action:   "solve",
		Argument: answer,
	})
	if err != nil {
		// An exhausted attempt budget still completes the room, so the run
		// message needs a refresh behind the error notice
		h.refreshRunMessage(s, runID)
		return respondError(s, i, err)
	}

	return h.updateRunMessage(s, i, result)
}

// updateRunMessage redraws the run status message in place and reports the
// action outcome privately
func (h *Handler) updateRunMessage(s *discordgo.Session, i *discordgo.InteractionCreate, result *actionService.Result) error {
	view := h.ServiceProvider.RunService.RenderStatus(result.Run)
	actions := h.ServiceProvider.RunService.RenderActions(result.Run)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{statusEmbed(view)},
			Components: actionComponents(result.Run.ID, actions),
		},
	})
	if err != nil {
		return err
	}

	if result.Message != "" {
		if _, followErr := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: result.Message,
			Flags:   discordgo.MessageFlagsEphemeral,
		}); followErr != nil {
			log.Printf("failed to send action followup: %v", followErr)
		}
	}

	return nil
}

// refreshRunMessage redraws the run message by id, used when the triggering
// interaction already spent its response on an error notice
func (h *Handler) refreshRunMessage(s *discordgo.Session, runID string) {
	r, err := h.ServiceProvider.RunService.Get(context.Background(), runID)
	if err != nil || r.MessageID == "" {
		return
	}

	view := h.ServiceProvider.RunService.RenderStatus(r)
	actions := h.ServiceProvider.RunService.RenderActions(r)
	embeds := []*discordgo.MessageEmbed{statusEmbed(view)}
	components := actionComponents(r.ID, actions)

	if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         r.MessageID,
		Channel:    r.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		log.Printf("failed to refresh run message for %s: %v", runID, err)
	}
}
