package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/player"
	queueService "github.com/KirkDiggler/dungeon-run-discord/internal/services/queue"
	rewardService "github.com/KirkDiggler/dungeon-run-discord/internal/services/reward"
	runService "github.com/KirkDiggler/dungeon-run-discord/internal/services/run"
	"github.com/bwmarrin/discordgo"
)

// handleQueue joins the player to a dungeon queue, bootstrapping a fresh
// record for first-timers, and launches the run once the party fills
func (h *Handler) handleQueue(s *discordgo.Session, i *discordgo.InteractionCreate, selector string) error {
	userID, username := interactionUserID(i)
	if userID == "" {
		return respondEphemeral(s, i, "❌ Could not identify you. Try again.")
	}

	ctx := context.Background()
	if err := h.ensurePlayer(ctx, userID, username); err != nil {
		return respondError(s, i, err)
	}

	result, err := h.ServiceProvider.QueueService.Enqueue(ctx, &queueService.EnqueueInput{
		PlayerID:        userID,
		DungeonSelector: selector,
		GuildID:         i.GuildID,
		ChannelID:       i.ChannelID,
	})
	if err != nil {
		return respondError(s, i, err)
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{queueEmbed(result.Queue, result.Dungeon)},
		},
	}); err != nil {
		return err
	}

	if result.Ready {
		h.launchRun(s, result.Queue.ID, result.Dungeon.ID, i.GuildID, i.ChannelID)
	}

	return nil
}

// handleLeave removes the player from their queue
func (h *Handler) handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID, _ := interactionUserID(i)

	q, err := h.ServiceProvider.QueueService.Leave(context.Background(), userID)
	if err != nil {
		return respondError(s, i, err)
	}

	name := q.DungeonID
	if def := h.ServiceProvider.Catalog.Get(q.DungeonID); def != nil {
		name = def.Name
	}
	return respondEphemeral(s, i, fmt.Sprintf("👋 You left the queue for **%s**.", name))
}

// handleStatus shows the player's queue, or their active run, or neither
func (h *Handler) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID, _ := interactionUserID(i)
	ctx := context.Background()

	if status, err := h.ServiceProvider.QueueService.Status(ctx, userID); err == nil {
		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{queueEmbed(status.Queue, status.Dungeon)},
				Flags:  discordgo.MessageFlagsEphemeral,
			},
		})
	}

	if r, err := h.ServiceProvider.RunService.GetByPlayer(ctx, userID); err == nil {
		view := h.ServiceProvider.RunService.RenderStatus(r)
		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{statusEmbed(view)},
				Flags:  discordgo.MessageFlagsEphemeral,
			},
		})
	}

	return respondEphemeral(s, i, "You're not queued and not in a run. Use `/dungeon queue` to start!")
}

// ensurePlayer creates a level-1 record for first-time players
func (h *Handler) ensurePlayer(ctx context.Context, userID, username string) error {
	record, err := h.ServiceProvider.PlayerRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if record != nil {
		return nil
	}
	return h.ServiceProvider.PlayerRepo.Save(ctx, player.NewRecord(userID, username))
}

// launchRun drains a ready queue into a fresh run and posts its status message
func (h *Handler) launchRun(s *discordgo.Session, queueID, dungeonID, guildID, channelID string) {
	ctx := context.Background()

	members, err := h.ServiceProvider.QueueService.TakeParty(ctx, queueID)
	if err != nil {
		log.Printf("failed to take party from queue %s: %v", queueID, err)
		return
	}

	r, err := h.ServiceProvider.RunService.StartRun(ctx, &runService.StartRunInput{
		DungeonID: dungeonID,
		GuildID:   guildID,
		ChannelID: channelID,
		Members:   members,
	})
	if err != nil {
		log.Printf("failed to start run for queue %s: %v", queueID, err)
		if _, sendErr := s.ChannelMessageSend(channelID, "❌ The run failed to launch. Please queue again."); sendErr != nil {
			log.Printf("failed to report launch failure: %v", sendErr)
		}
		return
	}

	view := h.ServiceProvider.RunService.RenderStatus(r)
	actions := h.ServiceProvider.RunService.RenderActions(r)

	msg, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{statusEmbed(view)},
		Components: actionComponents(r.ID, actions),
	})
	if err != nil {
		log.Printf("failed to post run message for %s: %v", r.ID, err)
		return
	}

	if err := h.ServiceProvider.RunService.AttachMessage(ctx, r.ID, msg.ID); err != nil {
		log.Printf("failed to attach message to run %s: %v", r.ID, err)
	}
}

// HandleVoteResolution reports a settled requeue vote back to the channel and
// relaunches immediately when the requeue party is already full
func (h *Handler) HandleVoteResolution(s *discordgo.Session, res *rewardService.Resolution) {
	if res.ChannelID != "" {
		if _, err := s.ChannelMessageSendEmbed(res.ChannelID, resolutionEmbed(res)); err != nil {
			log.Printf("failed to post vote resolution for run %s: %v", res.RunID, err)
		}
	}

	if res.NewQueue != nil && res.NewQueue.IsReady() {
		h.launchRun(s, res.NewQueue.ID, res.NewQueue.DungeonID, res.GuildID, res.ChannelID)
	}
}
