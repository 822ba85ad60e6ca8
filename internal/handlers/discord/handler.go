package discord

import (
	"log"
	"strings"

	"github.com/KirkDiggler/dungeon-run-discord/internal/services"
	"github.com/bwmarrin/discordgo"
)

// Handler handles all Discord interactions
type Handler struct {
	ServiceProvider *services.Provider
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ServiceProvider *services.Provider
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	return &Handler{
		ServiceProvider: cfg.ServiceProvider,
	}
}

// RegisterCommands registers all slash commands with Discord
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "dungeon",
			Description: "Dungeon run commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "queue",
					Description: "Queue up for a dungeon run",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "dungeon",
							Description: "Dungeon id or name (defaults to the best one you qualify for)",
							Required:    false,
						},
					},
				},
				{
					Name:        "leave",
					Description: "Leave your current queue",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "status",
					Description: "Show your queue or run status",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			return err
		}
	}

	return nil
}

// HandleInteraction handles all Discord interactions
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		h.handleModalSubmit(s, i)
	}
}

// handleCommand handles slash command interactions
func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	if data.Name != "dungeon" || len(data.Options) == 0 {
		return
	}

	subcommand := data.Options[0]

	switch subcommand.Name {
	case "queue":
		var selector string
		for _, opt := range subcommand.Options {
			if opt.Name == "dungeon" {
				selector = opt.StringValue()
				break
			}
		}
		if err := h.handleQueue(s, i, selector); err != nil {
			log.Printf("Error handling dungeon queue: %v", err)
		}
	case "leave":
		if err := h.handleLeave(s, i); err != nil {
			log.Printf("Error handling dungeon leave: %v", err)
		}
	case "status":
		if err := h.handleStatus(s, i); err != nil {
			log.Printf("Error handling dungeon status: %v", err)
		}
	}
}

// handleComponent routes button presses. Custom IDs follow the shape
// dungeon:<action>:<runID>[:<argument>].
func (h *Handler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	parts := strings.Split(customID, ":")
	if len(parts) < 3 || parts[0] != "dungeon" {
		return
	}

	action := parts[1]
	runID := parts[2]
	argument := ""
	if len(parts) > 3 {
		argument = strings.Join(parts[3:], ":")
	}

	if err := h.handleRunButton(s, i, action, runID, argument); err != nil {
		log.Printf("Error handling dungeon button %s: %v", customID, err)
	}
}

// handleModalSubmit routes modal submissions, currently just puzzle answers
func (h *Handler) handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()

	parts := strings.Split(data.CustomID, ":")
	if len(parts) != 3 || parts[0] != "dungeon" || parts[1] != "solve_submit" {
		return
	}

	if err := h.handleSolveSubmit(s, i, parts[2], data); err != nil {
		log.Printf("Error handling puzzle answer: %v", err)
	}
}

// interactionUserID pulls the acting user from either a guild or DM interaction
func interactionUserID(i *discordgo.InteractionCreate) (id, username string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, i.Member.User.Username
	}
	if i.User != nil {
		return i.User.ID, i.User.Username
	}
	return "", ""
}
