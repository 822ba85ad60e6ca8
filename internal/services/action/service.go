package action

//go:generate mockgen -destination=mock/mock_service.go -package=mockaction -source=service.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/catalog"
	"github.com/KirkDiggler/dungeon-run-discord/internal/dice"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/runs"
)

const (
	// actionCooldown guards a player double-submitting before a prior
	// action's rendering completes
	actionCooldown = 1000 * time.Millisecond

	// defendWindow is how long a raised guard stays up
	defendWindow = 5 * time.Second

	abilityManaCost = 10
)

// Input carries one inbound player action event
type Input struct {
	RunID    string
	PlayerID string

	// Action is the dispatch keyword: attack, ability, defend, solve,
	// claim, interact, event_choice, challenge
	Action string

	// Argument is the optional sub-argument (puzzle answer, choice id)
	Argument string
}

// Result is the outcome of a resolved action
type Result struct {
	Run           *run.Run
	Message       string
	RoomCompleted bool

	// RunWiped is set when the counterattack downed the last member and the
	// run was torn down
	RunWiped bool
}

// Service validates and executes player room actions
type Service interface {
	// HandleAction dispatches one action against the player's current room
	HandleAction(ctx context.Context, input *Input) (*Result, error)
}

type service struct {
	registry *runs.Registry
	catalog  *catalog.Catalog
	roller   dice.Roller
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Registry *runs.Registry
	Catalog  *catalog.Catalog
	Roller   dice.Roller // Optional
}

// NewService creates a new action resolver
func NewService(cfg *ServiceConfig) Service {
	if cfg.Registry == nil {
		panic("run registry is required")
	}
	if cfg.Catalog == nil {
		panic("catalog is required")
	}

	svc := &service{
		registry: cfg.Registry,
		catalog:  cfg.Catalog,
		roller:   cfg.Roller,
	}
	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}

	return svc
}

// HandleAction dispatches one action against the player's current room
func (s *service) HandleAction(ctx context.Context, input *Input) (*Result, error) {
	if input == nil {
		return nil, dungerr.InvalidArgument("input cannot be nil")
	}

	active := s.registry.Get(input.RunID)
	if active == nil {
		return nil, dungerr.NotFoundf("no active run %s", input.RunID)
	}

	actor := active.Player(input.PlayerID)
	if actor == nil {
		return nil, dungerr.NotFound("you are not in this run")
	}

	room := active.CurrentRoom()
	if room == nil {
		return nil, dungerr.Internal("run has no current room")
	}

	switch input.Action {
	case "attack":
		return s.handleAttack(active, room, actor)
	case "ability":
		return s.handleAbility(active, room, actor)
	case "defend":
		return s.handleDefend(active, room, actor)
	case "solve":
		return s.handleSolve(active, room, actor, input.Argument)
	case "claim":
		return s.handleClaim(active, room, actor)
	case "interact":
		return s.handleInteract(active, room, actor)
	case "event_choice":
		return s.handleEventChoice(active, room, actor, input.Argument)
	case "challenge":
		return s.handleChallenge(active, room, actor)
	default:
		return nil, dungerr.InvalidArgumentf("unknown action %q", input.Action)
	}
}
