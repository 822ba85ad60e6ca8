package run

//go:generate mockgen -destination=mock/mock_service.go -package=mockrun -source=service.go

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/catalog"
	"github.com/KirkDiggler/dungeon-run-discord/internal/dice"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/queue"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/runs"
	"github.com/KirkDiggler/dungeon-run-discord/internal/repositories/players"
	"github.com/KirkDiggler/dungeon-run-discord/internal/services/reward"
	"github.com/KirkDiggler/dungeon-run-discord/internal/uuid"
)

// Service owns run generation and the run lifecycle
type Service interface {
	// StartRun generates a run for a party and registers it as active
	StartRun(ctx context.Context, input *StartRunInput) (*run.Run, error)

	// Get retrieves an active run
	Get(ctx context.Context, runID string) (*run.Run, error)

	// GetByPlayer retrieves the active run a player belongs to
	GetByPlayer(ctx context.Context, playerID string) (*run.Run, error)

	// AttachMessage records the rendered status message for a run
	AttachMessage(ctx context.Context, runID, messageID string) error

	// AdvanceRoom moves past a completed room; on the final room it hands
	// off to the reward coordinator and reports the summary
	AdvanceRoom(ctx context.Context, runID, playerID string) (*AdvanceResult, error)

	// LeaveRun removes a player mid-run, discarding the run when empty
	LeaveRun(ctx context.Context, runID, playerID string) (*LeaveResult, error)

	// FailRun tears down a wiped run
	FailRun(ctx context.Context, runID string) error

	// RenderStatus builds the view model for the run's status embed
	RenderStatus(r *run.Run) *StatusView

	// RenderActions builds the legal action affordances for the current room
	RenderActions(r *run.Run) []ActionView
}

// StartRunInput contains data for launching a run
type StartRunInput struct {
	DungeonID string
	GuildID   string
	ChannelID string
	Members   []queue.Member
}

// AdvanceResult reports a room transition
type AdvanceResult struct {
	Run          *run.Run
	RunCompleted bool
	Summary      *reward.Summary
}

// LeaveResult reports a mid-run departure
type LeaveResult struct {
	Run       *run.Run
	Discarded bool
}

type service struct {
	catalog       *catalog.Catalog
	players       players.Repository
	registry      *runs.Registry
	rewards       reward.Service
	roller        dice.Roller
	uuidGenerator uuid.Generator
	runCounter    atomic.Int64
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Catalog          *catalog.Catalog
	PlayerRepository players.Repository
	Registry         *runs.Registry
	RewardService    reward.Service
	Roller           dice.Roller    // Optional
	UUIDGenerator    uuid.Generator // Optional
}

// NewService creates a new run service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Catalog == nil {
		panic("catalog is required")
	}
	if cfg.PlayerRepository == nil {
		panic("player repository is required")
	}
	if cfg.Registry == nil {
		panic("run registry is required")
	}
	if cfg.RewardService == nil {
		panic("reward service is required")
	}

	svc := &service{
		catalog:       cfg.Catalog,
		players:       cfg.PlayerRepository,
		registry:      cfg.Registry,
		rewards:       cfg.RewardService,
		roller:        cfg.Roller,
		uuidGenerator: cfg.UUIDGenerator,
	}
	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}

	return svc
}

// nextRunID builds a monotonically-distinguishable run id
func (s *service) nextRunID() string {
	return fmt.Sprintf("run_%d_%d", time.Now().UnixMilli(), s.runCounter.Add(1))
}

// StartRun generates a run for a party and registers it as active
func (s *service) StartRun(ctx context.Context, input *StartRunInput) (*run.Run, error) {
	if input == nil {
		return nil, dungerr.InvalidArgument("input cannot be nil")
	}
	if len(input.Members) == 0 {
		return nil, dungerr.New(dungerr.CodeEmptyParty, "cannot start a run with no players")
	}

	def := s.catalog.Get(input.DungeonID)
	if def == nil {
		return nil, dungerr.NotFoundf("no dungeon %s", input.DungeonID)
	}

	party := make(map[string]*run.PlayerState, len(input.Members))
	order := make([]string, 0, len(input.Members))
	for _, m := range input.Members {
		record, err := s.players.Get(ctx, m.PlayerID)
		if err != nil {
			return nil, dungerr.Wrapf(err, "failed to load record for %s", m.PlayerID)
		}
		if record == nil {
			return nil, dungerr.NotFoundf("no player record for %s", m.PlayerID)
		}

		party[m.PlayerID] = &run.PlayerState{
			PlayerID: m.PlayerID,
			Username: record.Username,
			Level:    record.Level,
			HP:       record.MaxHP,
			MaxHP:    record.MaxHP,
			Mana:     record.MaxMana,
			MaxMana:  record.MaxMana,
		}
		order = append(order, m.PlayerID)
	}

	avgLevel := averageLevel(orderedStates(party, order))

	active := &run.Run{
		ID:          s.nextRunID(),
		DungeonID:   def.ID,
		DungeonName: def.Name,
		Theme:       def.Theme,
		Biome:       def.Biome,
		GuildID:     input.GuildID,
		ChannelID:   input.ChannelID,
		Party:       party,
		PartyOrder:  order,
		Rooms:       s.generateRooms(def, avgLevel),
		StartTime:   time.Now(),
		Status:      run.StatusActive,
	}

	s.registry.Put(active)

	return active, nil
}

func orderedStates(party map[string]*run.PlayerState, order []string) []*run.PlayerState {
	states := make([]*run.PlayerState, 0, len(order))
	for _, id := range order {
		states = append(states, party[id])
	}
	return states
}

// Get retrieves an active run
func (s *service) Get(ctx context.Context, runID string) (*run.Run, error) {
	active := s.registry.Get(runID)
	if active == nil {
		return nil, dungerr.NotFoundf("no active run %s", runID)
	}
	return active, nil
}

// GetByPlayer retrieves the active run a player belongs to
func (s *service) GetByPlayer(ctx context.Context, playerID string) (*run.Run, error) {
	active := s.registry.GetByPlayer(playerID)
	if active == nil {
		return nil, dungerr.NotFound("you are not in an active run")
	}
	return active, nil
}

// AttachMessage records the rendered status message for a run
func (s *service) AttachMessage(ctx context.Context, runID, messageID string) error {
	active := s.registry.Get(runID)
	if active == nil {
		return dungerr.NotFoundf("no active run %s", runID)
	}

	active.MessageID = messageID
	return nil
}

// AdvanceRoom moves past a completed room
func (s *service) AdvanceRoom(ctx context.Context, runID, playerID string) (*AdvanceResult, error) {
	active := s.registry.Get(runID)
	if active == nil {
		return nil, dungerr.NotFoundf("no active run %s", runID)
	}
	if active.Player(playerID) == nil {
		return nil, dungerr.NotFound("you are not in this run")
	}

	current := active.CurrentRoom()
	if current == nil {
		return nil, dungerr.Internal("run has no current room")
	}
	if !current.Completed {
		return nil, dungerr.InvalidArgument("the current room is not complete yet")
	}

	active.CompletedRooms = append(active.CompletedRooms, current)
	active.CurrentRoomIndex++

	if active.CurrentRoomIndex >= len(active.Rooms) {
		active.Status = run.StatusCompleted

		summary, err := s.rewards.CompleteRun(ctx, active)
		if err != nil {
			return nil, dungerr.Wrap(err, "failed to settle run rewards")
		}
		return &AdvanceResult{Run: active, RunCompleted: true, Summary: summary}, nil
	}

	return &AdvanceResult{Run: active}, nil
}

// LeaveRun removes a player mid-run
func (s *service) LeaveRun(ctx context.Context, runID, playerID string) (*LeaveResult, error) {
	active := s.registry.Get(runID)
	if active == nil {
		return nil, dungerr.NotFoundf("no active run %s", runID)
	}
	if active.Player(playerID) == nil {
		return nil, dungerr.NotFound("you are not in this run")
	}

	active.RemovePlayer(playerID)
	s.registry.DropPlayer(playerID)

	if len(active.Party) == 0 {
		s.registry.Remove(active.ID)
		return &LeaveResult{Run: active, Discarded: true}, nil
	}

	return &LeaveResult{Run: active}, nil
}

// FailRun tears down a wiped run
func (s *service) FailRun(ctx context.Context, runID string) error {
	active := s.registry.Get(runID)
	if active == nil {
		return dungerr.NotFoundf("no active run %s", runID)
	}

	active.Status = run.StatusFailed
	s.registry.Remove(runID)
	return nil
}
