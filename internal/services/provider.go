package services

import (
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/catalog"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/queues"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/runs"
	"github.com/KirkDiggler/dungeon-run-discord/internal/repositories/players"
	actionService "github.com/KirkDiggler/dungeon-run-discord/internal/services/action"
	queueService "github.com/KirkDiggler/dungeon-run-discord/internal/services/queue"
	rewardService "github.com/KirkDiggler/dungeon-run-discord/internal/services/reward"
	runService "github.com/KirkDiggler/dungeon-run-discord/internal/services/run"
)

// Provider holds all service instances
type Provider struct {
	Catalog       *catalog.Catalog
	PlayerRepo    players.Repository
	RunRegistry   *runs.Registry
	QueueRegistry *queues.Registry

	QueueService  queueService.Service
	RunService    runService.Service
	ActionService actionService.Service
	RewardService rewardService.Service

	voteWindow time.Duration
}

// VoteWindow reports the requeue voting period the reward service runs with
func (p *Provider) VoteWindow() time.Duration {
	return p.voteWindow
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	Catalog          *catalog.Catalog
	PlayerRepository players.Repository

	// VoteWindow overrides the requeue voting period (mainly for tests)
	VoteWindow time.Duration

	// OnVoteResolved is invoked once per run when its requeue vote settles
	OnVoteResolved func(*rewardService.Resolution)
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	playerRepo := cfg.PlayerRepository
	if playerRepo == nil {
		playerRepo = players.NewInMemoryRepository()
	}

	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.New(nil)
	}

	runRegistry := runs.NewRegistry()
	queueRegistry := queues.NewRegistry()

	qSvc := queueService.NewService(&queueService.ServiceConfig{
		Catalog:          cat,
		PlayerRepository: playerRepo,
		Registry:         queueRegistry,
	})

	voteWindow := cfg.VoteWindow
	if voteWindow <= 0 {
		voteWindow = rewardService.DefaultVoteWindow
	}

	rewardSvc := rewardService.NewService(&rewardService.ServiceConfig{
		PlayerRepository: playerRepo,
		QueueService:     qSvc,
		RunRegistry:      runRegistry,
		VoteWindow:       voteWindow,
		OnResolved:       cfg.OnVoteResolved,
	})

	runSvc := runService.NewService(&runService.ServiceConfig{
		Catalog:          cat,
		PlayerRepository: playerRepo,
		Registry:         runRegistry,
		RewardService:    rewardSvc,
	})

	actSvc := actionService.NewService(&actionService.ServiceConfig{
		Registry: runRegistry,
		Catalog:  cat,
	})

	return &Provider{
		Catalog:       cat,
		PlayerRepo:    playerRepo,
		RunRegistry:   runRegistry,
		QueueRegistry: queueRegistry,
		QueueService:  qSvc,
		RunService:    runSvc,
		ActionService: actSvc,
		RewardService: rewardSvc,
		voteWindow:    voteWindow,
	}
}
