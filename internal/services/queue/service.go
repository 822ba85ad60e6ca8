package queue

//go:generate mockgen -destination=mock/mock_service.go -package=mockqueue -source=service.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/catalog"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/player"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/queue"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/queues"
	"github.com/KirkDiggler/dungeon-run-discord/internal/repositories/players"
)

// Service defines the queue manager interface
type Service interface {
	// Enqueue adds a player to the queue for a dungeon, creating the queue
	// when none exists for the (guild, dungeon) pair
	Enqueue(ctx context.Context, input *EnqueueInput) (*EnqueueResult, error)

	// Leave removes the player's queue membership
	Leave(ctx context.Context, playerID string) (*queue.Queue, error)

	// Status returns the player's current queue and its dungeon
	Status(ctx context.Context, playerID string) (*StatusResult, error)

	// TakeParty atomically snapshots a ready queue's members and clears the
	// queue and all of its reverse-index entries
	TakeParty(ctx context.Context, queueID string) ([]queue.Member, error)

	// CreateRequeue builds a pre-populated queue for requeue voters,
	// bypassing the normal enqueue eligibility checks
	CreateRequeue(ctx context.Context, input *CreateRequeueInput) (*queue.Queue, error)
}

// EnqueueInput contains data for joining a queue
type EnqueueInput struct {
	PlayerID string
	// DungeonSelector is an explicit id or name; empty means the best
	// dungeon the player qualifies for
	DungeonSelector string
	GuildID         string
	ChannelID       string
}

// EnqueueResult reports the joined queue and whether it is launch-ready
type EnqueueResult struct {
	Queue   *queue.Queue
	Dungeon *dungeon.Definition
	Ready   bool
}

// StatusResult is the queue view for a player
type StatusResult struct {
	Queue   *queue.Queue
	Dungeon *dungeon.Definition
}

// CreateRequeueInput contains data for a post-run requeue
type CreateRequeueInput struct {
	DungeonID string
	GuildID   string
	ChannelID string
	Members   []queue.Member
}

type service struct {
	catalog    *catalog.Catalog
	players    players.Repository
	registry   *queues.Registry
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Catalog          *catalog.Catalog
	PlayerRepository players.Repository
	Registry         *queues.Registry
}

// NewService creates a new queue service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Catalog == nil {
		panic("catalog is required")
	}
	if cfg.PlayerRepository == nil {
		panic("player repository is required")
	}
	if cfg.Registry == nil {
		panic("queue registry is required")
	}

	return &service{
		catalog:  cfg.Catalog,
		players:  cfg.PlayerRepository,
		registry: cfg.Registry,
	}
}

// Enqueue adds a player to the queue for a dungeon
func (s *service) Enqueue(ctx context.Context, input *EnqueueInput) (*EnqueueResult, error) {
	if input == nil || input.PlayerID == "" {
		return nil, dungerr.InvalidArgument("player id is required")
	}

	record, err := s.players.Get(ctx, input.PlayerID)
	if err != nil {
		return nil, dungerr.Wrap(err, "failed to load player record")
	}
	if record == nil {
		return nil, dungerr.NotFoundf("no player record for %s", input.PlayerID)
	}

	def, err := s.resolveDungeon(input.DungeonSelector, record)
	if err != nil {
		return nil, err
	}

	consumeKey, err := checkEligibility(record, def)
	if err != nil {
		return nil, err
	}

	if existing := s.registry.GetByPlayer(input.PlayerID); existing != nil {
		return nil, dungerr.Newf(dungerr.CodeAlreadyQueued,
			"you are already queued for %s", existing.DungeonID)
	}

	queueID := queue.QueueID(input.GuildID, def.ID)
	q := s.registry.Get(queueID)
	if q == nil {
		q = &queue.Queue{
			ID:        queueID,
			DungeonID: def.ID,
			GuildID:   input.GuildID,
			ChannelID: input.ChannelID,
			CreatedAt: time.Now(),
		}
		s.registry.Put(q)
	}

	if q.IsFull() {
		return nil, dungerr.Newf(dungerr.CodeQueueFull,
			"the queue for %s is full", def.Name)
	}

	// The join is now guaranteed; only here may the consumable be spent
	if consumeKey {
		record.ConsumeItem(player.RemoteAccessItem)
		if err := s.players.Save(ctx, record); err != nil {
			return nil, dungerr.Wrap(err, "failed to consume remote access item")
		}
	}

	q.Members = append(q.Members, queue.Member{
		PlayerID: input.PlayerID,
		Username: record.Username,
		JoinedAt: time.Now(),
	})
	s.registry.IndexMember(input.PlayerID, queueID)

	return &EnqueueResult{
		Queue:   q,
		Dungeon: def,
		Ready:   q.IsReady(),
	}, nil
}

// resolveDungeon picks the explicit dungeon or the best the player qualifies for
func (s *service) resolveDungeon(selector string, record *player.Record) (*dungeon.Definition, error) {
	if selector != "" {
		def := s.catalog.Get(selector)
		if def == nil {
			return nil, dungerr.NotFoundf("no dungeon matches %q", selector)
		}
		return def, nil
	}

	def := s.catalog.BestFor(record.Level)
	if def == nil {
		return nil, dungerr.NotFound("no dungeons are available at your level")
	}
	return def, nil
}

// checkEligibility enforces the level and location gates. It reports whether
// the join must spend the remote-access item; the caller consumes it only
// after the join is known to succeed, so a rejected enqueue never burns it.
func checkEligibility(record *player.Record, def *dungeon.Definition) (consumeKey bool, err error) {
	if record.Level < def.MinLevel {
		return false, dungerr.Newf(dungerr.CodeIneligiblePlayer,
			"%s requires level %d (you are level %d)", def.Name, def.MinLevel, record.Level)
	}

	if def.Environment == "" || record.Exploration.CurrentBiome == def.Environment {
		return false, nil
	}
	if record.Flags.DungeonAnywhere {
		return false, nil
	}
	if record.HasItem(player.RemoteAccessItem) {
		return true, nil
	}

	return false, dungerr.Newf(dungerr.CodeIneligiblePlayer,
		"%s lies in %s; travel there or use a %s", def.Name, def.Environment, player.RemoteAccessItem)
}

// Leave removes the player's queue membership
func (s *service) Leave(ctx context.Context, playerID string) (*queue.Queue, error) {
	q := s.registry.GetByPlayer(playerID)
	if q == nil {
		return nil, dungerr.New(dungerr.CodeNotQueued, "you are not in a queue")
	}

	q.RemoveMember(playerID)
	s.registry.DropMember(playerID)
	if len(q.Members) == 0 {
		s.registry.Remove(q.ID)
	}

	return q, nil
}

// Status returns the player's current queue view
func (s *service) Status(ctx context.Context, playerID string) (*StatusResult, error) {
	q := s.registry.GetByPlayer(playerID)
	if q == nil {
		return nil, dungerr.New(dungerr.CodeNotQueued, "you are not in a queue")
	}

	return &StatusResult{
		Queue:   q,
		Dungeon: s.catalog.Get(q.DungeonID),
	}, nil
}

// TakeParty snapshots a ready queue's members and clears it
func (s *service) TakeParty(ctx context.Context, queueID string) ([]queue.Member, error) {
	q := s.registry.Get(queueID)
	if q == nil {
		return nil, dungerr.NotFoundf("no queue %s", queueID)
	}

	members := make([]queue.Member, len(q.Members))
	copy(members, q.Members)
	s.registry.Remove(queueID)

	return members, nil
}

// CreateRequeue builds a pre-populated queue for requeue voters
func (s *service) CreateRequeue(ctx context.Context, input *CreateRequeueInput) (*queue.Queue, error) {
	if input == nil || len(input.Members) == 0 {
		return nil, dungerr.InvalidArgument("requeue needs at least one member")
	}

	q := &queue.Queue{
		ID:        queue.QueueID(input.GuildID, input.DungeonID),
		DungeonID: input.DungeonID,
		GuildID:   input.GuildID,
		ChannelID: input.ChannelID,
		Members:   input.Members,
		CreatedAt: time.Now(),
	}
	s.registry.Put(q)

	return q, nil
}
