package reward

//go:generate mockgen -destination=mock/mock_service.go -package=mockreward -source=service.go

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/dice"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/player"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/queue"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/runs"
	"github.com/KirkDiggler/dungeon-run-discord/internal/repositories/players"
	queueService "github.com/KirkDiggler/dungeon-run-discord/internal/services/queue"
)

// DefaultVoteWindow is the post-completion requeue voting period
const DefaultVoteWindow = 30 * time.Second

// Vote is a player's requeue decision
type Vote string

const (
	VoteRequeue Vote = "requeue"
	VoteLeave   Vote = "leave"
)

// PlayerReward is what one member walked away with
type PlayerReward struct {
	XP        int
	Coins     int
	Items     []string
	LeveledUp bool
	NewLevel  int
}

// Summary reports reward distribution for the whole party
type Summary struct {
	RunID   string
	Rewards map[string]*PlayerReward
	Lines   []string
}

// Resolution reports the outcome of a requeue vote
type Resolution struct {
	RunID       string
	DungeonName string
	GuildID     string
	ChannelID   string
	ByTimeout   bool
	Requeued    []queue.Member
	NewQueue    *queue.Queue
}

// VoteResult reports the state of the vote after a ballot lands
type VoteResult struct {
	VotesCast  int
	VotesTotal int
	Resolved   bool
	Resolution *Resolution
}

// Service settles rewards on run completion and coordinates the requeue vote
type Service interface {
	// CompleteRun distributes rewards for a completed run and opens the
	// requeue voting window
	CompleteRun(ctx context.Context, completed *run.Run) (*Summary, error)

	// CastVote records a player's requeue ballot; the last ballot resolves
	// the vote immediately
	CastVote(ctx context.Context, runID, playerID string, vote Vote) (*VoteResult, error)
}

// voteSession tracks one run's open voting window. The resolved flag is the
// at-most-once guard: the timeout callback and the last-voter path both have
// to win the check-and-set under mu before touching shared registries.
type voteSession struct {
	mu       sync.Mutex
	run      *run.Run
	votes    map[string]Vote
	timer    *time.Timer
	resolved bool
}

type service struct {
	players     players.Repository
	progression player.Progression
	queues      queueService.Service
	registry    *runs.Registry
	roller      dice.Roller
	voteWindow  time.Duration
	onResolved  func(*Resolution)

	mu       sync.Mutex
	sessions map[string]*voteSession
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	PlayerRepository players.Repository
	Progression      player.Progression
	QueueService     queueService.Service
	RunRegistry      *runs.Registry
	Roller           dice.Roller // Optional

	// VoteWindow overrides the 30s default, mainly for tests
	VoteWindow time.Duration

	// OnResolved is invoked exactly once per run after vote resolution
	OnResolved func(*Resolution)
}

// NewService creates a new reward service
func NewService(cfg *ServiceConfig) Service {
	if cfg.PlayerRepository == nil {
		panic("player repository is required")
	}
	if cfg.QueueService == nil {
		panic("queue service is required")
	}
	if cfg.RunRegistry == nil {
		panic("run registry is required")
	}

	svc := &service{
		players:     cfg.PlayerRepository,
		progression: cfg.Progression,
		queues:      cfg.QueueService,
		registry:    cfg.RunRegistry,
		roller:      cfg.Roller,
		voteWindow:  cfg.VoteWindow,
		onResolved:  cfg.OnResolved,
		sessions:    make(map[string]*voteSession),
	}
	if svc.progression == nil {
		svc.progression = player.NewProgression()
	}
	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}
	if svc.voteWindow <= 0 {
		svc.voteWindow = DefaultVoteWindow
	}

	return svc
}

// CompleteRun distributes rewards and opens the requeue voting window
func (s *service) CompleteRun(ctx context.Context, completed *run.Run) (*Summary, error) {
	if completed == nil {
		return nil, dungerr.InvalidArgument("run cannot be nil")
	}

	summary := &Summary{
		RunID:   completed.ID,
		Rewards: make(map[string]*PlayerReward, len(completed.Party)),
	}

	totalXP, totalCoins := 0, 0
	for _, room := range completed.CompletedRooms {
		totalXP += room.Rewards.XP
		totalCoins += room.Rewards.Coins
	}

	bossRoom := bossRoomOf(completed)

	for _, member := range completed.OrderedParty() {
		pr := &PlayerReward{XP: totalXP, Coins: totalCoins}

		// Boss loot and the relic roll are independent per member. Active
		// loot buffs scale every drop chance for the whole party.
		if bossRoom != nil && bossRoom.Completed && bossRoom.Boss != nil {
			lootScale := 1 + completed.TeamLootBonus()
			for _, entry := range bossRoom.Boss.LootTable {
				if s.roller.Chance(entry.Chance * lootScale) {
					pr.Items = append(pr.Items, entry.ItemID)
				}
			}
			if bossRoom.Relic != nil && s.roller.Chance(bossRoom.Relic.Chance*lootScale) {
				pr.Items = append(pr.Items, bossRoom.Relic.ItemID)
			}
		}

		summary.Rewards[member.PlayerID] = pr
		s.distribute(ctx, member, pr, summary)
	}

	s.openVote(completed)

	return summary, nil
}

// distribute writes one member's rewards through the player record store.
// A write failure costs that player their payout but never aborts the run.
func (s *service) distribute(ctx context.Context, member *run.PlayerState, pr *PlayerReward, summary *Summary) {
	record, err := s.players.Get(ctx, member.PlayerID)
	if err != nil || record == nil {
		log.Printf("failed to load record for %s during reward distribution: %v", member.PlayerID, err)
		return
	}

	pr.LeveledUp = s.progression.AddXP(record, pr.XP)
	pr.NewLevel = record.Level
	s.progression.AddCoins(record, pr.Coins)
	for _, item := range pr.Items {
		s.progression.AddItem(record, item, 1)
	}
	record.Stats.DungeonsCleared++

	if err := s.players.Save(ctx, record); err != nil {
		log.Printf("failed to save record for %s during reward distribution: %v", member.PlayerID, err)
		return
	}

	line := fmt.Sprintf("**%s**: +%d xp, +%d coins", member.Username, pr.XP, pr.Coins)
	if len(pr.Items) > 0 {
		line += fmt.Sprintf(", %d item(s)", len(pr.Items))
	}
	if pr.LeveledUp {
		line += fmt.Sprintf(" — **level up! Now level %d**", record.Level)
	}
	summary.Lines = append(summary.Lines, line)
}

func bossRoomOf(completed *run.Run) *run.Room {
	for _, room := range completed.Rooms {
		if room.Type == run.RoomTypeBoss {
			return room
		}
	}
	return nil
}

// openVote starts the requeue voting window for a settled run
func (s *service) openVote(completed *run.Run) {
	session := &voteSession{
		run:   completed,
		votes: make(map[string]Vote, len(completed.Party)),
	}

	s.mu.Lock()
	s.sessions[completed.ID] = session
	s.mu.Unlock()

	session.timer = time.AfterFunc(s.voteWindow, func() {
		s.resolve(session, true)
	})
}

// CastVote records a ballot; when every remaining member has voted the
// session resolves immediately
func (s *service) CastVote(ctx context.Context, runID, playerID string, vote Vote) (*VoteResult, error) {
	if vote != VoteRequeue && vote != VoteLeave {
		return nil, dungerr.InvalidArgumentf("unknown vote %q", vote)
	}

	s.mu.Lock()
	session := s.sessions[runID]
	s.mu.Unlock()
	if session == nil {
		return nil, dungerr.NotFoundf("no open vote for run %s", runID)
	}

	session.mu.Lock()
	if session.resolved {
		session.mu.Unlock()
		return nil, dungerr.NotFoundf("the vote for run %s already closed", runID)
	}
	if session.run.Player(playerID) == nil {
		session.mu.Unlock()
		return nil, dungerr.NotFound("you were not part of this run")
	}

	session.votes[playerID] = vote
	cast := len(session.votes)
	total := len(session.run.Party)
	allVoted := cast >= total
	session.mu.Unlock()

	result := &VoteResult{VotesCast: cast, VotesTotal: total}
	if allVoted {
		if resolution := s.resolve(session, false); resolution != nil {
			result.Resolved = true
			result.Resolution = resolution
		}
	}

	return result, nil
}

// resolve settles a vote session exactly once; both the timer and the
// last-voter path funnel through here and only the first caller proceeds
func (s *service) resolve(session *voteSession, byTimeout bool) *Resolution {
	session.mu.Lock()
	if session.resolved {
		session.mu.Unlock()
		return nil
	}
	session.resolved = true
	if session.timer != nil {
		session.timer.Stop()
	}

	var requeued []queue.Member
	for _, member := range session.run.OrderedParty() {
		if session.votes[member.PlayerID] == VoteRequeue {
			requeued = append(requeued, queue.Member{
				PlayerID: member.PlayerID,
				Username: member.Username,
				JoinedAt: time.Now(),
			})
		}
	}
	session.mu.Unlock()

	// The run and its indices come down unconditionally
	s.registry.Remove(session.run.ID)
	s.mu.Lock()
	delete(s.sessions, session.run.ID)
	s.mu.Unlock()

	resolution := &Resolution{
		RunID:       session.run.ID,
		DungeonName: session.run.DungeonName,
		GuildID:     session.run.GuildID,
		ChannelID:   session.run.ChannelID,
		ByTimeout:   byTimeout,
		Requeued:    requeued,
	}

	if len(requeued) > 0 {
		newQueue, err := s.queues.CreateRequeue(context.Background(), &queueService.CreateRequeueInput{
			DungeonID: session.run.DungeonID,
			GuildID:   session.run.GuildID,
			ChannelID: session.run.ChannelID,
			Members:   requeued,
		})
		if err != nil {
			log.Printf("failed to create requeue for run %s: %v", session.run.ID, err)
		} else {
			resolution.NewQueue = newQueue
		}
	}

	if s.onResolved != nil {
		s.onResolved(resolution)
	}

	return resolution
}
