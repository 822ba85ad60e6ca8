package reward_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/catalog"
	mockdice "github.com/KirkDiggler/dungeon-run-discord/internal/dice/mock"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
	runDomain "github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/queues"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/runs"
	"github.com/KirkDiggler/dungeon-run-discord/internal/repositories/players"
	mockplayers "github.com/KirkDiggler/dungeon-run-discord/internal/repositories/players/mock"
	queueService "github.com/KirkDiggler/dungeon-run-discord/internal/services/queue"
	rewardService "github.com/KirkDiggler/dungeon-run-discord/internal/services/reward"
	"github.com/KirkDiggler/dungeon-run-discord/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type rewardFixture struct {
	repo        players.Repository
	runRegistry *runs.Registry
	roller      *mockdice.ManualMockRoller
	svc         rewardService.Service

	mu          sync.Mutex
	resolutions []*rewardService.Resolution
	resolvedCh  chan *rewardService.Resolution
}

func newRewardFixture(t *testing.T, voteWindow time.Duration) *rewardFixture {
	t.Helper()

	def := testutils.CreateTestDungeon("ruins", "Crumbling Ruins", 1)
	repo := players.NewInMemoryRepository()
	runRegistry := runs.NewRegistry()
	roller := mockdice.NewManualMockRoller()

	f := &rewardFixture{
		repo:        repo,
		runRegistry: runRegistry,
		roller:      roller,
		resolvedCh:  make(chan *rewardService.Resolution, 4),
	}

	queueSvc := queueService.NewService(&queueService.ServiceConfig{
		Catalog:          catalog.New([]*dungeon.Definition{def}),
		PlayerRepository: repo,
		Registry:         queues.NewRegistry(),
	})

	f.svc = rewardService.NewService(&rewardService.ServiceConfig{
		PlayerRepository: repo,
		QueueService:     queueSvc,
		RunRegistry:      runRegistry,
		Roller:           roller,
		VoteWindow:       voteWindow,
		OnResolved: func(res *rewardService.Resolution) {
			f.mu.Lock()
			f.resolutions = append(f.resolutions, res)
			f.mu.Unlock()
			f.resolvedCh <- res
		},
	})

	return f
}

func (f *rewardFixture) resolutionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resolutions)
}

// completedRun builds a conquered run with banked room rewards and a
// completed boss room, registered as if it just finished
func (f *rewardFixture) completedRun(t *testing.T, partySize int) *runDomain.Run {
	t.Helper()

	party := make(map[string]*runDomain.PlayerState, partySize)
	var order []string
	for _, m := range testutils.CreateTestParty(partySize) {
		require.NoError(t, f.repo.Save(context.Background(), testutils.CreateTestPlayer(m.PlayerID, m.Username, 1)))
		party[m.PlayerID] = &runDomain.PlayerState{
			PlayerID: m.PlayerID,
			Username: m.Username,
			Level:    1,
			HP:       80,
			MaxHP:    100,
		}
		order = append(order, m.PlayerID)
	}

	bossRoom := &runDomain.Room{
		ID:        "boss",
		Number:    2,
		Type:      runDomain.RoomTypeBoss,
		Completed: true,
		Boss: &runDomain.Enemy{
			Name:  "Dust King",
			HP:    0,
			MaxHP: 250,
			LootTable: []dungeon.LootEntry{
				{ItemID: "royal_seal", Name: "Royal Seal", Chance: 0.4},
			},
		},
		Relic:   &dungeon.LootEntry{ItemID: "dust_crown", Name: "Dust Crown", Chance: 0.1},
		Rewards: runDomain.Rewards{XP: 60, Coins: 30},
	}

	completedCombat := &runDomain.Room{
		ID:        "combat",
		Number:    1,
		Type:      runDomain.RoomTypeCombat,
		Completed: true,
		Rewards:   runDomain.Rewards{XP: 40, Coins: 20},
	}

	active := &runDomain.Run{
		ID:             "run-1",
		DungeonID:      "ruins",
		DungeonName:    "Crumbling Ruins",
		GuildID:        "guild-1",
		ChannelID:      "chan-1",
		Party:          party,
		PartyOrder:     order,
		Rooms:          []*runDomain.Room{completedCombat, bossRoom},
		CompletedRooms: []*runDomain.Room{completedCombat, bossRoom},
		Status:         runDomain.StatusCompleted,
	}
	f.runRegistry.Put(active)
	return active
}

func TestService_CompleteRun(t *testing.T) {
	ctx := context.Background()

	t.Run("sums banked room rewards for every member", func(t *testing.T) {
		f := newRewardFixture(t, time.Hour)
		active := f.completedRun(t, 2)
		// All boss loot rolls miss
		f.roller.SetFloats(0.99, 0.99, 0.99, 0.99)

		summary, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)
		require.Len(t, summary.Rewards, 2)

		for _, pr := range summary.Rewards {
			assert.Equal(t, 100, pr.XP)
			assert.Equal(t, 50, pr.Coins)
			assert.Empty(t, pr.Items)
		}

		// Boss rewards flow through the banked room sums exactly once
		record, err := f.repo.Get(ctx, "player-1")
		require.NoError(t, err)
		assert.Equal(t, 100, record.XP)
		assert.Equal(t, 50, record.Coins)
		assert.Equal(t, 1, record.Stats.DungeonsCleared)
	})

	t.Run("boss loot rolls are independent per member", func(t *testing.T) {
		f := newRewardFixture(t, time.Hour)
		active := f.completedRun(t, 2)
		// player-1: loot hits, relic misses; player-2: both miss
		f.roller.SetFloats(0.1, 0.99, 0.99, 0.99)

		summary, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)
		assert.Equal(t, []string{"royal_seal"}, summary.Rewards["player-1"].Items)
		assert.Empty(t, summary.Rewards["player-2"].Items)

		record, err := f.repo.Get(ctx, "player-1")
		require.NoError(t, err)
		assert.Equal(t, 1, record.Inventory["royal_seal"])
	})

	t.Run("loot buffs raise every drop chance", func(t *testing.T) {
		f := newRewardFixture(t, time.Hour)
		active := f.completedRun(t, 1)
		active.AddTeamBuff(runDomain.TeamBuff{Name: "Keen Eyes", LootBonus: 0.5})
		// 0.5 misses the bare 0.4 seal chance but hits the buffed 0.6;
		// the buffed 0.15 relic chance still misses
		f.roller.SetFloats(0.5, 0.5)

		summary, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)
		assert.Equal(t, []string{"royal_seal"}, summary.Rewards["player-1"].Items)
	})

	t.Run("enough xp levels the record up", func(t *testing.T) {
		f := newRewardFixture(t, time.Hour)
		active := f.completedRun(t, 1)
		f.roller.SetFloats(0.99, 0.99)

		summary, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)

		pr := summary.Rewards["player-1"]
		assert.True(t, pr.LeveledUp)
		assert.Equal(t, 2, pr.NewLevel)

		record, err := f.repo.Get(ctx, "player-1")
		require.NoError(t, err)
		assert.Equal(t, 2, record.Level)
		assert.Equal(t, 110, record.MaxHP)
		assert.Equal(t, record.MaxHP, record.HP, "level up heals to full")
	})

	t.Run("a failed record load skips that member without aborting", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mockplayers.NewMockRepository(ctrl)
		runRegistry := runs.NewRegistry()

		queueSvc := queueService.NewService(&queueService.ServiceConfig{
			Catalog:          catalog.New(nil),
			PlayerRepository: repo,
			Registry:         queues.NewRegistry(),
		})
		svc := rewardService.NewService(&rewardService.ServiceConfig{
			PlayerRepository: repo,
			QueueService:     queueSvc,
			RunRegistry:      runRegistry,
			VoteWindow:       time.Hour,
		})

		healthy := testutils.CreateTestPlayer("player-2", "Player2", 1)
		repo.EXPECT().Get(gomock.Any(), "player-1").Return(nil, errors.New("connection reset"))
		repo.EXPECT().Get(gomock.Any(), "player-2").Return(healthy, nil)
		repo.EXPECT().Save(gomock.Any(), healthy).Return(nil)

		active := &runDomain.Run{
			ID: "run-2",
			Party: map[string]*runDomain.PlayerState{
				"player-1": {PlayerID: "player-1", Username: "Player1"},
				"player-2": {PlayerID: "player-2", Username: "Player2"},
			},
			PartyOrder: []string{"player-1", "player-2"},
			CompletedRooms: []*runDomain.Room{
				{Completed: true, Rewards: runDomain.Rewards{XP: 10, Coins: 5}},
			},
		}
		runRegistry.Put(active)

		summary, err := svc.CompleteRun(context.Background(), active)
		require.NoError(t, err)
		require.Len(t, summary.Lines, 1)
		assert.Contains(t, summary.Lines[0], "Player2")
	})
}

func TestService_CastVote(t *testing.T) {
	ctx := context.Background()

	t.Run("last ballot resolves exactly once with a requeue of the yes voters", func(t *testing.T) {
		f := newRewardFixture(t, time.Hour)
		active := f.completedRun(t, 4)
		f.roller.SetFloats(0.99, 0.99, 0.99, 0.99, 0.99, 0.99, 0.99, 0.99)

		_, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)

		for _, id := range []string{"player-1", "player-2", "player-3"} {
			result, voteErr := f.svc.CastVote(ctx, "run-1", id, rewardService.VoteRequeue)
			require.NoError(t, voteErr)
			assert.False(t, result.Resolved)
		}

		final, err := f.svc.CastVote(ctx, "run-1", "player-4", rewardService.VoteLeave)
		require.NoError(t, err)
		require.True(t, final.Resolved)
		require.NotNil(t, final.Resolution)

		res := final.Resolution
		assert.False(t, res.ByTimeout)
		assert.Len(t, res.Requeued, 3)
		require.NotNil(t, res.NewQueue)
		assert.Len(t, res.NewQueue.Members, 3)
		assert.False(t, res.NewQueue.IsReady())

		assert.Nil(t, f.runRegistry.Get("run-1"), "resolution tears the run down")
		assert.Equal(t, 1, f.resolutionCount())

		// The closed vote rejects stragglers
		_, err = f.svc.CastVote(ctx, "run-1", "player-1", rewardService.VoteRequeue)
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeNotFound))
	})

	t.Run("unanimous requeue relaunches a full queue", func(t *testing.T) {
		f := newRewardFixture(t, time.Hour)
		active := f.completedRun(t, 4)
		f.roller.SetFloats(0.99, 0.99, 0.99, 0.99, 0.99, 0.99, 0.99, 0.99)

		_, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)

		var final *rewardService.VoteResult
		for _, id := range []string{"player-1", "player-2", "player-3", "player-4"} {
			final, err = f.svc.CastVote(ctx, "run-1", id, rewardService.VoteRequeue)
			require.NoError(t, err)
		}

		require.True(t, final.Resolved)
		require.NotNil(t, final.Resolution.NewQueue)
		assert.True(t, final.Resolution.NewQueue.IsReady())
	})

	t.Run("timeout treats silence as leaving", func(t *testing.T) {
		f := newRewardFixture(t, 30*time.Millisecond)
		active := f.completedRun(t, 3)
		f.roller.SetFloats(0.99, 0.99, 0.99, 0.99, 0.99, 0.99)

		_, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)

		_, err = f.svc.CastVote(ctx, "run-1", "player-1", rewardService.VoteRequeue)
		require.NoError(t, err)

		select {
		case res := <-f.resolvedCh:
			assert.True(t, res.ByTimeout)
			assert.Len(t, res.Requeued, 1)
			require.NotNil(t, res.NewQueue)
			assert.Len(t, res.NewQueue.Members, 1)
		case <-time.After(2 * time.Second):
			t.Fatal("vote never timed out")
		}

		assert.Equal(t, 1, f.resolutionCount())
		assert.Nil(t, f.runRegistry.Get("run-1"))
	})

	t.Run("nobody requeueing leaves no new queue", func(t *testing.T) {
		f := newRewardFixture(t, time.Hour)
		active := f.completedRun(t, 1)
		f.roller.SetFloats(0.99, 0.99)

		_, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)

		final, err := f.svc.CastVote(ctx, "run-1", "player-1", rewardService.VoteLeave)
		require.NoError(t, err)
		require.True(t, final.Resolved)
		assert.Empty(t, final.Resolution.Requeued)
		assert.Nil(t, final.Resolution.NewQueue)
	})

	t.Run("outsiders and bad ballots are rejected", func(t *testing.T) {
		f := newRewardFixture(t, time.Hour)
		active := f.completedRun(t, 2)
		f.roller.SetFloats(0.99, 0.99, 0.99, 0.99)

		_, err := f.svc.CompleteRun(ctx, active)
		require.NoError(t, err)

		_, err = f.svc.CastVote(ctx, "run-1", "stranger", rewardService.VoteRequeue)
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeNotFound))

		_, err = f.svc.CastVote(ctx, "run-1", "player-1", rewardService.Vote("maybe"))
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeInvalidArgument))

		_, err = f.svc.CastVote(ctx, "no-such-run", "player-1", rewardService.VoteRequeue)
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeNotFound))
	})
}
