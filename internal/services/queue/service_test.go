package queue_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/KirkDiggler/dungeon-run-discord/internal/catalog"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/player"
	queueDomain "github.com/KirkDiggler/dungeon-run-discord/internal/domain/queue"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/queues"
	"github.com/KirkDiggler/dungeon-run-discord/internal/repositories/players"
	queueService "github.com/KirkDiggler/dungeon-run-discord/internal/services/queue"
	"github.com/KirkDiggler/dungeon-run-discord/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueFixture struct {
	repo     players.Repository
	registry *queues.Registry
	svc      queueService.Service
	dungeon  *dungeon.Definition
}

func newQueueFixture(t *testing.T) *queueFixture {
	t.Helper()

	def := testutils.CreateTestDungeon("ruins", "Crumbling Ruins", 1)
	repo := players.NewInMemoryRepository()
	registry := queues.NewRegistry()

	svc := queueService.NewService(&queueService.ServiceConfig{
		Catalog:          catalog.New([]*dungeon.Definition{def}),
		PlayerRepository: repo,
		Registry:         registry,
	})

	return &queueFixture{repo: repo, registry: registry, svc: svc, dungeon: def}
}

func (f *queueFixture) addPlayer(t *testing.T, id string, level int, biome string) *player.Record {
	t.Helper()

	record := testutils.CreateTestPlayer(id, "user-"+id, level)
	record.Exploration.CurrentBiome = biome
	require.NoError(t, f.repo.Save(context.Background(), record))
	return record
}

func TestService_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("joins and reports readiness at the party cap", func(t *testing.T) {
		f := newQueueFixture(t)

		for i := 1; i <= queueDomain.MaxPartySize; i++ {
			id := fmt.Sprintf("p%d", i)
			f.addPlayer(t, id, 1, "test_biome")

			result, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{
				PlayerID:        id,
				DungeonSelector: "ruins",
				GuildID:         "guild-1",
				ChannelID:       "chan-1",
			})
			require.NoError(t, err)
			assert.Len(t, result.Queue.Members, i)
			assert.Equal(t, i == queueDomain.MaxPartySize, result.Ready)
		}
	})

	t.Run("fifth player is rejected with queue full", func(t *testing.T) {
		f := newQueueFixture(t)

		for i := 1; i <= queueDomain.MaxPartySize; i++ {
			id := fmt.Sprintf("p%d", i)
			f.addPlayer(t, id, 1, "test_biome")
			_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: id, DungeonSelector: "ruins"})
			require.NoError(t, err)
		}

		f.addPlayer(t, "p5", 1, "test_biome")
		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "p5", DungeonSelector: "ruins"})
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeQueueFull))
	})

	t.Run("double enqueue is rejected", func(t *testing.T) {
		f := newQueueFixture(t)
		f.addPlayer(t, "alice", 1, "test_biome")

		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "alice", DungeonSelector: "ruins"})
		require.NoError(t, err)

		_, err = f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "alice", DungeonSelector: "ruins"})
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeAlreadyQueued))
	})

	t.Run("level gate applies", func(t *testing.T) {
		f := newQueueFixture(t)
		f.dungeon.MinLevel = 5
		f.addPlayer(t, "lowbie", 2, "test_biome")

		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "lowbie", DungeonSelector: "ruins"})
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeIneligiblePlayer))
	})

	t.Run("wrong biome is rejected without the remote access item", func(t *testing.T) {
		f := newQueueFixture(t)
		f.addPlayer(t, "faraway", 3, "emerald_grove")

		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "faraway", DungeonSelector: "ruins"})
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeIneligiblePlayer))
	})

	t.Run("remote access item is consumed to bypass the biome gate", func(t *testing.T) {
		f := newQueueFixture(t)
		record := testutils.CreateTestPlayer("rifter", "Rifter", 3)
		record.Exploration.CurrentBiome = "emerald_grove"
		record.Inventory[player.RemoteAccessItem] = 1
		require.NoError(t, f.repo.Save(ctx, record))

		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "rifter", DungeonSelector: "ruins"})
		require.NoError(t, err)

		saved, err := f.repo.Get(ctx, "rifter")
		require.NoError(t, err)
		assert.Zero(t, saved.Inventory[player.RemoteAccessItem], "consumable should be spent")
	})

	t.Run("rejected enqueue keeps the remote access item", func(t *testing.T) {
		f := newQueueFixture(t)
		for i := 1; i <= queueDomain.MaxPartySize; i++ {
			id := fmt.Sprintf("p%d", i)
			f.addPlayer(t, id, 1, "test_biome")
			_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: id, DungeonSelector: "ruins"})
			require.NoError(t, err)
		}

		record := testutils.CreateTestPlayer("rifter", "Rifter", 3)
		record.Exploration.CurrentBiome = "emerald_grove"
		record.Inventory[player.RemoteAccessItem] = 1
		require.NoError(t, f.repo.Save(ctx, record))

		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "rifter", DungeonSelector: "ruins"})
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeQueueFull))

		saved, err := f.repo.Get(ctx, "rifter")
		require.NoError(t, err)
		assert.Equal(t, 1, saved.Inventory[player.RemoteAccessItem], "consumable must survive a failed join")
	})

	t.Run("dungeon anywhere flag bypasses the biome gate without consuming anything", func(t *testing.T) {
		f := newQueueFixture(t)
		record := testutils.CreateTestPlayer("wanderer", "Wanderer", 3)
		record.Exploration.CurrentBiome = "emerald_grove"
		record.Flags.DungeonAnywhere = true
		record.Inventory[player.RemoteAccessItem] = 1
		require.NoError(t, f.repo.Save(ctx, record))

		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "wanderer", DungeonSelector: "ruins"})
		require.NoError(t, err)

		saved, err := f.repo.Get(ctx, "wanderer")
		require.NoError(t, err)
		assert.Equal(t, 1, saved.Inventory[player.RemoteAccessItem])
	})

	t.Run("unknown player is rejected", func(t *testing.T) {
		f := newQueueFixture(t)

		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "ghost", DungeonSelector: "ruins"})
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeNotFound))
	})

	t.Run("empty selector picks the best qualifying dungeon", func(t *testing.T) {
		f := newQueueFixture(t)
		f.addPlayer(t, "alice", 3, "test_biome")

		result, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, "ruins", result.Dungeon.ID)
	})
}

func TestService_LeaveAndStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("leave clears membership and empty queues are removed", func(t *testing.T) {
		f := newQueueFixture(t)
		f.addPlayer(t, "alice", 1, "test_biome")

		result, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "alice", DungeonSelector: "ruins", GuildID: "g"})
		require.NoError(t, err)

		q, err := f.svc.Leave(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, q.Members)
		assert.Nil(t, f.registry.Get(result.Queue.ID))

		_, err = f.svc.Status(ctx, "alice")
		assert.True(t, dungerr.Is(err, dungerr.CodeNotQueued))
	})

	t.Run("leave without membership fails", func(t *testing.T) {
		f := newQueueFixture(t)

		_, err := f.svc.Leave(ctx, "nobody")
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeNotQueued))
	})

	t.Run("status reports the queue and its dungeon", func(t *testing.T) {
		f := newQueueFixture(t)
		f.addPlayer(t, "alice", 1, "test_biome")

		_, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: "alice", DungeonSelector: "ruins"})
		require.NoError(t, err)

		status, err := f.svc.Status(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "ruins", status.Dungeon.ID)
		assert.True(t, status.Queue.HasMember("alice"))
	})
}

func TestService_TakeParty(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots members and clears the queue", func(t *testing.T) {
		f := newQueueFixture(t)
		var queueID string
		for i := 1; i <= queueDomain.MaxPartySize; i++ {
			id := fmt.Sprintf("p%d", i)
			f.addPlayer(t, id, 1, "test_biome")
			result, err := f.svc.Enqueue(ctx, &queueService.EnqueueInput{PlayerID: id, DungeonSelector: "ruins", GuildID: "g"})
			require.NoError(t, err)
			queueID = result.Queue.ID
		}

		members, err := f.svc.TakeParty(ctx, queueID)
		require.NoError(t, err)
		assert.Len(t, members, queueDomain.MaxPartySize)
		assert.Nil(t, f.registry.Get(queueID))
		assert.Nil(t, f.registry.GetByPlayer("p1"), "member index should be cleared")
	})

	t.Run("missing queue fails", func(t *testing.T) {
		f := newQueueFixture(t)

		_, err := f.svc.TakeParty(ctx, "nope")
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeNotFound))
	})
}

func TestService_CreateRequeue(t *testing.T) {
	ctx := context.Background()

	t.Run("builds a pre-populated queue without eligibility checks", func(t *testing.T) {
		f := newQueueFixture(t)
		members := testutils.CreateTestParty(3)

		q, err := f.svc.CreateRequeue(ctx, &queueService.CreateRequeueInput{
			DungeonID: "ruins",
			GuildID:   "g",
			ChannelID: "c",
			Members:   members,
		})
		require.NoError(t, err)
		assert.Len(t, q.Members, 3)
		assert.False(t, q.IsReady())
		assert.Equal(t, q, f.registry.GetByPlayer("player-2"))
	})

	t.Run("requeue of a full party is immediately ready", func(t *testing.T) {
		f := newQueueFixture(t)

		q, err := f.svc.CreateRequeue(ctx, &queueService.CreateRequeueInput{
			DungeonID: "ruins",
			Members:   testutils.CreateTestParty(queueDomain.MaxPartySize),
		})
		require.NoError(t, err)
		assert.True(t, q.IsReady())
	})

	t.Run("empty member list fails", func(t *testing.T) {
		f := newQueueFixture(t)

		_, err := f.svc.CreateRequeue(ctx, &queueService.CreateRequeueInput{DungeonID: "ruins"})
		require.Error(t, err)
		assert.True(t, dungerr.Is(err, dungerr.CodeInvalidArgument))
	})
}
