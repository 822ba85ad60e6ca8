package queues_test

import (
	"testing"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/queue"
	"github.com/KirkDiggler/dungeon-run-discord/internal/registries/queues"
	"github.com/KirkDiggler/dungeon-run-discord/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(id string, memberCount int) *queue.Queue {
	return &queue.Queue{
		ID:        id,
		DungeonID: "ruins",
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		Members:   testutils.CreateTestParty(memberCount),
	}
}

func TestRegistry_PutAndGet(t *testing.T) {
	registry := queues.NewRegistry()
	q := newTestQueue("queue-1", 2)

	registry.Put(q)

	assert.Same(t, q, registry.Get("queue-1"))
	assert.Equal(t, 1, registry.Len())
	assert.Nil(t, registry.Get("queue-2"))
}

func TestRegistry_GetByPlayer(t *testing.T) {
	registry := queues.NewRegistry()
	q := newTestQueue("queue-1", 2)
	registry.Put(q)

	t.Run("members are indexed on put", func(t *testing.T) {
		assert.Same(t, q, registry.GetByPlayer("player-1"))
		assert.Same(t, q, registry.GetByPlayer("player-2"))
	})

	t.Run("unqueued player yields nil", func(t *testing.T) {
		assert.Nil(t, registry.GetByPlayer("player-9"))
	})

	t.Run("members indexed after put are found", func(t *testing.T) {
		q.Members = append(q.Members, queue.Member{PlayerID: "player-3", Username: "Player3"})
		registry.IndexMember("player-3", "queue-1")
		assert.Same(t, q, registry.GetByPlayer("player-3"))
	})

	t.Run("dropped members are forgotten", func(t *testing.T) {
		registry.DropMember("player-3")
		assert.Nil(t, registry.GetByPlayer("player-3"))
	})
}

func TestRegistry_Remove(t *testing.T) {
	registry := queues.NewRegistry()
	registry.Put(newTestQueue("queue-1", 3))

	registry.Remove("queue-1")

	assert.Nil(t, registry.Get("queue-1"))
	assert.Equal(t, 0, registry.Len())
	for _, m := range testutils.CreateTestParty(3) {
		assert.Nil(t, registry.GetByPlayer(m.PlayerID))
	}

	// Removing twice is harmless
	registry.Remove("queue-1")
}

func TestRegistry_RemoveLeavesOtherQueuesAlone(t *testing.T) {
	registry := queues.NewRegistry()
	first := newTestQueue("queue-1", 2)
	second := &queue.Queue{
		ID:        "queue-2",
		DungeonID: "depths",
		Members: []queue.Member{
			{PlayerID: "other-1", Username: "Other1"},
		},
	}
	registry.Put(first)
	registry.Put(second)

	registry.Remove("queue-1")

	require.NotNil(t, registry.Get("queue-2"))
	assert.Same(t, second, registry.GetByPlayer("other-1"))
	assert.Equal(t, 1, registry.Len())
}
