package queue

import (
	"fmt"
	"time"
)

// MaxPartySize caps queue membership and is the launch threshold
const MaxPartySize = 4

// Member is one waiting player, in join order
type Member struct {
	PlayerID string    `json:"player_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// Queue is a waiting roster for one (guild, dungeon) pair
type Queue struct {
	ID        string    `json:"id"`
	DungeonID string    `json:"dungeon_id"`
	GuildID   string    `json:"guild_id"`
	ChannelID string    `json:"channel_id"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueID derives the deterministic queue id for a guild/dungeon pair, so at
// most one queue per pair exists at a time
func QueueID(guildID, dungeonID string) string {
	if guildID == "" {
		guildID = "global"
	}
	return fmt.Sprintf("%s:%s", guildID, dungeonID)
}

// IsFull reports whether the queue has hit the party-size cap
func (q *Queue) IsFull() bool {
	return len(q.Members) >= MaxPartySize
}

// IsReady reports whether the queue can launch a run
func (q *Queue) IsReady() bool {
	return q.IsFull()
}

// HasMember reports whether the player already belongs to this queue
func (q *Queue) HasMember(playerID string) bool {
	for _, m := range q.Members {
		if m.PlayerID == playerID {
			return true
		}
	}
	return false
}

// RemoveMember drops the player, reporting whether they were present
func (q *Queue) RemoveMember(playerID string) bool {
	for i, m := range q.Members {
		if m.PlayerID == playerID {
			q.Members = append(q.Members[:i], q.Members[i+1:]...)
			return true
		}
	}
	return false
}
