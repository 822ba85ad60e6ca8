package testutils

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/player"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/queue"
)

// CreateTestPlayer creates a player record at the given level with full
// pools sized the way level-ups grow them
func CreateTestPlayer(id, username string, level int) *player.Record {
	record := player.NewRecord(id, username)
	record.Level = level
	record.MaxHP = 100 + (level-1)*10
	record.HP = record.MaxHP
	record.MaxMana = 50 + (level-1)*5
	record.Mana = record.MaxMana
	return record
}

// CreateTestParty creates n queue members named player-1..player-n
func CreateTestParty(n int) []queue.Member {
	members := make([]queue.Member, 0, n)
	for i := 1; i <= n; i++ {
		members = append(members, queue.Member{
			PlayerID: fmt.Sprintf("player-%d", i),
			Username: fmt.Sprintf("Player%d", i),
			JoinedAt: time.Now(),
		})
	}
	return members
}

// CreateTestDungeon creates a two-floor dungeon definition with a flagged
// boss floor and a deterministic loot table
func CreateTestDungeon(id, name string, minLevel int) *dungeon.Definition {
	return &dungeon.Definition{
		ID:          id,
		Name:        name,
		Theme:       "ruins",
		Biome:       "test_biome",
		MinLevel:    minLevel,
		Environment: "test_biome",
		Floors: []dungeon.FloorTemplate{
			{
				Name:           "Rubble Crawler",
				BaseHP:         80,
				HPPerLevel:     10,
				BaseDamage:     10,
				DamagePerLevel: 1.5,
				BaseXP:         40,
				XPPerLevel:     8,
				BaseCoins:      20,
				CoinsPerLevel:  5,
				LootTable: []dungeon.LootEntry{
					{ItemID: "old_coin", Name: "Old Coin", Chance: 0.5},
				},
			},
			{
				Name:           "Dust King",
				BaseHP:         200,
				HPPerLevel:     25,
				BaseDamage:     18,
				DamagePerLevel: 2.5,
				BaseXP:         150,
				XPPerLevel:     25,
				BaseCoins:      80,
				CoinsPerLevel:  15,
				Boss:           true,
				LootTable: []dungeon.LootEntry{
					{ItemID: "royal_seal", Name: "Royal Seal", Chance: 0.4},
				},
				Relic: &dungeon.LootEntry{
					ItemID: "dust_crown",
					Name:   "Dust Crown",
					Chance: 0.1,
				},
			},
		},
	}
}
