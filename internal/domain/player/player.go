package player

import "time"

// RemoteAccessItem is the consumable that bypasses a dungeon's location gate.
const RemoteAccessItem = "rift_key"

// Stats tracks lifetime counters for a player
type Stats struct {
	DungeonsCleared int `json:"dungeons_cleared"`
	MonstersSlain   int `json:"monsters_slain"`
	Deaths          int `json:"deaths"`
}

// Exploration tracks where the player currently is in the overworld
type Exploration struct {
	CurrentBiome string `json:"current_biome"`
}

// Flags holds boolean unlocks earned through play
type Flags struct {
	// DungeonAnywhere lets the player queue for any dungeon regardless of biome
	DungeonAnywhere bool `json:"dungeon_anywhere"`
}

// Record is the persistent player document. The dungeon core copies what it
// needs into run-scoped state at launch and only writes back through
// progression when rewards settle.
type Record struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	Level       int            `json:"level"`
	XP          int            `json:"xp"`
	HP          int            `json:"hp"`
	MaxHP       int            `json:"max_hp"`
	Mana        int            `json:"mana"`
	MaxMana     int            `json:"max_mana"`
	Coins       int            `json:"coins"`
	Inventory   map[string]int `json:"inventory"`
	Stats       Stats          `json:"stats"`
	Exploration Exploration    `json:"exploration"`
	Flags       Flags          `json:"flags"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewRecord creates a fresh level-1 record for a first-time player
func NewRecord(id, username string) *Record {
	return &Record{
		ID:       id,
		Username: username,
		Level:    1,
		XP:       0,
		HP:       100,
		MaxHP:    100,
		Mana:     50,
		MaxMana:  50,
		Coins:    0,
		Inventory: map[string]int{},
		Exploration: Exploration{
			CurrentBiome: "emerald_grove",
		},
		CreatedAt: time.Now(),
	}
}

// HasItem reports whether the inventory holds at least one of the item
func (r *Record) HasItem(itemID string) bool {
	return r.Inventory[itemID] > 0
}

// ConsumeItem removes one of the item, reporting whether one was held
func (r *Record) ConsumeItem(itemID string) bool {
	if r.Inventory[itemID] <= 0 {
		return false
	}
	r.Inventory[itemID]--
	if r.Inventory[itemID] == 0 {
		delete(r.Inventory, itemID)
	}
	return true
}

// XPForLevel returns the total xp required to reach the given level
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	// 100, 300, 600, 1000, ... triangular curve
	n := level - 1
	return 100 * n * (n + 1) / 2
}
