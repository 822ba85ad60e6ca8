package dungeon

// LootEntry is one drop in a floor or boss loot table
type LootEntry struct {
	ItemID string  `json:"item_id"`
	Name   string  `json:"name"`
	Chance float64 `json:"chance"`
}

// FloorTemplate describes one enemy archetype of a dungeon, with the base
// stats and per-level growth the generator scales from
type FloorTemplate struct {
	Name           string      `json:"name"`
	BaseHP         float64     `json:"base_hp"`
	HPPerLevel     float64     `json:"hp_per_level"`
	BaseDamage     float64     `json:"base_damage"`
	DamagePerLevel float64     `json:"damage_per_level"`
	BaseXP         float64     `json:"base_xp"`
	XPPerLevel     float64     `json:"xp_per_level"`
	BaseCoins      float64     `json:"base_coins"`
	CoinsPerLevel  float64     `json:"coins_per_level"`
	LootTable      []LootEntry `json:"loot_table,omitempty"`
	Boss           bool        `json:"boss,omitempty"`
	Relic          *LootEntry  `json:"relic,omitempty"`
}

// Definition is a static dungeon loaded from the catalog file. Read-only
// after load.
type Definition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Theme       string          `json:"theme"`
	Biome       string          `json:"biome"`
	MinLevel    int             `json:"min_level"`
	Environment string          `json:"environment"`
	Floors      []FloorTemplate `json:"floors"`
}

// BossFloor returns the boss-flagged floor, falling back to the last floor
// when none is flagged. Returns nil for a dungeon with no floors.
func (d *Definition) BossFloor() *FloorTemplate {
	for i := range d.Floors {
		if d.Floors[i].Boss {
			return &d.Floors[i]
		}
	}
	if len(d.Floors) == 0 {
		return nil
	}
	return &d.Floors[len(d.Floors)-1]
}

// RegularFloors returns the non-boss floors the generator clones enemies from.
// When every floor is boss-flagged it returns all floors rather than nothing.
func (d *Definition) RegularFloors() []FloorTemplate {
	var regular []FloorTemplate
	for _, f := range d.Floors {
		if !f.Boss {
			regular = append(regular, f)
		}
	}
	if len(regular) == 0 {
		return d.Floors
	}
	return regular
}

// CombinedLootTable merges every floor's loot table, boss included
func (d *Definition) CombinedLootTable() []LootEntry {
	var combined []LootEntry
	for _, f := range d.Floors {
		combined = append(combined, f.LootTable...)
	}
	return combined
}
