package run

import (
	"fmt"
	"math"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
)

const (
	combatScalingStep   = 0.2
	treasureScalingStep = 0.3
	maxDifficulty       = 5
)

// roomWeight is one entry of a position-weighted type distribution
type roomWeight struct {
	roomType run.RoomType
	weight   float64
}

// Early rooms skew toward combat and treasure; later regular rooms trade a
// little combat for puzzles and events.
var (
	firstHalfWeights = []roomWeight{
		{run.RoomTypeCombat, 0.40},
		{run.RoomTypeTreasure, 0.25},
		{run.RoomTypePuzzle, 0.20},
		{run.RoomTypeEvent, 0.15},
	}
	secondHalfWeights = []roomWeight{
		{run.RoomTypeCombat, 0.35},
		{run.RoomTypePuzzle, 0.20},
		{run.RoomTypeEvent, 0.20},
		{run.RoomTypeTreasure, 0.25},
	}
)

// averageLevel rounds the mean of the party's levels
func averageLevel(members []*run.PlayerState) int {
	if len(members) == 0 {
		return 1
	}
	sum := 0
	for _, m := range members {
		sum += m.Level
	}
	avg := int(math.Round(float64(sum) / float64(len(members))))
	if avg < 1 {
		avg = 1
	}
	return avg
}

// roomDifficulty derives the 1-5 difficulty knob from party level and position
func roomDifficulty(avgLevel, roomNumber int) int {
	difficulty := avgLevel/2 + roomNumber/2
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > maxDifficulty {
		difficulty = maxDifficulty
	}
	return difficulty
}

// generateRooms builds the full ordered room sequence: 2-4 regular rooms,
// a mandatory pre-boss, then the boss
func (s *service) generateRooms(def *dungeon.Definition, avgLevel int) []*run.Room {
	regularCount := 2 + s.roller.Intn(3)

	rooms := make([]*run.Room, 0, regularCount+2)
	for i := 0; i < regularCount; i++ {
		number := i + 1
		roomType := s.pickRoomType(i, regularCount)
		rooms = append(rooms, s.generateRoom(def, roomType, number, avgLevel))
	}

	preBoss := len(rooms) + 1
	rooms = append(rooms, s.generatePreBossRoom(preBoss, avgLevel))
	rooms = append(rooms, s.generateBossRoom(def, preBoss+1, avgLevel))

	return rooms
}

// pickRoomType draws from the position-weighted distribution
func (s *service) pickRoomType(index, regularCount int) run.RoomType {
	weights := secondHalfWeights
	if index*2 < regularCount {
		weights = firstHalfWeights
	}

	roll := s.roller.Float64()
	cumulative := 0.0
	for _, w := range weights {
		cumulative += w.weight
		if roll < cumulative {
			return w.roomType
		}
	}
	return weights[len(weights)-1].roomType
}

func (s *service) generateRoom(def *dungeon.Definition, roomType run.RoomType, number, avgLevel int) *run.Room {
	difficulty := roomDifficulty(avgLevel, number)
	room := &run.Room{
		ID:         s.uuidGenerator.New(),
		Number:     number,
		Type:       roomType,
		Difficulty: difficulty,
	}

	switch roomType {
	case run.RoomTypeCombat:
		room.Enemies = s.generateEnemies(def, difficulty, avgLevel)
	case run.RoomTypePuzzle:
		puzzle := s.pickPuzzle(difficulty)
		room.Puzzle = &puzzle
		room.PuzzleState = &run.PuzzleState{MaxAttempts: 3}
	case run.RoomTypeTreasure:
		room.Loot = s.generateTreasure(def, difficulty, avgLevel)
	case run.RoomTypeEvent:
		event := s.pickEvent(difficulty)
		room.Event = &event
	}

	return room
}

// generateEnemies clones 1-3 scaled enemies from random non-boss floor templates
func (s *service) generateEnemies(def *dungeon.Definition, difficulty, avgLevel int) []*run.Enemy {
	floors := def.RegularFloors()
	if len(floors) == 0 {
		return nil
	}

	maxExtra := difficulty / 2
	if maxExtra > 2 {
		maxExtra = 2
	}
	count := 1 + s.roller.Intn(maxExtra+1)

	scaling := 1 + float64(difficulty-1)*combatScalingStep
	enemies := make([]*run.Enemy, 0, count)
	for i := 0; i < count; i++ {
		template := floors[s.roller.Intn(len(floors))]
		enemies = append(enemies, scaleEnemy(&template, avgLevel, scaling))
	}
	return enemies
}

// scaleEnemy computes (base + perLevel*avgLevel) * scaling, rounded, per stat
func scaleEnemy(template *dungeon.FloorTemplate, avgLevel int, scaling float64) *run.Enemy {
	level := float64(avgLevel)
	hp := roundScaled(template.BaseHP+template.HPPerLevel*level, scaling)
	return &run.Enemy{
		Name:      template.Name,
		HP:        hp,
		MaxHP:     hp,
		Damage:    roundScaled(template.BaseDamage+template.DamagePerLevel*level, scaling),
		XP:        roundScaled(template.BaseXP+template.XPPerLevel*level, scaling),
		Coins:     roundScaled(template.BaseCoins+template.CoinsPerLevel*level, scaling),
		LootTable: template.LootTable,
	}
}

func roundScaled(base, scaling float64) int {
	return int(math.Round(base * scaling))
}

// pickPuzzle selects uniformly among puzzles at or below the room difficulty,
// falling back to the full catalog when none qualify
func (s *service) pickPuzzle(difficulty int) run.Puzzle {
	var eligible []run.Puzzle
	for _, p := range puzzleCatalog {
		if p.Difficulty <= difficulty {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		eligible = puzzleCatalog
	}
	return eligible[s.roller.Intn(len(eligible))]
}

// pickEvent selects uniformly among events at or below the room difficulty,
// falling back to the full catalog when none qualify
func (s *service) pickEvent(difficulty int) run.Event {
	var eligible []run.Event
	for _, e := range eventCatalog {
		if e.Difficulty <= difficulty {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		eligible = eventCatalog
	}
	return eligible[s.roller.Intn(len(eligible))]
}

// generateTreasure rolls coins and optional loot drops for a treasure room
func (s *service) generateTreasure(def *dungeon.Definition, difficulty, avgLevel int) *run.TreasureLoot {
	scaling := 1 + float64(difficulty-1)*treasureScalingStep
	coins := int(math.Round((50 + float64(avgLevel)*10 + s.roller.Between(0, 50)) * scaling))

	loot := &run.TreasureLoot{Coins: coins}

	if s.roller.Chance(0.3 * float64(difficulty)) {
		maxItems := difficulty
		if maxItems > 3 {
			maxItems = 3
		}
		for _, entry := range def.CombinedLootTable() {
			if len(loot.Items) >= maxItems {
				break
			}
			if s.roller.Chance(entry.Chance * float64(difficulty) * 0.5) {
				loot.Items = append(loot.Items, entry.ItemID)
			}
		}
	}

	return loot
}

// generatePreBossRoom builds the mandatory elite guardian challenge,
// scaled linearly with party level only
func (s *service) generatePreBossRoom(number, avgLevel int) *run.Room {
	hp := 150 + 30*avgLevel
	elite := &run.Enemy{
		Name:   "Elite Guardian",
		HP:     hp,
		MaxHP:  hp,
		Damage: 15 + 2*avgLevel,
		XP:     120 + 20*avgLevel,
		Coins:  60 + 10*avgLevel,
	}

	return &run.Room{
		ID:         s.uuidGenerator.New(),
		Number:     number,
		Type:       run.RoomTypePreBoss,
		Difficulty: roomDifficulty(avgLevel, number),
		Challenge: &run.Challenge{
			Type:  "elite_combat",
			Enemy: elite,
		},
	}
}

// generateBossRoom scales the boss floor template linearly with party level
func (s *service) generateBossRoom(def *dungeon.Definition, number, avgLevel int) *run.Room {
	room := &run.Room{
		ID:         s.uuidGenerator.New(),
		Number:     number,
		Type:       run.RoomTypeBoss,
		Difficulty: roomDifficulty(avgLevel, number),
	}

	floor := def.BossFloor()
	if floor == nil {
		// Degenerate catalog entry; leave a fallback brute so the run stays playable
		hp := 300 + 40*avgLevel
		room.Boss = &run.Enemy{
			Name:   fmt.Sprintf("%s Overlord", def.Name),
			HP:     hp,
			MaxHP:  hp,
			Damage: 20 + 3*avgLevel,
			XP:     200 + 30*avgLevel,
			Coins:  120 + 20*avgLevel,
		}
		return room
	}

	level := float64(avgLevel)
	hp := int(math.Round(floor.BaseHP + floor.HPPerLevel*level))
	room.Boss = &run.Enemy{
		Name:      floor.Name,
		HP:        hp,
		MaxHP:     hp,
		Damage:    int(math.Round(floor.BaseDamage + floor.DamagePerLevel*level)),
		XP:        int(math.Round(floor.BaseXP + floor.XPPerLevel*level)),
		Coins:     int(math.Round(floor.BaseCoins + floor.CoinsPerLevel*level)),
		LootTable: floor.LootTable,
	}
	room.Relic = floor.Relic

	return room
}
