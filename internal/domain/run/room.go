package run

import (
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
)

// RoomType represents the different stages a run can contain
type RoomType string

const (
	RoomTypeCombat   RoomType = "combat"
	RoomTypePuzzle   RoomType = "puzzle"
	RoomTypeTreasure RoomType = "treasure"
	RoomTypeEvent    RoomType = "event"
	RoomTypePreBoss  RoomType = "pre_boss"
	RoomTypeBoss     RoomType = "boss"
)

// PuzzleType enumerates the puzzle catalog
type PuzzleType string

const (
	PuzzleTypeSequence PuzzleType = "sequence"
	PuzzleTypeRiddle   PuzzleType = "riddle"
	PuzzleTypeMath     PuzzleType = "math"
	PuzzleTypePattern  PuzzleType = "pattern"
)

// EventType enumerates the event catalog
type EventType string

const (
	EventTypeHeal        EventType = "heal"
	EventTypeBuff        EventType = "buff"
	EventTypeCombatBonus EventType = "combat_bonus"
	EventTypeLootBonus   EventType = "loot_bonus"
	EventTypeChoice      EventType = "choice"
)

// StatusEffectType enumerates effects enemies can suffer
type StatusEffectType string

const (
	StatusEffectStun StatusEffectType = "stun"
	StatusEffectBurn StatusEffectType = "burn"
)

// StatusEffect is an active effect on an enemy, ticked once per resolved action
type StatusEffect struct {
	Type     StatusEffectType `json:"type"`
	Duration int              `json:"duration"`
	Damage   int              `json:"damage"`
}

// Enemy is a combat target. Bosses share this shape.
type Enemy struct {
	Name          string              `json:"name"`
	HP            int                 `json:"hp"`
	MaxHP         int                 `json:"max_hp"`
	Damage        int                 `json:"damage"`
	XP            int                 `json:"xp"`
	Coins         int                 `json:"coins"`
	LootTable     []dungeon.LootEntry `json:"loot_table,omitempty"`
	StatusEffects []StatusEffect      `json:"status_effects,omitempty"`
}

// IsAlive reports whether the enemy can still fight
func (e *Enemy) IsAlive() bool {
	return e.HP > 0
}

// IsStunned reports whether a stun effect is active
func (e *Enemy) IsStunned() bool {
	for _, eff := range e.StatusEffects {
		if eff.Type == StatusEffectStun && eff.Duration > 0 {
			return true
		}
	}
	return false
}

// TickStatusEffects decrements every effect by one, applying burn damage for
// effects that are still running, and drops exhausted effects. Returns the
// burn damage dealt this tick.
func (e *Enemy) TickStatusEffects() int {
	burnDamage := 0
	remaining := e.StatusEffects[:0]
	for _, eff := range e.StatusEffects {
		if eff.Type == StatusEffectBurn && eff.Duration > 0 {
			burnDamage += eff.Damage
		}
		eff.Duration--
		if eff.Duration > 0 {
			remaining = append(remaining, eff)
		}
	}
	e.StatusEffects = remaining
	if burnDamage > 0 {
		e.HP -= burnDamage
	}
	return burnDamage
}

// Puzzle is the immutable puzzle definition placed at generation time
type Puzzle struct {
	Type       PuzzleType `json:"type"`
	Question   string     `json:"question"`
	Solution   string     `json:"solution"`
	Hint       string     `json:"hint"`
	Difficulty int        `json:"difficulty"`
}

// PuzzleState is the mutable solve progress
type PuzzleState struct {
	Attempts         int  `json:"attempts"`
	MaxAttempts      int  `json:"max_attempts"`
	SequenceProgress int  `json:"sequence_progress"`
	Solved           bool `json:"solved"`
}

// TreasureLoot is the pre-generated contents of a treasure room
type TreasureLoot struct {
	Coins int      `json:"coins"`
	Items []string `json:"items,omitempty"`
}

// EventOption is one labeled choice of a choice event
type EventOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`

	// Payout is one of "coins", "item", "buff"
	Payout string `json:"payout"`
}

// Event is the payload of an event room
type Event struct {
	Type        EventType     `json:"type"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Difficulty  int           `json:"difficulty"`
	HealPercent float64       `json:"heal_percent,omitempty"`
	RestoreMana bool          `json:"restore_mana,omitempty"`
	Buff        *TeamBuff     `json:"buff,omitempty"`
	Options     []EventOption `json:"options,omitempty"`
}

// Challenge is the payload of a pre-boss room
type Challenge struct {
	Type    string `json:"type"` // elite_combat
	Enemy   *Enemy `json:"enemy"`
	Engaged bool   `json:"engaged"`
}

// Rewards accumulates on a room when it completes
type Rewards struct {
	XP    int      `json:"xp"`
	Coins int      `json:"coins"`
	Items []string `json:"items,omitempty"`
}

// Room is one stage of a run. The type-specific payload is set at generation
// time; only Completed, Rewards, and solve-state flags mutate afterward.
type Room struct {
	ID         string   `json:"id"`
	Number     int      `json:"number"`
	Type       RoomType `json:"type"`
	Difficulty int      `json:"difficulty"`
	Completed  bool     `json:"completed"`
	Rewards    Rewards  `json:"rewards"`

	// Type-specific payloads; exactly one group is populated per Type
	Enemies     []*Enemy           `json:"enemies,omitempty"`      // combat
	Puzzle      *Puzzle            `json:"puzzle,omitempty"`       // puzzle
	PuzzleState *PuzzleState       `json:"puzzle_state,omitempty"` // puzzle
	Loot        *TreasureLoot      `json:"loot,omitempty"`         // treasure
	Event       *Event             `json:"event,omitempty"`        // event
	EventChoice string             `json:"event_choice,omitempty"` // event (choice)
	Challenge   *Challenge         `json:"challenge,omitempty"`    // pre_boss
	Boss        *Enemy             `json:"boss,omitempty"`         // boss
	Relic       *dungeon.LootEntry `json:"relic,omitempty"`        // boss
}

// CombatTargets returns the room's live combat lineup: the enemy list for a
// combat room, the engaged elite for a pre-boss room, the boss for a boss room
func (r *Room) CombatTargets() []*Enemy {
	switch r.Type {
	case RoomTypeCombat:
		return r.Enemies
	case RoomTypePreBoss:
		if r.Challenge != nil && r.Challenge.Engaged {
			return []*Enemy{r.Challenge.Enemy}
		}
		return nil
	case RoomTypeBoss:
		if r.Boss != nil {
			return []*Enemy{r.Boss}
		}
		return nil
	default:
		return nil
	}
}

// FirstLivingTarget returns the fixed-order combat target, nil when all are down
func (r *Room) FirstLivingTarget() *Enemy {
	for _, e := range r.CombatTargets() {
		if e.IsAlive() {
			return e
		}
	}
	return nil
}

// LivingTargets returns every target still standing
func (r *Room) LivingTargets() []*Enemy {
	var living []*Enemy
	for _, e := range r.CombatTargets() {
		if e.IsAlive() {
			living = append(living, e)
		}
	}
	return living
}

// MarkCompleted sets the monotone completion flag
func (r *Room) MarkCompleted() {
	r.Completed = true
}
