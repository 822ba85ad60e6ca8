package run

import (
	"time"
)

// Status is the lifecycle state of a run
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// PlayerState is a party member's run-scoped state, copied from the player
// record at launch and never written back until rewards settle
type PlayerState struct {
	PlayerID       string    `json:"player_id"`
	Username       string    `json:"username"`
	Level          int       `json:"level"`
	HP             int       `json:"hp"`
	MaxHP          int       `json:"max_hp"`
	Mana           int       `json:"mana"`
	MaxMana        int       `json:"max_mana"`
	DamageDealt    int       `json:"damage_dealt"`
	ActionsTaken   int       `json:"actions_taken"`
	Defending      bool      `json:"defending"`
	DefendUntil    time.Time `json:"defend_until"`
	LastActionTime time.Time `json:"last_action_time"`
}

// IsIncapacitated reports whether the player is out of the fight
func (p *PlayerState) IsIncapacitated() bool {
	return p.HP <= 0
}

// IsDefending reports whether the defend window is still open at now
func (p *PlayerState) IsDefending(now time.Time) bool {
	return p.Defending && now.Before(p.DefendUntil)
}

// TeamBuff is a run-scoped, party-wide modifier accumulated from events
type TeamBuff struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Power       int     `json:"power,omitempty"`
	Defense     int     `json:"defense,omitempty"`
	CritChance  float64 `json:"crit_chance,omitempty"`
	LootBonus   float64 `json:"loot_bonus,omitempty"`
	Duration    string  `json:"duration"`
}

// Run is one active traversal of a generated dungeon by a fixed party
type Run struct {
	ID          string                  `json:"id"`
	DungeonID   string                  `json:"dungeon_id"`
	DungeonName string                  `json:"dungeon_name"`
	Theme       string                  `json:"theme"`
	Biome       string                  `json:"biome"`
	GuildID     string                  `json:"guild_id"`
	ChannelID   string                  `json:"channel_id"`
	MessageID   string                  `json:"message_id"`
	Party       map[string]*PlayerState `json:"party"`
	PartyOrder  []string                `json:"party_order"`
	Rooms       []*Room                 `json:"rooms"`

	// CurrentRoomIndex only increases; reaching len(Rooms) completes the run
	CurrentRoomIndex int         `json:"current_room_index"`
	CompletedRooms   []*Room     `json:"completed_rooms"`
	TeamBuffs        []TeamBuff  `json:"team_buffs"`
	StartTime        time.Time   `json:"start_time"`
	Status           Status      `json:"status"`
}

// CurrentRoom returns the room under the cursor, nil once the run is done
func (r *Run) CurrentRoom() *Room {
	if r.CurrentRoomIndex < 0 || r.CurrentRoomIndex >= len(r.Rooms) {
		return nil
	}
	return r.Rooms[r.CurrentRoomIndex]
}

// IsFinalRoom reports whether the cursor sits on the last room
func (r *Run) IsFinalRoom() bool {
	return r.CurrentRoomIndex == len(r.Rooms)-1
}

// Player returns the party member's state, nil if absent
func (r *Run) Player(playerID string) *PlayerState {
	return r.Party[playerID]
}

// RemovePlayer drops a member from the party and roster order
func (r *Run) RemovePlayer(playerID string) {
	delete(r.Party, playerID)
	for i, id := range r.PartyOrder {
		if id == playerID {
			r.PartyOrder = append(r.PartyOrder[:i], r.PartyOrder[i+1:]...)
			break
		}
	}
}

// OrderedParty returns party members in roster order
func (r *Run) OrderedParty() []*PlayerState {
	members := make([]*PlayerState, 0, len(r.PartyOrder))
	for _, id := range r.PartyOrder {
		if p, ok := r.Party[id]; ok {
			members = append(members, p)
		}
	}
	return members
}

// LivingParty returns the members still above zero hp, in roster order
func (r *Run) LivingParty() []*PlayerState {
	var living []*PlayerState
	for _, p := range r.OrderedParty() {
		if !p.IsIncapacitated() {
			living = append(living, p)
		}
	}
	return living
}

// IsWiped reports whether every remaining member is incapacitated
func (r *Run) IsWiped() bool {
	return len(r.Party) > 0 && len(r.LivingParty()) == 0
}

// TeamPowerBonus sums the power contribution of active buffs
func (r *Run) TeamPowerBonus() int {
	total := 0
	for _, b := range r.TeamBuffs {
		total += b.Power
	}
	return total
}

// TeamDefenseBonus sums the defense contribution of active buffs
func (r *Run) TeamDefenseBonus() int {
	total := 0
	for _, b := range r.TeamBuffs {
		total += b.Defense
	}
	return total
}

// TeamCritChance sums the crit chance contribution of active buffs
func (r *Run) TeamCritChance() float64 {
	total := 0.0
	for _, b := range r.TeamBuffs {
		total += b.CritChance
	}
	return total
}

// TeamLootBonus sums the loot bonus contribution of active buffs
func (r *Run) TeamLootBonus() float64 {
	total := 0.0
	for _, b := range r.TeamBuffs {
		total += b.LootBonus
	}
	return total
}

// AddTeamBuff appends to the run's append-only buff list
func (r *Run) AddTeamBuff(buff TeamBuff) {
	r.TeamBuffs = append(r.TeamBuffs, buff)
}
