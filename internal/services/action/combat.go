package action

import (
	"fmt"
	"math"
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
)

// checkCombatReady runs the shared preamble for attack/ability/defend:
// room legality, incapacitation, and the action cooldown
func checkCombatReady(room *run.Room, actor *run.PlayerState) error {
	combatRoom := room.Type == run.RoomTypeCombat || room.Type == run.RoomTypeBoss ||
		(room.Type == run.RoomTypePreBoss && room.Challenge != nil && room.Challenge.Engaged)
	if !combatRoom {
		return dungerr.New(dungerr.CodeWrongRoomType, "there is nothing to fight here")
	}
	if room.Completed {
		return dungerr.InvalidArgument("no enemies remain in this room")
	}
	if actor.IsIncapacitated() {
		return dungerr.New(dungerr.CodePlayerIncapacitated, "you are down and cannot act")
	}
	if time.Since(actor.LastActionTime) < actionCooldown {
		return dungerr.New(dungerr.CodeActionCooldown, "catch your breath for a moment")
	}
	return nil
}

// handleAttack resolves a basic attack against the first living enemy
func (s *service) handleAttack(active *run.Run, room *run.Room, actor *run.PlayerState) (*Result, error) {
	if err := checkCombatReady(room, actor); err != nil {
		return nil, err
	}
	actor.LastActionTime = time.Now()
	actor.ActionsTaken++

	base := float64(10 + actor.Level*2 + active.TeamPowerBonus())
	damage := int(math.Round(base * s.roller.Between(0.8, 1.2)))

	crit := s.roller.Chance(active.TeamCritChance())
	if crit {
		damage = int(math.Round(float64(damage) * 1.5))
	}

	return s.resolvePlayerDamage(active, room, actor, damage, crit, nil)
}

// handleAbility resolves a mana-fueled strike with a crit bonus and a
// chance to apply a status effect
func (s *service) handleAbility(active *run.Run, room *run.Room, actor *run.PlayerState) (*Result, error) {
	if err := checkCombatReady(room, actor); err != nil {
		return nil, err
	}
	if actor.Mana < abilityManaCost {
		return nil, dungerr.Newf(dungerr.CodeInsufficientMana,
			"you need %d mana (you have %d)", abilityManaCost, actor.Mana)
	}
	actor.LastActionTime = time.Now()
	actor.ActionsTaken++
	actor.Mana -= abilityManaCost

	base := float64(15 + actor.Level*3 + active.TeamPowerBonus())
	damage := int(math.Round(base * s.roller.Between(0.9, 1.1)))

	crit := s.roller.Chance(active.TeamCritChance() + 0.15)
	if crit {
		damage = int(math.Round(float64(damage) * 1.5))
	}

	// The effect is only chosen here; it lands after target resolution
	var effect *run.StatusEffect
	if s.roller.Chance(0.2) {
		if s.roller.Intn(2) == 0 {
			effect = &run.StatusEffect{Type: run.StatusEffectStun, Duration: 1}
		} else {
			effect = &run.StatusEffect{Type: run.StatusEffectBurn, Duration: 2, Damage: 3 + actor.Level}
		}
	}

	return s.resolvePlayerDamage(active, room, actor, damage, crit, effect)
}

// handleDefend raises the actor's guard for the defend window. It deals no
// damage and draws no counterattack.
func (s *service) handleDefend(active *run.Run, room *run.Room, actor *run.PlayerState) (*Result, error) {
	if err := checkCombatReady(room, actor); err != nil {
		return nil, err
	}
	actor.LastActionTime = time.Now()
	actor.ActionsTaken++

	actor.Defending = true
	actor.DefendUntil = time.Now().Add(defendWindow)

	return &Result{
		Run:     active,
		Message: fmt.Sprintf("%s raises their guard!", actor.Username),
	}, nil
}

// resolvePlayerDamage applies damage to the fixed-order target, ticks its
// status effects first, handles room completion, and runs the counterattack
func (s *service) resolvePlayerDamage(active *run.Run, room *run.Room, actor *run.PlayerState, damage int, crit bool, effect *run.StatusEffect) (*Result, error) {
	target := room.FirstLivingTarget()
	if target == nil {
		return nil, dungerr.InvalidArgument("no enemies remain in this room")
	}

	msg := ""
	if burn := target.TickStatusEffects(); burn > 0 {
		msg += fmt.Sprintf("🔥 %s takes %d burn damage. ", target.Name, burn)
	}

	target.HP -= damage
	if target.HP < 0 {
		target.HP = 0
	}
	actor.DamageDealt += damage

	if crit {
		msg += fmt.Sprintf("💥 **Critical!** %s hits %s for %d!", actor.Username, target.Name, damage)
	} else {
		msg += fmt.Sprintf("%s hits %s for %d.", actor.Username, target.Name, damage)
	}

	if effect != nil && target.IsAlive() {
		target.StatusEffects = append(target.StatusEffects, *effect)
		msg += fmt.Sprintf(" %s is %sed!", target.Name, effect.Type)
	}

	if room.FirstLivingTarget() == nil {
		completeCombatRoom(room)
		msg += " The room falls silent — cleared!"
		return &Result{Run: active, Message: msg, RoomCompleted: true}, nil
	}

	counterMsg, wiped := s.counterattack(active, room)
	msg += " " + counterMsg

	if wiped {
		active.Status = run.StatusFailed
		s.registry.Remove(active.ID)
		msg += " The party has fallen. The dungeon claims another band."
		return &Result{Run: active, Message: msg, RunWiped: true}, nil
	}

	return &Result{Run: active, Message: msg}, nil
}

// counterattack has the first living enemy strike a random living member.
// Every raised guard is consumed by the strike, aimed at its holder or not.
func (s *service) counterattack(active *run.Run, room *run.Room) (string, bool) {
	attacker := room.FirstLivingTarget()
	if attacker == nil {
		return "", false
	}
	if attacker.IsStunned() {
		return fmt.Sprintf("%s is stunned and cannot strike back.", attacker.Name), false
	}

	living := active.LivingParty()
	if len(living) == 0 {
		return "", active.IsWiped()
	}
	target := living[s.roller.Intn(len(living))]

	// Defense buffs blunt the counter before any guard halves it
	damage := attacker.Damage - active.TeamDefenseBonus()
	if damage < 1 {
		damage = 1
	}
	now := time.Now()
	defended := target.IsDefending(now)
	if defended {
		damage /= 2
	}
	for _, member := range active.OrderedParty() {
		member.Defending = false
	}

	target.HP -= damage
	if target.HP < 0 {
		target.HP = 0
	}

	msg := fmt.Sprintf("%s strikes back at %s for %d.", attacker.Name, target.Username, damage)
	if defended {
		msg = fmt.Sprintf("%s strikes back at %s, but the guard holds — only %d damage.",
			attacker.Name, target.Username, damage)
	}
	if target.IsIncapacitated() {
		msg += fmt.Sprintf(" %s goes down!", target.Username)
	}

	return msg, active.IsWiped()
}

// completeCombatRoom marks the room done and aggregates the exact xp/coin
// sums of its lineup as configured at generation time
func completeCombatRoom(room *run.Room) {
	xp, coins := 0, 0
	for _, e := range room.CombatTargets() {
		xp += e.XP
		coins += e.Coins
	}
	room.Rewards.XP += xp
	room.Rewards.Coins += coins
	room.MarkCompleted()
}
