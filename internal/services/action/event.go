package action

import (
	"fmt"
	"math"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
)

// choicePowerBuff is the team buff granted by a "buff" event-choice payout
var choicePowerBuff = run.TeamBuff{
	Name:        "Whispered Power",
	Description: "+4 power and +5% crit for the rest of the run",
	Power:       4,
	CritChance:  0.05,
	Duration:    "run",
}

// handleInteract resolves an event room. Heal and buff events close the
// room immediately; choice events stay open until a choice is recorded.
func (s *service) handleInteract(active *run.Run, room *run.Room, actor *run.PlayerState) (*Result, error) {
	if room.Type != run.RoomTypeEvent {
		return nil, dungerr.New(dungerr.CodeWrongRoomType, "there is nothing to interact with here")
	}
	if room.Completed {
		return nil, dungerr.InvalidArgument("this event has already played out")
	}

	event := room.Event
	switch event.Type {
	case run.EventTypeHeal:
		lines := ""
		for _, member := range active.OrderedParty() {
			healed := int(math.Round(float64(member.MaxHP) * event.HealPercent))
			member.HP += healed
			if member.HP > member.MaxHP {
				member.HP = member.MaxHP
			}
			if event.RestoreMana {
				member.Mana = member.MaxMana
			}
		}
		if event.RestoreMana {
			lines = " Mana surges back as well."
		}
		room.Rewards.XP = 20 * room.Difficulty
		room.MarkCompleted()
		return &Result{
			Run:           active,
			Message:       fmt.Sprintf("✨ %s — the party recovers.%s", event.Name, lines),
			RoomCompleted: true,
		}, nil

	case run.EventTypeBuff, run.EventTypeCombatBonus, run.EventTypeLootBonus:
		if event.Buff == nil {
			return nil, dungerr.Internalf("event %q carries no buff", event.Name)
		}
		active.AddTeamBuff(*event.Buff)
		room.Rewards.XP = 20 * room.Difficulty
		room.MarkCompleted()
		return &Result{
			Run:           active,
			Message:       fmt.Sprintf("✨ %s — the party gains **%s**.", event.Name, event.Buff.Name),
			RoomCompleted: true,
		}, nil

	case run.EventTypeChoice:
		if room.EventChoice != "" {
			return nil, dungerr.New(dungerr.CodeAlreadyChosen, "the choice has already been made")
		}
		// The room stays open; the follow-up decision closes it
		return &Result{
			Run:     active,
			Message: fmt.Sprintf("**%s** — %s Choose.", event.Name, event.Description),
		}, nil

	default:
		return nil, dungerr.Internalf("unknown event type %q", event.Type)
	}
}

// handleEventChoice records the follow-up decision of a choice event and
// applies its payout
func (s *service) handleEventChoice(active *run.Run, room *run.Room, actor *run.PlayerState, choiceID string) (*Result, error) {
	if room.Type != run.RoomTypeEvent {
		return nil, dungerr.New(dungerr.CodeWrongRoomType, "there is nothing to choose here")
	}
	if room.Event.Type != run.EventTypeChoice {
		return nil, dungerr.New(dungerr.CodeNoChoiceRequired, "this event asks nothing of you")
	}
	if room.Completed || room.EventChoice != "" {
		return nil, dungerr.New(dungerr.CodeAlreadyChosen, "the choice has already been made")
	}

	var chosen *run.EventOption
	for i := range room.Event.Options {
		if room.Event.Options[i].ID == choiceID {
			chosen = &room.Event.Options[i]
			break
		}
	}
	if chosen == nil {
		return nil, dungerr.InvalidArgumentf("no option %q", choiceID)
	}

	msg := fmt.Sprintf("%s chooses **%s**.", actor.Username, chosen.Label)
	switch chosen.Payout {
	case "coins":
		coins := (40 + s.roller.Intn(40)) * room.Difficulty
		room.Rewards.Coins = coins
		msg += fmt.Sprintf(" The pouch holds %d coins!", coins)
	case "item":
		table := s.combinedLoot(active)
		if len(table) > 0 {
			entry := table[s.roller.Intn(len(table))]
			room.Rewards.Items = append(room.Rewards.Items, entry.ItemID)
			msg += fmt.Sprintf(" Inside: **%s**!", entry.Name)
		} else {
			msg += " The bundle is empty. The figure is gone."
		}
	case "buff":
		active.AddTeamBuff(choicePowerBuff)
		msg += fmt.Sprintf(" The party gains **%s**.", choicePowerBuff.Name)
	default:
		return nil, dungerr.Internalf("unknown payout %q", chosen.Payout)
	}

	room.EventChoice = choiceID
	room.Rewards.XP = 30 * room.Difficulty
	room.MarkCompleted()

	return &Result{Run: active, Message: msg, RoomCompleted: true}, nil
}

func (s *service) combinedLoot(active *run.Run) []dungeon.LootEntry {
	def := s.catalog.Get(active.DungeonID)
	if def == nil {
		return nil
	}
	return def.CombinedLootTable()
}
