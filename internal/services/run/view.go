package run

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// StatusView is the render contract for a run's status embed. The Discord
// layer turns this into an embed without reading run state itself.
type StatusView struct {
	Title      string
	Subtitle   string
	RoomLine   string
	Detail     []string
	PartyLines []string
	BuffLines  []string
	Footer     string
}

// ActionView is one legal affordance for the current room
type ActionView struct {
	ID       string
	Label    string
	Disabled bool
	Danger   bool
}

// RenderStatus builds the view model for the run's status embed
func (s *service) RenderStatus(r *run.Run) *StatusView {
	view := &StatusView{
		Title:    fmt.Sprintf("%s — %s", r.DungeonName, titleCaser.String(r.Theme)),
		Subtitle: fmt.Sprintf("Biome: %s", r.Biome),
		Footer:   fmt.Sprintf("Run %s · started %s", r.ID, r.StartTime.Format(time.Kitchen)),
	}

	current := r.CurrentRoom()
	if current == nil {
		view.RoomLine = "The dungeon lies conquered."
	} else {
		view.RoomLine = fmt.Sprintf("Room %d of %d — %s (difficulty %d)",
			current.Number, len(r.Rooms), roomTitle(current), current.Difficulty)
		view.Detail = roomDetail(current)
	}

	for _, p := range r.OrderedParty() {
		status := ""
		if p.IsIncapacitated() {
			status = " 💀"
		} else if p.IsDefending(time.Now()) {
			status = " 🛡️"
		}
		view.PartyLines = append(view.PartyLines,
			fmt.Sprintf("**%s** (Lv %d) ❤️ %d/%d 🔵 %d/%d%s",
				p.Username, p.Level, p.HP, p.MaxHP, p.Mana, p.MaxMana, status))
	}

	for _, b := range r.TeamBuffs {
		view.BuffLines = append(view.BuffLines, fmt.Sprintf("✨ %s — %s", b.Name, b.Description))
	}

	return view
}

func roomTitle(room *run.Room) string {
	switch room.Type {
	case run.RoomTypeCombat:
		return "Combat"
	case run.RoomTypePuzzle:
		return "Puzzle"
	case run.RoomTypeTreasure:
		return "Treasure"
	case run.RoomTypeEvent:
		return "Event"
	case run.RoomTypePreBoss:
		return "Elite Challenge"
	case run.RoomTypeBoss:
		return "Boss"
	default:
		return string(room.Type)
	}
}

func roomDetail(room *run.Room) []string {
	var lines []string

	switch room.Type {
	case run.RoomTypeCombat:
		for _, e := range room.Enemies {
			lines = append(lines, enemyLine(e))
		}
		if !room.Completed {
			lines = append(lines, fmt.Sprintf("%d of %d enemies still standing",
				len(room.LivingTargets()), len(room.Enemies)))
		}
	case run.RoomTypePuzzle:
		lines = append(lines, room.Puzzle.Question)
		if room.PuzzleState.Solved {
			lines = append(lines, "✅ Solved")
		} else if room.Puzzle.Type != run.PuzzleTypeSequence {
			lines = append(lines, fmt.Sprintf("Attempts: %d/%d",
				room.PuzzleState.Attempts, room.PuzzleState.MaxAttempts))
		}
	case run.RoomTypeTreasure:
		if room.Completed {
			lines = append(lines, fmt.Sprintf("💰 Claimed: %d coins", room.Loot.Coins))
		} else {
			lines = append(lines, "A heavy chest waits, untouched.")
		}
	case run.RoomTypeEvent:
		lines = append(lines, fmt.Sprintf("**%s** — %s", room.Event.Name, room.Event.Description))
		if room.Event.Type == run.EventTypeChoice && room.EventChoice == "" && !room.Completed {
			for _, opt := range room.Event.Options {
				lines = append(lines, fmt.Sprintf("• **%s**: %s", opt.Label, opt.Description))
			}
		}
	case run.RoomTypePreBoss:
		if room.Challenge.Engaged {
			lines = append(lines, enemyLine(room.Challenge.Enemy))
		} else {
			lines = append(lines, "An elite guardian bars the way to the boss.")
		}
	case run.RoomTypeBoss:
		if room.Boss != nil {
			lines = append(lines, enemyLine(room.Boss))
		}
	}

	if room.Completed {
		lines = append(lines, fmt.Sprintf("Rewards: %d xp, %d coins", room.Rewards.XP, room.Rewards.Coins))
	}

	return lines
}

func enemyLine(e *run.Enemy) string {
	if !e.IsAlive() {
		return fmt.Sprintf("~~%s~~ ☠️", e.Name)
	}
	line := fmt.Sprintf("**%s** ❤️ %d/%d ⚔️ %d", e.Name, e.HP, e.MaxHP, e.Damage)
	for _, eff := range e.StatusEffects {
		line += fmt.Sprintf(" [%s %d]", eff.Type, eff.Duration)
	}
	return line
}

// RenderActions builds the legal affordances for the current room plus the
// navigation affordances
func (s *service) RenderActions(r *run.Run) []ActionView {
	var actions []ActionView

	current := r.CurrentRoom()
	if current != nil && !current.Completed {
		switch current.Type {
		case run.RoomTypeCombat, run.RoomTypeBoss:
			actions = append(actions,
				ActionView{ID: "attack", Label: "Attack"},
				ActionView{ID: "ability", Label: "Ability"},
				ActionView{ID: "defend", Label: "Defend"},
			)
		case run.RoomTypePuzzle:
			actions = append(actions, ActionView{ID: "solve", Label: "Solve"})
		case run.RoomTypeTreasure:
			actions = append(actions, ActionView{ID: "claim", Label: "Claim"})
		case run.RoomTypeEvent:
			if current.Event.Type == run.EventTypeChoice && current.EventChoice == "" {
				for _, opt := range current.Event.Options {
					actions = append(actions, ActionView{
						ID:    "choice:" + opt.ID,
						Label: opt.Label,
					})
				}
			} else {
				actions = append(actions, ActionView{ID: "interact", Label: "Interact"})
			}
		case run.RoomTypePreBoss:
			if current.Challenge.Engaged {
				actions = append(actions,
					ActionView{ID: "attack", Label: "Attack"},
					ActionView{ID: "ability", Label: "Ability"},
					ActionView{ID: "defend", Label: "Defend"},
				)
			} else {
				actions = append(actions, ActionView{ID: "challenge", Label: "Challenge"})
			}
		}
	}

	if current != nil && r.IsFinalRoom() && current.Completed {
		actions = append(actions, ActionView{ID: "complete", Label: "Complete Run"})
	} else {
		actions = append(actions, ActionView{
			ID:       "advance",
			Label:    "Advance",
			Disabled: current == nil || !current.Completed,
		})
	}

	actions = append(actions, ActionView{ID: "leave", Label: "Leave", Danger: true})

	return actions
}
