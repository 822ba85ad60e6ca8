package run

import (
	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
)

// puzzleCatalog is the fixed pool the generator draws from, filtered by
// room difficulty. Math questions are stored as plain arithmetic expressions
// and graded through the constrained evaluator.
var puzzleCatalog = []run.Puzzle{
	{
		Type:       run.PuzzleTypeSequence,
		Question:   "Press the runes in the order they flash: each of you must strike one.",
		Solution:   "312",
		Hint:       "Three runes, three strikes.",
		Difficulty: 1,
	},
	{
		Type:       run.PuzzleTypeSequence,
		Question:   "Five pressure plates must be weighed down in turn.",
		Solution:   "41523",
		Hint:       "Five plates, five presses.",
		Difficulty: 3,
	},
	{
		Type:       run.PuzzleTypeRiddle,
		Question:   "I speak without a mouth and hear without ears. What am I?",
		Solution:   "echo",
		Hint:       "You hear it in caves.",
		Difficulty: 1,
	},
	{
		Type:       run.PuzzleTypeRiddle,
		Question:   "The more you take, the more you leave behind. What am I?",
		Solution:   "footsteps",
		Hint:       "Look down at the dust.",
		Difficulty: 2,
	},
	{
		Type:       run.PuzzleTypeRiddle,
		Question:   "I have cities but no houses, forests but no trees, water but no fish. What am I?",
		Solution:   "map",
		Hint:       "Every delver carries one.",
		Difficulty: 3,
	},
	{
		Type:       run.PuzzleTypeMath,
		Question:   "3 + 4 * 2",
		Solution:   "11",
		Hint:       "Multiply before you add.",
		Difficulty: 1,
	},
	{
		Type:       run.PuzzleTypeMath,
		Question:   "(12 - 4) * 3 + 6",
		Solution:   "30",
		Hint:       "Work the brackets first.",
		Difficulty: 2,
	},
	{
		Type:       run.PuzzleTypeMath,
		Question:   "100 / 4 - 3 * 5",
		Solution:   "10",
		Hint:       "Divide and multiply before subtracting.",
		Difficulty: 4,
	},
	{
		Type:       run.PuzzleTypePattern,
		Question:   "2, 4, 8, 16, ?",
		Solution:   "32",
		Hint:       "Each number doubles.",
		Difficulty: 2,
	},
	{
		Type:       run.PuzzleTypePattern,
		Question:   "1, 1, 2, 3, 5, 8, ?",
		Solution:   "13",
		Hint:       "Add the previous two.",
		Difficulty: 3,
	},
}

// eventCatalog is the fixed pool of room events, filtered by difficulty
var eventCatalog = []run.Event{
	{
		Type:        run.EventTypeHeal,
		Name:        "Restorative Spring",
		Description: "Cool water pools in a carved basin. The party drinks deep.",
		Difficulty:  1,
		HealPercent: 0.4,
		RestoreMana: true,
	},
	{
		Type:        run.EventTypeHeal,
		Name:        "Shrine of Mending",
		Description: "A forgotten shrine still hums with gentle light.",
		Difficulty:  3,
		HealPercent: 0.6,
	},
	{
		Type:        run.EventTypeBuff,
		Name:        "Whetstone Altar",
		Description: "Blades dragged across the altar come away keener.",
		Difficulty:  1,
		Buff: &run.TeamBuff{
			Name:        "Honed Edges",
			Description: "+5 power for the rest of the run",
			Power:       5,
			Duration:    "run",
		},
	},
	{
		Type:        run.EventTypeCombatBonus,
		Name:        "War Drums",
		Description: "Distant drums quicken the party's pulse.",
		Difficulty:  2,
		Buff: &run.TeamBuff{
			Name:        "Battle Rhythm",
			Description: "+10% critical strike chance",
			CritChance:  0.10,
			Duration:    "run",
		},
	},
	{
		Type:        run.EventTypeLootBonus,
		Name:        "Prospector's Ghost",
		Description: "A spectral miner points out seams the living would miss.",
		Difficulty:  2,
		Buff: &run.TeamBuff{
			Name:        "Keen Eyes",
			Description: "+20% loot chance",
			LootBonus:   0.20,
			Duration:    "run",
		},
	},
	{
		Type:        run.EventTypeBuff,
		Name:        "Stoneward Shrine",
		Description: "Old wards settle over the party like a second skin.",
		Difficulty:  1,
		Buff: &run.TeamBuff{
			Name:        "Stone Skin",
			Description: "-3 damage from enemy counters",
			Defense:     3,
			Duration:    "run",
		},
	},
	{
		Type:        run.EventTypeChoice,
		Name:        "The Broker's Bargain",
		Description: "A hooded figure spreads three offerings on a cloth.",
		Difficulty:  1,
		Options: []run.EventOption{
			{ID: "coins", Label: "Pouch of Coin", Description: "Guaranteed coin, scaled to the depths", Payout: "coins"},
			{ID: "item", Label: "Wrapped Bundle", Description: "A random trinket from these halls", Payout: "item"},
			{ID: "buff", Label: "Whispered Secret", Description: "A word of power for the whole party", Payout: "buff"},
		},
	},
	{
		Type:        run.EventTypeChoice,
		Name:        "Twin Pedestals",
		Description: "Two pedestals, one gleaming, one humming.",
		Difficulty:  3,
		Options: []run.EventOption{
			{ID: "coins", Label: "Gleaming Pedestal", Description: "Take the treasure", Payout: "coins"},
			{ID: "buff", Label: "Humming Pedestal", Description: "Take the power", Payout: "buff"},
		},
	},
}
