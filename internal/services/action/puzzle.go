package action

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
	"github.com/KirkDiggler/dungeon-run-discord/internal/mathexpr"
)

// handleSolve resolves a puzzle attempt. Sequence puzzles complete on a
// running count of presses; the other types grade the submitted answer
// against a 3-attempt budget.
func (s *service) handleSolve(active *run.Run, room *run.Room, actor *run.PlayerState, answer string) (*Result, error) {
	if room.Type != run.RoomTypePuzzle {
		return nil, dungerr.New(dungerr.CodeWrongRoomType, "there is no puzzle here")
	}

	puzzle := room.Puzzle
	state := room.PuzzleState
	if state.Solved {
		return nil, dungerr.InvalidArgument("this puzzle is already solved")
	}

	if puzzle.Type == run.PuzzleTypeSequence {
		return s.solveSequence(active, room, actor)
	}

	if state.Attempts >= state.MaxAttempts {
		return nil, dungerr.Newf(dungerr.CodeTooManyAttempts,
			"the mechanism has locked up. Hint: %s", puzzle.Hint)
	}

	if !answersMatch(puzzle, answer) {
		state.Attempts++
		if state.Attempts >= state.MaxAttempts {
			// Out of attempts: the puzzle seizes shut and yields nothing,
			// but the party is not softlocked behind it
			room.MarkCompleted()
			return nil, dungerr.Newf(dungerr.CodeTooManyAttempts,
				"the mechanism grinds shut for good. Hint: %s", puzzle.Hint)
		}
		return &Result{
			Run: active,
			Message: fmt.Sprintf("❌ Not quite, %s. %d attempt(s) left.",
				actor.Username, state.MaxAttempts-state.Attempts),
		}, nil
	}

	state.Solved = true
	grantPuzzleRewards(room)
	room.MarkCompleted()

	return &Result{
		Run: active,
		Message: fmt.Sprintf("✅ %s cracks the %s puzzle! +%d xp, +%d coins.",
			actor.Username, puzzle.Type, room.Rewards.XP, room.Rewards.Coins),
		RoomCompleted: true,
	}, nil
}

// solveSequence counts participating presses toward the solution length.
// Any member's press advances the count; the announced order is flavor and
// is not validated, so a sequence puzzle cannot be failed.
func (s *service) solveSequence(active *run.Run, room *run.Room, actor *run.PlayerState) (*Result, error) {
	state := room.PuzzleState
	state.SequenceProgress++

	needed := len(room.Puzzle.Solution)
	if state.SequenceProgress < needed {
		return &Result{
			Run: active,
			Message: fmt.Sprintf("%s strikes a rune. %d of %d.",
				actor.Username, state.SequenceProgress, needed),
		}, nil
	}

	state.Solved = true
	grantPuzzleRewards(room)
	room.MarkCompleted()

	return &Result{
		Run: active,
		Message: fmt.Sprintf("✅ The final rune rings true! +%d xp, +%d coins.",
			room.Rewards.XP, room.Rewards.Coins),
		RoomCompleted: true,
	}, nil
}

// answersMatch grades a submitted answer. Math questions are re-evaluated
// with the constrained parser rather than trusting the stored solution.
func answersMatch(puzzle *run.Puzzle, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}

	if puzzle.Type == run.PuzzleTypeMath {
		expected, err := mathexpr.Evaluate(puzzle.Question)
		if err != nil {
			// Malformed question; fall back to the stored solution text
			return strings.EqualFold(answer, puzzle.Solution)
		}
		given, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return false
		}
		return math.Abs(given-expected) < 0.0001
	}

	return strings.EqualFold(answer, puzzle.Solution)
}

// grantPuzzleRewards assigns the per-type reward formulas, scaled by room
// difficulty
func grantPuzzleRewards(room *run.Room) {
	d := room.Difficulty
	switch room.Puzzle.Type {
	case run.PuzzleTypeSequence:
		room.Rewards.XP = 80 + d*25
		room.Rewards.Coins = 50 + d*20
	case run.PuzzleTypeRiddle:
		room.Rewards.XP = 100 + d*30
		room.Rewards.Coins = 60 + d*25
	case run.PuzzleTypeMath:
		room.Rewards.XP = 90 + d*28
		room.Rewards.Coins = 55 + d*22
	case run.PuzzleTypePattern:
		room.Rewards.XP = 95 + d*30
		room.Rewards.Coins = 55 + d*25
	}
}
