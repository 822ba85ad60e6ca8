package action

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
)

// handleClaim opens a treasure room's pre-generated loot exactly once
func (s *service) handleClaim(active *run.Run, room *run.Room, actor *run.PlayerState) (*Result, error) {
	if room.Type != run.RoomTypeTreasure {
		return nil, dungerr.New(dungerr.CodeWrongRoomType, "there is no treasure here")
	}
	if room.Completed {
		return nil, dungerr.New(dungerr.CodeAlreadyClaimed, "this chest has already been emptied")
	}

	room.Rewards.Coins = room.Loot.Coins
	room.Rewards.Items = append(room.Rewards.Items, room.Loot.Items...)
	room.MarkCompleted()

	msg := fmt.Sprintf("💰 %s pries the chest open: %d coins", actor.Username, room.Loot.Coins)
	if len(room.Loot.Items) > 0 {
		msg += fmt.Sprintf(" and %s", strings.Join(room.Loot.Items, ", "))
	}
	msg += "!"

	return &Result{Run: active, Message: msg, RoomCompleted: true}, nil
}
