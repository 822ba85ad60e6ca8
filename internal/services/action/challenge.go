package action

import (
	"fmt"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
	dungerr "github.com/KirkDiggler/dungeon-run-discord/internal/errors"
)

// handleChallenge engages the pre-boss elite, turning the room into a
// combat target for the usual attack/ability/defend flow
func (s *service) handleChallenge(active *run.Run, room *run.Room, actor *run.PlayerState) (*Result, error) {
	if room.Type != run.RoomTypePreBoss {
		return nil, dungerr.New(dungerr.CodeWrongRoomType, "there is no challenger here")
	}
	if room.Challenge.Engaged {
		return nil, dungerr.InvalidArgument("the elite already stands before you")
	}

	room.Challenge.Engaged = true

	return &Result{
		Run: active,
		Message: fmt.Sprintf("⚔️ %s steps forward — **%s** accepts the challenge!",
			actor.Username, room.Challenge.Enemy.Name),
	}, nil
}
