package protocol

import (
	"encoding/json"

	"github.com/DoyleJ11/lobby-client/internal/engine"
	"github.com/DoyleJ11/lobby-client/internal/types"
	pub "github.com/DoyleJ11/lobby-client/pkg/types"
)

// Command is one outbound client action. Identity fields are copied as-is;
// callers must make sure the identity is ready before building player
// scoped commands.
type Command struct {
	Action pub.Action
	Data   any
}

func Init() Command {
	return Command{Action: pub.ActionInit, Data: struct{}{}}
}

func CreateGame() Command {
	return Command{Action: pub.ActionCreateGame, Data: struct{}{}}
}

func JoinGame(gameID string, id engine.Identity) Command {
	return Command{
		Action: pub.ActionJoinGame,
		Data:   types.JoinGameData{PlayerCommandData: playerData(gameID, id)},
	}
}

func SelectCharacter(gameID string, id engine.Identity, characterName string) Command {
	return Command{
		Action: pub.ActionSelectCharacter,
		Data: types.SelectCharacterData{
			PlayerCommandData: playerData(gameID, id),
			CharacterName:     characterName,
		},
	}
}

// DoActionIndex addresses an entry of GameState.Actions by position.
func DoActionIndex(gameID string, id engine.Identity, index int) Command {
	return Command{
		Action: pub.ActionDoAction,
		Data: types.DoActionData{
			PlayerCommandData: playerData(gameID, id),
			ActionIndex:       &index,
		},
	}
}

func DoAction(gameID string, id engine.Identity, action string) Command {
	return Command{
		Action: pub.ActionDoAction,
		Data: types.DoActionData{
			PlayerCommandData: playerData(gameID, id),
			Action:            &action,
		},
	}
}

func Echo(text string) Command {
	return Command{Action: pub.ActionEcho, Data: text}
}

func Encode(cmd Command) ([]byte, error) {
	data := cmd.Data
	if data == nil {
		data = struct{}{}
	}
	return json.Marshal(types.ClientMessage{Action: string(cmd.Action), Data: data})
}

func playerData(gameID string, id engine.Identity) types.PlayerCommandData {
	return types.PlayerCommandData{
		GameID:      gameID,
		PlayerID:    id.PlayerIDOr(""),
		PlayerToken: id.PlayerTokenOr(""),
	}
}
