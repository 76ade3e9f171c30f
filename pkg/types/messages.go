package types

// Client -> Server
// Every command is {"action": string, "data": ...}.
//
// init: {}
//
// createGame: {}
//
// joinGame:
//   gameId: string
//   playerId: string
//   playerToken: string
//
// selectCharacter:
//   gameId: string
//   playerId: string
//   playerToken: string
//   characterName: string
//
// doAction:
//   gameId: string
//   playerId: string
//   playerToken: string
//   actionIndex: number | action: string
//
// echo: data is a plain string

// Server -> Client
// Every push is {"type": string, ...}.
//
// game_ids:                 data: { gameIds: string[] }
// game_created:             gameId: string
// game_no_longer_available: gameId: string
// set_player_id:            data: { playerId: string }
// set_player:               data: { playerId: string, token: string }
// set_game:                 data: { game: GameState | null }

type MessageType string

const (
	MsgGameIDs               MessageType = "game_ids"
	MsgGameCreated           MessageType = "game_created"
	MsgGameNoLongerAvailable MessageType = "game_no_longer_available"
	MsgSetPlayerID           MessageType = "set_player_id"
	MsgSetPlayer             MessageType = "set_player"
	MsgSetGame               MessageType = "set_game"
)

type Action string

const (
	ActionInit            Action = "init"
	ActionCreateGame      Action = "createGame"
	ActionJoinGame        Action = "joinGame"
	ActionSelectCharacter Action = "selectCharacter"
	ActionDoAction        Action = "doAction"
	ActionEcho            Action = "echo"
)
