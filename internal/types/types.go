package types

import "encoding/json"

type ClientMessage struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

// ServerMessage keeps every field raw so each kind can be type-checked
// on its own terms instead of failing the whole push.
type ServerMessage struct {
	Type   json.RawMessage `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
	GameID json.RawMessage `json:"gameId,omitempty"`
}

type PlayerCommandData struct {
	GameID      string `json:"gameId"`
	PlayerID    string `json:"playerId"`
	PlayerToken string `json:"playerToken"`
}

type JoinGameData struct {
	PlayerCommandData
}

type SelectCharacterData struct {
	PlayerCommandData
	CharacterName string `json:"characterName"`
}

type DoActionData struct {
	PlayerCommandData
	ActionIndex *int    `json:"actionIndex,omitempty"`
	Action      *string `json:"action,omitempty"`
}
