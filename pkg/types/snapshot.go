package types

import "slices"

type GamePhase string

const (
	PhaseWaitingForPlayers   GamePhase = "WAITING_FOR_PLAYERS"
	PhaseSelectingCharacters GamePhase = "SELECTING_CHARACTERS"
	PhaseGameLoop            GamePhase = "GAME_LOOP"
	PhaseGameOver            GamePhase = "GAME_OVER"
)

// Known reports whether p is one of the phases the client knows how to render.
// Unknown phases are kept as-is; the server is authoritative.
func (p GamePhase) Known() bool {
	switch p {
	case PhaseWaitingForPlayers, PhaseSelectingCharacters, PhaseGameLoop, PhaseGameOver:
		return true
	}
	return false
}

type Settings struct {
	MaxPlayers int `json:"maxPlayers"`
}

type Character struct {
	PlayerID    string `json:"playerId"`
	CharacterID string `json:"characterId"`
}

type ChatMessage struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// GameState is a full snapshot of one game as pushed by set_game.
// Snapshots are replaced wholesale and never mutated after decoding.
type GameState struct {
	ID         string        `json:"id"`
	PlayerIDs  []string      `json:"playerIds"`
	State      GamePhase     `json:"state"`
	CanAct     []string      `json:"canAct"`
	Settings   Settings      `json:"settings"`
	Characters []Character   `json:"characters"`
	Messages   []ChatMessage `json:"messages"`
	Actions    []string      `json:"actions"`
}

func (g *GameState) HasPlayer(playerID string) bool {
	return g != nil && slices.Contains(g.PlayerIDs, playerID)
}

func (g *GameState) PlayerCanAct(playerID string) bool {
	return g != nil && slices.Contains(g.CanAct, playerID)
}

// CharacterOf returns the character chosen by playerID, if any.
func (g *GameState) CharacterOf(playerID string) (string, bool) {
	if g == nil {
		return "", false
	}
	for _, c := range g.Characters {
		if c.PlayerID == playerID {
			return c.CharacterID, true
		}
	}
	return "", false
}
