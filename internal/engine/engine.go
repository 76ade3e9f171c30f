package engine

import (
	"slices"

	"github.com/DoyleJ11/lobby-client/pkg/types"
)

type Identity struct {
	PlayerID    *string `json:"playerId"`
	PlayerToken *string `json:"playerToken"`
}

// Ready reports whether both halves of the identity have been issued.
func (id Identity) Ready() bool {
	return id.PlayerID != nil && id.PlayerToken != nil
}

type State struct {
	Identity   Identity         `json:"identity"`
	Games      []string         `json:"games"`
	Game       *types.GameState `json:"game"`
	Transcript []string         `json:"transcript"`
}

type Msg interface{ isEngineMsg() }

type GameIDs struct {
	IDs []string
}

type GameCreated struct {
	GameID string
}

type GameNoLongerAvailable struct {
	GameID string
}

type SetPlayerID struct {
	PlayerID string
}

type SetPlayer struct {
	PlayerID string
	Token    string
}

// SetGame with a nil Game clears the active game.
type SetGame struct {
	Game *types.GameState
}

// Unrecognized carries a push that could not be decoded, verbatim.
type Unrecognized struct {
	Raw string
}

// LogLine is a locally originated transcript entry.
type LogLine struct {
	Text string
}

func (GameIDs) isEngineMsg()               {}
func (GameCreated) isEngineMsg()           {}
func (GameNoLongerAvailable) isEngineMsg() {}
func (SetPlayerID) isEngineMsg()           {}
func (SetPlayer) isEngineMsg()             {}
func (SetGame) isEngineMsg()               {}
func (Unrecognized) isEngineMsg()          {}
func (LogLine) isEngineMsg()               {}

// Apply folds one message into s and returns the new state.
// s is never modified; slices shared with s are copied before they change.
func Apply(s State, m Msg) State {
	newState := s

	switch msg := m.(type) {
	case GameIDs:
		newState.Games = unionGames(s.Games, msg.IDs)

	case GameCreated:
		newState.Games = unionGames(s.Games, []string{msg.GameID})

	case GameNoLongerAvailable:
		if !slices.Contains(s.Games, msg.GameID) {
			break
		}
		newState.Games = slices.DeleteFunc(slices.Clone(s.Games), func(id string) bool {
			return id == msg.GameID
		})

	case SetPlayerID:
		id := msg.PlayerID
		newState.Identity.PlayerID = &id

	case SetPlayer:
		id, token := msg.PlayerID, msg.Token
		newState.Identity = Identity{PlayerID: &id, PlayerToken: &token}

	case SetGame:
		newState.Game = msg.Game

	case Unrecognized:
		newState.Transcript = appendLine(s.Transcript, msg.Raw)

	case LogLine:
		newState.Transcript = appendLine(s.Transcript, msg.Text)

	default:
		// nil or a foreign Msg implementation; nothing to fold.
	}

	return newState
}

// ApplyAll folds msgs into s in order.
func ApplyAll(s State, msgs ...Msg) State {
	for _, m := range msgs {
		s = Apply(s, m)
	}
	return s
}
