package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/DoyleJ11/lobby-client/internal/engine"
	"github.com/DoyleJ11/lobby-client/internal/types"
	pub "github.com/DoyleJ11/lobby-client/pkg/types"
)

// Decode turns one server push into an engine message. It never fails to
// return something reducible: when err is non-nil the message is an
// engine.Unrecognized carrying raw verbatim, and err is a *DecodeError.
func Decode(raw string) (engine.Msg, error) {
	msg, err := decode(raw)
	if err != nil {
		return engine.Unrecognized{Raw: raw}, &DecodeError{Raw: raw, Err: err}
	}
	return msg, nil
}

func decode(raw string) (engine.Msg, error) {
	var env types.ServerMessage
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	typ, ok := decodeString(env.Type)
	if !ok {
		return nil, ErrMissingType
	}

	switch pub.MessageType(typ) {
	case pub.MsgGameIDs:
		data, ok := decodeObject(env.Data)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs data object", ErrMalformedPayload, typ)
		}
		ids, ok := decodeStrings(data["gameIds"])
		if !ok {
			return nil, fmt.Errorf("%w: %s needs data.gameIds array", ErrMalformedPayload, typ)
		}
		return engine.GameIDs{IDs: ids}, nil

	case pub.MsgGameCreated:
		id, ok := decodeString(env.GameID)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs gameId", ErrMalformedPayload, typ)
		}
		return engine.GameCreated{GameID: id}, nil

	case pub.MsgGameNoLongerAvailable:
		id, ok := decodeString(env.GameID)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs gameId", ErrMalformedPayload, typ)
		}
		return engine.GameNoLongerAvailable{GameID: id}, nil

	case pub.MsgSetPlayerID:
		data, ok := decodeObject(env.Data)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs data object", ErrMalformedPayload, typ)
		}
		id, ok := decodeString(data["playerId"])
		if !ok {
			return nil, fmt.Errorf("%w: %s needs data.playerId", ErrMalformedPayload, typ)
		}
		return engine.SetPlayerID{PlayerID: id}, nil

	case pub.MsgSetPlayer:
		data, ok := decodeObject(env.Data)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs data object", ErrMalformedPayload, typ)
		}
		id, idOK := decodeString(data["playerId"])
		token, tokenOK := decodeString(data["token"])
		if !idOK || !tokenOK {
			return nil, fmt.Errorf("%w: %s needs data.playerId and data.token", ErrMalformedPayload, typ)
		}
		return engine.SetPlayer{PlayerID: id, Token: token}, nil

	case pub.MsgSetGame:
		data, ok := decodeObject(env.Data)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs data object", ErrMalformedPayload, typ)
		}
		rawGame := data["game"]
		if isNull(rawGame) {
			return engine.SetGame{}, nil
		}
		game, err := decodeGame(rawGame)
		if err != nil {
			return nil, err
		}
		return engine.SetGame{Game: game}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func decodeGame(raw json.RawMessage) (*pub.GameState, error) {
	obj, ok := decodeObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: game must be an object or null", ErrMalformedPayload)
	}
	id, ok := decodeString(obj["id"])
	if !ok {
		return nil, fmt.Errorf("%w: game needs id", ErrMalformedPayload)
	}

	g := &pub.GameState{
		ID:         id,
		PlayerIDs:  stringsOrEmpty(obj["playerIds"]),
		CanAct:     stringsOrEmpty(obj["canAct"]),
		Characters: []pub.Character{},
		Messages:   []pub.ChatMessage{},
		Actions:    stringsOrEmpty(obj["actions"]),
	}
	if phase, ok := decodeString(obj["state"]); ok {
		g.State = pub.GamePhase(phase)
	}
	if settings, ok := decodeObject(obj["settings"]); ok {
		var maxPlayers int
		if err := json.Unmarshal(settings["maxPlayers"], &maxPlayers); err == nil {
			g.Settings.MaxPlayers = maxPlayers
		}
	}

	seen := map[string]bool{}
	for _, entry := range objects(obj["characters"]) {
		playerID, ok := decodeString(entry["playerId"])
		if !ok || seen[playerID] {
			continue
		}
		characterID, ok := decodeString(entry["characterId"])
		if !ok {
			continue
		}
		seen[playerID] = true
		g.Characters = append(g.Characters, pub.Character{PlayerID: playerID, CharacterID: characterID})
	}

	for _, entry := range objects(obj["messages"]) {
		from, fromOK := decodeString(entry["from"])
		text, textOK := decodeString(entry["message"])
		if !fromOK || !textOK {
			continue
		}
		g.Messages = append(g.Messages, pub.ChatMessage{From: from, Message: text})
	}

	return g, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if isNull(raw) {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// decodeStrings requires an array and keeps only its string entries.
func decodeStrings(raw json.RawMessage) ([]string, bool) {
	if isNull(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := decodeString(item); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func stringsOrEmpty(raw json.RawMessage) []string {
	if out, ok := decodeStrings(raw); ok {
		return out
	}
	return []string{}
}

func objects(raw json.RawMessage) []map[string]json.RawMessage {
	if isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		if obj, ok := decodeObject(item); ok {
			out = append(out, obj)
		}
	}
	return out
}
