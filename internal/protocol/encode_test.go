package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lobby-client/internal/engine"
)

func TestEncode(t *testing.T) {
	pid, tok := "p1", "t1"
	id := engine.Identity{PlayerID: &pid, PlayerToken: &tok}

	cases := []struct {
		name string
		cmd  Command
		want string
	}{
		{"init", Init(), `{"action":"init","data":{}}`},
		{"createGame", CreateGame(), `{"action":"createGame","data":{}}`},
		{"nil data", Command{Action: "createGame"}, `{"action":"createGame","data":{}}`},
		{
			"joinGame",
			JoinGame("g1", id),
			`{"action":"joinGame","data":{"gameId":"g1","playerId":"p1","playerToken":"t1"}}`,
		},
		{
			"selectCharacter",
			SelectCharacter("g1", id, "knight"),
			`{"action":"selectCharacter","data":{"gameId":"g1","playerId":"p1","playerToken":"t1","characterName":"knight"}}`,
		},
		{
			"doAction by index",
			DoActionIndex("g1", id, 0),
			`{"action":"doAction","data":{"gameId":"g1","playerId":"p1","playerToken":"t1","actionIndex":0}}`,
		},
		{
			"doAction by name",
			DoAction("g1", id, "attack"),
			`{"action":"doAction","data":{"gameId":"g1","playerId":"p1","playerToken":"t1","action":"attack"}}`,
		},
		{"echo", Echo("hello"), `{"action":"echo","data":"hello"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.cmd)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestEncode_PendingIdentityIsNotValidated(t *testing.T) {
	got, err := Encode(JoinGame("g1", engine.Identity{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"joinGame","data":{"gameId":"g1","playerId":"","playerToken":""}}`, string(got))
}
