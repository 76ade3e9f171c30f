package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lobby-client/pkg/types"
)

func strPtr(s string) *string { return &s }

func TestLobbyMembership(t *testing.T) {
	cases := []struct {
		name string
		msgs []Msg
		want []string
	}{
		{
			name: "game_ids unions in order",
			msgs: []Msg{GameIDs{IDs: []string{"g1", "g2"}}, GameIDs{IDs: []string{"g3", "g1", "g4"}}},
			want: []string{"g1", "g2", "g3", "g4"},
		},
		{
			name: "game_ids skips duplicates inside one message",
			msgs: []Msg{GameIDs{IDs: []string{"g1", "g1", "g2"}}},
			want: []string{"g1", "g2"},
		},
		{
			name: "game_created twice is idempotent",
			msgs: []Msg{GameCreated{GameID: "g1"}, GameCreated{GameID: "g1"}},
			want: []string{"g1"},
		},
		{
			name: "removal of unknown id is a no-op",
			msgs: []Msg{GameCreated{GameID: "g1"}, GameNoLongerAvailable{GameID: "nope"}},
			want: []string{"g1"},
		},
		{
			name: "removed id can be re-added later and goes to the end",
			msgs: []Msg{
				GameIDs{IDs: []string{"g1", "g2"}},
				GameNoLongerAvailable{GameID: "g1"},
				GameCreated{GameID: "g1"},
			},
			want: []string{"g2", "g1"},
		},
		{
			name: "removal keeps relative order",
			msgs: []Msg{GameIDs{IDs: []string{"a", "b", "c"}}, GameNoLongerAvailable{GameID: "b"}},
			want: []string{"a", "c"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyAll(NewEmptyState(), tc.msgs...)
			if diff := cmp.Diff(tc.want, got.Games); diff != "" {
				t.Fatalf("games mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLobbyMembership_MatchesNaiveModel(t *testing.T) {
	// Walk a fixed pseudo-random sequence and compare against a simple list model.
	ids := []string{"a", "b", "c", "d", "e"}
	s := NewEmptyState()
	var model []string
	contains := func(id string) int {
		for i, m := range model {
			if m == id {
				return i
			}
		}
		return -1
	}

	seed := uint32(7)
	for step := 0; step < 500; step++ {
		seed = seed*1103515245 + 12345
		id := ids[(seed>>8)%uint32(len(ids))]
		switch (seed >> 16) % 3 {
		case 0:
			s = Apply(s, GameCreated{GameID: id})
			if contains(id) < 0 {
				model = append(model, id)
			}
		case 1:
			s = Apply(s, GameNoLongerAvailable{GameID: id})
			if i := contains(id); i >= 0 {
				model = append(model[:i], model[i+1:]...)
			}
		case 2:
			other := ids[(seed>>4)%uint32(len(ids))]
			s = Apply(s, GameIDs{IDs: []string{id, other}})
			for _, x := range []string{id, other} {
				if contains(x) < 0 {
					model = append(model, x)
				}
			}
		}
		require.Equal(t, len(model), len(s.Games), "step %d", step)
		for i := range model {
			require.Equal(t, model[i], s.Games[i], "step %d", step)
		}
	}
}

func TestIdentity(t *testing.T) {
	s := Apply(NewEmptyState(), SetPlayerID{PlayerID: "p1"})
	require.NotNil(t, s.Identity.PlayerID)
	assert.Equal(t, "p1", *s.Identity.PlayerID)
	assert.Nil(t, s.Identity.PlayerToken)
	assert.False(t, s.Identity.Ready())

	s = Apply(s, SetPlayer{PlayerID: "p2", Token: "tok"})
	assert.True(t, s.Identity.Ready())
	assert.Equal(t, "p2", s.Identity.PlayerIDOr(""))
	assert.Equal(t, "tok", s.Identity.PlayerTokenOr(""))

	// set_player_id after set_player keeps the token.
	s = Apply(s, SetPlayerID{PlayerID: "p3"})
	assert.Equal(t, "p3", s.Identity.PlayerIDOr(""))
	assert.Equal(t, "tok", s.Identity.PlayerTokenOr(""))
}

func TestSetGame_ReplacesAndClears(t *testing.T) {
	first := &types.GameState{ID: "g1", PlayerIDs: []string{"p1"}, State: types.PhaseWaitingForPlayers}
	second := &types.GameState{ID: "g1", PlayerIDs: []string{"p1", "p2"}, State: types.PhaseSelectingCharacters}

	s := Apply(NewEmptyState(), SetGame{Game: first})
	require.Same(t, first, s.Game)

	s = Apply(s, SetGame{Game: second})
	require.Same(t, second, s.Game)

	s = Apply(s, SetGame{Game: nil})
	assert.Nil(t, s.Game)
}

func TestTranscriptFallback(t *testing.T) {
	s := ApplyAll(NewEmptyState(),
		LogLine{Text: "Connected to websocket server"},
		Unrecognized{Raw: "garbage{"},
		Unrecognized{Raw: "garbage{"},
	)
	assert.Equal(t, []string{"Connected to websocket server", "garbage{", "garbage{"}, s.Transcript)
}

func TestApply_DoesNotMutatePreviousState(t *testing.T) {
	base := ApplyAll(NewEmptyState(),
		GameIDs{IDs: []string{"g1", "g2"}},
		LogLine{Text: "one"},
	)
	// Give the transcript spare capacity so an in-place append would be visible.
	base.Transcript = append(make([]string, 0, 8), base.Transcript...)
	gamesBefore := append([]string(nil), base.Games...)

	a := Apply(base, LogLine{Text: "a"})
	b := Apply(base, LogLine{Text: "b"})
	_ = Apply(base, GameNoLongerAvailable{GameID: "g1"})

	assert.Equal(t, []string{"one", "a"}, a.Transcript)
	assert.Equal(t, []string{"one", "b"}, b.Transcript)
	assert.Equal(t, []string{"one"}, base.Transcript)
	assert.Equal(t, gamesBefore, base.Games)
}

func TestApply_UnknownMsgIsNoop(t *testing.T) {
	s := Apply(NewEmptyState(), GameCreated{GameID: "g1"})
	got := Apply(s, nil)
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func TestScenario_HandshakeAndLobby(t *testing.T) {
	s := ApplyAll(NewEmptyState(),
		SetPlayerID{PlayerID: "p1"},
		GameIDs{IDs: []string{"g1", "g2"}},
		GameCreated{GameID: "g1"},
		GameNoLongerAvailable{GameID: "g2"},
	)

	want := State{
		Identity:   Identity{PlayerID: strPtr("p1")},
		Games:      []string{"g1"},
		Transcript: []string{},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}
