package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lobby-client/internal/client"
	"github.com/DoyleJ11/lobby-client/internal/engine"
	"github.com/DoyleJ11/lobby-client/internal/session"
	"github.com/DoyleJ11/lobby-client/internal/ws"
)

type fakeCommander struct {
	view  client.View
	calls []string
}

func (f *fakeCommander) View(context.Context) (client.View, error) { return f.view, nil }
func (f *fakeCommander) CreateGame(context.Context) error {
	f.calls = append(f.calls, "create")
	return nil
}
func (f *fakeCommander) JoinGame(_ context.Context, id string) error {
	f.calls = append(f.calls, "join "+id)
	return nil
}
func (f *fakeCommander) SelectCharacter(_ context.Context, name string) error {
	f.calls = append(f.calls, "select "+name)
	return nil
}
func (f *fakeCommander) DoActionIndex(_ context.Context, i int) error {
	f.calls = append(f.calls, "index")
	return nil
}
func (f *fakeCommander) DoAction(_ context.Context, a string) error {
	f.calls = append(f.calls, "action "+a)
	return nil
}
func (f *fakeCommander) Echo(_ context.Context, text string) error {
	f.calls = append(f.calls, "echo "+text)
	return nil
}

func TestRunCommand(t *testing.T) {
	f := &fakeCommander{}
	var out bytes.Buffer
	ctx := context.Background()

	for _, line := range []string{"create", "join g1", "select  sir robin ", "act 0", "act defend", "echo hello there", ""} {
		quit, err := runCommand(ctx, f, &out, line)
		require.NoError(t, err, line)
		assert.False(t, quit)
	}
	assert.Equal(t, []string{"create", "join g1", "select sir robin", "index", "action defend", "echo hello there"}, f.calls)

	_, err := runCommand(ctx, f, &out, "join")
	assert.Error(t, err)
	_, err = runCommand(ctx, f, &out, "act")
	assert.Error(t, err)

	quit, err := runCommand(ctx, f, &out, "quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestRunCommand_GamesAndUsage(t *testing.T) {
	f := &fakeCommander{}
	var out bytes.Buffer

	_, err := runCommand(context.Background(), f, &out, "games")
	require.NoError(t, err)
	assert.Equal(t, "No games available\n", out.String())

	out.Reset()
	f.view.State.Games = []string{"g1", "g2"}
	_, err = runCommand(context.Background(), f, &out, "games")
	require.NoError(t, err)
	assert.Equal(t, "g1\ng2\n", out.String())

	out.Reset()
	_, err = runCommand(context.Background(), f, &out, "dance")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "commands:"))
}

type fakeSubscriber struct {
	rounds [][]session.Snapshot
	ended  chan struct{}
}

func (f *fakeSubscriber) Subscribe(context.Context, int) (string, <-chan session.Snapshot, error) {
	if len(f.rounds) == 0 {
		return "", nil, ws.ErrNotConnected
	}
	ch := make(chan session.Snapshot, len(f.rounds[0]))
	for _, s := range f.rounds[0] {
		ch <- s
	}
	close(ch)
	f.rounds = f.rounds[1:]
	return "sub", ch, nil
}

func (f *fakeSubscriber) Ended() <-chan struct{} { return f.ended }

func snapWith(lines ...string) session.Snapshot {
	return session.Snapshot{State: engine.State{Transcript: lines}}
}

func TestPrintTranscript_ResubscribesAndPrintsEachLineOnce(t *testing.T) {
	f := &fakeSubscriber{
		rounds: [][]session.Snapshot{
			{snapWith("a"), snapWith("a", "b")},
			{snapWith("a", "b", "c")},
		},
		ended: make(chan struct{}),
	}
	var out bytes.Buffer

	done := make(chan error, 1)
	go func() { done <- printTranscript(context.Background(), f, &out) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("printTranscript did not return")
	}
	assert.Equal(t, "a\nb\nc\n", out.String())
}
