package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DoyleJ11/lobby-client/internal/client"
	"github.com/DoyleJ11/lobby-client/internal/session"
	"github.com/DoyleJ11/lobby-client/internal/ws"
)

type commander interface {
	View(ctx context.Context) (client.View, error)
	CreateGame(ctx context.Context) error
	JoinGame(ctx context.Context, gameID string) error
	SelectCharacter(ctx context.Context, name string) error
	DoActionIndex(ctx context.Context, index int) error
	DoAction(ctx context.Context, action string) error
	Echo(ctx context.Context, text string) error
}

type subscriber interface {
	Subscribe(ctx context.Context, buffer int) (string, <-chan session.Snapshot, error)
	Ended() <-chan struct{}
}

const usage = `commands:
  create              create a game
  join <gameId>       join a lobby game
  select <name>       pick a character
  act <index|name>    perform a game action
  echo <text>         send free text
  games               list lobby games
  state               print the session as json
  quit                leave`

// runCommand executes one input line. It reports quit for the quit command.
func runCommand(ctx context.Context, c commander, out io.Writer, line string) (bool, error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "create":
		return false, c.CreateGame(ctx)
	case "join":
		if arg == "" {
			return false, errors.New("join needs a game id")
		}
		return false, c.JoinGame(ctx, arg)
	case "select":
		return false, c.SelectCharacter(ctx, arg)
	case "act":
		if arg == "" {
			return false, errors.New("act needs an index or action name")
		}
		if i, err := strconv.Atoi(arg); err == nil {
			return false, c.DoActionIndex(ctx, i)
		}
		return false, c.DoAction(ctx, arg)
	case "echo":
		return false, c.Echo(ctx, arg)
	case "games":
		v, err := c.View(ctx)
		if err != nil {
			return false, err
		}
		if len(v.State.Games) == 0 {
			fmt.Fprintln(out, "No games available")
		}
		for _, id := range v.State.Games {
			fmt.Fprintln(out, id)
		}
		return false, nil
	case "state":
		v, err := c.View(ctx)
		if err != nil {
			return false, err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return false, enc.Encode(v)
	default:
		fmt.Fprintln(out, usage)
		return false, nil
	}
}

// printTranscript writes every new transcript line to out until ctx is done
// or the session stops.
func printTranscript(ctx context.Context, s subscriber, out io.Writer) error {
	printed := 0
	for {
		_, snaps, err := s.Subscribe(ctx, 64)
		if err != nil {
			if errors.Is(err, ws.ErrNotConnected) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		for snap := range snaps {
			lines := snap.State.Transcript
			for ; printed < len(lines); printed++ {
				fmt.Fprintln(out, lines[printed])
			}
		}

		// Closed: either we fell behind or the session is over.
		select {
		case <-ctx.Done():
			return nil
		case <-s.Ended():
			return nil
		default:
		}
	}
}
