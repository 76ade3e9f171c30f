package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/lobby-client/internal/config"
	"github.com/DoyleJ11/lobby-client/internal/engine"
	"github.com/DoyleJ11/lobby-client/internal/protocol"
	"github.com/DoyleJ11/lobby-client/internal/session"
	"github.com/DoyleJ11/lobby-client/internal/ws"
)

var ErrIdentityPending = errors.New("player identity not issued yet")
var ErrNoActiveGame = errors.New("no active game")
var ErrBlankCharacter = errors.New("character name is blank")
var ErrActionOutOfRange = errors.New("action index out of range")

// Client owns one session: one transport, one store, opened once.
type Client struct {
	conn  *ws.Conn
	store *session.Store
	log   *zap.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

type View struct {
	session.View
	// InGame is true once there is an active game and a full identity to
	// act in it with.
	InGame bool `json:"inGame"`
}

func New(parent context.Context, cfg config.Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)

	conn := ws.New(cfg.WSURL, ws.Options{
		ReadLimit:    cfg.ReadLimitBytes,
		WriteTimeout: cfg.SendTimeout,
	}, log.Named("ws"))

	return &Client{
		conn:   conn,
		store:  session.NewStore(ctx, conn, session.Options{SendTimeout: cfg.SendTimeout}, log.Named("session")),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start opens the transport. A session is opened at most once.
func (c *Client) Start() error {
	return c.conn.Open(c.ctx)
}

// Run starts the session and blocks until ctx is done or the connection
// ends, then tears the session down.
func (c *Client) Run(ctx context.Context) error {
	if err := c.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-c.store.Ended():
		c.log.Info("session ended")
	}
	return c.Close()
}

// Ended is closed when the connection has finished or the client was closed.
func (c *Client) Ended() <-chan struct{} { return c.store.Ended() }

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.store.Shutdown()
		c.closeErr = c.conn.Close()
		c.cancel()
	})
	return c.closeErr
}

func (c *Client) View(ctx context.Context) (View, error) {
	v, err := c.store.View(ctx)
	if err != nil {
		return View{}, err
	}
	return View{View: v, InGame: v.State.Game != nil && v.State.Identity.Ready()}, nil
}

func (c *Client) Subscribe(ctx context.Context, buffer int) (string, <-chan session.Snapshot, error) {
	return c.store.Subscribe(ctx, buffer)
}

func (c *Client) Unsubscribe(ctx context.Context, id string) error {
	return c.store.Unsubscribe(ctx, id)
}

// SendRaw forwards a pre-serialized payload untouched.
func (c *Client) SendRaw(ctx context.Context, payload string) error {
	return c.store.Send(ctx, payload)
}

func (c *Client) CreateGame(ctx context.Context) error {
	return c.store.SendCommand(ctx, protocol.CreateGame())
}

func (c *Client) Echo(ctx context.Context, text string) error {
	return c.store.SendCommand(ctx, protocol.Echo(text))
}

func (c *Client) JoinGame(ctx context.Context, gameID string) error {
	st, err := c.identified(ctx)
	if err != nil {
		return err
	}
	return c.store.SendCommand(ctx, protocol.JoinGame(gameID, st.Identity))
}

func (c *Client) SelectCharacter(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankCharacter
	}
	st, err := c.inGame(ctx)
	if err != nil {
		return err
	}
	return c.store.SendCommand(ctx, protocol.SelectCharacter(st.Game.ID, st.Identity, name))
}

func (c *Client) DoActionIndex(ctx context.Context, index int) error {
	st, err := c.inGame(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(st.Game.Actions) {
		return fmt.Errorf("%w: %d of %d", ErrActionOutOfRange, index, len(st.Game.Actions))
	}
	return c.store.SendCommand(ctx, protocol.DoActionIndex(st.Game.ID, st.Identity, index))
}

func (c *Client) DoAction(ctx context.Context, action string) error {
	st, err := c.inGame(ctx)
	if err != nil {
		return err
	}
	return c.store.SendCommand(ctx, protocol.DoAction(st.Game.ID, st.Identity, action))
}

func (c *Client) identified(ctx context.Context) (engine.State, error) {
	v, err := c.store.View(ctx)
	if err != nil {
		return engine.State{}, err
	}
	if !v.State.Identity.Ready() {
		return engine.State{}, ErrIdentityPending
	}
	return v.State, nil
}

func (c *Client) inGame(ctx context.Context) (engine.State, error) {
	st, err := c.identified(ctx)
	if err != nil {
		return st, err
	}
	if st.Game == nil {
		return engine.State{}, ErrNoActiveGame
	}
	return st, nil
}
