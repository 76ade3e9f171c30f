package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var ErrNotConnected = errors.New("websocket is not connected")
var ErrAlreadyOpened = errors.New("connection already opened")

type connState int

const (
	stateIdle connState = iota
	stateConnecting
	stateOpen
	stateClosed
)

type Options struct {
	ReadLimit    int64         // 0 keeps the library default
	WriteTimeout time.Duration // 0 means no per-write timeout
}

// Conn is a single-use client connection. Lifecycle changes and inbound
// messages are delivered in order on Events; the channel is closed after
// the final Closed event.
type Conn struct {
	url  string
	opts Options
	log  *zap.Logger

	mu     sync.Mutex
	state  connState
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc

	events    chan Event
	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func New(url string, opts Options, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{
		url:    url,
		opts:   opts,
		log:    log.With(zap.String("url", url)),
		events: make(chan Event, 64),
	}
}

func (c *Conn) Events() <-chan Event { return c.events }

func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateOpen
}

// Open starts dialing in the background. It may be called once; the
// outcome arrives as Opened or Errored+Closed on Events.
func (c *Conn) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateIdle {
		return ErrAlreadyOpened
	}
	c.state = stateConnecting
	c.ctx, c.cancel = context.WithCancel(ctx)
	go c.run()
	return nil
}

func (c *Conn) run() {
	defer close(c.events)

	c.log.Debug("dialing")
	conn, _, err := websocket.Dial(c.ctx, c.url, nil)
	if err != nil {
		c.setState(stateClosed)
		c.log.Warn("dial failed", zap.Error(err))
		c.emit(Errored{Err: err})
		c.emit(Closed{Code: int(websocket.StatusAbnormalClosure), WasClean: false})
		return
	}
	if c.opts.ReadLimit > 0 {
		conn.SetReadLimit(c.opts.ReadLimit)
	}

	c.mu.Lock()
	if c.state == stateClosed {
		// Close won the race against the dial.
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
		c.emit(Closed{Code: int(websocket.StatusNormalClosure), WasClean: true})
		return
	}
	c.conn = conn
	c.state = stateOpen
	c.mu.Unlock()

	c.log.Info("connected")
	c.emit(Opened{})

	for {
		typ, data, err := conn.Read(c.ctx)
		if err != nil {
			c.finish(err)
			return
		}
		if typ != websocket.MessageText {
			c.log.Debug("binary frame delivered as text", zap.Int("bytes", len(data)))
		}
		c.emit(Received{Data: string(data)})
	}
}

func (c *Conn) finish(readErr error) {
	c.setState(stateClosed)

	if c.closing.Load() {
		c.log.Info("closed by client")
		c.emit(Closed{Code: int(websocket.StatusNormalClosure), WasClean: true})
		return
	}

	var ce websocket.CloseError
	if errors.As(readErr, &ce) {
		c.log.Info("closed by server", zap.Int("code", int(ce.Code)), zap.String("reason", ce.Reason))
		c.emit(Closed{Code: int(ce.Code), Reason: ce.Reason, WasClean: true})
		return
	}

	c.log.Warn("connection lost", zap.Error(readErr))
	c.emit(Errored{Err: readErr})
	c.emit(Closed{Code: int(websocket.StatusAbnormalClosure), WasClean: false})
}

// emit prefers delivery; once the connection is torn down and the buffer is
// full the event is dropped so the reader never blocks forever.
func (c *Conn) emit(ev Event) {
	select {
	case c.events <- ev:
		return
	default:
	}
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

func (c *Conn) setState(s connState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Send writes one text frame. It returns ErrNotConnected unless the
// connection is open.
func (c *Conn) Send(ctx context.Context, payload string) error {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()
	if state != stateOpen || conn == nil {
		return ErrNotConnected
	}

	if c.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.WriteTimeout)
		defer cancel()
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Close tears the connection down. Only the first call does any work.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closing.Store(true)

		c.mu.Lock()
		prev := c.state
		conn, cancel := c.conn, c.cancel
		c.state = stateClosed
		c.mu.Unlock()

		switch prev {
		case stateIdle:
			// No reader goroutine was ever started.
			close(c.events)
		case stateOpen:
			if err := conn.Close(websocket.StatusNormalClosure, "bye"); err != nil && !errors.Is(err, net.ErrClosed) {
				c.closeErr = fmt.Errorf("close: %w", err)
			}
		}
		if cancel != nil {
			cancel()
		}
	})
	return c.closeErr
}
