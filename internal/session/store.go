package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lobby-client/internal/engine"
	"github.com/DoyleJ11/lobby-client/internal/protocol"
	"github.com/DoyleJ11/lobby-client/internal/ws"
)

type Transport interface {
	Events() <-chan ws.Event
	Send(ctx context.Context, payload string) error
	Close() error
}

type Msg interface{ isSessionMsg() }

// Send asks the store to write payload to the transport. Reply may be nil.
type Send struct {
	Payload string
	Reply   chan error
}

func (Send) isSessionMsg() {}

type Log struct{ Line string }

func (Log) isSessionMsg() {}

type Subscribe struct {
	ID     string
	Outbox chan Snapshot // receives the current snapshot right away
	Reply  chan struct{} // optional; closed once registered
}

func (Subscribe) isSessionMsg() {}

type Unsubscribe struct{ ID string }

func (Unsubscribe) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version        int          `json:"version"`
	NumSubscribers int          `json:"numSubscribers"`
	Connected      bool         `json:"connected"`
	Ended          bool         `json:"ended"`
	State          engine.State `json:"state"`
}

type Options struct {
	SendTimeout time.Duration
}

// Store owns one session's state. A single goroutine applies transport
// events and inbox messages in arrival order; everything else talks to it
// through the inbox.
type Store struct {
	inbox     chan Msg
	transport Transport
	events    <-chan ws.Event
	opts      Options
	log       *zap.Logger

	state     engine.State
	version   int
	didOpen   bool
	connected bool
	clients   map[string]chan Snapshot

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	ended     chan struct{}
	endOnce   sync.Once
	closeOnce sync.Once
}

func NewStore(parent context.Context, t Transport, opts Options, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)

	s := &Store{
		inbox:     make(chan Msg, 64),
		transport: t,
		events:    t.Events(),
		opts:      opts,
		log:       log,
		state:     engine.NewEmptyState(),
		clients:   make(map[string]chan Snapshot),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		ended:     make(chan struct{}),
	}

	go s.loop()
	return s
}

func (s *Store) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case ev, ok := <-s.events:
			if !ok {
				// Transport is finished; keep serving reads until shutdown.
				s.events = nil
				s.markEnded()
				break
			}
			s.handleEvent(ev)

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Send:
				err := s.send(msg.Payload)
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case Log:
				s.apply(engine.LogLine{Text: msg.Line})

			case Subscribe:
				s.clients[msg.ID] = msg.Outbox
				s.deliver(msg.ID, msg.Outbox, Snapshot{Version: s.version, State: s.state})
				if msg.Reply != nil {
					close(msg.Reply)
				}

			case Unsubscribe:
				if ch, ok := s.clients[msg.ID]; ok {
					close(ch)
					delete(s.clients, msg.ID)
				}

			case GetState:
				msg.Reply <- View{
					Version:        s.version,
					NumSubscribers: len(s.clients),
					Connected:      s.connected,
					Ended:          s.events == nil,
					State:          s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Store) handleEvent(ev ws.Event) {
	switch e := ev.(type) {
	case ws.Opened:
		s.didOpen = true
		s.connected = true
		s.apply(engine.LogLine{Text: "Connected to websocket server"})
		payload, err := protocol.Encode(protocol.Init())
		if err != nil {
			s.log.Error("encode init", zap.Error(err))
			return
		}
		_ = s.send(string(payload))

	case ws.Received:
		msg, err := protocol.Decode(e.Data)
		if err != nil {
			s.log.Debug("unrecognized message", zap.Error(err), zap.String("raw", e.Data))
		}
		s.apply(msg)

	case ws.Closed:
		s.connected = false
		s.log.Info("websocket disconnected",
			zap.Int("code", e.Code), zap.String("reason", e.Reason), zap.Bool("wasClean", e.WasClean))
		if s.didOpen {
			s.apply(engine.LogLine{Text: fmt.Sprintf("Disconnected from websocket server (code: %d, reason: %s)", e.Code, e.Reason)})
		}

	case ws.Errored:
		s.connected = false
		s.log.Warn("websocket error", zap.Error(e.Err))
		if s.didOpen {
			s.apply(engine.LogLine{Text: "WebSocket error occurred"})
		}
	}
}

func (s *Store) send(payload string) error {
	ctx := s.ctx
	if s.opts.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SendTimeout)
		defer cancel()
	}

	err := s.transport.Send(ctx, payload)
	switch {
	case err == nil:
		s.apply(engine.LogLine{Text: "Sent: " + payload})
	case errors.Is(err, ws.ErrNotConnected):
		s.log.Warn("send while not connected", zap.String("payload", payload))
		s.apply(engine.LogLine{Text: "WebSocket is not connected"})
	default:
		s.log.Warn("send failed", zap.Error(err))
		s.apply(engine.LogLine{Text: fmt.Sprintf("Failed to send message: %v", err)})
	}
	return err
}

func (s *Store) apply(m engine.Msg) {
	s.state = engine.Apply(s.state, m)
	s.version++
	s.broadcast(Snapshot{Version: s.version, State: s.state})
}

func (s *Store) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		s.deliver(id, ch, snap)
	}
}

func (s *Store) deliver(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		// ok
	default:
		// Subscriber is slow/full - drop them.
		s.log.Debug("dropping slow subscriber", zap.String("id", id))
		close(ch)
		delete(s.clients, id)
	}
}

func (s *Store) shutdown() {
	s.closeOnce.Do(func() {
		if err := s.transport.Close(); err != nil {
			s.log.Warn("close transport", zap.Error(err))
		}
		for id, ch := range s.clients {
			close(ch) // no more snapshots
			delete(s.clients, id)
		}
		s.markEnded()
		s.cancel()
	})
}

func (s *Store) markEnded() {
	s.endOnce.Do(func() { close(s.ended) })
}

// Inbox exposes the store's mailbox for callers that want raw messages.
func (s *Store) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the store has stopped reducing.
func (s *Store) Done() <-chan struct{} { return s.done }

// Ended is closed when the transport has delivered its last event or the
// store was shut down, whichever comes first.
func (s *Store) Ended() <-chan struct{} { return s.ended }

func (s *Store) post(ctx context.Context, m Msg) error {
	// The inbox may still have room after the loop exits.
	select {
	case <-s.done:
		return ws.ErrNotConnected
	default:
	}
	select {
	case s.inbox <- m:
		return nil
	case <-s.done:
		return ws.ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send writes payload through the transport and returns the transport's
// verdict. After shutdown it returns ws.ErrNotConnected.
func (s *Store) Send(ctx context.Context, payload string) error {
	reply := make(chan error, 1)
	if err := s.post(ctx, Send{Payload: payload, Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return ws.ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) SendCommand(ctx context.Context, cmd protocol.Command) error {
	payload, err := protocol.Encode(cmd)
	if err != nil {
		return fmt.Errorf("encode %s: %w", cmd.Action, err)
	}
	return s.Send(ctx, string(payload))
}

func (s *Store) Log(ctx context.Context, line string) error {
	return s.post(ctx, Log{Line: line})
}

// Subscribe registers a new observer. The returned channel gets the current
// snapshot first and is closed on Unsubscribe, shutdown, or when the
// observer falls more than buffer snapshots behind.
func (s *Store) Subscribe(ctx context.Context, buffer int) (string, <-chan Snapshot, error) {
	if buffer < 1 {
		buffer = 1
	}
	id := uuid.NewString()
	out := make(chan Snapshot, buffer)
	reply := make(chan struct{})
	if err := s.post(ctx, Subscribe{ID: id, Outbox: out, Reply: reply}); err != nil {
		return "", nil, err
	}
	select {
	case <-reply:
		return id, out, nil
	case <-s.done:
		return "", nil, ws.ErrNotConnected
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}

func (s *Store) Unsubscribe(ctx context.Context, id string) error {
	return s.post(ctx, Unsubscribe{ID: id})
}

func (s *Store) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := s.post(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		return View{}, ws.ErrNotConnected
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Shutdown stops the store and closes the transport. Safe to call more
// than once.
func (s *Store) Shutdown() {
	select {
	case s.inbox <- Shutdown{}:
	case <-s.done:
	}
	<-s.done
}
