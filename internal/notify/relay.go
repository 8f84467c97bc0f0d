package notify

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/expense-share/client/internal/buffer"
	"github.com/expense-share/client/internal/metrics"
)

const (
	// DefaultReconnectDelay is the fixed wait between a socket closing and the
	// next dial while subscriptions remain.
	DefaultReconnectDelay = time.Second

	// DefaultHistorySize is the number of envelopes kept for Recent.
	DefaultHistorySize = 64
)

// Config holds configuration for a Relay.
type Config struct {
	// URL of the notification socket. Empty means there is no socket
	// environment and every subscription is a no-op.
	URL            string
	ReconnectDelay time.Duration
	HistorySize    int
	Dialer         Dialer
	Header         http.Header
	Logger         *zerolog.Logger
}

type subscription struct {
	id      uint64
	handler Handler
}

// Relay multiplexes one lazily opened WebSocket into named event channels.
type Relay struct {
	url            string
	reconnectDelay time.Duration
	dialer         Dialer
	header         http.Header
	logger         zerolog.Logger
	history        *buffer.Ring[Envelope]

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	conn       Conn
	connecting bool
	closed     bool
	reconnect  *time.Timer
	channels   map[string][]subscription
	seq        uint64
}

// NewRelay creates a Relay. No socket is opened until the first Subscribe.
func NewRelay(cfg Config) *Relay {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if cfg.Dialer == nil {
		cfg.Dialer = NewWebSocketDialer(nil)
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "relay").Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Relay{
		url:            cfg.URL,
		reconnectDelay: cfg.ReconnectDelay,
		dialer:         cfg.Dialer,
		header:         cfg.Header,
		logger:         logger,
		history:        buffer.NewRing[Envelope](cfg.HistorySize),
		ctx:            ctx,
		cancel:         cancel,
		channels:       make(map[string][]subscription),
	}
}

// URL returns the socket URL, or "" when there is no socket environment.
func (r *Relay) URL() string {
	return r.url
}

// Subscribe registers handler for messages of eventType and makes sure the
// socket is open or opening. The returned function removes the handler; it is
// safe to call more than once. When the handler was the last one of its
// channel, the channel is removed. The socket stays open either way.
func (r *Relay) Subscribe(eventType string, handler Handler) (unsubscribe func()) {
	if r.url == "" || handler == nil {
		return func() {}
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return func() {}
	}
	r.seq++
	id := r.seq
	r.channels[eventType] = append(r.channels[eventType], subscription{id: id, handler: handler})
	r.mu.Unlock()

	r.ensureSocket()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.remove(eventType, id)
		})
	}
}

func (r *Relay) remove(eventType string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.channels[eventType]
	if !ok {
		return
	}
	kept := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(r.channels, eventType)
		return
	}
	r.channels[eventType] = kept
}

// Connected reports whether the socket is currently open.
func (r *Relay) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// Channels returns the event types that currently have handlers, sorted.
func (r *Relay) Channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]string, 0, len(r.channels))
	for t := range r.channels {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// HandlerCount returns the number of handlers registered for eventType.
func (r *Relay) HandlerCount(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels[eventType])
}

// Recent returns the most recent envelopes received, oldest first.
func (r *Relay) Recent() []Envelope {
	return r.history.Items()
}

// Close closes the socket, cancels any pending reconnect, drops every
// subscription and forgets the recent history. A closed relay ignores further
// subscriptions.
func (r *Relay) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.cancel()
	if r.reconnect != nil {
		r.reconnect.Stop()
		r.reconnect = nil
	}
	conn := r.conn
	r.conn = nil
	r.channels = make(map[string][]subscription)
	r.mu.Unlock()
	r.history.Clear()

	if conn != nil {
		metrics.SetConnected(false)
		return conn.Close()
	}
	return nil
}

// ensureSocket starts a dial unless the socket is open, already being
// opened, or the relay is closed.
func (r *Relay) ensureSocket() {
	r.mu.Lock()
	if r.closed || r.conn != nil || r.connecting {
		r.mu.Unlock()
		return
	}
	r.connecting = true
	r.mu.Unlock()

	go r.connect()
}

func (r *Relay) connect() {
	conn, err := r.dialer.DialContext(r.ctx, r.url, r.header)
	metrics.IncDial(err == nil)

	r.mu.Lock()
	r.connecting = false
	if err != nil {
		r.mu.Unlock()
		r.logger.Warn().Err(err).Str("url", r.url).Msg("notification socket dial failed")
		r.handleClose()
		return
	}
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return
	}
	r.conn = conn
	r.mu.Unlock()

	metrics.SetConnected(true)
	r.logger.Info().Str("url", r.url).Msg("notification socket open")

	r.readLoop(conn)
}

func (r *Relay) readLoop(conn Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			r.logger.Info().Err(err).Msg("notification socket closed")
			break
		}
		r.dispatch(message)
	}

	conn.Close()

	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.mu.Unlock()

	metrics.SetConnected(false)
	r.handleClose()
}

// handleClose schedules a reopen when subscriptions remain.
func (r *Relay) handleClose() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || len(r.channels) == 0 {
		return
	}
	if r.reconnect != nil {
		r.reconnect.Stop()
	}
	r.reconnect = time.AfterFunc(r.reconnectDelay, r.ensureSocket)
	metrics.IncReconnect()
	r.logger.Debug().Dur("delay", r.reconnectDelay).Msg("notification socket reconnect scheduled")
}

func (r *Relay) dispatch(message []byte) {
	env, ok, err := decodeEnvelope(message)
	if err != nil {
		metrics.IncMalformed()
		r.logger.Debug().Err(err).Msg("ignoring malformed notification")
		return
	}
	if !ok {
		return
	}
	r.history.Push(env)

	r.mu.Lock()
	subs := r.channels[env.Type]
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.handler
	}
	r.mu.Unlock()

	if len(handlers) == 0 {
		metrics.IncDropped()
		return
	}

	metrics.IncMessage(env.Type)
	for _, h := range handlers {
		r.invoke(h, env)
	}
}

func (r *Relay) invoke(h Handler, env Envelope) {
	defer func() {
		if p := recover(); p != nil {
			metrics.IncHandlerPanic()
			r.logger.Debug().Str("type", env.Type).Interface("panic", p).Msg("notification handler panicked")
		}
	}()
	h(env.Data, env)
}
