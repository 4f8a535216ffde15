package ygggo_session

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultWaitTimeout is the server idle timeout set on every new connection.
const DefaultWaitTimeout = 7200 * time.Second

// Session is a handle to one actor-owned MySQL connection. All methods are
// safe for concurrent use and never block on the network.
type Session struct {
	meta      *connMeta
	box       *mailbox
	done      <-chan struct{}
	queue     *TaskQueue
	closeOnce *sync.Once
}

type sessionConfig struct {
	policy         ReconnectPolicy
	heartbeat      time.Duration
	heartbeatSet   bool
	waitTimeout    time.Duration
	dialer         Dialer
	dispatcher     Dispatcher
	queue          *TaskQueue
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	logger         *slog.Logger
	logging        bool
	cleanup        func(op string, err error)
	onError        ErrorObserver
}

// SessionOption tunes a Session at Open.
type SessionOption func(*sessionConfig)

func WithReconnectPolicy(p ReconnectPolicy) SessionOption {
	return func(c *sessionConfig) { c.policy = p }
}

// WithHeartbeatInterval overrides the ping interval. Zero or less disables
// the heartbeat.
func WithHeartbeatInterval(d time.Duration) SessionOption {
	return func(c *sessionConfig) { c.heartbeat, c.heartbeatSet = d, true }
}

// WithWaitTimeout sets the server idle timeout applied after each connect.
// The heartbeat defaults to half of it.
func WithWaitTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) { c.waitTimeout = d }
}

func WithDialer(d Dialer) SessionOption {
	return func(c *sessionConfig) { c.dialer = d }
}

// WithDispatcher routes callbacks to d instead of the session's own
// TaskQueue; Poll then does nothing.
func WithDispatcher(d Dispatcher) SessionOption {
	return func(c *sessionConfig) { c.dispatcher, c.queue = d, nil }
}

// WithTaskQueue shares q between sessions so one Poll serves them all.
func WithTaskQueue(q *TaskQueue) SessionOption {
	return func(c *sessionConfig) { c.dispatcher, c.queue = q, q }
}

func WithMeterProvider(p metric.MeterProvider) SessionOption {
	return func(c *sessionConfig) { c.meterProvider = p }
}

func WithTracerProvider(p trace.TracerProvider) SessionOption {
	return func(c *sessionConfig) { c.tracerProvider = p }
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(c *sessionConfig) { c.logger = l }
}

// WithLogging turns session logging on or off. It is on by default.
func WithLogging(enabled bool) SessionOption {
	return func(c *sessionConfig) { c.logging = enabled }
}

// WithCleanupErrorHandler receives errors of best-effort steps: closing a
// stale or lost connection and the session init statement. They are only
// logged at Debug by default.
func WithCleanupErrorHandler(fn func(op string, err error)) SessionOption {
	return func(c *sessionConfig) { c.cleanup = fn }
}

// WithDefaultErrorObserver observes failed queries that carry no observer
// of their own.
func WithDefaultErrorObserver(fn ErrorObserver) SessionOption {
	return func(c *sessionConfig) { c.onError = fn }
}

// Open validates opts and starts the session's actor. The session starts
// NotConnected; send Connect to dial. ctx only provides values, the
// session lives until Close.
func Open(ctx context.Context, opts *ConnectionOptions, options ...SessionOption) (*Session, error) {
	resolved, err := opts.Resolve()
	if err != nil {
		return nil, err
	}

	cfg := &sessionConfig{
		policy:      DefaultReconnectPolicy(),
		waitTimeout: DefaultWaitTimeout,
		dialer:      MySQLDialer{},
		logging:     true,
	}
	cfg.queue = NewTaskQueue()
	cfg.dispatcher = cfg.queue
	for _, o := range options {
		o(cfg)
	}
	if !cfg.heartbeatSet {
		cfg.heartbeat = cfg.waitTimeout / 2
	}

	meta := newConnMeta(uuid.NewString(), resolved)
	box := newMailbox()
	log := newSessionLogger(cfg.logger, cfg.logging, meta)
	base := context.WithoutCancel(ctx)

	cleanup := cfg.cleanup
	if cleanup == nil {
		cleanup = func(op string, err error) {
			log.debug(base, "best-effort cleanup failed", slog.String("op", op), slog.String("error", err.Error()))
		}
	}

	a := &actor{
		ctx:         base,
		meta:        meta,
		box:         box,
		dialer:      cfg.dialer,
		policy:      cfg.policy,
		waitTimeout: cfg.waitTimeout,
		dispatch:    cfg.dispatcher,
		onError:     cfg.onError,
		cleanup:     cleanup,
		log:         log,
		metrics:     newSessionMetrics(cfg.meterProvider),
		tracer:      newSessionTracer(cfg.tracerProvider),
		done:        make(chan struct{}),
	}
	go a.run()
	startHeartbeat(box, cfg.heartbeat, a.done)

	s := &Session{
		meta:      meta,
		box:       box,
		done:      a.done,
		queue:     cfg.queue,
		closeOnce: &sync.Once{},
	}
	runtime.SetFinalizer(s, (*Session).finalize)
	return s, nil
}

// Enqueue sends cmd to the actor. It never blocks and reports false once
// the actor has stopped.
func (s *Session) Enqueue(cmd Command) bool {
	if cmd == nil {
		return false
	}
	return s.box.send(cmd)
}

func (s *Session) Connect(cb func(err error)) bool {
	return s.Enqueue(ConnectCommand{Callback: cb})
}

func (s *Session) Disconnect(cb func(err error)) bool {
	return s.Enqueue(DisconnectCommand{Callback: cb})
}

func (s *Session) Ping(cb func(latency time.Duration, err error)) bool {
	return s.Enqueue(PingCommand{Callback: cb})
}

func (s *Session) Run(query string, opts ...QueryOption) bool {
	return s.Enqueue(NewQuery(QueryRun, query, opts...))
}

func (s *Session) Execute(query string, opts ...QueryOption) bool {
	return s.Enqueue(NewQuery(QueryExecute, query, opts...))
}

func (s *Session) FetchOne(query string, opts ...QueryOption) bool {
	return s.Enqueue(NewQuery(QueryFetchOne, query, opts...))
}

func (s *Session) Fetch(query string, opts ...QueryOption) bool {
	return s.Enqueue(NewQuery(QueryFetchAll, query, opts...))
}

func (s *Session) State() State { return s.meta.state.Load() }

// Epoch counts successful connects.
func (s *Session) Epoch() uint64 { return s.meta.epoch.Load() }

func (s *Session) ID() string { return s.meta.id }

func (s *Session) Host() string { return s.meta.opts.Host }

func (s *Session) Port() int { return s.meta.opts.Port }

// Options returns the resolved connection options.
func (s *Session) Options() ConnectionOptions { return *s.meta.opts }

func (s *Session) String() string {
	return fmt.Sprintf("ygggo_session [%d | %s | %d | %s]", s.Epoch(), s.Host(), s.Port(), s.State())
}

// Poll runs callbacks waiting in the session's TaskQueue on the calling
// goroutine and returns how many ran.
func (s *Session) Poll() int {
	if s.queue == nil {
		return 0
	}
	return s.queue.Flush()
}

// Close disconnects and stops the actor. It does not wait; use Done.
func (s *Session) Close() {
	runtime.SetFinalizer(s, nil)
	s.shutdown()
}

// Done is closed once the actor has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) finalize() { s.shutdown() }

func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.box.send(DisconnectCommand{})
		s.box.send(closeCommand{})
	})
}
