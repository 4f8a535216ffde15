package ygggo_session

import (
	"context"
	"log/slog"
	"time"
)

// actor owns the live connection. Every command runs to completion on its
// goroutine, in mailbox order. It must not reference the Session so that
// an unreachable Session can be finalized.
type actor struct {
	ctx         context.Context
	meta        *connMeta
	box         *mailbox
	dialer      Dialer
	policy      ReconnectPolicy
	waitTimeout time.Duration
	dispatch    Dispatcher
	onError     ErrorObserver
	cleanup     func(op string, err error)
	log         *sessionLogger
	metrics     *sessionMetrics
	tracer      *sessionTracer

	conn *liveConn
	// gen changes on every successful connect and every disconnect; a
	// recovery only acts while the generation it started in is current
	gen         uint64
	recovering  bool
	recoveryGen uint64
	done        chan struct{}
}

func (a *actor) run() {
	defer close(a.done)
	defer a.shutdown()
	for {
		cmd, ok := a.box.recv()
		if !ok {
			return
		}
		if _, stop := cmd.(closeCommand); stop {
			return
		}
		a.handle(cmd)
	}
}

func (a *actor) handle(cmd Command) {
	switch c := cmd.(type) {
	case ConnectCommand:
		err := a.connect()
		if c.Callback != nil {
			cb := c.Callback
			e := callbackError(err)
			a.dispatch.Post(func() { cb(e) })
		}
	case DisconnectCommand:
		a.disconnect(c.Callback)
	case PingCommand:
		a.ping(c.Callback)
	case *QueryRequest:
		a.query(c)
	case reconnectCommand:
		finished := a.recoverRound(c)
		if finished && c.gen == a.recoveryGen {
			a.recovering = false
		}
		c.reply <- finished
	}
}

// shutdown drops the connection if one is still open and rejects any
// further sends.
func (a *actor) shutdown() {
	a.box.close()
	if a.conn != nil {
		if err := a.conn.close(); err != nil {
			a.cleanup("close_on_exit", err)
		}
		a.conn = nil
	}
	a.meta.state.Store(StateDisconnected)
}

// connect replaces the current connection with a fresh one.
func (a *actor) connect() error {
	start := time.Now()
	if a.conn != nil {
		if err := a.conn.close(); err != nil {
			a.cleanup("close_stale", err)
		}
		a.conn = nil
	}
	a.meta.state.Store(StateConnecting)

	notify := func(err error, next time.Duration) {
		a.log.logRecovery(a.ctx, slog.LevelWarn, "connect attempt failed",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", next),
		)
	}
	lc, err := connectWithRetry(a.ctx, a.dialer, a.meta.opts, a.policy, notify)
	if err != nil {
		a.meta.state.Store(StateNotConnected)
		a.log.logConnection(a.ctx, "connect", time.Since(start), err)
		a.metrics.recordConnect(a.ctx, err)
		return err
	}
	lc.stmts.onLookup = func(hit bool) { a.metrics.recordStmtLookup(a.ctx, hit) }
	lc.stmts.onEvictError = func(err error) { a.cleanup("stmt_evict", err) }
	if err := lc.initSession(a.ctx, a.waitTimeout); err != nil {
		a.cleanup("session_init", err)
	}
	a.conn = lc
	a.gen++
	a.meta.epoch.Inc()
	a.meta.state.Store(StateConnected)
	a.log.logConnection(a.ctx, "connect", time.Since(start), nil)
	a.metrics.recordConnect(a.ctx, nil)
	return nil
}

func (a *actor) disconnect(cb func(error)) {
	start := time.Now()
	a.meta.state.Store(StateDisconnected)
	a.gen++
	var err error
	if a.conn != nil {
		err = a.conn.close()
		a.conn = nil
	}
	a.log.logConnection(a.ctx, "disconnect", time.Since(start), err)
	if cb != nil {
		e := callbackError(err)
		a.dispatch.Post(func() { cb(e) })
	}
}

func (a *actor) ping(cb func(time.Duration, error)) {
	if a.conn == nil {
		if cb != nil {
			e := callbackError(ErrNotOpen)
			a.dispatch.Post(func() { cb(0, e) })
		}
		return
	}
	start := time.Now()
	err := a.conn.ping(a.ctx)
	latency := time.Since(start).Truncate(time.Microsecond)
	if err == nil {
		a.metrics.recordPing(a.ctx, latency)
	} else {
		a.log.logConnection(a.ctx, "ping", latency, err)
	}
	if cb != nil {
		e := callbackError(err)
		if e != nil {
			latency = 0
		}
		a.dispatch.Post(func() { cb(latency, e) })
	}
}

func (a *actor) query(req *QueryRequest) {
	if a.conn == nil {
		a.deliver(req, Outcome{}, ErrNotOpen)
		return
	}

	start := time.Now()
	ctx, span := a.tracer.startSpan(a.ctx, req)
	out, err := a.conn.execute(ctx, req)
	finishSpan(span, err)
	duration := time.Since(start)
	a.log.logQuery(a.ctx, req, duration, err)
	a.metrics.recordQuery(a.ctx, req.Kind, duration, err)

	lost := false
	// a transient error alone is not proof; only a failed ping is
	if err != nil && ShouldReconnect(err) {
		if perr := a.conn.ping(a.ctx); perr != nil {
			lost = true
			a.meta.state.Store(StateNotConnected)
			a.log.logRecovery(a.ctx, slog.LevelWarn, "database connection is lost, reconnecting",
				slog.String("error", err.Error()),
			)
			if cerr := a.conn.close(); cerr != nil {
				a.cleanup("close_lost", cerr)
			}
			a.conn = nil
		}
	}

	a.deliver(req, out, err)

	if lost {
		a.startRecovery()
	}
}

// deliver posts the outcome of req. Failures reach the error observer
// first, then the callback.
func (a *actor) deliver(req *QueryRequest, out Outcome, err error) {
	cb := req.Callback
	if err == nil {
		if cb != nil {
			a.dispatch.Post(func() { cb(out, nil) })
		}
		return
	}
	obs := req.OnError
	if obs == nil {
		obs = a.onError
	}
	if cb == nil && obs == nil {
		return
	}
	e := AsError(err)
	failed := Outcome{Kind: req.Kind}
	trace := req.Trace
	a.dispatch.Post(func() {
		if obs != nil {
			obs(e, trace)
		}
		if cb != nil {
			cb(failed, e)
		}
	})
}

// startRecovery schedules a full set of rounds for the current generation.
// A recovery left over from an older generation ends on its next round.
func (a *actor) startRecovery() {
	if a.policy.RecoveryRounds <= 0 {
		return
	}
	if a.recovering && a.recoveryGen == a.gen {
		return
	}
	a.recovering = true
	a.recoveryGen = a.gen
	go runRecovery(a.box, a.done, a.policy, a.gen)
}

// recoverRound performs one automatic reconnect and reports whether the
// recovery is over.
func (a *actor) recoverRound(c reconnectCommand) bool {
	round := c.round
	if c.gen != a.gen {
		a.log.debug(a.ctx, "stale reconnect round dropped", slog.Int("round", round))
		return true
	}
	switch a.meta.state.Load() {
	case StateDisconnected:
		a.log.logRecovery(a.ctx, slog.LevelInfo, "reconnect abandoned, session disconnected")
		return true
	case StateConnected:
		// someone connected explicitly in the meantime
		return true
	}
	err := a.connect()
	a.metrics.recordReconnect(a.ctx, err)
	if err == nil {
		a.log.logRecovery(a.ctx, slog.LevelInfo, "reconnected", slog.Int("round", round))
		return true
	}
	if round >= a.policy.RecoveryRounds {
		a.log.logRecovery(a.ctx, slog.LevelWarn, "failed to reconnect, giving up",
			slog.Int("round", round),
			slog.String("error", err.Error()),
		)
		return true
	}
	a.log.logRecovery(a.ctx, slog.LevelWarn, "failed to reconnect, retrying",
		slog.Int("round", round),
		slog.Duration("retry_in", a.policy.recoveryDelay(round+1)),
		slog.String("error", err.Error()),
	)
	return false
}

// callbackError converts err for a callback, keeping a nil error nil.
func callbackError(err error) error {
	if err == nil {
		return nil
	}
	return AsError(err)
}
