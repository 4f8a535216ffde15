package ygggo_session

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ReconnectPolicy bounds connect attempts and automatic recovery.
type ReconnectPolicy struct {
	// ConnectAttempts is how many times a single connect tries to dial.
	ConnectAttempts int
	// ConnectTimeout bounds every dial attempt.
	ConnectTimeout time.Duration
	// ConnectDelay separates dial attempts.
	ConnectDelay time.Duration
	// RecoveryRounds is how many connects follow a lost connection.
	// Zero disables automatic recovery.
	RecoveryRounds int
	// RecoveryDelay is the wait before the first round; each later round
	// waits RecoveryStep longer than the one before.
	RecoveryDelay time.Duration
	RecoveryStep  time.Duration
}

// DefaultReconnectPolicy returns 3 dial attempts of 5s spaced 2s apart,
// and 7 recovery rounds waiting 2s, 3s, 4s and so on.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		ConnectAttempts: 3,
		ConnectTimeout:  5 * time.Second,
		ConnectDelay:    2 * time.Second,
		RecoveryRounds:  7,
		RecoveryDelay:   2 * time.Second,
		RecoveryStep:    time.Second,
	}
}

func (p ReconnectPolicy) connectBackOff() backoff.BackOff {
	attempts := p.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(p.ConnectDelay), uint64(attempts-1))
}

// recoveryDelay is the wait before round n, counting from 1.
func (p ReconnectPolicy) recoveryDelay(n int) time.Duration {
	return p.RecoveryDelay + time.Duration(n-1)*p.RecoveryStep
}

func (p ReconnectPolicy) recoveryBackOff() backoff.BackOff {
	return &linearBackOff{policy: p}
}

// linearBackOff yields RecoveryRounds delays growing by RecoveryStep.
type linearBackOff struct {
	policy ReconnectPolicy
	n      int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	if b.n >= b.policy.RecoveryRounds {
		return backoff.Stop
	}
	b.n++
	return b.policy.recoveryDelay(b.n)
}

func (b *linearBackOff) Reset() { b.n = 0 }

// connectWithRetry dials until one attempt succeeds or the policy runs out,
// returning the last error. There is no wait after the final attempt.
func connectWithRetry(ctx context.Context, d Dialer, opts *ConnectionOptions, p ReconnectPolicy, notify backoff.Notify) (*liveConn, error) {
	var lc *liveConn
	op := func() error {
		c, err := dialOnce(ctx, d, opts, p.ConnectTimeout)
		if err != nil {
			return err
		}
		lc = c
		return nil
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(p.connectBackOff(), ctx), notify); err != nil {
		return nil, err
	}
	return lc, nil
}

// runRecovery paces automatic reconnects after a lost connection. It only
// waits; each round is a reconnectCommand the actor executes, so the
// connection never leaves the actor. Rounds carry gen so the actor can tell
// a stale recovery apart. It returns when a round reports the recovery
// finished, the schedule runs out or the actor exits.
func runRecovery(box *mailbox, done <-chan struct{}, p ReconnectPolicy, gen uint64) {
	b := p.recoveryBackOff()
	for round := 1; ; round++ {
		d := b.NextBackOff()
		if d == backoff.Stop {
			return
		}
		t := time.NewTimer(d)
		select {
		case <-done:
			t.Stop()
			return
		case <-t.C:
		}
		reply := make(chan bool, 1)
		if !box.send(reconnectCommand{round: round, gen: gen, reply: reply}) {
			return
		}
		select {
		case <-done:
			return
		case finished := <-reply:
			if finished {
				return
			}
		}
	}
}
