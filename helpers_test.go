package ygggo_session

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const initStatement = "SET SESSION wait_timeout = 7200"

var errNoScript = errors.New("no scripted connection left")

// scriptDialer hands out one scripted result per Dial call.
type scriptDialer struct {
	mu      sync.Mutex
	results []dialResult
	calls   int
}

type dialResult struct {
	db  *sql.DB
	err error
}

func (d *scriptDialer) push(db *sql.DB, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, dialResult{db: db, err: err})
}

func (d *scriptDialer) Dial(ctx context.Context, opts *ConnectionOptions) (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if len(d.results) == 0 {
		return nil, errNoScript
	}
	r := d.results[0]
	d.results = d.results[1:]
	return r.db, r.err
}

func (d *scriptDialer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// newMockDB returns a sqlmock database with exact query matching and
// scripted pings.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	return db, mock
}

// connectedMock scripts a connection that accepts the init statement.
func connectedMock(t *testing.T, d *scriptDialer) sqlmock.Sqlmock {
	t.Helper()
	db, mock := newMockDB(t)
	mock.ExpectExec(initStatement).WillReturnResult(sqlmock.NewResult(0, 0))
	d.push(db, nil)
	return mock
}

func testPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		ConnectAttempts: 1,
		ConnectTimeout:  time.Second,
		ConnectDelay:    time.Millisecond,
		RecoveryRounds:  3,
		RecoveryDelay:   5 * time.Millisecond,
		RecoveryStep:    time.Millisecond,
	}
}

func openTestSession(t *testing.T, d Dialer, opts ...SessionOption) *Session {
	t.Helper()
	base := []SessionOption{
		WithDialer(d),
		WithHeartbeatInterval(0),
		WithLogging(false),
		WithReconnectPolicy(testPolicy()),
	}
	s, err := Open(context.Background(), &ConnectionOptions{Database: "app"}, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		select {
		case <-s.Done():
		case <-time.After(3 * time.Second):
			t.Errorf("actor did not stop")
		}
	})
	return s
}

// pollUntil drives the session's callbacks until cond holds.
func pollUntil(t *testing.T, s *Session, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		s.Poll()
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline, session %s", s)
		}
		time.Sleep(time.Millisecond)
	}
}

// connect sends Connect and waits for its callback.
func connect(t *testing.T, s *Session) error {
	t.Helper()
	var (
		done bool
		got  error
	)
	require.True(t, s.Connect(func(err error) { done, got = true, err }))
	pollUntil(t, s, func() bool { return done })
	return got
}

type queryResult struct {
	done bool
	out  Outcome
	err  error
}

func (r *queryResult) callback() QueryOption {
	return WithCallback(func(o Outcome, err error) {
		r.done, r.out, r.err = true, o, err
	})
}
