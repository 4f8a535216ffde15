package ygggo_session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"
)

// Dialer opens the database handle a session pins its connection from.
// Each call must return a fresh *sql.DB; the session closes it when the
// connection is replaced or dropped.
type Dialer interface {
	Dial(ctx context.Context, opts *ConnectionOptions) (*sql.DB, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, opts *ConnectionOptions) (*sql.DB, error)

func (f DialerFunc) Dial(ctx context.Context, opts *ConnectionOptions) (*sql.DB, error) {
	return f(ctx, opts)
}

// MySQLDialer dials with go-sql-driver/mysql.
type MySQLDialer struct{}

func (MySQLDialer) Dial(ctx context.Context, opts *ConnectionOptions) (*sql.DB, error) {
	cfg, err := opts.MySQLConfig()
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	// the session owns exactly one physical connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	return db, nil
}

// liveConn is the connection owned by the actor.
type liveConn struct {
	db    *sql.DB
	conn  *sql.Conn
	stmts *stmtCache
}

// dialOnce opens one connection within timeout.
func dialOnce(ctx context.Context, d Dialer, opts *ConnectionOptions, timeout time.Duration) (*liveConn, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	db, err := d.Dial(ctx, opts)
	if err != nil {
		return nil, timeoutError(ctx, timeout, err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, timeoutError(ctx, timeout, err)
	}
	return &liveConn{db: db, conn: conn, stmts: newStmtCache(opts.StatementCacheCapacity)}, nil
}

func timeoutError(ctx context.Context, timeout time.Duration, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w after %s: %v", ErrConnectTimeout, timeout, err)
	}
	return err
}

// initSession raises the server idle timeout for this connection.
func (c *liveConn) initSession(ctx context.Context, waitTimeout time.Duration) error {
	secs := int64(waitTimeout / time.Second)
	if secs <= 0 {
		return nil
	}
	_, err := c.conn.ExecContext(ctx, fmt.Sprintf("SET SESSION wait_timeout = %d", secs))
	return err
}

func (c *liveConn) ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

// close releases prepared statements, the pinned connection and the pool.
func (c *liveConn) close() error {
	var result *multierror.Error
	if err := c.stmts.closeAll(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.conn.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close connection: %w", err))
	}
	if err := c.db.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close database: %w", err))
	}
	return result.ErrorOrNil()
}
