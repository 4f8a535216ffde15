package ygggo_session

import (
	"crypto/tls"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"syscall"

	mysql "github.com/go-sql-driver/mysql"
)

var (
	// ErrNotOpen is reported for commands that need a live connection when there is none.
	ErrNotOpen = errors.New("connection is not open")
	// ErrConnectTimeout is reported when a single connect attempt exceeds its timeout.
	ErrConnectTimeout = errors.New("timed out while connecting")
	// ErrUnsupportedType is returned for column or parameter types that cannot be represented.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrMissingDatabase is returned by Open when no database name resolves.
	ErrMissingDatabase = errors.New("database name is required")
)

// Error is the failure value handed to callbacks and error observers.
// Code and SQLState are set when the failure came from the server.
type Error struct {
	Message  string
	Code     uint16
	SQLState string
	Err      error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		if e.SQLState != "" {
			return "Error " + strconv.Itoa(int(e.Code)) + " (" + e.SQLState + "): " + e.Message
		}
		return "Error " + strconv.Itoa(int(e.Code)) + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// AsError converts err into an *Error, keeping err as the cause.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	out := &Error{Message: err.Error(), Err: err}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		out.Code = me.Number
		out.Message = me.Message
		if me.SQLState != [5]byte{} {
			out.SQLState = string(me.SQLState[:])
		}
	}
	return out
}

// connectionLossCodes are client-side "gone away" style error numbers.
var connectionLossCodes = map[uint16]struct{}{
	2002: {}, // CR_CONNECTION_ERROR
	2003: {}, // CR_CONN_HOST_ERROR
	2006: {}, // CR_SERVER_GONE_ERROR
	2013: {}, // CR_SERVER_LOST
	2055: {}, // CR_SERVER_LOST_EXTENDED
}

var transportErrnos = []syscall.Errno{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.ENOTCONN,
	syscall.ETIMEDOUT,
	syscall.EPIPE,
}

var tlsLossFragments = []string{"handshake failed", "connection closed", "unexpected EOF"}

// ShouldReconnect reports whether err looks like a lost connection rather
// than an application error.
func ShouldReconnect(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		_, ok := connectionLossCodes[me.Number]
		return ok
	}
	if isTLSError(err) {
		msg := err.Error()
		for _, f := range tlsLossFragments {
			if strings.Contains(msg, f) {
				return true
			}
		}
		return false
	}
	return isTransportError(err)
}

func isTransportError(err error) bool {
	for _, errno := range transportErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	// go-sql-driver reports broken sockets through these markers
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if errors.Is(err, ErrConnectTimeout) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isTLSError(err error) bool {
	var rh tls.RecordHeaderError
	if errors.As(err, &rh) {
		return true
	}
	var ae tls.AlertError
	if errors.As(err, &ae) {
		return true
	}
	var cv *tls.CertificateVerificationError
	if errors.As(err, &cv) {
		return true
	}
	return strings.HasPrefix(err.Error(), "tls: ") || strings.Contains(err.Error(), ": tls: ")
}
