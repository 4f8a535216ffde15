package ygggo_session

import (
	"crypto/tls"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestShouldReconnect_MySQLCodes(t *testing.T) {
	cases := []struct {
		code uint16
		want bool
		name string
	}{
		{2002, true, "connection_error"},
		{2003, true, "conn_host_error"},
		{2006, true, "server_gone"},
		{2013, true, "server_lost"},
		{2055, true, "server_lost_extended"},
		{1064, false, "syntax"},
		{1062, false, "duplicate_entry"},
		{1045, false, "access_denied"},
		{1213, false, "deadlock"},
	}
	for _, tc := range cases {
		if got := ShouldReconnect(&mysql.MySQLError{Number: tc.code}); got != tc.want {
			t.Fatalf("%s: ShouldReconnect(%d)=%v want %v", tc.name, tc.code, got, tc.want)
		}
	}
}

func TestShouldReconnect_Transport(t *testing.T) {
	opErr := func(errno syscall.Errno) error {
		return &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", errno)}
	}
	transient := []error{
		opErr(syscall.ECONNREFUSED),
		opErr(syscall.ECONNRESET),
		opErr(syscall.ECONNABORTED),
		opErr(syscall.ENOTCONN),
		opErr(syscall.ETIMEDOUT),
		opErr(syscall.EPIPE),
		io.EOF,
		fmt.Errorf("read packet: %w", io.ErrUnexpectedEOF),
		mysql.ErrInvalidConn,
		driver.ErrBadConn,
		sql.ErrConnDone,
		fmt.Errorf("%w after 5s", ErrConnectTimeout),
	}
	for _, err := range transient {
		assert.True(t, ShouldReconnect(err), "%v", err)
	}

	permanent := []error{
		nil,
		errors.New("boom"),
		ErrUnsupportedType,
		sql.ErrNoRows,
		opErr(syscall.EACCES),
	}
	for _, err := range permanent {
		assert.False(t, ShouldReconnect(err), "%v", err)
	}
}

func TestShouldReconnect_TLS(t *testing.T) {
	assert.True(t, ShouldReconnect(errors.New("remote error: tls: handshake failed")))
	assert.True(t, ShouldReconnect(fmt.Errorf("tls: connection closed by peer")))
	assert.True(t, ShouldReconnect(errors.New("dial: tls: unexpected EOF while reading record")))
	assert.False(t, ShouldReconnect(errors.New("tls: bad certificate")))
	assert.False(t, ShouldReconnect(tls.AlertError(42)))
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil))

	e := AsError(&mysql.MySQLError{Number: 1062, SQLState: [5]byte{'2', '3', '0', '0', '0'}, Message: "Duplicate entry"})
	assert.Equal(t, uint16(1062), e.Code)
	assert.Equal(t, "23000", e.SQLState)
	assert.Equal(t, "Error 1062 (23000): Duplicate entry", e.Error())

	var me *mysql.MySQLError
	assert.True(t, errors.As(e, &me))

	plain := AsError(ErrNotOpen)
	assert.Equal(t, "connection is not open", plain.Error())
	assert.ErrorIs(t, plain, ErrNotOpen)
	assert.Same(t, plain, AsError(fmt.Errorf("wrapped: %w", plain)))

	noState := &Error{Code: 2006, Message: "gone"}
	assert.Equal(t, "Error 2006: gone", noState.Error())
}
