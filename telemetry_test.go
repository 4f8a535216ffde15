package ygggo_session

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTelemetry_QuerySpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	d := &scriptDialer{}
	mock := connectedMock(t, d)
	mock.ExpectExec("UPDATE users SET name = ? WHERE id = ?").
		WithArgs([]byte("ann"), float64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT nope").WillReturnError(&mysql.MySQLError{Number: 1054, Message: "Unknown column"})
	s := openTestSession(t, d, WithTracerProvider(tp))
	require.NoError(t, connect(t, s))

	var ok, bad queryResult
	s.Execute("UPDATE users SET name = ? WHERE id = ?", WithArgs("ann", 1), ok.callback())
	s.Fetch("SELECT nope", bad.callback())
	pollUntil(t, s, func() bool { return ok.done && bad.done })

	spans := sr.Ended()
	require.Len(t, spans, 2)

	first := spans[0]
	assert.Equal(t, "ygggo_session.execute", first.Name())
	assert.Equal(t, codes.Ok, first.Status().Code)
	attrs := map[string]string{}
	for _, kv := range first.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, map[string]string{
		"db.system":    "mysql",
		"db.operation": "execute",
		"db.statement": "UPDATE users SET name = ? WHERE id = ?",
	}, attrs)

	second := spans[1]
	assert.Equal(t, "ygggo_session.fetch_all", second.Name())
	assert.Equal(t, codes.Error, second.Status().Code)
	assert.NotEmpty(t, second.Events(), "error must be recorded on the span")
}
