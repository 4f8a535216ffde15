package ygggo_session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

var defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// sessionLogger writes structured records tagged with the session id and host.
type sessionLogger struct {
	enabled bool
	logger  *slog.Logger
}

func newSessionLogger(base *slog.Logger, enabled bool, meta *connMeta) *sessionLogger {
	if base == nil {
		base = defaultLogger
	}
	return &sessionLogger{
		enabled: enabled,
		logger:  base.With(slog.String("session_id", meta.id), slog.String("host", meta.opts.Host)),
	}
}

// logQuery logs one executed query. Successes are Debug, failures Error.
func (l *sessionLogger) logQuery(ctx context.Context, req *QueryRequest, duration time.Duration, err error) {
	if l == nil || !l.enabled {
		return
	}
	attrs := []slog.Attr{
		slog.String("operation", req.Kind.String()),
		slog.String("query", req.Query),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}
	if len(req.Params) > 0 {
		attrs = append(attrs, slog.Int("arg_count", len(req.Params)))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			attrs = append(attrs, slog.Int("error_code", int(me.Number)))
		}
		l.logger.LogAttrs(ctx, slog.LevelError, "database query executed", attrs...)
		return
	}
	attrs = append(attrs, slog.String("status", "success"))
	l.logger.LogAttrs(ctx, slog.LevelDebug, "database query executed", attrs...)
}

// logConnection logs connect, disconnect and ping events.
func (l *sessionLogger) logConnection(ctx context.Context, event string, duration time.Duration, err error) {
	if l == nil || !l.enabled {
		return
	}
	attrs := []slog.Attr{
		slog.String("event", event),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		l.logger.LogAttrs(ctx, slog.LevelError, "database connection event", attrs...)
		return
	}
	attrs = append(attrs, slog.String("status", "success"))
	l.logger.LogAttrs(ctx, slog.LevelDebug, "database connection event", attrs...)
}

// logRecovery reports reconnect progress, which is not an error path.
func (l *sessionLogger) logRecovery(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if l == nil || !l.enabled {
		return
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (l *sessionLogger) debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	if l == nil || !l.enabled {
		return
	}
	l.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}
