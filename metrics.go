package ygggo_session

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/yggai/ygggo_session"

// sessionMetrics holds the metric instruments of one session.
type sessionMetrics struct {
	queriesTotal  metric.Int64Counter
	queryDuration metric.Float64Histogram
	connects      metric.Int64Counter
	reconnects    metric.Int64Counter
	pingLatency   metric.Float64Histogram
	stmtLookups   metric.Int64Counter
}

func newSessionMetrics(provider metric.MeterProvider) *sessionMetrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(instrumentationName)
	m := &sessionMetrics{}

	m.queriesTotal, _ = meter.Int64Counter(
		"ygggo_session_queries_total",
		metric.WithDescription("Total number of queries executed by the session"),
	)
	m.queryDuration, _ = meter.Float64Histogram(
		"ygggo_session_query_duration_seconds",
		metric.WithDescription("Duration of queries"),
		metric.WithUnit("s"),
	)
	m.connects, _ = meter.Int64Counter(
		"ygggo_session_connects_total",
		metric.WithDescription("Total number of connect sequences"),
	)
	m.reconnects, _ = meter.Int64Counter(
		"ygggo_session_reconnects_total",
		metric.WithDescription("Total number of automatic reconnect rounds"),
	)
	m.pingLatency, _ = meter.Float64Histogram(
		"ygggo_session_ping_latency_seconds",
		metric.WithDescription("Round trip of successful pings"),
		metric.WithUnit("s"),
	)
	m.stmtLookups, _ = meter.Int64Counter(
		"ygggo_session_stmt_cache_lookups_total",
		metric.WithDescription("Prepared statement cache lookups by result"),
	)
	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *sessionMetrics) recordQuery(ctx context.Context, kind QueryKind, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("status", status(err)),
	)
	m.queriesTotal.Add(ctx, 1, attrs)
	m.queryDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *sessionMetrics) recordConnect(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.connects.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status(err))))
}

func (m *sessionMetrics) recordReconnect(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.reconnects.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status(err))))
}

func (m *sessionMetrics) recordPing(ctx context.Context, latency time.Duration) {
	if m == nil {
		return
	}
	m.pingLatency.Record(ctx, latency.Seconds())
}

func (m *sessionMetrics) recordStmtLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.stmtLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
