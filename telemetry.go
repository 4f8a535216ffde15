package ygggo_session

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// sessionTracer opens one span per executed query.
type sessionTracer struct {
	tracer trace.Tracer
}

func newSessionTracer(provider trace.TracerProvider) *sessionTracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &sessionTracer{
		tracer: provider.Tracer(instrumentationName, trace.WithInstrumentationVersion(Version())),
	}
}

// startSpan creates a span with the common database attributes.
func (t *sessionTracer) startSpan(ctx context.Context, req *QueryRequest) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	op := req.Kind.String()
	ctx, span := t.tracer.Start(ctx, "ygggo_session."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "mysql"),
		attribute.String("db.operation", op),
	)
	if req.Query != "" {
		span.SetAttributes(attribute.String("db.statement", req.Query))
	}
	return ctx, span
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
