package oteltrace

import (
	"context"

	"github.com/Zhima-Mochi/snackhouse/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New wraps the globally configured otel tracer. Exporter/provider setup is
// the deployment's concern; without one, spans are no-ops.
func New(name string) observability.TraceCtx {
	if name == "" {
		name = "snackhouse"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
