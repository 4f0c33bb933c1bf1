package httppresentation

import (
	"strconv"
	"time"

	"github.com/Zhima-Mochi/snackhouse/internal/observability"
	"github.com/Zhima-Mochi/snackhouse/internal/observability/logctx"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const headerRequestID = "X-Request-ID"

// Observability stamps every request with a request id, injects a request
// logger into the context, and records RED metrics per route.
func Observability(base observability.Logger, tel observability.Telemetry) gin.HandlerFunc {
	propagator := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)

		fields := []observability.Field{
			observability.F("request_id", requestID),
			observability.F("method", c.Request.Method),
			observability.F("path", c.Request.URL.Path),
		}
		if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			fields = append(fields,
				observability.F("trace_id", span.SpanContext().TraceID().String()),
				observability.F("span_id", span.SpanContext().SpanID().String()),
			)
		}
		ctx = logctx.With(ctx, base.With(fields...))
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		tel.Counter(observability.MHTTPRequests).Add(1,
			observability.L("method", c.Request.Method),
			observability.L("route", route),
			observability.L("status", status),
		)
		tel.Histogram(observability.MHTTPRequestDuration).Observe(time.Since(start).Seconds(),
			observability.L("method", c.Request.Method),
			observability.L("route", route),
		)
	}
}
