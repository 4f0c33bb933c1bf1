package telemetry

import (
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/snackhouse/internal/observability"
)

type provider struct {
	tracer     observability.TraceCtx
	logger     observability.Logger
	counters   map[string]observability.Counter
	histograms map[string]observability.Histogram
}

// New registers the service's metric instruments and bundles them with the
// tracer and logger. Lookups for unregistered names fall back to no-ops so a
// missing instrument can never break a use case.
func New(tracer observability.TraceCtx, logger observability.Logger, metrics prometrics.Registry) observability.Telemetry {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	p := &provider{
		tracer:     tracer,
		logger:     logger,
		counters:   make(map[string]observability.Counter),
		histograms: make(map[string]observability.Histogram),
	}

	if metrics != nil {
		p.counters[observability.MUsecaseRequests] = metrics.Counter(
			observability.MUsecaseRequests, "Total number of use case invocations.",
			"use_case", "outcome")
		p.counters[observability.MHTTPRequests] = metrics.Counter(
			observability.MHTTPRequests, "Total number of HTTP requests served.",
			"method", "route", "status")
		p.counters[observability.MExternalRequests] = metrics.Counter(
			observability.MExternalRequests, "Total number of outbound calls to external peers.",
			"peer", "endpoint", "outcome")
		p.histograms[observability.MUsecaseDuration] = metrics.Histogram(
			observability.MUsecaseDuration, "Duration of use case execution in seconds.",
			nil, "use_case")
		p.histograms[observability.MHTTPRequestDuration] = metrics.Histogram(
			observability.MHTTPRequestDuration, "Duration of HTTP request handling in seconds.",
			nil, "method", "route")
		p.histograms[observability.MExternalRequestDuration] = metrics.Histogram(
			observability.MExternalRequestDuration, "Duration of outbound external calls in seconds.",
			nil, "peer", "endpoint")
	}

	return p
}

func (p *provider) Tracer() observability.TraceCtx { return p.tracer }

func (p *provider) Logger() observability.Logger { return p.logger }

func (p *provider) Counter(name string) observability.Counter {
	if c, ok := p.counters[name]; ok && c != nil {
		return c
	}
	return observability.NopCounter()
}

func (p *provider) Histogram(name string) observability.Histogram {
	if h, ok := p.histograms[name]; ok && h != nil {
		return h
	}
	return observability.NopHistogram()
}
