package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "punctscan.requests.total"
	metricRequestDuration  = "punctscan.request.duration.seconds"
	metricErrorsTotal      = "punctscan.errors.total"
	metricInflightRequests = "punctscan.inflight.requests"

	attrTransport = "transport"
	attrOp        = "op"
	attrOutcome   = "outcome"
)

// Transports that report request metrics.
const (
	TransportHTTP = "http"
	TransportMCP  = "mcp"
)

// Outcome classifies a finished request.
type Outcome string

const (
	// OutcomeOK is a served request.
	OutcomeOK Outcome = "ok"
	// OutcomeRejected is a request refused because of caller input.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed is a request that hit a server-side failure.
	OutcomeFailed Outcome = "failed"
)

// OutcomeForStatus classifies an HTTP status code.
func OutcomeForStatus(code int) Outcome {
	switch {
	case code >= http.StatusInternalServerError:
		return OutcomeFailed
	case code >= http.StatusBadRequest:
		return OutcomeRejected
	default:
		return OutcomeOK
	}
}

// durationBuckets spans 1ms to 60s. Single documents finish in the low
// milliseconds; large uploads and PNG renders form the tail.
var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// REDMetrics holds the rate, error and duration instruments shared by the
// HTTP and MCP transports. A nil *REDMetrics records nothing.
type REDMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewREDMetrics creates the request instruments on mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	inst := instruments{meter: mt}

	rm := &REDMetrics{
		requests: inst.counter(metricRequestsTotal, "Requests handled", "{request}"),
		duration: inst.histogram(metricRequestDuration, "Request duration in seconds", "s"),
		errors:   inst.counter(metricErrorsTotal, "Requests that were rejected or failed", "{error}"),
		inflight: inst.upDownCounter(metricInflightRequests, "Requests in progress", "{request}"),
	}

	if inst.err != nil {
		return nil, inst.err
	}

	return rm, nil
}

// Begin marks one op on transport as in flight. The returned function ends
// the request and records it with the given outcome; call it exactly once.
func (rm *REDMetrics) Begin(ctx context.Context, transport, op string) func(Outcome) {
	if rm == nil {
		return func(Outcome) {}
	}

	start := time.Now()
	scope := []attribute.KeyValue{
		attribute.String(attrTransport, transport),
		attribute.String(attrOp, op),
	}

	rm.inflight.Add(ctx, 1, metric.WithAttributes(scope...))

	return func(outcome Outcome) {
		rm.inflight.Add(ctx, -1, metric.WithAttributes(scope...))

		withOutcome := metric.WithAttributes(append(scope, attribute.String(attrOutcome, string(outcome)))...)

		rm.requests.Add(ctx, 1, withOutcome)
		rm.duration.Record(ctx, time.Since(start).Seconds(), withOutcome)

		if outcome != OutcomeOK {
			rm.errors.Add(ctx, 1, withOutcome)
		}
	}
}

// instruments creates metric instruments and keeps the first failure, so a
// batch of creations needs a single error check.
type instruments struct {
	meter metric.Meter
	err   error
}

func (in *instruments) counter(name, desc, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	in.keep(name, err)

	return c
}

func (in *instruments) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	in.keep(name, err)

	return c
}

func (in *instruments) histogram(name, desc, unit string) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	in.keep(name, err)

	return h
}

func (in *instruments) keep(name string, err error) {
	if err != nil && in.err == nil {
		in.err = fmt.Errorf("create %s: %w", name, err)
	}
}
