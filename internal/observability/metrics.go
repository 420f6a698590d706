package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
)

const (
	metricRequestsTotal    = "resample.requests.total"
	metricRequestDuration  = "resample.request.duration.seconds"
	metricErrorsTotal      = "resample.errors.total"
	metricInflightRequests = "resample.inflight.requests"

	metricRunsTotal       = "resample.bootstrap.runs.total"
	metricRunDuration     = "resample.bootstrap.run.duration.seconds"
	metricRunErrorsTotal  = "resample.bootstrap.errors.total"
	metricReplicatesTotal = "resample.bootstrap.replicates.total"

	attrOp     = "op"
	attrKind   = "kind"
	attrStatus = "status"

	// StatusOK and StatusError label request outcomes.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request latencies range from sub-millisecond lookups to long bootstrap runs.
var requestBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// A bootstrap run is a CPU-bound loop over B trials.
var runBucketBoundaries = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}

// REDMetrics holds Rate, Error and Duration instruments for CLI commands and
// MCP tool calls.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED instruments on mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	b := newMetricBuilder(mt)

	rm := &REDMetrics{
		requestsTotal:    b.counter(metricRequestsTotal, "Total number of requests", "{request}"),
		requestDuration:  b.histogram(metricRequestDuration, "Request duration in seconds", "s", requestBucketBoundaries...),
		errorsTotal:      b.counter(metricErrorsTotal, "Total number of failed requests", "{error}"),
		inflightRequests: b.upDownCounter(metricInflightRequests, "Number of in-flight requests", "{request}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordRequest records a finished request.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight counter and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// BootstrapMetrics records bootstrap runs. It implements [bootstrap.Recorder].
type BootstrapMetrics struct {
	runsTotal       metric.Int64Counter
	runDuration     metric.Float64Histogram
	errorsTotal     metric.Int64Counter
	replicatesTotal metric.Int64Counter
}

var _ bootstrap.Recorder = (*BootstrapMetrics)(nil)

// NewBootstrapMetrics creates bootstrap instruments on mt.
func NewBootstrapMetrics(mt metric.Meter) (*BootstrapMetrics, error) {
	b := newMetricBuilder(mt)

	bm := &BootstrapMetrics{
		runsTotal:       b.counter(metricRunsTotal, "Total number of bootstrap runs", "{run}"),
		runDuration:     b.histogram(metricRunDuration, "Bootstrap run duration in seconds", "s", runBucketBoundaries...),
		errorsTotal:     b.counter(metricRunErrorsTotal, "Total number of failed bootstrap runs", "{run}"),
		replicatesTotal: b.counter(metricReplicatesTotal, "Total number of replicates requested", "{replicate}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return bm, nil
}

// RecordRun implements [bootstrap.Recorder].
func (bm *BootstrapMetrics) RecordRun(ctx context.Context, kind, status string, replicates int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrStatus, status),
	)

	bm.runsTotal.Add(ctx, 1, attrs)
	bm.runDuration.Record(ctx, duration.Seconds(), attrs)
	bm.replicatesTotal.Add(ctx, int64(replicates), metric.WithAttributes(attribute.String(attrKind, kind)))

	if status == bootstrap.StatusError {
		bm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
	}
}
