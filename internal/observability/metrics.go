package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "aliasrewrite.requests.total"
	metricRequestDuration  = "aliasrewrite.request.duration.seconds"
	metricErrorsTotal      = "aliasrewrite.errors.total"
	metricInflightRequests = "aliasrewrite.inflight.requests"

	metricFilesTotal      = "aliasrewrite.files.total"
	metricSpecifiersTotal = "aliasrewrite.specifiers.rewritten.total"
	metricFileDuration    = "aliasrewrite.file.duration.seconds"
	metricFileBytes       = "aliasrewrite.file.bytes"

	attrOp     = "op"
	attrStatus = "status"
	attrKind   = "kind"
	attrStage  = "stage"

	// StatusOK marks a successful request or file.
	StatusOK = "ok"
	// StatusError marks a failed request or file.
	StatusError = "error"
	// StatusChanged marks a file whose output differs from its input.
	StatusChanged = "changed"
	// StatusUnchanged marks a file left as is.
	StatusUnchanged = "unchanged"
)

// requestBuckets covers 1ms to 10s; MCP tool calls work on a single file.
var requestBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// fileBuckets covers 100µs to 5s per file.
var fileBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// REDMetrics holds the Rate, Error and Duration instruments for MCP tools.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	reqTotal, err := mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	reqDuration, err := mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(requestBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &REDMetrics{
		requestsTotal:    reqTotal,
		requestDuration:  reqDuration,
		errorsTotal:      errTotal,
		inflightRequests: inflight,
	}, nil
}

// RecordRequest records a completed request.
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

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// RewriteMetrics holds the instruments recorded per processed file.
type RewriteMetrics struct {
	files      metric.Int64Counter
	specifiers metric.Int64Counter
	duration   metric.Float64Histogram
	bytes      metric.Int64Counter
}

// NewRewriteMetrics creates the per-file instruments from the given meter.
func NewRewriteMetrics(mt metric.Meter) (*RewriteMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Files processed, by status"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	specifiers, err := mt.Int64Counter(metricSpecifiersTotal,
		metric.WithDescription("Module specifiers rewritten, by site kind"),
		metric.WithUnit("{specifier}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSpecifiersTotal, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Time to parse, rewrite and emit one file"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(fileBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	bytesRead, err := mt.Int64Counter(metricFileBytes,
		metric.WithDescription("Source bytes read"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileBytes, err)
	}

	return &RewriteMetrics{files: files, specifiers: specifiers, duration: duration, bytes: bytesRead}, nil
}

// RecordFile records one processed file.
func (rm *RewriteMetrics) RecordFile(ctx context.Context, status string, size int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	rm.files.Add(ctx, 1, attrs)
	rm.duration.Record(ctx, duration.Seconds(), attrs)
	rm.bytes.Add(ctx, int64(size))
}

// RecordSpecifier records one rewritten specifier.
func (rm *RewriteMetrics) RecordSpecifier(ctx context.Context, stage, kind string) {
	rm.specifiers.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrStage, stage),
		attribute.String(attrKind, kind),
	))
}
