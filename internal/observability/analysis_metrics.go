package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricDocumentsTotal   = "punctscan.analysis.documents.total"
	metricFailuresTotal    = "punctscan.analysis.failures.total"
	metricWordsTotal       = "punctscan.analysis.words.total"
	metricMarksTotal       = "punctscan.analysis.marks.total"
	metricDocumentDuration = "punctscan.analysis.document.duration.seconds"
	metricExportsTotal     = "punctscan.exports.total"

	attrCategory = "category"
	attrKind     = "kind"
	attrFormat   = "format"
)

// AnalysisMetrics holds OTel instruments for document analysis.
type AnalysisMetrics struct {
	documentsTotal   metric.Int64Counter
	failuresTotal    metric.Int64Counter
	wordsTotal       metric.Int64Counter
	marksTotal       metric.Int64Counter
	documentDuration metric.Float64Histogram
	exportsTotal     metric.Int64Counter
}

// DocumentStats describes one analyzed document, decoupled from domain types.
type DocumentStats struct {
	Words int
	// Marks maps category name to count. Zero counts are skipped.
	Marks    map[string]int
	Duration time.Duration
}

// NewAnalysisMetrics creates analysis metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	inst := instruments{meter: mt}

	am := &AnalysisMetrics{
		documentsTotal:   inst.counter(metricDocumentsTotal, "Total documents analyzed", "{document}"),
		failuresTotal:    inst.counter(metricFailuresTotal, "Failed analyses and exports by error kind", "{failure}"),
		wordsTotal:       inst.counter(metricWordsTotal, "Total words counted", "{word}"),
		marksTotal:       inst.counter(metricMarksTotal, "Punctuation marks counted by category", "{mark}"),
		documentDuration: inst.histogram(metricDocumentDuration, "Per-document analysis duration in seconds", "s"),
		exportsTotal:     inst.counter(metricExportsTotal, "Report and chart exports by format", "{export}"),
	}

	if inst.err != nil {
		return nil, inst.err
	}

	return am, nil
}

// RecordDocument records a successful analysis.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordDocument(ctx context.Context, stats DocumentStats) {
	if am == nil {
		return
	}

	am.documentsTotal.Add(ctx, 1)
	am.wordsTotal.Add(ctx, int64(stats.Words))
	am.documentDuration.Record(ctx, stats.Duration.Seconds())

	for name, n := range stats.Marks {
		if n == 0 {
			continue
		}

		am.marksTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrCategory, name)))
	}
}

// RecordFailure records a failed analysis by error kind.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordFailure(ctx context.Context, kind string) {
	if am == nil {
		return
	}

	am.failuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}

// RecordExport records a produced export artifact.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordExport(ctx context.Context, format string) {
	if am == nil {
		return
	}

	am.exportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrFormat, format)))
}
