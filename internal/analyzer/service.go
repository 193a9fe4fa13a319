// Package analyzer is the core punctuation analysis service shared by the
// CLI, HTTP and MCP front ends.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/punctscan/internal/cache"
	"github.com/Sumatoshi-tech/punctscan/internal/chart"
	"github.com/Sumatoshi-tech/punctscan/internal/extract"
	"github.com/Sumatoshi-tech/punctscan/internal/observability"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
	"github.com/Sumatoshi-tech/punctscan/internal/report"
	"github.com/Sumatoshi-tech/punctscan/internal/store"
)

var errNotReady = errors.New("analyzer not initialized")

// Export formats recorded in metrics.
const (
	exportPNG  = "png"
	exportHTML = "html"
)

// Deps are the collaborators of a Service. Zero fields get defaults.
type Deps struct {
	Parser   extract.Parser
	Store    *store.Store
	Renderer *chart.Renderer
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  *observability.AnalysisMetrics

	// ChartCache holds rendered store charts. Nil disables caching.
	ChartCache *cache.LRU

	// DefaultCategories replaces a nil chart selection. Nil means every
	// category.
	DefaultCategories []punctuation.Category
}

// Service analyzes documents into the shared store and exports reports and
// charts from it. It is safe for concurrent use.
type Service struct {
	parser     extract.Parser
	store      *store.Store
	renderer   *chart.Renderer
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *observability.AnalysisMetrics
	charts     *cache.LRU
	categories []punctuation.Category
}

// ChartRequest selects what to chart.
type ChartRequest struct {
	// Categories to plot. Nil selects the configured default; an empty
	// non-nil slice is rejected.
	Categories []punctuation.Category

	// Filename and Counts describe a single caller-supplied record. When
	// Counts is nil the chart covers every stored record.
	Filename string
	Counts   *punctuation.Counts
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	svc := &Service{
		parser:     deps.Parser,
		store:      deps.Store,
		renderer:   deps.Renderer,
		logger:     deps.Logger,
		tracer:     deps.Tracer,
		metrics:    deps.Metrics,
		charts:     deps.ChartCache,
		categories: deps.DefaultCategories,
	}

	if svc.parser == nil {
		svc.parser = extract.NewDOCXParser()
	}

	if svc.store == nil {
		svc.store = store.New()
	}

	if svc.renderer == nil {
		svc.renderer = chart.NewRenderer(chart.DefaultOptions())
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	if svc.tracer == nil {
		svc.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	if svc.categories == nil {
		svc.categories = punctuation.AllCategories()
	}

	return svc
}

// Analyze parses data as a document named filename, classifies its text and
// appends the record to the store. Nothing is stored on failure.
func (s *Service) Analyze(ctx context.Context, data []byte, filename string) (punctuation.Record, error) {
	ctx, span := s.tracer.Start(ctx, "analyzer.Analyze", trace.WithAttributes(
		attribute.String("document.name", filename),
		attribute.Int("document.size", len(data)),
	))
	defer span.End()

	start := time.Now()

	rec, err := s.analyze(data, filename)
	if err != nil {
		s.fail(ctx, span, "analyze failed", err, slog.String("filename", filename))

		return punctuation.Record{}, err
	}

	s.store.Append(rec)

	elapsed := time.Since(start)
	s.metrics.RecordDocument(ctx, observability.DocumentStats{
		Words:    rec.WordCount,
		Marks:    rec.Counts.Map(),
		Duration: elapsed,
	})

	span.SetAttributes(
		attribute.Int("document.words", rec.WordCount),
		attribute.Int("document.marks", rec.Counts.Total()),
	)

	s.logger.InfoContext(ctx, "document analyzed",
		"filename", rec.Filename,
		"words", rec.WordCount,
		"marks", rec.Counts.Total(),
		"duration", elapsed,
	)

	return rec, nil
}

func (s *Service) analyze(data []byte, filename string) (punctuation.Record, error) {
	if strings.TrimSpace(filename) == "" {
		return punctuation.Record{}, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}

	doc, err := s.parser.Parse(data)
	if err != nil {
		if !errors.Is(err, ErrMalformedDocument) {
			err = fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}

		return punctuation.Record{}, err
	}

	rec, err := punctuation.NewRecord(filename, extract.Extract(doc))
	if err != nil {
		return punctuation.Record{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return rec, nil
}

// Results returns every stored record in insertion order.
func (s *Service) Results(_ context.Context) []punctuation.Record {
	return s.store.All()
}

// Report renders every stored record in the given report format.
func (s *Service) Report(ctx context.Context, format string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "analyzer.Report", trace.WithAttributes(
		attribute.String("report.format", format),
	))
	defer span.End()

	records := s.store.All()
	if len(records) == 0 {
		err := fmt.Errorf("%w: run analysis first", ErrEmptyInput)
		s.fail(ctx, span, "report failed", err)

		return nil, err
	}

	var buf bytes.Buffer

	err := report.Write(&buf, format, records)
	if err != nil {
		if errors.Is(err, report.ErrUnsupportedFormat) {
			err = fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		s.fail(ctx, span, "report failed", err)

		return nil, err
	}

	format, _ = report.ValidateFormat(format)
	s.metrics.RecordExport(ctx, format)

	return buf.Bytes(), nil
}

// ExportTable returns the CSV summary of every stored record.
func (s *Service) ExportTable(ctx context.Context) ([]byte, error) {
	return s.Report(ctx, report.FormatCSV)
}

// ExportChart renders the requested chart as PNG.
func (s *Service) ExportChart(ctx context.Context, req ChartRequest) ([]byte, error) {
	return s.exportChart(ctx, req, exportPNG, s.renderer.RenderPNG)
}

// ExportChartHTML renders the requested chart as an interactive HTML page.
func (s *Service) ExportChartHTML(ctx context.Context, req ChartRequest) ([]byte, error) {
	return s.exportChart(ctx, req, exportHTML, s.renderer.RenderHTML)
}

type renderFunc func(records []punctuation.Record, categories []punctuation.Category) ([]byte, error)

func (s *Service) exportChart(ctx context.Context, req ChartRequest, format string, render renderFunc) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "analyzer.ExportChart", trace.WithAttributes(
		attribute.String("chart.format", format),
		attribute.Bool("chart.single", req.Counts != nil),
	))
	defer span.End()

	categories := req.Categories
	if categories == nil {
		categories = s.categories
	}

	records, err := s.chartRecords(req)
	if err != nil {
		s.fail(ctx, span, "chart export failed", err)

		return nil, err
	}

	// The store is append-only, so its length identifies its contents.
	var key string
	if req.Counts == nil && s.charts != nil {
		key = chartCacheKey(format, len(records), categories)

		if data, ok := s.charts.Get(key); ok {
			s.metrics.RecordExport(ctx, format)
			span.SetAttributes(attribute.Bool("chart.cached", true))

			return data, nil
		}
	}

	data, err := render(records, categories)
	if err != nil {
		if errors.Is(err, chart.ErrEmptyInput) {
			err = fmt.Errorf("%w: %w", ErrEmptyInput, err)
		}

		s.fail(ctx, span, "chart export failed", err)

		return nil, err
	}

	if key != "" {
		s.charts.Put(key, data)
	}

	s.metrics.RecordExport(ctx, format)
	span.SetAttributes(attribute.Int("chart.records", len(records)))

	return data, nil
}

func chartCacheKey(format string, records int, categories []punctuation.Category) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s/%d", format, records)

	for _, c := range categories {
		sb.WriteByte('/')
		sb.WriteString(c.String())
	}

	return sb.String()
}

func (s *Service) chartRecords(req ChartRequest) ([]punctuation.Record, error) {
	if req.Counts == nil {
		return s.store.All(), nil
	}

	if strings.TrimSpace(req.Filename) == "" {
		return nil, fmt.Errorf("%w: filename is required with counts", ErrInvalidInput)
	}

	for cat, n := range req.Counts {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative count for %s", ErrInvalidInput, punctuation.Category(cat))
		}
	}

	return []punctuation.Record{{Filename: req.Filename, Counts: *req.Counts}}, nil
}

// Ready reports whether the service can accept requests.
func (s *Service) Ready(_ context.Context) error {
	if s.parser == nil || s.store == nil || s.renderer == nil {
		return errNotReady
	}

	return nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, msg string, err error, attrs ...any) {
	kind := Kind(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	s.metrics.RecordFailure(ctx, kind)

	level := slog.LevelWarn
	if kind == KindInternal {
		level = slog.LevelError
	}

	s.logger.Log(ctx, level, msg, append(attrs, "kind", kind, "error", err)...)
}
