// Package mcp exposes punctuation analysis as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/punctscan/internal/analyzer"
	"github.com/Sumatoshi-tech/punctscan/internal/observability"
)

const (
	serverName     = "punctscan"
	defaultVersion = "dev"

	// spanPrefix names tool spans and RED ops, e.g. "mcp.punctuation_chart".
	spanPrefix = "mcp."
	// traceIDKey prefixes the trace id text appended to sampled results.
	traceIDKey = "trace_id"
)

// ServerDeps are the collaborators of a Server. Only Service is required in
// production; the rest are optional.
type ServerDeps struct {
	// Service holds the session store. Nil starts an empty one.
	Service *analyzer.Service
	// Version is reported to clients. Empty reports "dev".
	Version string
	Logger  *slog.Logger
	Metrics *observability.REDMetrics
	Tracer  trace.Tracer
}

// Server is an MCP server whose tools share one analysis session.
type Server struct {
	inner   *mcpsdk.Server
	svc     *analyzer.Service
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	tools   []string
}

// NewServer builds the server and registers every tool.
func NewServer(deps ServerDeps) *Server {
	version := deps.Version
	if version == "" {
		version = defaultVersion
	}

	svc := deps.Service
	if svc == nil {
		svc = analyzer.NewService(analyzer.Deps{Logger: deps.Logger, Tracer: deps.Tracer})
	}

	srv := &Server{
		inner: mcpsdk.NewServer(
			&mcpsdk.Implementation{Name: serverName, Version: version},
			&mcpsdk.ServerOptions{Logger: deps.Logger},
		),
		svc:     svc,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	addTool(srv, ToolNameAnalyze, analyzeToolDescription, srv.handleAnalyze)
	addTool(srv, ToolNameResults, resultsToolDescription, srv.handleResults)
	addTool(srv, ToolNameTable, tableToolDescription, srv.handleTable)
	addTool(srv, ToolNameChart, chartToolDescription, srv.handleChart)

	slices.Sort(srv.tools)

	return srv
}

// ListToolNames returns the registered tool names in sorted order.
func (s *Server) ListToolNames() []string {
	return slices.Clone(s.tools)
}

// Run serves over stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves over transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func addTool[Input any](
	s *Server,
	name, description string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{Name: name, Description: description}, instrument(s, name, handler))

	s.tools = append(s.tools, name)
}

// instrument wraps a tool handler with a server span and RED metrics. Sampled
// results get a trailing "trace_id=<id>" text block.
func instrument[Input any](
	s *Server,
	name string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	op := spanPrefix + name

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		end := s.metrics.Begin(ctx, observability.TransportMCP, op)

		var span trace.Span
		if s.tracer != nil {
			ctx, span = s.tracer.Start(ctx, op,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", name)),
			)
			defer span.End()
		}

		result, output, err := handler(ctx, req, input)
		outcome := toolOutcome(result, err)

		end(outcome)

		if span == nil {
			return result, output, err
		}

		if outcome == observability.OutcomeFailed {
			span.SetStatus(codes.Error, "tool failed")
		}

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			result.Content = append(result.Content, &mcpsdk.TextContent{
				Text: traceIDKey + "=" + sc.TraceID().String(),
			})
		}

		return result, output, err
	}
}

// toolOutcome classifies a finished tool call. Error results carry their
// kind as a text prefix; only internal failures count as failed.
func toolOutcome(result *mcpsdk.CallToolResult, err error) observability.Outcome {
	if err != nil {
		return observability.OutcomeFailed
	}

	if result == nil || !result.IsError {
		return observability.OutcomeOK
	}

	for _, content := range result.Content {
		text, ok := content.(*mcpsdk.TextContent)
		if ok && strings.HasPrefix(text.Text, analyzer.KindInternal+":") {
			return observability.OutcomeFailed
		}
	}

	return observability.OutcomeRejected
}

const (
	analyzeToolDescription = "Analyze a DOCX document for punctuation usage. " +
		"Accepts a filename and the base64-encoded document bytes; the result is added to the session store."

	resultsToolDescription = "List every analysis record stored in this session, in upload order."

	tableToolDescription = "Export the stored records as a summary table " +
		"(format: csv, json, table or yaml; default csv)."

	chartToolDescription = "Render a PNG line chart of punctuation counts per document. " +
		"Charts the stored records, or a single record when filename and counts are given."
)
