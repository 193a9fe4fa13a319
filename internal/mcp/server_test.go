package mcp_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"log/slog"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/punctscan/internal/extract/extracttest"
	"github.com/Sumatoshi-tech/punctscan/internal/mcp"
	"github.com/Sumatoshi-tech/punctscan/internal/observability"
)

func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func call(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	return result
}

func text(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	tc, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])

	return tc.Text
}

func encodedDOCX(paragraphs ...string) string {
	return base64.StdEncoding.EncodeToString(extracttest.DOCX(extracttest.Content{Paragraphs: paragraphs}))
}

func newServer() *mcp.Server {
	return mcp.NewServer(mcp.ServerDeps{Logger: slog.New(slog.DiscardHandler)})
}

func TestServer_ToolsList(t *testing.T) {
	t.Parallel()

	srv := newServer()
	session := connect(t, srv)

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, srv.ListToolNames(), toolNames)
	assert.Equal(t, []string{
		mcp.ToolNameAnalyze, mcp.ToolNameChart, mcp.ToolNameResults, mcp.ToolNameTable,
	}, srv.ListToolNames())
}

func TestServer_AnalyzeThenExport(t *testing.T) {
	t.Parallel()

	session := connect(t, newServer())

	result := call(t, session, mcp.ToolNameAnalyze, map[string]any{
		"filename":       "essay.docx",
		"content_base64": encodedDOCX("Hello, world! Wait... what?"),
	})
	require.False(t, result.IsError, text(t, result))

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &record))
	assert.Equal(t, "essay.docx", record["filename"])
	assert.InDelta(t, 1.0, record["commas"], 0)

	result = call(t, session, mcp.ToolNameResults, map[string]any{})
	require.False(t, result.IsError)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &records))
	require.Len(t, records, 1)

	result = call(t, session, mcp.ToolNameTable, map[string]any{})
	require.False(t, result.IsError)
	assert.True(t, strings.HasPrefix(text(t, result), "filename,word_count,"))

	result = call(t, session, mcp.ToolNameTable, map[string]any{"format": "yaml"})
	require.False(t, result.IsError)
	assert.Contains(t, text(t, result), "essay.docx")

	result = call(t, session, mcp.ToolNameChart, map[string]any{"categories": []string{"commas"}})
	require.False(t, result.IsError)

	img, ok := result.Content[0].(*mcpsdk.ImageContent)
	require.True(t, ok, "content is %T", result.Content[0])
	assert.Equal(t, "image/png", img.MIMEType)

	_, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
}

func TestServer_SingleRecordChart(t *testing.T) {
	t.Parallel()

	session := connect(t, newServer())

	result := call(t, session, mcp.ToolNameChart, map[string]any{
		"filename": "draft.docx",
		"counts":   map[string]any{"commas": 3, "full_stops": 1},
	})
	require.False(t, result.IsError)

	_, ok := result.Content[0].(*mcpsdk.ImageContent)
	assert.True(t, ok)
}

func TestServer_ToolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		wantKind string
	}{
		{"empty content", mcp.ToolNameAnalyze, map[string]any{"filename": "a.docx", "content_base64": ""}, "invalid_input"},
		{"bad base64", mcp.ToolNameAnalyze, map[string]any{"filename": "a.docx", "content_base64": "!!!"}, "invalid_input"},
		{
			"not a docx", mcp.ToolNameAnalyze,
			map[string]any{"filename": "a.docx", "content_base64": base64.StdEncoding.EncodeToString([]byte("plain"))},
			"malformed_document",
		},
		{"empty table", mcp.ToolNameTable, map[string]any{}, "empty_input"},
		{"bad format", mcp.ToolNameTable, map[string]any{"format": "xml"}, "empty_input"},
		{"empty chart", mcp.ToolNameChart, map[string]any{}, "empty_input"},
		{"unknown category", mcp.ToolNameChart, map[string]any{"categories": []string{"tildes"}}, "invalid_selection"},
		{"empty selection", mcp.ToolNameChart, map[string]any{"categories": []string{}}, "invalid_selection"},
		{"single without filename", mcp.ToolNameChart, map[string]any{"counts": map[string]any{"commas": 1}}, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := connect(t, newServer())

			result := call(t, session, tt.tool, tt.args)
			require.True(t, result.IsError)
			assert.True(t, strings.HasPrefix(text(t, result), tt.wantKind+":"), text(t, result))
		})
	}
}

func TestServer_Telemetry(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	session := connect(t, mcp.NewServer(mcp.ServerDeps{
		Logger:  slog.New(slog.DiscardHandler),
		Metrics: red,
		Tracer:  tp.Tracer("test"),
	}))

	result := call(t, session, mcp.ToolNameResults, map[string]any{})
	require.False(t, result.IsError)

	last, ok := result.Content[len(result.Content)-1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(last.Text, "trace_id="))

	var names []string
	for _, span := range exporter.GetSpans() {
		names = append(names, span.Name)
	}

	assert.Contains(t, names, "mcp.punctuation_results")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := false

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "punctscan.requests.total" {
				found = true
			}
		}
	}

	assert.True(t, found)
}

func TestServer_RejectedCallsCountAsErrors(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	session := connect(t, mcp.NewServer(mcp.ServerDeps{
		Logger:  slog.New(slog.DiscardHandler),
		Metrics: red,
	}))

	result := call(t, session, mcp.ToolNameTable, map[string]any{})
	require.True(t, result.IsError)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	outcomes := map[string]int64{}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "punctscan.errors.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value("outcome")
				transport, _ := dp.Attributes.Value("transport")
				assert.Equal(t, "mcp", transport.AsString())

				outcomes[outcome.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{"rejected": 1}, outcomes)
}
