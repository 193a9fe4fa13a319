package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/punctscan/internal/analyzer"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
	"github.com/Sumatoshi-tech/punctscan/internal/report"
)

// Tool name constants.
const (
	ToolNameAnalyze = "punctuation_analyze"
	ToolNameResults = "punctuation_results"
	ToolNameTable   = "punctuation_table"
	ToolNameChart   = "punctuation_chart"
)

// MaxDocumentBytes is the maximum decoded document size accepted by the
// analyze tool (16 MB).
const MaxDocumentBytes = 16 << 20

const mimePNG = "image/png"

// Sentinel errors for tool input validation.
var (
	// ErrEmptyContent indicates the content_base64 parameter is empty.
	ErrEmptyContent = errors.New("content_base64 parameter is required and must not be empty")
	// ErrContentTooLarge indicates the decoded document exceeds the size limit.
	ErrContentTooLarge = errors.New("document exceeds maximum size")
)

// Input types (auto-generate JSON schemas via struct tags).

// AnalyzeInput is the input schema for the punctuation_analyze tool.
type AnalyzeInput struct {
	Filename      string `json:"filename"       jsonschema:"document name recorded with the result"`
	ContentBase64 string `json:"content_base64" jsonschema:"base64-encoded DOCX bytes"`
}

// ResultsInput is the input schema for the punctuation_results tool.
type ResultsInput struct{}

// TableInput is the input schema for the punctuation_table tool.
type TableInput struct {
	Format string `json:"format,omitempty" jsonschema:"csv, json, table or yaml (default: csv)"`
}

// ChartInput is the input schema for the punctuation_chart tool.
type ChartInput struct {
	Categories []string       `json:"categories,omitempty" jsonschema:"category names to plot (default: all)"`
	Filename   string         `json:"filename,omitempty"   jsonschema:"name of a single record to chart instead of the store"`
	Counts     map[string]int `json:"counts,omitempty"     jsonschema:"category counts of the single record"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set. The text starts with
// the stable error kind.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: analyzer.Kind(err) + ": " + err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func (s *Server) handleAnalyze(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input AnalyzeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := decodeContent(input.ContentBase64)
	if err != nil {
		return errorResult(err)
	}

	record, err := s.svc.Analyze(ctx, data, input.Filename)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(record)
}

func (s *Server) handleResults(
	ctx context.Context, _ *mcpsdk.CallToolRequest, _ ResultsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	records := s.svc.Results(ctx)
	if records == nil {
		records = []punctuation.Record{}
	}

	return jsonResult(records)
}

func (s *Server) handleTable(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input TableInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	format := input.Format
	if format == "" {
		format = report.FormatCSV
	}

	data, err := s.svc.Report(ctx, format)
	if err != nil {
		return errorResult(err)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: map[string]any{"format": format, "records": len(s.svc.Results(ctx))}}, nil
}

func (s *Server) handleChart(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ChartInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	req, err := chartRequest(input)
	if err != nil {
		return errorResult(err)
	}

	png, err := s.svc.ExportChart(ctx, req)
	if err != nil {
		return errorResult(err)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.ImageContent{Data: png, MIMEType: mimePNG},
		},
	}, ToolOutput{Data: map[string]any{"mime_type": mimePNG, "bytes": len(png)}}, nil
}

func decodeContent(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: %w", analyzer.ErrInvalidInput, ErrEmptyContent)
	}

	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxDocumentBytes+3 {
		return nil, fmt.Errorf("%w: %w (max %d bytes)", analyzer.ErrInvalidInput, ErrContentTooLarge, MaxDocumentBytes)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: content_base64: %w", analyzer.ErrInvalidInput, err)
	}

	return data, nil
}

func chartRequest(input ChartInput) (analyzer.ChartRequest, error) {
	var req analyzer.ChartRequest

	if input.Categories != nil {
		cats, err := punctuation.ParseCategories(input.Categories)
		if err != nil {
			return req, fmt.Errorf("%w: %w", analyzer.ErrInvalidSelection, err)
		}

		req.Categories = cats
	}

	if input.Counts == nil && input.Filename == "" {
		return req, nil
	}

	counts, err := punctuation.CountsFromMap(input.Counts)
	if err != nil {
		return req, fmt.Errorf("%w: counts: %w", analyzer.ErrInvalidInput, err)
	}

	req.Filename = input.Filename
	req.Counts = &counts

	return req, nil
}
