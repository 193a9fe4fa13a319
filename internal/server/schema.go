package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/punctscan/internal/analyzer"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
	"github.com/Sumatoshi-tech/punctscan/internal/report"
)

// recordChartRequest is the body of POST /api/download_graph.
type recordChartRequest struct {
	Filename          string         `json:"filename"`
	SelectedMarks     []string       `json:"selected_marks"`
	PunctuationCounts map[string]int `json:"punctuation_counts"`
}

// chartRequestValidator checks request bodies against a JSON schema derived
// from the category enumeration.
type chartRequestValidator struct {
	schema *gojsonschema.Schema
}

func newChartRequestValidator() (*chartRequestValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ChartRequestSchema()))
	if err != nil {
		return nil, fmt.Errorf("compile chart request schema: %w", err)
	}

	return &chartRequestValidator{schema: schema}, nil
}

// ChartRequestSchema describes the body of POST /api/download_graph.
func ChartRequestSchema() map[string]any {
	counts := make(map[string]any, punctuation.NumCategories+1)
	for _, name := range punctuation.Names() {
		counts[name] = map[string]any{"type": "integer", "minimum": 0}
	}

	// Clients may echo the counts of a whole analysis record back.
	counts[punctuation.FieldWordCount] = map[string]any{"type": "integer", "minimum": 0}

	return map[string]any{
		"$schema":  report.JSONSchemaDraft,
		"title":    "Record Chart Request",
		"type":     "object",
		"required": []any{"filename", "selected_marks", "punctuation_counts"},
		"properties": map[string]any{
			"filename": map[string]any{"type": "string", "minLength": 1},
			"selected_marks": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"punctuation_counts": map[string]any{
				"type":                 "object",
				"properties":           counts,
				"additionalProperties": false,
			},
		},
	}
}

// Decode validates body and converts it into a single-record chart request.
func (v *chartRequestValidator) Decode(body []byte) (analyzer.ChartRequest, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return analyzer.ChartRequest{}, fmt.Errorf("%w: body is not valid JSON: %w", analyzer.ErrInvalidInput, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}

		return analyzer.ChartRequest{}, fmt.Errorf("%w: %s", analyzer.ErrInvalidInput, strings.Join(msgs, "; "))
	}

	var req recordChartRequest

	err = json.Unmarshal(body, &req)
	if err != nil {
		return analyzer.ChartRequest{}, fmt.Errorf("%w: %w", analyzer.ErrInvalidInput, err)
	}

	categories, err := parseSelection(req.SelectedMarks)
	if err != nil {
		return analyzer.ChartRequest{}, err
	}

	delete(req.PunctuationCounts, punctuation.FieldWordCount)

	counts, err := punctuation.CountsFromMap(req.PunctuationCounts)
	if err != nil {
		return analyzer.ChartRequest{}, fmt.Errorf("%w: %w", analyzer.ErrInvalidInput, err)
	}

	return analyzer.ChartRequest{
		Categories: categories,
		Filename:   req.Filename,
		Counts:     &counts,
	}, nil
}

// parseSelection resolves mark names. The result is never nil so an empty
// list stays an explicit empty selection.
func parseSelection(names []string) ([]punctuation.Category, error) {
	cats, err := punctuation.ParseCategories(names)
	if err != nil {
		if errors.Is(err, punctuation.ErrUnknownCategory) {
			return nil, fmt.Errorf("%w: %w", analyzer.ErrInvalidSelection, err)
		}

		return nil, err
	}

	return cats, nil
}
