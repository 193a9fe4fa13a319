// Package chart renders comparative punctuation charts across documents.
package chart

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

// Download names for chart exports.
const (
	PNGFilename  = "combined_punctuation_graph.png"
	HTMLFilename = "combined_punctuation_graph.html"
)

// Sentinel errors.
var (
	// ErrInvalidSelection indicates an empty selection or a category outside
	// the enumeration.
	ErrInvalidSelection = errors.New("invalid category selection")
	// ErrEmptyInput indicates there are no records to chart.
	ErrEmptyInput = errors.New("no records to chart")
)

// documentExtensions are stripped from tick labels.
var documentExtensions = []string{".docx", ".docm", ".dotx", ".doc"}

// Options configures chart rendering.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	// WidthInches and HeightInches size the raster output.
	WidthInches  float64
	HeightInches float64
	Theme        Theme
}

// DefaultOptions returns the standard 12x6 inch light chart.
func DefaultOptions() Options {
	return Options{
		Title:        "Punctuation Frequency Across Documents",
		XLabel:       "Document",
		YLabel:       "Count",
		WidthInches:  12,
		HeightInches: 6,
		Theme:        ThemeLight,
	}
}

// Series is one plotted category.
type Series struct {
	Category punctuation.Category
	Name     string
	Values   []int
}

// Data is the chart-ready view of a record set.
type Data struct {
	Labels []string
	Series []Series
}

// Validate checks the inputs shared by every renderer.
func Validate(records []punctuation.Record, categories []punctuation.Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidSelection)
	}

	for _, cat := range categories {
		if !cat.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidSelection, cat)
		}
	}

	if len(records) == 0 {
		return ErrEmptyInput
	}

	return nil
}

// Build validates the inputs and lays out one series per distinct selected
// category, in selection order, with one point per record.
func Build(records []punctuation.Record, categories []punctuation.Category) (Data, error) {
	err := Validate(records, categories)
	if err != nil {
		return Data{}, err
	}

	labels := make([]string, len(records))
	for i, rec := range records {
		labels[i] = DisplayName(rec.Filename)
	}

	series := make([]Series, 0, len(categories))
	seen := make([]punctuation.Category, 0, len(categories))

	for _, cat := range categories {
		if slices.Contains(seen, cat) {
			continue
		}

		seen = append(seen, cat)

		values := make([]int, len(records))
		for i, rec := range records {
			values[i] = rec.Counts[cat]
		}

		series = append(series, Series{Category: cat, Name: cat.Label(), Values: values})
	}

	return Data{Labels: labels, Series: series}, nil
}

// DisplayName strips a trailing word-processing extension from a filename.
// The stored filename is not affected.
func DisplayName(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return filename
	}

	for _, known := range documentExtensions {
		if strings.EqualFold(ext, known) {
			return strings.TrimSuffix(filename, ext)
		}
	}

	return filename
}
