// Package report renders analysis records as tabular exports and listings.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// CSVFilename is the suggested download name for CSV exports.
const CSVFilename = "punctuation_summary.csv"

// ErrUnsupportedFormat indicates an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Formats lists the accepted output formats.
func Formats() []string {
	return []string{FormatTable, FormatCSV, FormatJSON, FormatYAML}
}

// ValidateFormat normalizes and checks an output format name.
func ValidateFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if !slices.Contains(Formats(), normalized) {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, format, strings.Join(Formats(), ", "))
	}

	return normalized, nil
}

// Columns returns the export header: filename, word_count, then every
// category in enumeration order.
func Columns() []string {
	return append([]string{punctuation.FieldFilename, punctuation.FieldWordCount}, punctuation.Names()...)
}

// row returns the cell values of rec in column order.
func row(rec punctuation.Record) []string {
	cells := make([]string, 0, punctuation.NumCategories+2)
	cells = append(cells, rec.Filename, strconv.Itoa(rec.WordCount))

	for _, n := range rec.Counts {
		cells = append(cells, strconv.Itoa(n))
	}

	return cells
}

// BuildCSV renders records as CSV with a header row and one row per record
// in input order.
func BuildCSV(records []punctuation.Record) ([]byte, error) {
	var buf bytes.Buffer

	err := WriteCSV(&buf, records)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteCSV streams the CSV rendering of records to w.
func WriteCSV(w io.Writer, records []punctuation.Record) error {
	cw := csv.NewWriter(w)

	err := cw.Write(Columns())
	if err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		err = cw.Write(row(rec))
		if err != nil {
			return fmt.Errorf("write csv row %q: %w", rec.Filename, err)
		}
	}

	cw.Flush()

	err = cw.Error()
	if err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []punctuation.Record) error {
	if records == nil {
		records = []punctuation.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(records)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

// Write renders records in the given format.
func Write(w io.Writer, format string, records []punctuation.Record) error {
	normalized, err := ValidateFormat(format)
	if err != nil {
		return err
	}

	switch normalized {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatYAML:
		return WriteYAML(w, records)
	default:
		return WriteTable(w, records)
	}
}
