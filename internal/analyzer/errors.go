package analyzer

import (
	"errors"

	"github.com/Sumatoshi-tech/punctscan/internal/chart"
	"github.com/Sumatoshi-tech/punctscan/internal/extract"
)

// Sentinel errors. Every error returned by Service wraps exactly one of them.
var (
	// ErrMalformedDocument indicates the uploaded bytes are not a readable document.
	ErrMalformedDocument = extract.ErrMalformedDocument
	// ErrInvalidSelection indicates an empty or unknown chart category selection.
	ErrInvalidSelection = chart.ErrInvalidSelection
	// ErrEmptyInput indicates there are no records to export.
	ErrEmptyInput = errors.New("no results available")
	// ErrInvalidInput indicates a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
)

// Stable error kinds shared by the HTTP and MCP transports.
const (
	KindMalformedDocument = "malformed_document"
	KindEmptyInput        = "empty_input"
	KindInvalidSelection  = "invalid_selection"
	KindInvalidInput      = "invalid_input"
	KindInternal          = "internal"
)

// Kind classifies err into one of the Kind constants. A nil error has no kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedDocument):
		return KindMalformedDocument
	case errors.Is(err, ErrEmptyInput), errors.Is(err, chart.ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrInvalidSelection):
		return KindInvalidSelection
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindInternal
	}
}
