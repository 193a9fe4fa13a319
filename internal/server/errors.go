package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sumatoshi-tech/punctscan/internal/analyzer"
)

// Transport-only error kinds.
const (
	kindPayloadTooLarge = "payload_too_large"
	kindNotFound        = "not_found"
)

// Messages for the empty-store case, per resource.
const (
	msgNoFile  = "No file uploaded."
	msgNoCSV   = "No CSV available. Run analysis first."
	msgNoGraph = "No graph available. Run analysis first."
	msgNoRoute = "Route not found."
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusForKind(kind string) int {
	switch kind {
	case analyzer.KindMalformedDocument:
		return http.StatusUnprocessableEntity
	case analyzer.KindEmptyInput, kindNotFound:
		return http.StatusNotFound
	case analyzer.KindInvalidSelection, analyzer.KindInvalidInput:
		return http.StatusBadRequest
	case kindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, rw http.ResponseWriter, code int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}

func writeKind(ctx context.Context, rw http.ResponseWriter, kind, message string) {
	writeJSON(ctx, rw, statusForKind(kind), errorResponse{Error: kind, Message: message})
}

// writeError maps err onto a status and JSON body. emptyMsg replaces the
// message of an empty-store error when set. Internal errors are not echoed.
func (s *Server) writeError(ctx context.Context, rw http.ResponseWriter, err error, emptyMsg string) {
	kind := analyzer.Kind(err)
	message := err.Error()

	switch {
	case kind == analyzer.KindEmptyInput && emptyMsg != "":
		message = emptyMsg
	case kind == analyzer.KindInternal:
		s.logger.ErrorContext(ctx, "request failed", "error", err)

		message = http.StatusText(http.StatusInternalServerError)
	}

	writeKind(ctx, rw, kind, message)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError

	return errors.As(err, &maxErr)
}
