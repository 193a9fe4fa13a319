package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// responseRecorder remembers the status code and body size written through it.
type responseRecorder struct {
	http.ResponseWriter

	code  int
	bytes int
}

func (rr *responseRecorder) WriteHeader(code int) {
	if rr.code == 0 {
		rr.code = code
	}

	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(buf []byte) (int, error) {
	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	n, err := rr.ResponseWriter.Write(buf)
	rr.bytes += n

	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}

	return n, nil
}

// Status is the written status; handlers that write nothing answer 200.
func (rr *responseRecorder) Status() int {
	if rr.code == 0 {
		return http.StatusOK
	}

	return rr.code
}

func routeOf(hr *http.Request) string {
	return hr.Method + " " + hr.URL.Path
}

// HTTPMiddleware starts a server span named "METHOD /path" for every request,
// continuing any W3C trace context the caller sent.
func HTTPMiddleware(tracer trace.Tracer, next http.Handler) http.Handler {
	propagator := otel.GetTextMapPropagator()

	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		parent := propagator.Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))

		ctx, span := tracer.Start(parent, routeOf(hr),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(hr.Method),
				attribute.String("http.target", hr.URL.Path),
			),
		)
		defer span.End()

		rec := &responseRecorder{ResponseWriter: rw}
		next.ServeHTTP(rec, hr.WithContext(ctx))

		code := rec.Status()
		span.SetAttributes(semconv.HTTPResponseStatusCode(code))

		if OutcomeForStatus(code) == OutcomeFailed {
			span.SetStatus(codes.Error, http.StatusText(code))
		}
	})
}

// RequestMiddleware tags each request with an id, records it in red and
// writes one access log line. A client X-Request-ID up to 128 bytes is kept.
// red may be nil.
func RequestMiddleware(logger *slog.Logger, red *REDMetrics, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		id := hr.Header.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		rw.Header().Set(HeaderRequestID, id)

		ctx := WithRequestID(hr.Context(), id)
		start := time.Now()
		end := red.Begin(ctx, TransportHTTP, routeOf(hr))

		rec := &responseRecorder{ResponseWriter: rw}
		next.ServeHTTP(rec, hr.WithContext(ctx))

		outcome := OutcomeForStatus(rec.Status())
		end(outcome)

		level := slog.LevelInfo

		switch outcome {
		case OutcomeFailed:
			level = slog.LevelError
		case OutcomeRejected:
			level = slog.LevelWarn
		case OutcomeOK:
		}

		logger.LogAttrs(ctx, level, "http request",
			slog.String("method", hr.Method),
			slog.String("path", hr.URL.Path),
			slog.Int("status", rec.Status()),
			slog.Int("bytes", rec.bytes),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
