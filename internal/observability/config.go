// Package observability wires tracing, metrics and structured logging for
// every punctscan mode.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// AppMode is the way the binary was started.
type AppMode string

// Application modes.
const (
	ModeCLI   AppMode = "cli"
	ModeMCP   AppMode = "mcp"
	ModeServe AppMode = "serve"
)

const (
	defaultServiceName        = "punctscan"
	defaultShutdownTimeoutSec = 5
)

// Config selects exporters and log output.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is a gRPC collector address such as "localhost:4317".
	// Empty keeps traces and pushed metrics disabled.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// SampleRatio in (0, 1] samples root spans by trace id. Zero samples all.
	// OTEL_TRACES_SAMPLER overrides it.
	SampleRatio float64

	// Prometheus enables the pull exporter behind Providers.MetricsHandler.
	Prometheus bool

	LogLevel slog.Level
	LogJSON  bool
	// LogOutput receives log lines. Nil means stderr; stdout belongs to
	// command output and the MCP stdio transport.
	LogOutput io.Writer

	ShutdownTimeoutSec int
}

// DefaultConfig is the zero-configuration CLI setup: info logs, no export.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}

	if c.ShutdownTimeoutSec <= 0 {
		c.ShutdownTimeoutSec = defaultShutdownTimeoutSec
	}

	if c.LogOutput == nil {
		c.LogOutput = os.Stderr
	}

	return c
}
