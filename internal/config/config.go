// Package config loads punctscan settings from defaults, a YAML file and
// PUNCTSCAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/punctscan/internal/chart"
	"github.com/Sumatoshi-tech/punctscan/internal/observability"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
	"github.com/Sumatoshi-tech/punctscan/internal/safeconv"
)

// Sentinel validation errors.
var (
	ErrInvalidPort        = errors.New("invalid server port")
	ErrInvalidUploadSize  = errors.New("invalid max upload size")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidChartSize   = errors.New("chart dimensions must be positive")
	ErrInvalidTheme       = errors.New("invalid chart theme")
	ErrInvalidCacheSize   = errors.New("invalid chart cache size")
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const maxPort = 65535

// Config holds all punctscan configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Chart         ChartConfig         `mapstructure:"chart"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxUploadSize is a humanized byte size such as "16MB" or "512 KiB".
	MaxUploadSize string `mapstructure:"max_upload_size"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds telemetry export settings.
type ObservabilityConfig struct {
	Environment  string `mapstructure:"environment"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	// OTLPHeaders is "key=value,key=value".
	OTLPHeaders     string        `mapstructure:"otlp_headers"`
	OTLPInsecure    bool          `mapstructure:"otlp_insecure"`
	SampleRatio     float64       `mapstructure:"sample_ratio"`
	Prometheus      bool          `mapstructure:"prometheus"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ChartConfig holds chart rendering defaults.
type ChartConfig struct {
	WidthInches  float64 `mapstructure:"width_inches"`
	HeightInches float64 `mapstructure:"height_inches"`
	Theme        string  `mapstructure:"theme"`
	// Categories is the default selection; empty means all.
	Categories []string `mapstructure:"categories"`
	// CacheSize bounds the rendered chart cache; "0" disables it.
	CacheSize string `mapstructure:"cache_size"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// MaxUploadBytes parses MaxUploadSize.
func (s ServerConfig) MaxUploadBytes() (int64, error) {
	n, err := humanize.ParseBytes(s.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidUploadSize, s.MaxUploadSize, err)
	}

	limit, err := safeconv.Uint64ToInt64(n)
	if err != nil || limit == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUploadSize, s.MaxUploadSize)
	}

	return limit, nil
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// Selection parses Categories. An empty list yields nil.
func (c ChartConfig) Selection() ([]punctuation.Category, error) {
	if len(c.Categories) == 0 {
		return nil, nil
	}

	cats, err := punctuation.ParseCategories(c.Categories)
	if err != nil {
		return nil, fmt.Errorf("chart categories: %w", err)
	}

	if len(cats) == 0 {
		return nil, nil
	}

	return cats, nil
}

// CacheBytes parses CacheSize. Zero means caching is disabled.
func (c ChartConfig) CacheBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.CacheSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidCacheSize, c.CacheSize, err)
	}

	size, err := safeconv.Uint64ToInt64(n)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCacheSize, c.CacheSize)
	}

	return size, nil
}

// Options returns the chart rendering options.
func (c ChartConfig) Options() chart.Options {
	opts := chart.DefaultOptions()
	opts.WidthInches = c.WidthInches
	opts.HeightInches = c.HeightInches
	opts.Theme = chart.Theme(c.Theme)

	return opts
}

// Telemetry builds the observability configuration for the given mode.
func (c *Config) Telemetry(mode observability.AppMode, version string) (observability.Config, error) {
	level, err := c.Logging.SlogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Environment = c.Observability.Environment
	cfg.Mode = mode
	cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Observability.OTLPHeaders)
	cfg.OTLPInsecure = c.Observability.OTLPInsecure
	cfg.SampleRatio = c.Observability.SampleRatio
	cfg.Prometheus = c.Observability.Prometheus && mode == observability.ModeServe
	cfg.LogLevel = level
	cfg.LogJSON = strings.EqualFold(c.Logging.Format, LogFormatJSON)

	if c.Observability.ShutdownTimeout > 0 {
		cfg.ShutdownTimeoutSec = int(c.Observability.ShutdownTimeout / time.Second)
	}

	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	_, err := c.Server.MaxUploadBytes()
	if err != nil {
		return err
	}

	_, err = c.Logging.SlogLevel()
	if err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Format) {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Observability.SampleRatio)
	}

	if c.Chart.WidthInches <= 0 || c.Chart.HeightInches <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidChartSize, c.Chart.WidthInches, c.Chart.HeightInches)
	}

	switch chart.Theme(c.Chart.Theme) {
	case chart.ThemeLight, chart.ThemeDark:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Chart.Theme)
	}

	_, err = c.Chart.Selection()
	if err != nil {
		return err
	}

	_, err = c.Chart.CacheBytes()
	if err != nil {
		return err
	}

	return nil
}
