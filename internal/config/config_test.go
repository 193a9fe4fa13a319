package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/punctscan/internal/chart"
	"github.com/Sumatoshi-tech/punctscan/internal/config"
	"github.com/Sumatoshi-tech/punctscan/internal/observability"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "punctscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	limit, err := cfg.Server.MaxUploadBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(16_000_000), limit)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, config.LogFormatText, cfg.Logging.Format)
	assert.True(t, cfg.Observability.Prometheus)

	assert.InDelta(t, 12.0, cfg.Chart.WidthInches, 0)
	assert.InDelta(t, 6.0, cfg.Chart.HeightInches, 0)

	sel, err := cfg.Chart.Selection()
	require.NoError(t, err)
	assert.Nil(t, sel)

	cacheBytes, err := cfg.Chart.CacheBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(32_000_000), cacheBytes)
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
  max_upload_size: "512 KiB"
logging:
  level: debug
  format: json
observability:
  environment: staging
  otlp_headers: "api-key=abc"
  sample_ratio: 0.25
chart:
  width_inches: 10
  height_inches: 5
  theme: dark
  categories: [commas, full_stops]
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())

	limit, err := cfg.Server.MaxUploadBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(512*1024), limit)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	sel, err := cfg.Chart.Selection()
	require.NoError(t, err)
	assert.Equal(t, []punctuation.Category{punctuation.Commas, punctuation.FullStops}, sel)

	opts := cfg.Chart.Options()
	assert.Equal(t, chart.ThemeDark, opts.Theme)
	assert.InDelta(t, 10.0, opts.WidthInches, 0)
	assert.Equal(t, chart.DefaultOptions().Title, opts.Title)

	tel, err := cfg.Telemetry(observability.ModeServe, "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "staging", tel.Environment)
	assert.Equal(t, map[string]string{"api-key": "abc"}, tel.OTLPHeaders)
	assert.True(t, tel.LogJSON)
	assert.True(t, tel.Prometheus)
	assert.Equal(t, "1.0.0", tel.ServiceVersion)
	assert.InDelta(t, 0.25, tel.SampleRatio, 0)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PUNCTSCAN_SERVER_PORT", "9090")
	t.Setenv("PUNCTSCAN_SERVER_MAX_UPLOAD_SIZE", "2MB")
	t.Setenv("PUNCTSCAN_CHART_THEME", "dark")

	cfg, err := config.LoadConfig(writeConfig(t, "server:\n  port: 7000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "dark", cfg.Chart.Theme)

	limit, err := cfg.Server.MaxUploadBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), limit)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"port zero", "server:\n  port: 0\n", config.ErrInvalidPort},
		{"port too large", "server:\n  port: 70000\n", config.ErrInvalidPort},
		{"upload size", "server:\n  max_upload_size: lots\n", config.ErrInvalidUploadSize},
		{"upload size zero", "server:\n  max_upload_size: 0B\n", config.ErrInvalidUploadSize},
		{"log level", "logging:\n  level: chatty\n", config.ErrInvalidLogLevel},
		{"log format", "logging:\n  format: xml\n", config.ErrInvalidLogFormat},
		{"sample ratio", "observability:\n  sample_ratio: 2\n", config.ErrInvalidSampleRatio},
		{"chart size", "chart:\n  width_inches: 0\n", config.ErrInvalidChartSize},
		{"theme", "chart:\n  theme: neon\n", config.ErrInvalidTheme},
		{"category", "chart:\n  categories: [commas, tildes]\n", punctuation.ErrUnknownCategory},
		{"cache size", "chart:\n  cache_size: huge\n", config.ErrInvalidCacheSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTelemetry_PrometheusOnlyWhenServing(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	tel, err := cfg.Telemetry(observability.ModeCLI, "dev")
	require.NoError(t, err)

	assert.False(t, tel.Prometheus)
	assert.Equal(t, observability.ModeCLI, tel.Mode)
	assert.Equal(t, 5, tel.ShutdownTimeoutSec)
}
