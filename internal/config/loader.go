package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// configName is the config file name without extension.
	configName = ".punctscan"
	configType = "yaml"

	envPrefix       = "PUNCTSCAN"
	envKeySeparator = "_"
)

// Default values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = "30s"
	DefaultWriteTimeout    = "60s"
	DefaultIdleTimeout     = "120s"
	DefaultShutdownTimeout = "10s"
	DefaultMaxUploadSize   = "16MB"

	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText

	DefaultChartWidthInches  = 12.0
	DefaultChartHeightInches = 6.0
	DefaultChartTheme        = "light"
	DefaultChartCacheSize    = "32MB"
)

// LoadConfig loads configuration from defaults, a config file and env vars.
// If configPath is non-empty it is used as the explicit config file path;
// otherwise .punctscan.yaml is searched in CWD and $HOME. A missing config
// file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("server.host", DefaultHost)
	viperCfg.SetDefault("server.port", DefaultPort)
	viperCfg.SetDefault("server.read_timeout", DefaultReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultIdleTimeout)
	viperCfg.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	viperCfg.SetDefault("server.max_upload_size", DefaultMaxUploadSize)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.prometheus", true)
	viperCfg.SetDefault("observability.shutdown_timeout", "5s")

	viperCfg.SetDefault("chart.width_inches", DefaultChartWidthInches)
	viperCfg.SetDefault("chart.height_inches", DefaultChartHeightInches)
	viperCfg.SetDefault("chart.theme", DefaultChartTheme)
	viperCfg.SetDefault("chart.categories", []string{})
	viperCfg.SetDefault("chart.cache_size", DefaultChartCacheSize)
}
