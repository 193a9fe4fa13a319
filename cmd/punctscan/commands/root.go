// Package commands implements the punctscan CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/punctscan/internal/analyzer"
	"github.com/Sumatoshi-tech/punctscan/internal/cache"
	"github.com/Sumatoshi-tech/punctscan/internal/chart"
	"github.com/Sumatoshi-tech/punctscan/internal/config"
	"github.com/Sumatoshi-tech/punctscan/internal/observability"
	"github.com/Sumatoshi-tech/punctscan/internal/version"
)

const binaryName = "punctscan"

// GlobalOptions are the persistent root flags.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand builds the punctscan command tree.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   binaryName,
		Short: "Punctuation usage analysis for Word documents",
		Long: `punctscan counts punctuation marks in DOCX documents and exports the
results as tables and line charts.

Commands:
  analyze     Analyze documents from the command line
  serve       Start the HTTP API
  mcp         Start the MCP server on stdio
  categories  List the punctuation categories`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default is ./.punctscan.yaml or $HOME/.punctscan.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(NewAnalyzeCommand(opts))
	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewMCPCommand(opts))
	rootCmd.AddCommand(NewCategoriesCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String(binaryName))
		},
	}
}

// app is the wiring shared by every command that analyzes documents.
type app struct {
	cfg       *config.Config
	providers observability.Providers
	svc       *analyzer.Service
	red       *observability.REDMetrics
}

func newApp(opts *GlobalOptions, mode observability.AppMode) (*app, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	tel, err := cfg.Telemetry(mode, version.Version)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.Verbose:
		tel.LogLevel = slog.LevelDebug
	case opts.Quiet:
		tel.LogLevel = slog.LevelError
	case mode == observability.ModeCLI && tel.LogLevel < slog.LevelWarn:
		// Status lines already report progress in one-shot runs.
		tel.LogLevel = slog.LevelWarn
	}

	if mode == observability.ModeMCP {
		tel.LogJSON = true
	}

	providers, err := observability.Init(tel)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	rt, err := wireApp(cfg, providers)
	if err != nil {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}

		return nil, err
	}

	return rt, nil
}

func wireApp(cfg *config.Config, providers observability.Providers) (*app, error) {
	analysisMetrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("analysis metrics: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("red metrics: %w", err)
	}

	categories, err := cfg.Chart.Selection()
	if err != nil {
		return nil, err
	}

	cacheBytes, err := cfg.Chart.CacheBytes()
	if err != nil {
		return nil, err
	}

	var charts *cache.LRU
	if cacheBytes > 0 {
		charts = cache.NewLRU(cacheBytes)
	}

	svc := analyzer.NewService(analyzer.Deps{
		Renderer:          chart.NewRenderer(cfg.Chart.Options()),
		ChartCache:        charts,
		Logger:            providers.Logger,
		Tracer:            providers.Tracer,
		Metrics:           analysisMetrics,
		DefaultCategories: categories,
	})

	return &app{cfg: cfg, providers: providers, svc: svc, red: red}, nil
}

func (rt *app) close(ctx context.Context) {
	err := rt.providers.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		rt.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}
