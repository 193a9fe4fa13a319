package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/punctscan/internal/mcp"
	"github.com/Sumatoshi-tech/punctscan/internal/observability"
	"github.com/Sumatoshi-tech/punctscan/internal/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes punctuation analysis as tools that AI agents can
discover and invoke:
  - punctuation_analyze: analyze a base64-encoded DOCX document
  - punctuation_results: list the records analyzed in this session
  - punctuation_table:   export the records as CSV, JSON, YAML or a table
  - punctuation_chart:   render a PNG line chart`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newApp(global, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			srv := mcp.NewServer(mcp.ServerDeps{
				Service: rt.svc,
				Version: version.Version,
				Logger:  rt.providers.Logger,
				Metrics: rt.red,
				Tracer:  rt.providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}
}
