package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/punctscan/internal/observability"
	"github.com/Sumatoshi-tech/punctscan/internal/server"
)

// NewServeCommand creates the HTTP server command.
func NewServeCommand(global *GlobalOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the punctscan HTTP API",
		Long: `Start an HTTP server exposing document upload, result listing, CSV and
chart downloads, plus /healthz, /readyz and a Prometheus /metrics endpoint.

Results are kept in memory for the lifetime of the process.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newApp(global, observability.ModeServe)
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			srvCfg := rt.cfg.Server
			if cmd.Flags().Changed("host") {
				srvCfg.Host = host
			}

			if cmd.Flags().Changed("port") {
				srvCfg.Port = port
			}

			maxUpload, err := srvCfg.MaxUploadBytes()
			if err != nil {
				return err
			}

			srv, err := server.New(rt.svc, server.Options{
				Addr:            srvCfg.Addr(),
				ReadTimeout:     srvCfg.ReadTimeout,
				WriteTimeout:    srvCfg.WriteTimeout,
				IdleTimeout:     srvCfg.IdleTimeout,
				ShutdownTimeout: srvCfg.ShutdownTimeout,
				MaxUploadBytes:  maxUpload,
				Logger:          rt.providers.Logger,
				Tracer:          rt.providers.Tracer,
				RED:             rt.red,
				MetricsHandler:  rt.providers.MetricsHandler,
			})
			if err != nil {
				return err
			}

			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")

	return cmd
}
