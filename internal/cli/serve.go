package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/buildsync/internal/config"
	"github.com/matzehuels/buildsync/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconciliation control API",
		Long: `Start an HTTP server that triggers reconciliation on request.

Endpoints:
  GET  /healthz        liveness
  GET  /v1/status      last report and cold-start state
  POST /v1/reconcile   run a pass; body {"files": [...]} restricts the scan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			e, cleanup, err := c.newEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			printKeyValue("build root", cfg.BuildRoot)
			printKeyValue("source root", cfg.SourceRoot)
			return server.New(cfg.Server.Addr, e, logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&c.flags.Server.Addr, "addr", "", "listen address (default from config: "+config.Default().Server.Addr+")")
	c.engineFlags(cmd)
	return cmd
}
