package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildsync/internal/config"
	"github.com/matzehuels/buildsync/pkg/watch"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile on every change to the build workspace",
		Long: `Run one full reconciliation, then watch the build workspace and reconcile
again whenever files change. Only the changed files are scanned on later passes.`,
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

			rep, err := e.Reconcile(ctx, nil)
			if rep != nil {
				printReport(rep)
			}
			if err != nil {
				return err
			}

			w, err := watch.New(watch.Config{
				Root:     cfg.BuildRoot,
				Ignore:   watchIgnore(cfg),
				Debounce: cfg.Watch.Debounce.Std(),
				Logger:   logger,
				OnChange: func(ctx context.Context, changed []string) error {
					rep, err := e.Reconcile(ctx, changed)
					if rep != nil {
						printReport(rep)
					}
					if err != nil {
						printError("%v", err)
					}
					return err
				},
			})
			if err != nil {
				return err
			}

			printInfo("Watching %s", cfg.BuildRoot)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	c.engineFlags(cmd)
	return cmd
}

// watchIgnore extends the configured ignores with the files reconciliation
// itself writes to the build root, including their atomic-write temp files.
func watchIgnore(cfg config.Config) []string {
	out := append([]string(nil), cfg.Ignore...)
	for _, name := range []string{cfg.Manifest, cfg.TransformConfig} {
		if name == "" {
			continue
		}
		out = append(out, name, "."+name+".*")
	}
	return out
}
