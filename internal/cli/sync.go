package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildsync/internal/config"
	"github.com/matzehuels/buildsync/pkg/observability"
	"github.com/matzehuels/buildsync/pkg/registry"
)

// engineFlags registers the flags shared by every command that runs the
// reconciliation engine.
func (c *CLI) engineFlags(cmd *cobra.Command) {
	var offline bool
	f := cmd.Flags()
	f.BoolVar(&c.flags.Install.Strict, "strict", false, "fail without updating the source manifest when the installer fails")
	f.BoolVar(&c.flags.Install.Capture, "capture", false, "capture installer output instead of streaming it")
	f.BoolVar(&offline, "offline", false, "never query a registry; new packages are declared as "+registry.Fallback)
	f.StringVar(&c.flags.Install.Command, "installer", "", "package manager executable")
	f.BoolVar(&c.flags.Cache.Disabled, "no-cache", false, "do not cache registry lookups")
	completeEngineFlags(cmd)

	prev := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if offline {
			c.flags.Registry.Resolver = config.ResolverOffline
		}
		if prev != nil {
			return prev(cmd, args)
		}
		return nil
	}
}

// syncCommand creates the sync command, a single reconciliation pass.
func (c *CLI) syncCommand() *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the build workspace once",
		Long: `Scan the build workspace, declare missing packages in its manifest, run the
installer when needed and copy newly discovered packages to the source manifest.

With --file, only the given files are scanned for imports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			filter, err := absPaths(files)
			if err != nil {
				return err
			}

			e, cleanup, err := c.newEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			prog := newProgress(logger)
			var spin *Spinner
			if cfg.Install.Capture && logger.GetLevel() > LogDebug {
				spin = newSpinner(ctx, cmd.ErrOrStderr(), "Reconciling dependencies...")
				observability.SetReconcileHooks(spinnerHooks{s: spin})
				defer observability.Reset()
				spin.Start()
			}
			rep, err := e.Reconcile(ctx, filter)
			if spin != nil {
				spin.Stop()
			}
			if rep != nil {
				printReport(rep)
			}
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Reconciled %d packages", len(rep.Deps)))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "restrict the import scan to these files (repeatable)")
	c.engineFlags(cmd)
	return cmd
}

func absPaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
