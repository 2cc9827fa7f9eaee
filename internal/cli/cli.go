package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/buildsync/internal/config"
	"github.com/matzehuels/buildsync/pkg/buildinfo"
	"github.com/matzehuels/buildsync/pkg/cache"
	"github.com/matzehuels/buildsync/pkg/installer"
	"github.com/matzehuels/buildsync/pkg/integrations/npm"
	"github.com/matzehuels/buildsync/pkg/observability"
	"github.com/matzehuels/buildsync/pkg/reconcile"
	"github.com/matzehuels/buildsync/pkg/registry"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "buildsync"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	logFormat  string
	flags      config.Config // command-line overrides
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "buildsync keeps a build workspace's dependencies in step with its imports",
		Long: `buildsync scans a build workspace for imported packages, rewrites its
package.json when something is missing, runs the package manager and copies
newly discovered packages back to the source project's package.json.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseLogFormat(c.logFormat)
			if err != nil {
				return err
			}
			c.Logger.SetFormatter(f)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.Logger.GetLevel() <= log.DebugLevel {
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetReconcileHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.logFormat, "log-format", "text", "log output format: text, json or logfmt")
	pf.StringVarP(&c.configPath, "config", "c", "", "config file (default: <source-root>/"+config.Filename+")")
	pf.StringVarP(&c.flags.BuildRoot, "build-root", "b", "", "build workspace directory")
	pf.StringVarP(&c.flags.SourceRoot, "source-root", "s", "", "source workspace directory (default: current directory)")

	root.AddCommand(c.syncCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig layers defaults, the config file and flags, then validates.
func (c *CLI) loadConfig() (config.Config, error) {
	dir := c.flags.SourceRoot
	if dir == "" {
		dir = "."
	}
	cfg, err := config.LoadOrDefault(c.configPath, dir)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Apply(c.flags); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// =============================================================================
// Engine Factory
// =============================================================================

// newEngine wires an engine from cfg. The returned cleanup releases the
// registry cache.
func (c *CLI) newEngine(ctx context.Context, cfg config.Config, logger *log.Logger) (*reconcile.Engine, func(), error) {
	cleanup := func() {}

	resolver, closer, err := newResolver(ctx, cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	if closer != nil {
		cleanup = func() {
			if err := closer.Close(); err != nil {
				logger.Debug("close cache", "err", err)
			}
		}
	}

	inst := installer.NewCommand(cfg.Install.Command, cfg.Install.Args...)
	inst.Capture = cfg.Install.Capture
	inst.Timeout = cfg.Install.Timeout.Std()

	e, err := reconcile.New(reconcile.Workspace{
		BuildRoot:  cfg.BuildRoot,
		SourceRoot: cfg.SourceRoot,
	}, reconcile.Options{
		Resolver:      resolver,
		Installer:     inst,
		Logger:        logger,
		ManifestName:  cfg.Manifest,
		TransformName: cfg.TransformConfig,
		Ignore:        cfg.Ignore,
		Strict:        cfg.Install.Strict,
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return e, cleanup, nil
}

// newResolver returns the configured version resolver and the cache it
// holds open, if any.
func newResolver(ctx context.Context, cfg config.Config, logger *log.Logger) (registry.VersionResolver, io.Closer, error) {
	switch cfg.Registry.Resolver {
	case config.ResolverOffline:
		return registry.Static{}, nil, nil
	case config.ResolverYarn:
		r := registry.NewYarn(cfg.Install.Command, cfg.BuildRoot, logger)
		r.Timeout = cfg.Registry.Timeout.Std()
		return r, nil, nil
	}

	c, err := newCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, nil, err
	}
	r := registry.NewNPM(npm.NewClient(c, cfg.Cache.TTL.Std(), cfg.Registry.URL), logger)
	r.Timeout = cfg.Registry.Timeout.Std()
	return r, c, nil
}

// newCache opens the registry lookup cache: Redis when configured, else the
// file cache. A file cache that cannot be created degrades to no caching.
func newCache(ctx context.Context, cfg config.Cache, logger *log.Logger) (cache.Cache, error) {
	if cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, appName+":")
		if err != nil {
			return nil, fmt.Errorf("connect to redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Debug("cannot create cache directory, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

func resolveCacheDir(cfg config.Cache) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/buildsync/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
