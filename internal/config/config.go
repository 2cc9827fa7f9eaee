// Package config loads buildsync.toml.
//
// Values are layered: [Default], then the file, then command-line flags
// ([Config.Apply]). [Config.Validate] runs last.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
	"github.com/matzehuels/buildsync/pkg/installer"
	"github.com/matzehuels/buildsync/pkg/integrations/npm"
	"github.com/matzehuels/buildsync/pkg/transform"
	"github.com/matzehuels/buildsync/pkg/workspace"
)

// Filename is the config file looked up in the source root.
const Filename = "buildsync.toml"

// Resolver names accepted by registry.resolver.
const (
	ResolverRegistry = "registry"
	ResolverYarn     = "yarn"
	ResolverOffline  = "offline"
)

// Duration is a time.Duration written as a string ("10m", "300ms").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full buildsync configuration.
type Config struct {
	BuildRoot       string   `toml:"build_root"`
	SourceRoot      string   `toml:"source_root"`
	Manifest        string   `toml:"manifest"`
	TransformConfig string   `toml:"transform_config"`
	Ignore          []string `toml:"ignore"`

	Install  Install  `toml:"install"`
	Registry Registry `toml:"registry"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
	Watch    Watch    `toml:"watch"`
}

// Install configures the package manager invocation.
type Install struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Timeout Duration `toml:"timeout"`
	Strict  bool     `toml:"strict"`
	Capture bool     `toml:"capture"`
}

// Registry configures version lookups for new packages.
type Registry struct {
	URL      string   `toml:"url"`
	Resolver string   `toml:"resolver"`
	Timeout  Duration `toml:"timeout"`
}

// Cache configures the registry lookup cache.
type Cache struct {
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
	Disabled bool     `toml:"disabled"`
}

// Server configures the control API.
type Server struct {
	Addr string `toml:"addr"`
}

// Watch configures watch mode.
type Watch struct {
	Debounce Duration `toml:"debounce"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SourceRoot:      ".",
		Manifest:        workspace.ManifestName,
		TransformConfig: transform.Filename,
		Ignore:          []string{"**/.git/**"},
		Install: Install{
			Command: installer.DefaultProgram,
			Timeout: Duration(10 * time.Minute),
		},
		Registry: Registry{
			URL:      npm.DefaultRegistry,
			Resolver: ResolverRegistry,
			Timeout:  Duration(10 * time.Second),
		},
		Cache: Cache{
			TTL: Duration(24 * time.Hour),
		},
		Server: Server{Addr: "127.0.0.1:7070"},
		Watch:  Watch{Debounce: Duration(300 * time.Millisecond)},
	}
}

// Load reads path on top of Default. Relative roots in the file are
// resolved against the file's directory. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, bserrors.Wrap(bserrors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, bserrors.New(bserrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	dir := filepath.Dir(path)
	cfg.BuildRoot = resolve(dir, cfg.BuildRoot)
	cfg.SourceRoot = resolve(dir, cfg.SourceRoot)
	return cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Find returns the config file in dir, or "" if there is none.
func Find(dir string) (string, error) {
	path := filepath.Join(dir, Filename)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

// LoadOrDefault loads path if set, else the config file in dir if present,
// else Default.
func LoadOrDefault(path, dir string) (Config, error) {
	if path == "" {
		found, err := Find(dir)
		if err != nil {
			return Config{}, err
		}
		path = found
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Apply overlays the non-zero fields of override onto c.
func (c *Config) Apply(override Config) error {
	if err := mergo.Merge(c, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BuildRoot) == "" {
		return bserrors.New(bserrors.ErrCodeInvalidConfig, "build_root is required")
	}
	if strings.TrimSpace(c.SourceRoot) == "" {
		return bserrors.New(bserrors.ErrCodeInvalidConfig, "source_root is required")
	}
	for _, name := range []string{c.Manifest, c.TransformConfig} {
		if err := bserrors.ValidateFilename(name); err != nil {
			return bserrors.Wrap(bserrors.ErrCodeInvalidConfig, err, "invalid filename")
		}
	}
	for _, pat := range c.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return bserrors.New(bserrors.ErrCodeInvalidConfig, "invalid ignore pattern %q", pat)
		}
	}
	if strings.TrimSpace(c.Install.Command) == "" {
		return bserrors.New(bserrors.ErrCodeInvalidConfig, "install.command is required")
	}
	switch c.Registry.Resolver {
	case ResolverRegistry, ResolverYarn, ResolverOffline:
	default:
		return bserrors.New(bserrors.ErrCodeInvalidConfig, "registry.resolver must be %q, %q or %q, got %q",
			ResolverRegistry, ResolverYarn, ResolverOffline, c.Registry.Resolver)
	}
	if c.Registry.Resolver == ResolverRegistry && !strings.HasPrefix(c.Registry.URL, "http://") && !strings.HasPrefix(c.Registry.URL, "https://") {
		return bserrors.New(bserrors.ErrCodeInvalidConfig, "registry.url must be an http(s) URL, got %q", c.Registry.URL)
	}
	for name, d := range map[string]Duration{
		"install.timeout":  c.Install.Timeout,
		"registry.timeout": c.Registry.Timeout,
		"cache.ttl":        c.Cache.TTL,
		"watch.debounce":   c.Watch.Debounce,
	} {
		if d < 0 {
			return bserrors.New(bserrors.ErrCodeInvalidConfig, "%s cannot be negative", name)
		}
	}
	if c.Cache.RedisURL != "" && !strings.HasPrefix(c.Cache.RedisURL, "redis://") && !strings.HasPrefix(c.Cache.RedisURL, "rediss://") {
		return bserrors.New(bserrors.ErrCodeInvalidConfig, "cache.redis_url must start with redis:// or rediss://")
	}
	return nil
}
