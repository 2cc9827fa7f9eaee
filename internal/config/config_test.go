package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), Filename)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
build_root = "zero-build"
ignore = ["**/.git/**", "**/*.map"]

[install]
command = "npm"
args = ["install", "--no-audit"]
timeout = "2m"
strict = true

[registry]
resolver = "yarn"
timeout = "3s"

[watch]
debounce = "1s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	dir := filepath.Dir(path)

	if cfg.BuildRoot != filepath.Join(dir, "zero-build") {
		t.Errorf("BuildRoot = %q", cfg.BuildRoot)
	}
	if cfg.SourceRoot != dir {
		t.Errorf("SourceRoot = %q, want config dir", cfg.SourceRoot)
	}
	if cfg.Install.Command != "npm" || !slices.Equal(cfg.Install.Args, []string{"install", "--no-audit"}) || !cfg.Install.Strict {
		t.Errorf("Install = %+v", cfg.Install)
	}
	if cfg.Install.Timeout.Std() != 2*time.Minute || cfg.Registry.Timeout.Std() != 3*time.Second || cfg.Watch.Debounce.Std() != time.Second {
		t.Errorf("durations not decoded: %+v", cfg)
	}
	if cfg.Manifest != "package.json" || cfg.Registry.URL != Default().Registry.URL {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Cache.TTL.Std() != 24*time.Hour {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL.Std())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":       `build_root = `,
		"unknown key":  "build_root = \"b\"\nbogus = 1\n",
		"bad duration": "[install]\ntimeout = \"soon\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); !bserrors.Is(err, bserrors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault("", dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Install.Command != "yarn" {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if err := os.WriteFile(filepath.Join(dir, Filename), []byte("build_root = \"/tmp/b\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOrDefault("", dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildRoot != "/tmp/b" {
		t.Errorf("BuildRoot = %q", cfg.BuildRoot)
	}
}

func TestApply(t *testing.T) {
	cfg := Default()
	err := cfg.Apply(Config{
		BuildRoot: "/b",
		Install:   Install{Strict: true, Timeout: Duration(time.Second)},
		Registry:  Registry{Resolver: ResolverOffline},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BuildRoot != "/b" || !cfg.Install.Strict || cfg.Install.Timeout.Std() != time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Registry.Resolver != ResolverOffline || cfg.Registry.URL == "" {
		t.Errorf("Registry = %+v", cfg.Registry)
	}
	if cfg.Install.Command != "yarn" || cfg.Manifest != "package.json" {
		t.Errorf("zero override fields replaced defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.BuildRoot = "/b"

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"no build root", func(c *Config) { c.BuildRoot = "" }, false},
		{"manifest with dir", func(c *Config) { c.Manifest = "a/package.json" }, false},
		{"bad ignore", func(c *Config) { c.Ignore = []string{"[x"} }, false},
		{"no command", func(c *Config) { c.Install.Command = " " }, false},
		{"bad resolver", func(c *Config) { c.Registry.Resolver = "pnpm" }, false},
		{"bad url", func(c *Config) { c.Registry.URL = "registry.npmjs.org" }, false},
		{"offline ignores url", func(c *Config) { c.Registry.Resolver = ResolverOffline; c.Registry.URL = "" }, true},
		{"negative timeout", func(c *Config) { c.Install.Timeout = Duration(-time.Second) }, false},
		{"bad redis url", func(c *Config) { c.Cache.RedisURL = "localhost:6379" }, false},
		{"redis url", func(c *Config) { c.Cache.RedisURL = "redis://localhost:6379/0" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.Ignore = slices.Clone(valid.Ignore)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !bserrors.Is(err, bserrors.ErrCodeInvalidConfig) {
				t.Errorf("err code = %s", bserrors.GetCode(err))
			}
		})
	}
}
