package registry

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
)

// Fallback is recorded when no concrete version can be resolved.
const Fallback = "latest"

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 10 * time.Second

// VersionResolver returns the version to record for a package name.
// Implementations return [Fallback] instead of an error.
type VersionResolver interface {
	LatestVersion(ctx context.Context, name string) string
}

// Func adapts a function to VersionResolver.
type Func func(ctx context.Context, name string) string

// LatestVersion calls f.
func (f Func) LatestVersion(ctx context.Context, name string) string { return f(ctx, name) }

// Static always resolves to [Fallback]. It is used when lookups are disabled.
type Static struct{}

// LatestVersion returns [Fallback].
func (Static) LatestVersion(context.Context, string) string { return Fallback }

// Valid reports whether v is a semantic version as published to npm
// (no leading "v").
func Valid(v string) bool {
	if v == "" || strings.HasPrefix(v, "v") {
		return false
	}
	return semver.IsValid("v" + v)
}

func orFallback(v string, err error, name string, logger *log.Logger) string {
	if err != nil {
		logger.Debug("version lookup failed", "package", name, "err", err)
		return Fallback
	}
	v = strings.TrimSpace(v)
	if !Valid(v) {
		logger.Debug("ignoring invalid version", "package", name, "version", v)
		return Fallback
	}
	return v
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

func loggerOr(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
