package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes reconcile, cache and HTTP events to a logger at debug
// level. It implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnScanComplete(_ context.Context, root string, files, deps int, d time.Duration) {
	h.logger.Debug("scan complete", "root", root, "files", files, "deps", deps, "duration", d)
}

func (h *LogHooks) OnDecision(_ context.Context, root string, install bool, reason string) {
	h.logger.Debug("staleness decided", "root", root, "install", install, "reason", reason)
}

func (h *LogHooks) OnInstallStart(_ context.Context, root string, deps int) {
	h.logger.Debug("install started", "root", root, "deps", deps)
}

func (h *LogHooks) OnInstallComplete(_ context.Context, root string, exit int, d time.Duration, err error) {
	h.logger.Debug("install finished", "root", root, "exit", exit, "duration", d, "err", err)
}

func (h *LogHooks) OnReflect(_ context.Context, path string, added []string) {
	h.logger.Debug("source manifest updated", "path", path, "added", added)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ ReconcileHooks = (*LogHooks)(nil)
	_ CacheHooks     = (*LogHooks)(nil)
	_ HTTPHooks      = (*LogHooks)(nil)
)
