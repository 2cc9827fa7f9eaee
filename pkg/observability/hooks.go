// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks at well-defined points; the binary
// decides what to do with the events. Defaults are no-ops, so nothing is
// emitted unless main registers an implementation:
//
//	observability.SetReconcileHooks(observability.NewLogHooks(logger))
//
// Hooks are registered once at startup. [Reset] restores the defaults and is
// meant for tests.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Reconcile Hooks
// =============================================================================

// ReconcileHooks receives events from the dependency reconciliation engine.
type ReconcileHooks interface {
	// OnScanComplete fires after the workspace has been scanned and the
	// dependency set built.
	OnScanComplete(ctx context.Context, root string, files, deps int, duration time.Duration)

	// OnDecision fires once per reconciliation with the staleness verdict.
	OnDecision(ctx context.Context, root string, install bool, reason string)

	// OnInstallStart and OnInstallComplete bracket the installer process.
	OnInstallStart(ctx context.Context, root string, deps int)
	OnInstallComplete(ctx context.Context, root string, exitCode int, duration time.Duration, err error)

	// OnReflect fires when newly found packages are written back to the
	// source workspace manifest.
	OnReflect(ctx context.Context, path string, added []string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from registry cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopReconcileHooks is a no-op implementation of ReconcileHooks.
type NoopReconcileHooks struct{}

func (NoopReconcileHooks) OnScanComplete(context.Context, string, int, int, time.Duration) {}
func (NoopReconcileHooks) OnDecision(context.Context, string, bool, string)                {}
func (NoopReconcileHooks) OnInstallStart(context.Context, string, int)                     {}
func (NoopReconcileHooks) OnInstallComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopReconcileHooks) OnReflect(context.Context, string, []string) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	reconcileHooks ReconcileHooks = NoopReconcileHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetReconcileHooks registers custom reconcile hooks. Nil is ignored.
func SetReconcileHooks(h ReconcileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		reconcileHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Reconcile returns the registered reconcile hooks.
func Reconcile() ReconcileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return reconcileHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	reconcileHooks = NoopReconcileHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
