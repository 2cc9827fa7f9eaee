package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopReconcileHooks{}
	r.OnScanComplete(ctx, "/build", 12, 4, time.Second)
	r.OnDecision(ctx, "/build", true, "first run")
	r.OnInstallStart(ctx, "/build", 4)
	r.OnInstallComplete(ctx, "/build", 0, time.Second, nil)
	r.OnReflect(ctx, "/src/package.json", []string{"lodash"})

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "npm")
	c.OnCacheMiss(ctx, "npm")
	c.OnCacheSet(ctx, "npm", 64)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/lodash")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/lodash", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/lodash", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Reconcile().(NoopReconcileHooks); !ok {
		t.Error("Reconcile() should return NoopReconcileHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	hooks := NewLogHooks(nil)
	SetReconcileHooks(hooks)
	SetCacheHooks(hooks)
	SetHTTPHooks(hooks)
	if Reconcile() != ReconcileHooks(hooks) || Cache() != CacheHooks(hooks) || HTTP() != HTTPHooks(hooks) {
		t.Error("Set*Hooks should register the custom hooks")
	}

	Reset()
	if _, ok := Reconcile().(NoopReconcileHooks); !ok {
		t.Error("Reset() should restore NoopReconcileHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := NewLogHooks(nil)
	SetReconcileHooks(custom)
	SetReconcileHooks(nil)

	if Reconcile() != ReconcileHooks(custom) {
		t.Error("SetReconcileHooks(nil) should be ignored")
	}
}

func TestLogHooksWriteAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	hooks := NewLogHooks(logger)

	hooks.OnDecision(context.Background(), "/build", true, "manifest changed")
	hooks.OnInstallComplete(context.Background(), "/build", 1, time.Second, errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"staleness decided", "manifest changed", "install finished", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	quiet.OnCacheHit(context.Background(), "npm")
	if buf.Len() != 0 {
		t.Errorf("debug events should be filtered at info level, got %q", buf.String())
	}
}
