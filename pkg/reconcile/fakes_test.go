package reconcile

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/buildsync/pkg/installer"
)

// fakeCollector maps file base names to their imports.
type fakeCollector struct {
	mu      sync.Mutex
	imports map[string][]string
	calls   map[string]int
}

func newFakeCollector(imports map[string][]string) *fakeCollector {
	return &fakeCollector{imports: imports, calls: map[string]int{}}
}

func (c *fakeCollector) ImportsOf(path string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[filepath.Base(path)]++
	return c.imports[filepath.Base(path)]
}

func (c *fakeCollector) called(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// fakeResolver resolves from a fixed table and falls back to "latest".
type fakeResolver struct {
	versions map[string]string
	calls    atomic.Int32
}

func (r *fakeResolver) LatestVersion(_ context.Context, name string) string {
	r.calls.Add(1)
	if v, ok := r.versions[name]; ok {
		return v
	}
	return "latest"
}

// fakeInstaller records invocations and reports a fixed exit code.
type fakeInstaller struct {
	exitCode int
	err      error
	calls    atomic.Int32
	active   atomic.Int32
	overlap  atomic.Bool
	dirs     []string
	mu       sync.Mutex
	hold     chan struct{} // blocks Install until closed, if set
}

func (f *fakeInstaller) Install(_ context.Context, dir string) (*installer.Result, error) {
	if f.active.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.active.Add(-1)
	f.calls.Add(1)
	f.mu.Lock()
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()
	if f.hold != nil {
		<-f.hold
	}
	if f.err != nil {
		return nil, f.err
	}
	return &installer.Result{ExitCode: f.exitCode}, nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
