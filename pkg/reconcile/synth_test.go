package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
	"github.com/matzehuels/buildsync/pkg/manifest"
)

func TestSynthesizeColdStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	r := &fakeResolver{versions: map[string]string{"lodash": "4.17.21"}}

	res, err := SynthesizeManifest(context.Background(), path, NewDependencySet("lodash", "left-pad"), r)
	if err != nil {
		t.Fatal(err)
	}
	if !res.NewlyFound || !slices.Equal(res.Added, []string{"lodash", "left-pad"}) {
		t.Errorf("Added = %v, NewlyFound = %v", res.Added, res.NewlyFound)
	}

	m, err := manifest.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name() != manifest.DefaultName {
		t.Errorf("Name() = %q", m.Name())
	}
	for _, p := range FrameworkPackages() {
		if v, _ := m.Dependency(p.Name); v != p.Version {
			t.Errorf("%s = %q, want %q", p.Name, v, p.Version)
		}
	}
	if v, _ := m.Dependency("lodash"); v != "4.17.21" {
		t.Errorf("lodash = %q", v)
	}
	if v, _ := m.Dependency("left-pad"); v != "latest" {
		t.Errorf("left-pad = %q, want fallback", v)
	}
	if !slices.Equal(res.Deps, m.DependencyNames()) {
		t.Errorf("Deps = %v", res.Deps)
	}
}

func TestSynthesizePinnedPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	existing := `{"name": "site", "dependencies": {"react": "15.0.0", "@babel/core": "", "lodash": "4.0.0"}}`
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}
	r := &fakeResolver{}

	res, err := SynthesizeManifest(context.Background(), path, NewDependencySet("react", "lodash"), r)
	if err != nil {
		t.Fatal(err)
	}
	if res.NewlyFound || len(res.Added) != 0 {
		t.Errorf("nothing should be new: %v", res.Added)
	}
	if r.calls.Load() != 0 {
		t.Errorf("resolver called %d times", r.calls.Load())
	}

	m, _ := manifest.Load(path)
	if m.Name() != "site" {
		t.Errorf("existing fields lost: name = %q", m.Name())
	}
	for _, p := range FrameworkPackages() {
		if v, _ := m.Dependency(p.Name); v != p.Version {
			t.Errorf("%s = %q, want pinned %q", p.Name, v, p.Version)
		}
	}
	if v, _ := m.Dependency("lodash"); v != "4.0.0" {
		t.Errorf("lodash = %q, want existing 4.0.0", v)
	}
}

func TestSynthesizeUnparsableManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte("{oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := SynthesizeManifest(context.Background(), path, NewDependencySet("a"), nil); err != nil {
		t.Fatal(err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("manifest not rewritten: %v", err)
	}
	if m.Name() != manifest.DefaultName {
		t.Errorf("Name() = %q", m.Name())
	}
}

func TestSynthesizeWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "package.json")
	_, err := SynthesizeManifest(context.Background(), path, NewDependencySet("a"), nil)
	if !bserrors.Is(err, bserrors.ErrCodeManifestWrite) {
		t.Fatalf("err = %v, want MANIFEST_WRITE", err)
	}
}

func TestReflectNoLeakage(t *testing.T) {
	build := manifest.New()
	for _, p := range FrameworkPackages() {
		build.SetDependency(p.Name, p.Version)
	}
	build.SetDependency("lodash", "4.17.21")

	path := filepath.Join(t.TempDir(), "package.json")
	if _, err := Reflect(path, build); err != nil {
		t.Fatal(err)
	}
	src, err := manifest.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := src.DependencyNames(); !slices.Equal(got, []string{"lodash"}) {
		t.Errorf("source deps = %v, want [lodash]", got)
	}
	if build.Len() != len(FrameworkPackages())+1 {
		t.Error("Reflect modified the build manifest")
	}
}

func TestFrameworkPackages(t *testing.T) {
	pkgs := FrameworkPackages()
	if len(pkgs) != 14 {
		t.Errorf("len = %d", len(pkgs))
	}
	pkgs[0].Version = "mutated"
	if FrameworkPackages()[0].Version == "mutated" {
		t.Error("FrameworkPackages returned shared slice")
	}
	if !IsFrameworkPackage("@babel/core") || IsFrameworkPackage("lodash") {
		t.Error("IsFrameworkPackage mismatch")
	}
}
