package transform

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, Filename)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func decode(t *testing.T, s string) Config {
	t.Helper()
	var c Config
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSynthesize(t *testing.T) {
	base := decode(t, `{"plugins": ["A", "B"], "env": {"test": {"presets": ["x"]}, "loose": true}}`)

	tests := []struct {
		name     string
		override string // "" means no file
		want     string
		source   Source
	}{
		{
			name:   "no override",
			want:   `{"plugins": ["A", "B"], "env": {"test": {"presets": ["x"]}, "loose": true}}`,
			source: SourceBase,
		},
		{
			name:     "arrays are replaced",
			override: `{"plugins": ["A", "B", "C"]}`,
			want:     `{"plugins": ["A", "B", "C"], "env": {"test": {"presets": ["x"]}, "loose": true}}`,
			source:   SourceMerged,
		},
		{
			name:     "objects merge recursively",
			override: `{"env": {"test": {"plugins": ["y"]}, "loose": false}, "presets": ["p"]}`,
			want:     `{"plugins": ["A", "B"], "env": {"test": {"presets": ["x"], "plugins": ["y"]}, "loose": false}, "presets": ["p"]}`,
			source:   SourceMerged,
		},
		{
			name:     "scalar replaces object",
			override: `{"env": "off"}`,
			want:     `{"plugins": ["A", "B"], "env": "off"}`,
			source:   SourceMerged,
		},
		{
			name:     "empty array replaces",
			override: `{"plugins": []}`,
			want:     `{"plugins": [], "env": {"test": {"presets": ["x"]}, "loose": true}}`,
			source:   SourceMerged,
		},
		{
			name:     "invalid json",
			override: `{"plugins": [`,
			want:     `{"plugins": ["A", "B"], "env": {"test": {"presets": ["x"]}, "loose": true}}`,
			source:   SourceFallback,
		},
		{
			name:     "not an object",
			override: `["A"]`,
			want:     `{"plugins": ["A", "B"], "env": {"test": {"presets": ["x"]}, "loose": true}}`,
			source:   SourceFallback,
		},
		{
			name:     "null",
			override: `null`,
			want:     `{"plugins": ["A", "B"], "env": {"test": {"presets": ["x"]}, "loose": true}}`,
			source:   SourceBase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, Filename)
			if tt.override != "" {
				path = writeFile(t, dir, tt.override)
			}

			res := Synthesize(base, path)
			if res.Source != tt.source {
				t.Errorf("Source = %v, want %v", res.Source, tt.source)
			}
			if (res.Err != nil) != (tt.source == SourceFallback) {
				t.Errorf("Err = %v", res.Err)
			}
			if want := decode(t, tt.want); !reflect.DeepEqual(res.Config, want) {
				t.Errorf("Config = %v, want %v", res.Config, want)
			}
		})
	}

	if want := decode(t, `{"plugins": ["A", "B"], "env": {"test": {"presets": ["x"]}, "loose": true}}`); !reflect.DeepEqual(base, want) {
		t.Errorf("base was modified: %v", base)
	}
}

func TestBaseIsFresh(t *testing.T) {
	a := Base()
	a["plugins"] = nil
	b := Base()
	plugins, ok := b["plugins"].([]any)
	if !ok || len(plugins) != 3 {
		t.Fatalf("Base() plugins = %v", b["plugins"])
	}
	if plugins[0] != "babel-plugin-react-require" {
		t.Errorf("first plugin = %v", plugins[0])
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename)
	if err := Write(path, Base()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, Base()) {
		t.Errorf("round trip = %v", got)
	}

	if err := Write(filepath.Join(dir, "missing", Filename), Base()); !bserrors.Is(err, bserrors.ErrCodeConfigWrite) {
		t.Errorf("err = %v, want CONFIG_WRITE", err)
	}
}

func TestSourceString(t *testing.T) {
	for s, want := range map[Source]string{SourceBase: "base", SourceMerged: "merged", SourceFallback: "fallback"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", s, s.String())
		}
	}
}
