package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	vcs := []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "abc123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	}
	tests := []struct {
		name string
		info Info
		main string
		want Info
	}{
		{
			name: "go install",
			info: Info{Version: "dev", Commit: "none", Date: "unknown"},
			main: "v0.3.0",
			want: Info{Version: "v0.3.0", Commit: "abc123-dirty", Date: "2026-01-02T03:04:05Z"},
		},
		{
			name: "local build",
			info: Info{Version: "dev", Commit: "none", Date: "unknown"},
			main: "(devel)",
			want: Info{Version: "dev", Commit: "abc123-dirty", Date: "2026-01-02T03:04:05Z"},
		},
		{
			name: "ldflags win",
			info: Info{Version: "v1.0.0", Commit: "fff", Date: "today"},
			main: "v0.3.0",
			want: Info{Version: "v1.0.0", Commit: "fff", Date: "today"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bi := &debug.BuildInfo{Main: debug.Module{Version: tt.main}, Settings: vcs}
			if got := fill(tt.info, bi); got != tt.want {
				t.Errorf("fill() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	s := Info{Version: "v0.3.0", Commit: "abc", Date: "d", GoVersion: "go1.24.0"}.String()
	if !strings.HasPrefix(s, "buildsync v0.3.0\n") || !strings.Contains(s, "go: go1.24.0") {
		t.Errorf("String() = %q", s)
	}
}
