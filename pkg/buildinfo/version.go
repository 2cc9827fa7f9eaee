// Package buildinfo reports which buildsync binary is running.
//
// Release builds stamp the variables below with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/buildsync/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/buildsync/pkg/buildinfo.Commit=$(git rev-parse HEAD)" ./cmd/buildsync
//
// Binaries built with "go install" carry no ldflags; [Get] then reads the
// module version and VCS stamp embedded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build description served by "buildsync version" and the
// server's /healthz endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
}

// Get returns the stamped build information, filling unset fields from
// the binary's embedded module data.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fill(info, bi)
}

func fill(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	stamped := info.Commit != "none"
	dirty := false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if !stamped {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && !stamped && info.Commit != "none" {
		info.Commit += "-dirty"
	}
	return info
}

// String formats the information for "buildsync version".
func (i Info) String() string {
	return fmt.Sprintf("buildsync %s\ncommit: %s\nbuilt: %s\ngo: %s", i.Version, i.Commit, i.Date, i.GoVersion)
}

// String is shorthand for Get().String().
func String() string {
	return Get().String()
}

// Template returns the cobra version template used by --version.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} %s (%s)\n", i.Version, i.Commit)
}
