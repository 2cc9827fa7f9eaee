package reconcile

import (
	"context"

	"github.com/matzehuels/buildsync/pkg/manifest"
	"github.com/matzehuels/buildsync/pkg/registry"
)

// SynthResult is the output of SynthesizeManifest.
type SynthResult struct {
	Manifest   *manifest.Manifest // as written
	Deps       []string           // declared dependencies after synthesis
	NewlyFound bool
	Added      []string // deps that had no entry before
}

// SynthesizeManifest rewrites the build manifest at path so that it pins
// every framework package and declares every name in deps. The existing
// manifest is the starting point; a missing or unparsable one is replaced
// by the default skeleton.
func SynthesizeManifest(ctx context.Context, path string, deps *DependencySet, resolver registry.VersionResolver) (*SynthResult, error) {
	if resolver == nil {
		resolver = registry.Static{}
	}
	m := manifest.LoadOrNil(path)
	if m == nil {
		m = manifest.New()
	}

	for _, p := range frameworkPackages {
		m.SetDependency(p.Name, p.Version)
	}

	res := &SynthResult{Manifest: m}
	for _, name := range deps.Names() {
		if m.HasDependency(name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.SetDependency(name, resolver.LatestVersion(ctx, name))
		res.Added = append(res.Added, name)
	}
	res.NewlyFound = len(res.Added) > 0
	res.Deps = m.DependencyNames()

	if err := manifest.Write(path, m); err != nil {
		return nil, err
	}
	return res, nil
}
