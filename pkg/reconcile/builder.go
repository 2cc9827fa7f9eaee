package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/buildsync/pkg/cache"
	"github.com/matzehuels/buildsync/pkg/imports"
	"github.com/matzehuels/buildsync/pkg/workspace"
)

// implicitDeps are contributed once by the presence of a file kind,
// whatever the file imports.
var implicitDeps = map[workspace.Kind][]string{
	workspace.KindTyped:     {"typescript"},
	workspace.KindComponent: {"vue", "vue-hot-reload-api", "vue-meta"},
}

// ImplicitDeps returns the packages a file of kind k requires.
func ImplicitDeps(k workspace.Kind) []string {
	return append([]string(nil), implicitDeps[k]...)
}

// BuildOptions configure BuildDependencySet.
type BuildOptions struct {
	// ManifestName is the manifest's path relative to the root.
	// Default workspace.ManifestName.
	ManifestName string

	// ManifestDigest is the manifest digest recorded after the previous
	// reconciliation. Empty means none was recorded.
	ManifestDigest string

	// Filter restricts import collection to these absolute paths. Empty
	// means every file. Implicit dependencies are always collected.
	Filter []string

	// Concurrency bounds parallel collection. Default GOMAXPROCS.
	Concurrency int
}

// BuildResult is the output of BuildDependencySet.
type BuildResult struct {
	Deps            *DependencySet
	ManifestPresent bool
	ManifestChanged bool
	ManifestDigest  string // digest of the scanned manifest, "" if absent
	Files           int
}

// BuildDependencySet folds the imports of files, in order, into a
// dependency set.
func BuildDependencySet(ctx context.Context, files []workspace.File, c imports.Collector, opts BuildOptions) (*BuildResult, error) {
	manifestName := strings.ToLower(opts.ManifestName)
	if manifestName == "" {
		manifestName = workspace.ManifestName
	}
	filter := make(map[string]struct{}, len(opts.Filter))
	for _, p := range opts.Filter {
		filter[filepath.Clean(p)] = struct{}{}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	collected := make([][]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		if len(filter) > 0 {
			if _, ok := filter[f.Path]; !ok {
				continue
			}
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			collected[i] = c.ImportsOf(f.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &BuildResult{Deps: NewDependencySet(), Files: len(files)}
	for i, f := range files {
		if strings.ToLower(f.Rel) == manifestName {
			res.ManifestPresent = true
			res.ManifestDigest, res.ManifestChanged = manifestDigest(f.Path, opts.ManifestDigest)
		}
		res.Deps.Add(implicitDeps[f.Kind]...)
		res.Deps.Add(collected[i]...)
	}
	return res, nil
}

// manifestDigest hashes the manifest at path and reports whether it differs
// from previous. An unreadable manifest counts as changed.
func manifestDigest(path, previous string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", true
	}
	digest := cache.Hash(data)
	return digest, previous == "" || digest != previous
}
