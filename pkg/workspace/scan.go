package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
)

// ExcludedDirs are directory names never descended into.
var ExcludedDirs = []string{"node_modules", "zero-builds"}

// File is a scanned workspace file.
type File struct {
	Path string // absolute path
	Rel  string // slash-separated path relative to the root
	Kind Kind
}

// Options configure Scan.
type Options struct {
	// Ignore holds doublestar patterns matched against relative paths.
	Ignore []string
}

// Validate checks that every ignore pattern is well formed.
func (o Options) Validate() error {
	for _, pat := range o.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return bserrors.New(bserrors.ErrCodeInvalidConfig, "invalid ignore pattern %q", pat)
		}
	}
	return nil
}

// Scan returns the files under root in lexical order. Any error reading the
// tree aborts the scan; a partial listing is never returned.
func Scan(ctx context.Context, root string, opts Options) ([]File, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, bserrors.Wrap(bserrors.ErrCodeWorkspace, err, "resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, bserrors.Wrap(bserrors.ErrCodeWorkspace, err, "scan %s", abs)
	}
	if !info.IsDir() {
		return nil, bserrors.New(bserrors.ErrCodeWorkspace, "%s is not a directory", abs)
	}

	var files []File
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && slices.Contains(ExcludedDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.ignored(rel) {
			return nil
		}
		files = append(files, File{Path: p, Rel: rel, Kind: Classify(rel)})
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, bserrors.Wrap(bserrors.ErrCodeWorkspace, err, "scan %s", abs)
	}
	return files, nil
}

// Excluded reports whether the slash-separated relative path rel would be
// left out of a scan.
func (o Options) Excluded(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if slices.Contains(ExcludedDirs, seg) {
			return true
		}
	}
	return o.ignored(rel)
}

func (o Options) ignored(rel string) bool {
	for _, pat := range o.Ignore {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
