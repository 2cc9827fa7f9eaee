// Package workspace lists and classifies the files of a build workspace.
//
// [Scan] walks a root directory and returns every file outside the
// dependency cache (node_modules) and build output (zero-builds)
// directories, sorted by path. Additional doublestar patterns can exclude
// more:
//
//	files, err := workspace.Scan(ctx, root, workspace.Options{
//	    Ignore: []string{"**/.git/**", "**/*.map"},
//	})
//
// Each [File] carries a [Kind] derived from a fixed extension table; the
// reconciliation engine uses it to add implicit dependencies such as
// typescript for .ts sources.
package workspace
