package workspace

import (
	"path"
	"strings"
)

// Kind classifies a workspace file.
type Kind int

const (
	KindOther     Kind = iota
	KindScript         // JavaScript, JSX and MDX sources
	KindTyped          // TypeScript sources
	KindComponent      // Vue single-file components
	KindManifest       // package.json
)

var kindNames = [...]string{"other", "script", "typed", "component", "manifest"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

var kindByExt = map[string]Kind{
	".js":  KindScript,
	".jsx": KindScript,
	".mjs": KindScript,
	".cjs": KindScript,
	".mdx": KindScript,
	".ts":  KindTyped,
	".tsx": KindTyped,
	".vue": KindComponent,
}

// ManifestName is the package manifest filename.
const ManifestName = "package.json"

// Classify returns the Kind of the file at the slash-separated path rel.
func Classify(rel string) Kind {
	base := strings.ToLower(path.Base(rel))
	if base == ManifestName {
		return KindManifest
	}
	return kindByExt[path.Ext(base)]
}
