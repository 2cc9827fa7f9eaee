package imports

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
)

// Collector returns the external packages imported by a file.
type Collector interface {
	ImportsOf(path string) []string
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func(path string) []string

// ImportsOf calls f.
func (f CollectorFunc) ImportsOf(path string) []string { return f(path) }

// Extensions lists the file extensions the Scanner reads.
var Extensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts", ".vue", ".mdx", ".svelte"}

// maxFileSize skips generated bundles and other oversized inputs.
const maxFileSize = 4 << 20

var (
	staticImport  = regexp.MustCompile(`(?m)(?:^|[;\s])import\s+(?:[\w$*{}\s,]+?\s+from\s+)?["']([^"'\n]+)["']`)
	reExport      = regexp.MustCompile(`(?m)(?:^|[;\s])export\s+(?:type\s+)?(?:\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s*from\s+["']([^"'\n]+)["']`)
	requireCall   = regexp.MustCompile(`\brequire\s*\(\s*["']([^"'\n]+)["']\s*\)`)
	dynamicImport = regexp.MustCompile(`\bimport\s*\(\s*["']([^"'\n]+)["']\s*\)`)

	patterns = []*regexp.Regexp{staticImport, reExport, requireCall, dynamicImport}
)

// Scanner is a static import collector.
type Scanner struct {
	exts map[string]struct{}
}

// NewScanner returns a Scanner for [Extensions].
func NewScanner() *Scanner {
	exts := make(map[string]struct{}, len(Extensions))
	for _, e := range Extensions {
		exts[e] = struct{}{}
	}
	return &Scanner{exts: exts}
}

// Supports reports whether path has an extension the scanner reads.
func (s *Scanner) Supports(path string) bool {
	_, ok := s.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ImportsOf returns the packages imported by path, deduplicated in order of
// first appearance.
func (s *Scanner) ImportsOf(path string) []string {
	if !s.Supports(path) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > maxFileSize {
		return nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return Parse(string(src))
}

// Parse extracts package names from source text.
func Parse(src string) []string {
	src = stripComments(src)

	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
			if name, ok := PackageName(src[m[2]:m[3]]); ok {
				hits = append(hits, hit{m[2], name})
			}
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return a.pos - b.pos })

	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, dup := seen[h.name]; dup {
			continue
		}
		seen[h.name] = struct{}{}
		out = append(out, h.name)
	}
	return out
}

// stripComments blanks out // and /* */ comments, leaving string, template
// and regular expression literals untouched. Newlines inside block comments
// are kept so line anchors still line up.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	prev := byte(0) // last significant byte written, for regex detection
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '\'' || c == '`':
			j := skipQuoted(src, i)
			b.WriteString(src[i:j])
			prev, i = c, j
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			stop := len(src)
			if end >= 0 {
				stop = i + 2 + end + 2
			}
			b.WriteByte(' ')
			for _, r := range src[i:stop] {
				if r == '\n' {
					b.WriteByte('\n')
				}
			}
			i = stop
		case c == '/' && regexAllowed(prev):
			j := skipRegex(src, i)
			b.WriteString(src[i:j])
			prev, i = '/', j
		default:
			b.WriteByte(c)
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				prev = c
			}
			i++
		}
	}
	return b.String()
}

// skipQuoted returns the index just past the literal opening at src[i].
// Unterminated single and double quoted strings end at the line break.
func skipQuoted(src string, i int) int {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j + 1
		case '\n':
			if q != '`' {
				return j
			}
		}
	}
	return len(src)
}

// regexAllowed reports whether a '/' following prev starts a regex literal
// rather than a division.
func regexAllowed(prev byte) bool {
	return prev == 0 || strings.IndexByte("(,=:[!&|?{};+-*%~^", prev) >= 0
}

func skipRegex(src string, i int) int {
	inClass := false
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return j + 1
			}
		case '\n':
			return j
		}
	}
	return len(src)
}

// PackageName maps an import specifier to the npm package providing it.
// It reports false for specifiers that do not name a package.
//
//	"lodash/fp"          -> "lodash"
//	"@babel/core/lib/x"  -> "@babel/core"
//	"./util", "node:fs"  -> not a package
func PackageName(spec string) (string, bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.ContainsAny(spec, " \t") {
		return "", false
	}
	switch spec[0] {
	case '.', '/', '~', '#', '\\':
		return "", false
	}
	if strings.Contains(spec, ":") {
		// node:fs, https://..., virtual:..., data:...
		return "", false
	}
	if i := strings.IndexAny(spec, "?!"); i >= 0 {
		spec = spec[:i]
	}

	parts := strings.SplitN(spec, "/", 3)
	name := parts[0]
	if strings.HasPrefix(name, "@") {
		if len(parts) < 2 || parts[1] == "" {
			return "", false
		}
		name = parts[0] + "/" + parts[1]
	}
	if IsBuiltin(name) {
		return "", false
	}
	if err := bserrors.ValidatePackageName(name); err != nil {
		return "", false
	}
	return name, true
}
