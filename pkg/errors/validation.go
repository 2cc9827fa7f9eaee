package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxPackageNameLen is the npm registry limit for package names.
const maxPackageNameLen = 214

// ValidatePackageName checks that name is a package name that can be written
// into a manifest and sent to a registry. It accepts plain names ("lodash")
// and scoped names ("@babel/core").
//
// Rules:
//   - not empty, at most 214 characters
//   - no control characters, spaces, backslashes or path traversal
//   - does not start with "." or "_"
//   - scoped names have exactly one "/" separating a non-empty scope and name
//   - unscoped names contain no "/"
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > maxPackageNameLen {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLen)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name %q contains invalid characters", name)
		}
	}
	if strings.Contains(name, "..") || strings.Contains(name, `\`) {
		return New(ErrCodeInvalidPackage, "package name %q contains invalid characters", name)
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return New(ErrCodeInvalidPackage, "package name %q cannot start with %q", name, name[:1])
	}

	if scope, rest, ok := strings.Cut(name, "/"); ok {
		if !strings.HasPrefix(scope, "@") || len(scope) < 2 || rest == "" || strings.Contains(rest, "/") {
			return New(ErrCodeInvalidPackage, "malformed scoped package name %q", name)
		}
		return nil
	}
	if strings.HasPrefix(name, "@") {
		return New(ErrCodeInvalidPackage, "scoped package name %q is missing a name", name)
	}
	return nil
}

// ValidateFilename checks that a configured workspace filename (manifest or
// transform config) is a plain base name without directory components.
func ValidateFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}
	if strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return New(ErrCodeInvalidPath, "filename %q cannot contain path separators", filename)
	}
	if filename == "." || filename == ".." {
		return New(ErrCodeInvalidPath, "filename %q is not a file", filename)
	}
	return nil
}
