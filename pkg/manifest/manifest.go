package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
)

// Default skeleton values.
const (
	DefaultName        = "zero-app"
	DefaultStartScript = "zero"
)

const depsKey = "dependencies"

// Manifest is a package.json document.
type Manifest struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
	deps   *orderedmap.OrderedMap[string, string]
}

// New returns the skeleton manifest written when a build workspace has none:
//
//	{"name": "zero-app", "private": true, "scripts": {"start": "zero"}, "dependencies": {}}
func New() *Manifest {
	m := &Manifest{
		fields: orderedmap.New[string, json.RawMessage](),
		deps:   orderedmap.New[string, string](),
	}
	m.fields.Set("name", mustRaw(DefaultName))
	m.fields.Set("private", json.RawMessage("true"))
	m.fields.Set("scripts", mustRaw(map[string]string{"start": DefaultStartScript}))
	m.fields.Set(depsKey, json.RawMessage("{}"))
	return m
}

// Parse decodes a manifest. The document must be a JSON object and its
// "dependencies", when present and not null, an object of strings.
func Parse(data []byte) (*Manifest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("manifest is not a JSON object")
	}
	m := &Manifest{
		fields: orderedmap.New[string, json.RawMessage](),
		deps:   orderedmap.New[string, string](),
	}
	if err := json.Unmarshal(data, m.fields); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	raw, ok := m.fields.Get(depsKey)
	if !ok {
		return m, nil
	}
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
	case len(raw) > 0 && raw[0] == '{':
		if err := json.Unmarshal(raw, m.deps); err != nil {
			return nil, fmt.Errorf("decode dependencies: %w", err)
		}
	default:
		return nil, fmt.Errorf("dependencies is not an object")
	}
	return m, nil
}

// Load reads and parses the manifest at path. A missing file is reported
// with an error satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadOrNil returns the manifest at path, or nil when it is missing or
// cannot be parsed.
func LoadOrNil(path string) *Manifest {
	m, err := Load(path)
	if err != nil {
		return nil
	}
	return m
}

// Name returns the "name" field, or "" if absent or not a string.
func (m *Manifest) Name() string {
	raw, ok := m.fields.Get("name")
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Field returns the raw JSON of a top-level field.
func (m *Manifest) Field(key string) (json.RawMessage, bool) {
	if key == depsKey {
		return m.depsRaw(), true
	}
	return m.fields.Get(key)
}

// Dependency returns the version specifier declared for name.
func (m *Manifest) Dependency(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	return m.deps.Get(name)
}

// HasDependency reports whether name is declared with a non-empty specifier.
func (m *Manifest) HasDependency(name string) bool {
	v, ok := m.Dependency(name)
	return ok && v != ""
}

// SetDependency declares name at version. An existing entry keeps its
// position.
func (m *Manifest) SetDependency(name, version string) {
	m.deps.Set(name, version)
	m.touchDeps()
}

// DeleteDependency removes name and reports whether it was declared.
func (m *Manifest) DeleteDependency(name string) bool {
	_, ok := m.deps.Delete(name)
	return ok
}

// DependencyNames returns the declared package names in manifest order.
func (m *Manifest) DependencyNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, m.deps.Len())
	for p := m.deps.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// Len returns the number of declared dependencies.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return m.deps.Len()
}

// Clone returns a deep copy of m.
func (m *Manifest) Clone() *Manifest {
	c := &Manifest{
		fields: orderedmap.New[string, json.RawMessage](m.fields.Len()),
		deps:   orderedmap.New[string, string](m.deps.Len()),
	}
	for p := m.fields.Oldest(); p != nil; p = p.Next() {
		c.fields.Set(p.Key, append(json.RawMessage(nil), p.Value...))
	}
	for p := m.deps.Oldest(); p != nil; p = p.Next() {
		c.deps.Set(p.Key, p.Value)
	}
	return c
}

// MarshalJSON encodes the manifest compactly. Field values are emitted as
// they were read.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for p := m.fields.Oldest(); p != nil; p = p.Next() {
		value := p.Value
		if p.Key == depsKey {
			value = m.depsRaw()
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		writeString(&buf, p.Key)
		buf.WriteByte(':')
		buf.Write(bytes.TrimSpace(value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode returns the manifest as two-space indented JSON with a trailing
// newline.
func (m *Manifest) Encode() ([]byte, error) {
	compact, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Write encodes m to path atomically. Failures carry
// errors.ErrCodeManifestWrite.
func Write(path string, m *Manifest) error {
	data, err := m.Encode()
	if err != nil {
		return bserrors.Wrap(bserrors.ErrCodeManifestWrite, err, "encode %s", path)
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return bserrors.Wrap(bserrors.ErrCodeManifestWrite, err, "write %s", path)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// touchDeps makes sure "dependencies" appears among the fields so a
// manifest that had none gains the key at the end.
func (m *Manifest) touchDeps() {
	if _, ok := m.fields.Get(depsKey); !ok {
		m.fields.Set(depsKey, json.RawMessage("{}"))
	}
}

func (m *Manifest) depsRaw() json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for p := m.deps.Oldest(); p != nil; p = p.Next() {
		if p != m.deps.Oldest() {
			buf.WriteByte(',')
		}
		writeString(&buf, p.Key)
		buf.WriteByte(':')
		writeString(&buf, p.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// writeString appends s as a JSON string without HTML escaping, so
// specifiers like ">=1.2" and scripts like "a && b" stay readable.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
}

func mustRaw(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
