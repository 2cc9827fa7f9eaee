package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"dario.cat/mergo"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
	"github.com/matzehuels/buildsync/pkg/manifest"
)

// Filename is the transform config file name in both workspaces.
const Filename = ".babelrc"

const baseJSON = `{
  "plugins": [
    "babel-plugin-react-require",
    ["@babel/plugin-transform-runtime"],
    ["@babel/plugin-proposal-class-properties", {"loose": true}]
  ]
}`

// Config is a decoded transform configuration.
type Config map[string]any

// Source tells where a synthesized config came from.
type Source int

const (
	SourceBase     Source = iota // no override file
	SourceMerged                 // override merged onto base
	SourceFallback               // override present but unusable
)

func (s Source) String() string {
	switch s {
	case SourceMerged:
		return "merged"
	case SourceFallback:
		return "fallback"
	default:
		return "base"
	}
}

// Result is the outcome of Synthesize.
type Result struct {
	Config Config
	Source Source
	Err    error // set with SourceFallback
}

// Base returns a fresh copy of the built-in configuration.
func Base() Config {
	var c Config
	if err := json.Unmarshal([]byte(baseJSON), &c); err != nil {
		panic(err)
	}
	return c
}

// Synthesize merges the override at overridePath onto a copy of base.
// A missing override yields base; an unreadable or invalid one yields base
// with Source set to SourceFallback.
func Synthesize(base Config, overridePath string) Result {
	base = base.Clone()
	override, err := Load(overridePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Result{Config: base, Source: SourceBase}
	case err != nil:
		return Result{Config: base, Source: SourceFallback, Err: err}
	case override == nil:
		return Result{Config: base, Source: SourceBase}
	}

	merged, err := Merge(base, override)
	if err != nil {
		return Result{Config: base, Source: SourceFallback, Err: err}
	}
	return Result{Config: merged, Source: SourceMerged}
}

// Merge returns base deep-merged with override. Neither argument is
// modified.
func Merge(base, override Config) (Config, error) {
	dst := base.Clone()
	if dst == nil {
		dst = Config{}
	}
	if err := mergo.Merge(&dst, override.Clone(), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge transform config: %w", err)
	}
	return dst, nil
}

// Load reads a config file. A file containing JSON null yields a nil
// Config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Write stores c at path as two-space indented JSON. Failures carry
// errors.ErrCodeConfigWrite.
func Write(path string, c Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return bserrors.Wrap(bserrors.ErrCodeConfigWrite, err, "encode %s", path)
	}
	data = append(data, '\n')
	if err := manifest.WriteFileAtomic(path, data); err != nil {
		return bserrors.Wrap(bserrors.ErrCodeConfigWrite, err, "write %s", path)
	}
	return nil
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Config(t).Clone())
	case Config:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
