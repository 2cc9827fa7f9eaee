package reconcile

import (
	"github.com/matzehuels/buildsync/pkg/manifest"
)

// Reflect writes a copy of build, stripped of framework packages, to the
// source manifest at path. The source manifest is replaced wholesale.
func Reflect(path string, build *manifest.Manifest) (*manifest.Manifest, error) {
	m := StripFramework(build)
	if err := manifest.Write(path, m); err != nil {
		return nil, err
	}
	return m, nil
}

// StripFramework returns a copy of m without framework packages.
func StripFramework(m *manifest.Manifest) *manifest.Manifest {
	c := m.Clone()
	for _, p := range frameworkPackages {
		c.DeleteDependency(p.Name)
	}
	return c
}
