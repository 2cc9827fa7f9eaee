package reconcile

import (
	"strings"

	"github.com/matzehuels/buildsync/pkg/manifest"
)

// Reasons reported in a Decision.
const (
	ReasonSatisfied       = "satisfied"
	ReasonFirstRun        = "first run"
	ReasonManifestChanged = "manifest changed"
	ReasonMissing         = "missing dependencies"
)

// Decision is the staleness verdict for one reconciliation.
type Decision struct {
	Install bool
	Reason  string
	Missing []string // deps without an entry in the manifest
}

// Decide reports whether an install is required. m may be nil, meaning no
// usable manifest exists.
func Decide(m *manifest.Manifest, deps *DependencySet, manifestChanged, firstRun bool) Decision {
	var missing []string
	for _, name := range deps.Names() {
		if !m.HasDependency(name) {
			missing = append(missing, name)
		}
	}

	d := Decision{Install: true, Missing: missing}
	var reasons []string
	if firstRun {
		reasons = append(reasons, ReasonFirstRun)
	}
	if manifestChanged {
		reasons = append(reasons, ReasonManifestChanged)
	}
	if len(missing) > 0 {
		reasons = append(reasons, ReasonMissing)
	}
	if len(reasons) == 0 {
		d.Install = false
		reasons = append(reasons, ReasonSatisfied)
	}
	d.Reason = strings.Join(reasons, ", ")
	return d
}
