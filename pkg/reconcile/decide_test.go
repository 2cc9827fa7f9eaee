package reconcile

import (
	"slices"
	"testing"

	"github.com/matzehuels/buildsync/pkg/manifest"
)

func TestDecide(t *testing.T) {
	full := manifest.New()
	full.SetDependency("lodash", "4.17.21")
	full.SetDependency("react", "^16.8.1")

	blank := manifest.New()
	blank.SetDependency("lodash", "")

	deps := NewDependencySet("lodash", "react")

	tests := []struct {
		name            string
		m               *manifest.Manifest
		manifestChanged bool
		firstRun        bool
		install         bool
		reason          string
		missing         []string
	}{
		{"satisfied", full, false, false, false, ReasonSatisfied, nil},
		{"cold start", full, false, true, true, ReasonFirstRun, nil},
		{"manifest changed", full, true, false, true, ReasonManifestChanged, nil},
		{"no manifest", nil, false, false, true, ReasonMissing, []string{"lodash", "react"}},
		{"empty specifier", blank, false, false, true, ReasonMissing, []string{"lodash", "react"}},
		{"all reasons", nil, true, true, true, "first run, manifest changed, missing dependencies", []string{"lodash", "react"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.m, deps, tt.manifestChanged, tt.firstRun)
			if d.Install != tt.install || d.Reason != tt.reason {
				t.Errorf("Decide() = %+v, want install=%v reason=%q", d, tt.install, tt.reason)
			}
			if !slices.Equal(d.Missing, tt.missing) {
				t.Errorf("Missing = %v, want %v", d.Missing, tt.missing)
			}
		})
	}
}

func TestDecideEmptySet(t *testing.T) {
	if d := Decide(nil, NewDependencySet(), false, false); d.Install {
		t.Errorf("empty set with no manifest should be satisfied: %+v", d)
	}
}
