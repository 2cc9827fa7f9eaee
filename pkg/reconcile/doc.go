// Package reconcile keeps a build workspace's declared dependencies in step
// with what its sources import.
//
// One reconciliation pass:
//
//  1. scans the build workspace and collects imported package names
//     ([BuildDependencySet]),
//  2. decides whether the build manifest already satisfies them ([Decide]),
//  3. if not, rewrites the build manifest ([SynthesizeManifest]), runs the
//     installer and copies newly found packages back to the source
//     workspace's manifest ([Reflect]),
//  4. always regenerates the build workspace's transform config.
//
// [Engine] wires the steps together and owns the state that survives between
// passes. Framework packages ([FrameworkPackages]) are pinned in the build
// manifest and never leak into the source manifest.
package reconcile
