// Package manifest reads and writes package.json manifests.
//
// A [Manifest] keeps every top-level field in its original order and byte
// form, so rewriting a user's manifest only touches "dependencies". The
// dependency table itself is also ordered: existing entries keep their
// position and new entries are appended.
package manifest
