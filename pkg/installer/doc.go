// Package installer runs the package manager inside a build workspace.
//
// The engine only depends on the [Installer] interface. [Command] is the
// default implementation: it executes an external program (yarn unless
// configured otherwise) with the workspace as its working directory and
// reports how it went as a [Result].
//
// A program that cannot be started is an error. A program that starts and
// exits non-zero is not; callers inspect [Result.ExitCode] or [Result.OK] and
// decide for themselves.
package installer
