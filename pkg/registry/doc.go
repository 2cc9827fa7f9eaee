// Package registry resolves the version to record for a newly discovered
// package.
//
// A [VersionResolver] never fails: any lookup problem yields [Fallback], so a
// registry outage degrades to an unpinned "latest" entry instead of aborting
// reconciliation. Two resolvers are provided:
//
//   - [NPM] asks an npm-compatible registry for the "latest" dist-tag through
//     the cached client in integrations/npm.
//   - [Yarn] shells out to "yarn info <pkg> version --json" in the build
//     workspace, which honours the user's yarn registry settings.
package registry
