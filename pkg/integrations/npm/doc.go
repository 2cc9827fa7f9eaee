// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// The client looks up the version currently tagged "latest" for a package,
// which is what the reconciler writes into a manifest for a newly imported
// package:
//
//	client := npm.NewClient(c, 24*time.Hour, "")
//	v, err := client.LatestVersion(ctx, "lodash", false)
//	// v == "4.17.21"
//
// # Endpoint
//
// Lookups use the dist-tags endpoint (/-/package/<name>/dist-tags), which
// returns a small document and works for scoped packages. The name is path
// escaped, so "@babel/core" is requested as "@babel%2Fcore".
//
// # Caching
//
// Responses are cached under the "npm:" key prefix for the TTL given to
// [NewClient]. Pass refresh=true to bypass the cache.
package npm
