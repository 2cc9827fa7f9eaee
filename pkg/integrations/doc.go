// Package integrations provides the shared HTTP client used by package
// registry lookups.
//
// # Client Pattern
//
// Registry subpackages embed [Client] and add API-specific parsing:
//
//	c := integrations.NewClient(cache, "npm:", 24*time.Hour, nil)
//	var tags map[string]string
//	err := c.Cached(ctx, "lodash", false, &tags, func() error {
//	    return c.Get(ctx, url, &tags)
//	})
//
// The client handles:
//   - JSON GET requests with default and per-request headers
//   - retries of transient failures (network errors, 5xx) via
//     [cache.RetryWithBackoff]
//   - response caching through any [cache.Cache] backend
//   - HTTP and cache events via [observability] hooks
//
// [cache.RetryWithBackoff]: github.com/matzehuels/buildsync/pkg/cache.RetryWithBackoff
// [cache.Cache]: github.com/matzehuels/buildsync/pkg/cache.Cache
// [observability]: github.com/matzehuels/buildsync/pkg/observability
package integrations
