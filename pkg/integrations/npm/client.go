package npm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/buildsync/pkg/cache"
	"github.com/matzehuels/buildsync/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// ErrNoLatest is returned when the registry document has no "latest" tag.
var ErrNoLatest = errors.New("no latest dist-tag")

// Client queries an npm-compatible registry.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client backed by c. An empty baseURL selects
// [DefaultRegistry].
func NewClient(c cache.Cache, ttl time.Duration, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistry
	}
	return &Client{
		Client:  integrations.NewClient(c, "npm:", ttl, map[string]string{"Accept": "application/json"}),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the registry root used for requests.
func (c *Client) BaseURL() string { return c.baseURL }

// LatestVersion returns the version tagged "latest" for pkg.
func (c *Client) LatestVersion(ctx context.Context, pkg string, refresh bool) (string, error) {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return "", fmt.Errorf("%w: empty package name", integrations.ErrNotFound)
	}

	var tags distTags
	err := c.Cached(ctx, pkg+":dist-tags", refresh, &tags, func() error {
		return c.fetchTags(ctx, pkg, &tags)
	})
	if err != nil {
		return "", err
	}
	if tags.Latest == "" {
		return "", fmt.Errorf("%w: %s", ErrNoLatest, pkg)
	}
	return tags.Latest, nil
}

func (c *Client) fetchTags(ctx context.Context, pkg string, tags *distTags) error {
	u := c.baseURL + "/-/package/" + url.PathEscape(pkg) + "/dist-tags"
	if err := c.Get(ctx, u, tags); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}
	return nil
}

type distTags struct {
	Latest string `json:"latest"`
	Next   string `json:"next,omitempty"`
}
