package registry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/buildsync/pkg/integrations/npm"
)

// NPM resolves versions from an npm-compatible registry.
type NPM struct {
	client  *npm.Client
	logger  *log.Logger
	Timeout time.Duration
	Refresh bool // bypass cached lookups
}

// NewNPM returns a resolver backed by client.
func NewNPM(client *npm.Client, logger *log.Logger) *NPM {
	return &NPM{client: client, logger: loggerOr(logger), Timeout: DefaultTimeout}
}

// LatestVersion returns the "latest" dist-tag of name, or [Fallback].
func (r *NPM) LatestVersion(ctx context.Context, name string) string {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()
	v, err := r.client.LatestVersion(ctx, name, r.Refresh)
	return orFallback(v, err, name, r.logger)
}
