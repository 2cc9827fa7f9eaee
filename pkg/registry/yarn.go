package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/buildsync/pkg/installer"
)

// Yarn resolves versions with "yarn info <pkg> version --json".
type Yarn struct {
	Dir     string // working directory, normally the build root
	Timeout time.Duration
	cmd     *installer.Command
	logger  *log.Logger
}

// NewYarn returns a resolver that runs program (default yarn) in dir.
func NewYarn(program, dir string, logger *log.Logger) *Yarn {
	cmd := installer.NewCommand(program, "info")
	cmd.Capture = true
	return &Yarn{Dir: dir, Timeout: DefaultTimeout, cmd: cmd, logger: loggerOr(logger)}
}

// LatestVersion returns the version yarn reports for name, or [Fallback].
func (r *Yarn) LatestVersion(ctx context.Context, name string) string {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()
	v, err := r.lookup(ctx, name)
	return orFallback(v, err, name, r.logger)
}

func (r *Yarn) lookup(ctx context.Context, name string) (string, error) {
	res, err := r.cmd.Run(ctx, r.Dir, name, "version", "--json")
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return "", fmt.Errorf("%s info exited with %d: %s", r.cmd.Program, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return parseYarnInfo(res.Output)
}

// parseYarnInfo extracts "data" from yarn's line-delimited JSON output.
// Warnings are emitted as separate lines of other types. npm's single
// JSON string is accepted too, so the resolver works with either program.
func parseYarnInfo(out string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// npm info --json prints the version as a bare JSON string.
		var bare string
		if err := json.Unmarshal([]byte(line), &bare); err == nil {
			return bare, nil
		}
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			continue
		}
		if msg.Type != "" && msg.Type != "inspect" {
			continue
		}
		var v string
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return "", fmt.Errorf("unexpected yarn info data: %s", msg.Data)
		}
		return v, nil
	}
	return "", fmt.Errorf("no version in yarn info output")
}
