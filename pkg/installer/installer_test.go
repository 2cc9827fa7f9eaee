package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
)

func TestCommandExitCode(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   int
	}{
		{"success", "exit 0", 0},
		{"failure", "exit 3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Command{Program: "sh", Args: []string{"-c", tt.script}, Capture: true}
			res, err := c.Install(context.Background(), t.TempDir())
			if err != nil {
				t.Fatalf("Install: %v", err)
			}
			if res.ExitCode != tt.want {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.want)
			}
			if res.OK() != (tt.want == 0) {
				t.Errorf("OK() = %v", res.OK())
			}
		})
	}
}

func TestCommandCaptureAndDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &Command{Program: "sh", Args: []string{"-c", "ls; echo oops >&2"}, Capture: true}
	res, err := c.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(res.Output, "package.json") {
		t.Errorf("Output = %q, want listing of %s", res.Output, dir)
	}
	if strings.TrimSpace(res.Stderr) != "oops" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
}

func TestCommandExtraArgs(t *testing.T) {
	c := &Command{Program: "echo", Args: []string{"info"}, Capture: true}
	res, err := c.Run(context.Background(), t.TempDir(), "react", "version")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(res.Output); got != "info react version" {
		t.Errorf("Output = %q", got)
	}
	if len(c.Args) != 1 {
		t.Errorf("Args mutated: %v", c.Args)
	}
}

func TestCommandStartFailure(t *testing.T) {
	c := NewCommand("buildsync-no-such-program")
	_, err := c.Install(context.Background(), t.TempDir())
	if !bserrors.Is(err, bserrors.ErrCodeInstall) {
		t.Fatalf("err = %v, want INSTALL_FAILED", err)
	}
}

func TestCommandTimeout(t *testing.T) {
	c := &Command{Program: "sh", Args: []string{"-c", "exec sleep 5"}, Capture: true, Timeout: 50 * time.Millisecond}
	start := time.Now()
	res, err := c.Install(context.Background(), t.TempDir())
	if !bserrors.Is(err, bserrors.ErrCodeTimeout) {
		t.Fatalf("err = %v, want TIMEOUT", err)
	}
	if res == nil || res.ExitCode != -1 {
		t.Errorf("res = %+v", res)
	}
	if time.Since(start) > 4*time.Second {
		t.Error("timeout not enforced")
	}
}

func TestNewCommandDefault(t *testing.T) {
	if c := NewCommand(""); c.Program != DefaultProgram {
		t.Errorf("Program = %q", c.Program)
	}
}
