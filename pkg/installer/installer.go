package installer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	bserrors "github.com/matzehuels/buildsync/pkg/errors"
)

// DefaultProgram is the package manager used when none is configured.
const DefaultProgram = "yarn"

// waitDelay bounds how long Run waits for output pipes after the process
// has been killed.
const waitDelay = 2 * time.Second

// Installer installs the packages declared by the manifest in dir.
type Installer interface {
	Install(ctx context.Context, dir string) (*Result, error)
}

// Result describes a finished installer process.
type Result struct {
	ExitCode int
	Output   string // captured stdout, empty unless capturing
	Stderr   string // captured stderr, empty unless capturing
	Duration time.Duration
}

// OK reports whether the process exited with status zero.
func (r *Result) OK() bool { return r != nil && r.ExitCode == 0 }

// Command runs an external program as the installer.
type Command struct {
	Program string
	Args    []string
	Env     []string // appended to the current environment

	// Capture collects stdout and stderr into the Result instead of
	// streaming them to Stdout and Stderr.
	Capture bool
	Stdout  io.Writer // default os.Stdout
	Stderr  io.Writer // default os.Stderr

	// Timeout bounds a single run. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// NewCommand returns a Command for program with args. An empty program
// selects [DefaultProgram].
func NewCommand(program string, args ...string) *Command {
	if program == "" {
		program = DefaultProgram
	}
	return &Command{Program: program, Args: args}
}

// Install runs the configured program in dir.
func (c *Command) Install(ctx context.Context, dir string) (*Result, error) {
	return c.Run(ctx, dir)
}

// Run executes the program in dir with extra arguments appended to Args.
func (c *Command) Run(ctx context.Context, dir string, extra ...string) (*Result, error) {
	program := c.Program
	if program == "" {
		program = DefaultProgram
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.Args...), extra...)
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	if c.Capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = writerOr(c.Stdout, os.Stdout)
		cmd.Stderr = writerOr(c.Stderr, os.Stderr)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, bserrors.Wrap(bserrors.ErrCodeInstall, err, "start %s", program)
	}
	err := cmd.Wait()
	res := &Result{
		Output:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, bserrors.Wrap(bserrors.ErrCodeTimeout, ctxErr, "%s did not finish in time", program)
		}
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		return res, bserrors.Wrap(bserrors.ErrCodeInstall, err, "run %s", program)
	}
	return res, nil
}

func writerOr(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}
