// Package runner executes external tool commands on behalf of the bootstrap
// flow. It owns nothing but process plumbing: callers decide what to run and
// in which environment.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/calloway/weatherline"
)

// CommandRunner abstracts process execution so flows can be tested without
// spawning real tools.
type CommandRunner interface {
	// Run starts cmd and blocks until it exits. The returned error is the
	// raw execution error; use [ExitCode] to translate it into an exit
	// status.
	Run(ctx context.Context, cmd weatherline.Command) error

	// LookPath reports where name resolves on the search path.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands as real child processes with the wrapper's stdio
// wired through, so each tool's diagnostics surface verbatim.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Trace echoes each command before it starts, shell-xtrace style.
	// TraceW falls back to Stderr, then os.Stderr.
	Trace  bool
	TraceW io.Writer
}

// New returns an ExecRunner bound to the process's own stdio.
func New(trace bool) *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Trace:  trace,
	}
}

// Run executes c and blocks until it exits. The child inherits c.Env and
// c.Dir unmodified; a nil Env inherits the parent environment.
func (r *ExecRunner) Run(ctx context.Context, c weatherline.Command) error {
	if r.Trace {
		fmt.Fprintf(r.traceWriter(), "+ %s\n", c)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = c.Env
	cmd.Dir = c.Dir

	return cmd.Run()
}

// LookPath resolves name the same way Run would.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *ExecRunner) traceWriter() io.Writer {
	if r.TraceW != nil {
		return r.TraceW
	}
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

var _ CommandRunner = (*ExecRunner)(nil)

// ExitCode translates a step error into the wrapper's exit status: the
// child's own code when it ran and failed, 127 when the tool could not be
// resolved (the shell convention), 1 for any other failure, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return 127
	}
	return 1
}
