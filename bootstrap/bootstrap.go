// Package bootstrap implements the environment provisioning flow: make sure
// an isolated runtime environment exists, then hand control to the
// application inside it.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calloway/weatherline"
	"github.com/calloway/weatherline/config"
	"github.com/calloway/weatherline/internal/util"
	"github.com/calloway/weatherline/runner"
)

// Step names reported by [StepError].
const (
	StepCreate  = "create"
	StepInstall = "install"
	StepLaunch  = "launch"
)

// StepError reports the first failing step of a run. It wraps the underlying
// execution error so [runner.ExitCode] can recover the tool's exit status.
type StepError struct {
	Step string
	Cmd  weatherline.Command
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed (%s): %v", e.Step, e.Cmd, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Bootstrapper drives the two-branch provisioning flow against one project
// directory. Execution is strictly sequential: each external command must
// exit before the next starts, and the first failure aborts the whole run.
type Bootstrapper struct {
	run        runner.CommandRunner
	toolchain  weatherline.Toolchain
	projectDir string
	opts       config.LauncherOptions

	// baseEnv is the pre-activation environment; nil means os.Environ().
	baseEnv []string
	// env is the activated environment bound to install and launch commands.
	env []string

	logger util.Logger
}

// New creates a Bootstrapper for the given project directory.
func New(r runner.CommandRunner, tc weatherline.Toolchain, projectDir string, opts config.LauncherOptions) *Bootstrapper {
	return &Bootstrapper{
		run:        r,
		toolchain:  tc,
		projectDir: projectDir,
		opts:       opts,
		logger:     util.GetLogger("bootstrap"),
	}
}

// EnvPath returns the absolute path of the environment directory.
func (b *Bootstrapper) EnvPath() string {
	path := filepath.Join(b.projectDir, b.opts.EnvDir)
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// EnsureEnvironment checks for the environment directory and provisions it
// when absent: create, activate, install. When the directory already exists
// the only effect is activation — the run binds to the existing environment
// and dependency installation is skipped. Returns whether a new environment
// was created.
func (b *Bootstrapper) EnsureEnvironment(ctx context.Context) (bool, error) {
	info, err := os.Stat(b.EnvPath())
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("environment path %s exists but is not a directory", b.EnvPath())
		}
		b.logger.Debug().Str("env", b.EnvPath()).Msg("Environment already provisioned")
		b.Activate()
		return false, nil
	case os.IsNotExist(err):
		// first run; fall through to provisioning
	default:
		return false, fmt.Errorf("failed to stat environment dir: %w", err)
	}

	create := b.toolchain.CreateCommand(b.opts.EnvDir)
	create.Dir = b.projectDir
	if err := b.run.Run(ctx, create); err != nil {
		return false, &StepError{Step: StepCreate, Cmd: create, Err: err}
	}
	b.logger.Debug().Str("env", b.EnvPath()).Msg("Environment created")

	b.Activate()

	if err := b.InstallDependencies(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Activate computes the activated environment and binds it to every
// subsequent command, so install and launch resolve the isolated
// interpreter and its packages. Process-local with no explicit release;
// the binding dies with the wrapper process.
func (b *Bootstrapper) Activate() {
	base := b.baseEnv
	if base == nil {
		base = os.Environ()
	}
	b.env = b.toolchain.Activate(b.EnvPath(), base)
	b.logger.Debug().Str("virtual_env", b.EnvPath()).Msg("Environment activated")
}

// InstallDependencies invokes the environment's installer against the
// manifest file. Any installer failure is fatal to the run; there is no
// retry and no partial-failure recovery.
func (b *Bootstrapper) InstallDependencies(ctx context.Context) error {
	install := b.toolchain.InstallCommand(b.opts.EnvDir, b.opts.Manifest)
	install.Dir = b.projectDir
	install.Env = b.env
	if err := b.run.Run(ctx, install); err != nil {
		return &StepError{Step: StepInstall, Cmd: install, Err: err}
	}
	return nil
}

// LaunchApplication hands control to the entry point and blocks until it
// exits. The wrapper's own work ends here; the child's exit status becomes
// the wrapper's.
func (b *Bootstrapper) LaunchApplication(ctx context.Context, args []string) error {
	launch := b.toolchain.LaunchCommand(b.opts.EnvDir, b.opts.Entry, args)
	launch.Dir = b.projectDir
	launch.Env = b.env
	b.logger.Debug().Str("entry", b.opts.Entry).Msg("Launching application")
	if err := b.run.Run(ctx, launch); err != nil {
		return &StepError{Step: StepLaunch, Cmd: launch, Err: err}
	}
	return nil
}

// Run executes the full flow: ensure the environment exists (creating it and
// installing dependencies on first run), then launch the application. The
// first failing step aborts immediately — the application is never launched
// after a failure.
func (b *Bootstrapper) Run(ctx context.Context, args []string) error {
	if _, err := b.EnsureEnvironment(ctx); err != nil {
		return err
	}
	return b.LaunchApplication(ctx, args)
}

// Plan returns the commands a Run would execute given the current state of
// the project directory, without executing anything.
func (b *Bootstrapper) Plan() []weatherline.Command {
	var cmds []weatherline.Command
	if _, err := os.Stat(b.EnvPath()); os.IsNotExist(err) {
		cmds = append(cmds,
			b.toolchain.CreateCommand(b.opts.EnvDir),
			b.toolchain.InstallCommand(b.opts.EnvDir, b.opts.Manifest),
		)
	}
	cmds = append(cmds, b.toolchain.LaunchCommand(b.opts.EnvDir, b.opts.Entry, nil))
	return cmds
}
