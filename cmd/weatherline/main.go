// weatherline launches an application inside its project's virtual
// environment, creating the environment and installing its dependencies on
// the first run. The launched application's exit status becomes the
// launcher's.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/calloway/weatherline/bootstrap"
	"github.com/calloway/weatherline/config"
	"github.com/calloway/weatherline/internal/util"
	"github.com/calloway/weatherline/runner"
	"github.com/calloway/weatherline/toolchains"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

func run(stdout, stderr io.Writer, args []string) int {
	// Parse command line arguments
	var (
		configPath  string
		envDir      string
		manifest    string
		entry       string
		interpreter string
		verbose     int
		trace       bool
		dryRun      bool
		check       bool
	)
	fs := flag.NewFlagSet("weatherline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", "", "Path to config file (.yaml, .yml, or .json)")
	fs.StringVar(&configPath, "c", "", "--config (shorthand)")
	fs.StringVar(&envDir, "env", "", "Environment directory name relative to the project dir")
	fs.StringVar(&manifest, "manifest", "", "Dependency manifest file name")
	fs.StringVar(&manifest, "m", "", "--manifest (shorthand)")
	fs.StringVar(&entry, "entry", "", "Application entry point file name")
	fs.StringVar(&entry, "e", "", "--entry (shorthand)")
	fs.StringVar(&interpreter, "interpreter", "", "Interpreter binary used to create the environment")
	fs.IntVar(&verbose, "verbose", config.DefaultVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	fs.IntVar(&verbose, "v", config.DefaultVerbose, "--verbose (shorthand)")
	fs.BoolVar(&trace, "trace", config.DefaultTrace, "Echo each command before running it")
	fs.BoolVar(&dryRun, "dry-run", false, "Print the commands a run would execute, then exit")
	fs.BoolVar(&check, "check", false, "Run preflight checks against the project, then exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: weatherline [flags] [project-dir] [app args...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg := config.NewDefaultConfig()
	if configPath != "" {
		fileCfg, err := config.NewConfigFromFile(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "weatherline: %v\n", err)
			return 2
		}
		cfg = fileCfg
	}

	// Flags beat the config file, but only the ones actually set.
	override := &config.ConfigOverride{Launcher: &config.LauncherOverride{}}
	if envDir != "" {
		override.Launcher.EnvDir = util.Pointer(envDir)
	}
	if manifest != "" {
		override.Launcher.Manifest = util.Pointer(manifest)
	}
	if entry != "" {
		override.Launcher.Entry = util.Pointer(entry)
	}
	if interpreter != "" {
		override.Launcher.Interpreter = util.Pointer(interpreter)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			override.Launcher.Trace = util.Pointer(trace)
		case "verbose", "v":
			override.Verbose = util.Pointer(verbose)
		}
	})
	cfg.Merge(override)

	// Initialize logger
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")

	rest := fs.Args()
	projectDir := "."
	if len(rest) > 0 {
		projectDir = rest[0]
	}
	var appArgs []string
	if len(rest) > 1 {
		appArgs = rest[1:]
	}

	toolchains.RegisterBuiltins()
	tc, err := toolchains.New(cfg.Launcher.Toolchain, toolchains.Options{Interpreter: cfg.Launcher.Interpreter})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build toolchain")
		return 1
	}

	execRunner := runner.New(cfg.Launcher.Trace)
	b := bootstrap.New(execRunner, tc, projectDir, cfg.Launcher)
	logger.Debug().
		Str("project", projectDir).
		Str("toolchain", tc.Name()).
		Str("env", b.EnvPath()).
		Msg("Launcher initializing")

	// Interrupts go to the whole foreground process group, so the launched
	// application sees them directly; the launcher itself adds no signal
	// handling.
	ctx := context.Background()

	if dryRun {
		for _, cmd := range b.Plan() {
			fmt.Fprintln(stdout, cmd)
		}
		return 0
	}

	if check {
		results := b.Doctor(ctx)
		for _, r := range results {
			status := "ok"
			if !r.OK {
				status = "fail"
			}
			fmt.Fprintf(stdout, "%-4s %s", status, r.Name)
			if r.Error != "" {
				fmt.Fprintf(stdout, " (%s)", r.Error)
			}
			fmt.Fprintln(stdout)
		}
		if !bootstrap.Healthy(results) {
			return 1
		}
		return 0
	}

	if err := b.Run(ctx, appArgs); err != nil {
		code := runner.ExitCode(err)

		var stepErr *bootstrap.StepError
		var exitErr *exec.ExitError
		if errors.As(err, &stepErr) && stepErr.Step == bootstrap.StepLaunch && errors.As(err, &exitErr) {
			// The application ran and chose its own exit status; its
			// diagnostics are already on stderr.
			return code
		}

		logger.Error().Err(err).Int("exit_code", code).Msg("Bootstrap failed")
		return code
	}
	return 0
}
