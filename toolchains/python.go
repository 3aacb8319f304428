package toolchains

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/calloway/weatherline"
)

const defaultPythonInterpreter = "python3"

// RegisterPython registers the python toolchain factory.
func RegisterPython() {
	Register(PythonToolchainType, func(opts Options) (weatherline.Toolchain, error) {
		interpreter := opts.Interpreter
		if interpreter == "" {
			interpreter = defaultPythonInterpreter
		}
		return &PythonToolchain{interpreter: interpreter}, nil
	})
}

// PythonToolchain provisions venv environments and drives pip. Its commands
// reproduce what the standard workflow runs by hand: `python3 -m venv`,
// `pip install -r`, then the environment's interpreter on the entry point.
type PythonToolchain struct {
	interpreter string
}

func (p *PythonToolchain) Name() string { return PythonToolchainType }

// Requires lists the system binaries the bootstrap steps depend on. pip3 is
// only exercised indirectly (venv seeds its own pip from the system one),
// but a host missing it almost always has a broken python packaging setup.
func (p *PythonToolchain) Requires() []string {
	return []string{p.interpreter, "pip3"}
}

func (p *PythonToolchain) CreateCommand(envDir string) weatherline.Command {
	return weatherline.Command{
		Name: p.interpreter,
		Args: []string{"-m", "venv", envDir},
	}
}

// InstallCommand uses the environment's own pip so packages land inside the
// environment regardless of what "pip" resolves to on the host.
func (p *PythonToolchain) InstallCommand(envDir, manifestPath string) weatherline.Command {
	return weatherline.Command{
		Name: filepath.Join(binDir(envDir), "pip"),
		Args: []string{"install", "-r", manifestPath},
	}
}

func (p *PythonToolchain) LaunchCommand(envDir, entry string, args []string) weatherline.Command {
	return weatherline.Command{
		Name: filepath.Join(binDir(envDir), "python"),
		Args: append([]string{entry}, args...),
	}
}

// Activate reproduces what bin/activate does to a shell: VIRTUAL_ENV set to
// the environment root, the environment's bin directory first on PATH, and
// PYTHONHOME cleared. envDir is normalized to an absolute path.
func (p *PythonToolchain) Activate(envDir string, base []string) []string {
	abs, err := filepath.Abs(envDir)
	if err != nil {
		abs = envDir
	}
	bin := binDir(abs)

	out := make([]string, 0, len(base)+2)
	out = append(out, "VIRTUAL_ENV="+abs)

	pathSeen := false
	for _, kv := range base {
		switch {
		case strings.HasPrefix(kv, "VIRTUAL_ENV="), strings.HasPrefix(kv, "PYTHONHOME="):
			// replaced above / cleared so the isolated interpreter wins
			continue
		case strings.HasPrefix(kv, "PATH="):
			out = append(out, "PATH="+bin+string(os.PathListSeparator)+strings.TrimPrefix(kv, "PATH="))
			pathSeen = true
		default:
			out = append(out, kv)
		}
	}
	if !pathSeen {
		out = append(out, "PATH="+bin)
	}

	return out
}

// binDir returns the executable directory inside an environment: "Scripts"
// on Windows, "bin" everywhere else.
func binDir(envDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(envDir, "Scripts")
	}
	return filepath.Join(envDir, "bin")
}

var _ weatherline.Toolchain = (*PythonToolchain)(nil)
