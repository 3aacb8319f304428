package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var (
	launcherBin string
	fakeBinDir  string
)

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "weatherline-e2e")
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			panic(err)
		}
	}()

	// Build the launcher binary once for all tests
	launcherBin = filepath.Join(tmpDir, "weatherline")

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot determine current file path")
	}
	projRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")

	cmd := exec.Command("go", "build", "-o", launcherBin, "./cmd/weatherline")
	cmd.Dir = projRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic(string(out))
	}

	// Fake toolchain binaries stand in for python3/pip so the bootstrap flow
	// runs for real without a Python installation. Their behavior is driven
	// by FAKE_* environment variables; every invocation is appended to the
	// file named by FAKE_LOG.
	fakeBinDir = filepath.Join(tmpDir, "bin")
	if err := writeFakeToolchain(fakeBinDir); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func TestE2EFirstRunCreatesInstallsThenLaunches(t *testing.T) {
	proj := newProject(t)

	res := proj.run(t, nil, proj.dir)

	if res.code != 0 {
		t.Fatalf("first run failed with code %d\nstderr:\n%s", res.code, res.stderr)
	}

	calls := proj.calls(t)
	want := []string{
		"venv-create venv",
		"pip install -r requirements.txt",
	}
	if len(calls) < 3 {
		t.Fatalf("expected create, install, launch; got calls: %v", calls)
	}
	for i, w := range want {
		if calls[i] != w {
			t.Fatalf("call %d mismatch:\nexpected: %q\ngot:      %q", i, w, calls[i])
		}
	}
	if !strings.HasPrefix(calls[2], "python app.py") {
		t.Fatalf("expected launch after install, got: %q", calls[2])
	}

	if _, err := os.Stat(filepath.Join(proj.dir, "venv")); err != nil {
		t.Fatalf("environment directory missing after first run: %v", err)
	}

	// Commands are echoed shell-xtrace style before running
	for _, line := range []string{
		"+ python3 -m venv venv",
		"+ venv/bin/pip install -r requirements.txt",
		"+ venv/bin/python app.py",
	} {
		if !strings.Contains(res.stderr, line) {
			t.Fatalf("missing trace line %q in stderr:\n%s", line, res.stderr)
		}
	}
}

func TestE2ESecondRunLaunchesDirectly(t *testing.T) {
	proj := newProject(t)

	if res := proj.run(t, nil, proj.dir); res.code != 0 {
		t.Fatalf("first run failed with code %d\nstderr:\n%s", res.code, res.stderr)
	}
	proj.clearLog(t)

	res := proj.run(t, nil, proj.dir)

	if res.code != 0 {
		t.Fatalf("second run failed with code %d\nstderr:\n%s", res.code, res.stderr)
	}
	calls := proj.calls(t)
	if containsPrefix(calls, "venv-create") || containsPrefix(calls, "pip ") {
		t.Fatalf("second run should only launch, got calls: %v", calls)
	}
	if !containsPrefix(calls, "python app.py") {
		t.Fatalf("second run never launched, got calls: %v", calls)
	}
	if strings.Contains(res.stderr, "-m venv") {
		t.Fatalf("second run re-created the environment:\n%s", res.stderr)
	}
}

func TestE2EAppArgsAndEnvironmentReachTheApplication(t *testing.T) {
	proj := newProject(t)

	res := proj.run(t, nil, proj.dir, "serve", "--port=9999")

	if res.code != 0 {
		t.Fatalf("run failed with code %d\nstderr:\n%s", res.code, res.stderr)
	}

	calls := proj.calls(t)
	var launch string
	for _, c := range calls {
		if strings.HasPrefix(c, "python ") {
			launch = c
		}
	}
	wantEnv := "VIRTUAL_ENV=" + filepath.Join(proj.dir, "venv")
	if !strings.Contains(launch, "python app.py serve --port=9999") {
		t.Fatalf("app args not forwarded, launch call: %q", launch)
	}
	if !strings.Contains(launch, wantEnv) {
		t.Fatalf("environment not activated for launch:\nexpected %q in %q", wantEnv, launch)
	}
	if !containsCall(calls, "path-head-ok") {
		t.Fatalf("environment bin dir not first on PATH, calls: %v", calls)
	}
}

func TestE2EVenvCreationFailureAborts(t *testing.T) {
	proj := newProject(t)

	res := proj.run(t, []string{"FAKE_VENV_EXIT=5"}, proj.dir)

	if res.code != 5 {
		t.Fatalf("expected venv failure code 5, got %d\nstderr:\n%s", res.code, res.stderr)
	}
	calls := proj.calls(t)
	if len(calls) != 1 || calls[0] != "venv-create venv" {
		t.Fatalf("nothing past the failed create should run, got calls: %v", calls)
	}
	if _, err := os.Stat(filepath.Join(proj.dir, "venv")); !os.IsNotExist(err) {
		t.Fatalf("failed create should leave no environment directory, stat err: %v", err)
	}
}

func TestE2EInstallFailureAbortsLaunch(t *testing.T) {
	proj := newProject(t)

	res := proj.run(t, []string{"FAKE_PIP_EXIT=3"}, proj.dir)

	if res.code != 3 {
		t.Fatalf("expected install failure code 3, got %d\nstderr:\n%s", res.code, res.stderr)
	}
	calls := proj.calls(t)
	for _, c := range calls {
		if strings.HasPrefix(c, "python ") {
			t.Fatalf("application launched despite failed install, calls: %v", calls)
		}
	}
	if !strings.Contains(res.stderr, "pip: install failed") {
		t.Fatalf("pip diagnostics should pass through verbatim:\n%s", res.stderr)
	}
}

// A failed install leaves the environment directory behind, and the next run
// trusts its presence. This documents the recovery procedure: delete the
// directory to force a rebuild.
func TestE2EFailedInstallIsNotRetriedOnceEnvironmentExists(t *testing.T) {
	proj := newProject(t)

	if res := proj.run(t, []string{"FAKE_PIP_EXIT=3"}, proj.dir); res.code != 3 {
		t.Fatalf("expected install failure code 3, got %d", res.code)
	}
	proj.clearLog(t)

	res := proj.run(t, nil, proj.dir)

	if res.code != 0 {
		t.Fatalf("follow-up run failed with code %d\nstderr:\n%s", res.code, res.stderr)
	}
	calls := proj.calls(t)
	if containsPrefix(calls, "pip ") {
		t.Fatalf("install should not be retried for an existing environment, calls: %v", calls)
	}
}

func TestE2EApplicationExitCodePropagates(t *testing.T) {
	proj := newProject(t)

	res := proj.run(t, []string{"FAKE_APP_EXIT=7"}, proj.dir)

	if res.code != 7 {
		t.Fatalf("expected application code 7, got %d\nstderr:\n%s", res.code, res.stderr)
	}
}

func TestE2ETraceCanBeDisabled(t *testing.T) {
	proj := newProject(t)

	res := proj.run(t, nil, "--trace=false", proj.dir)

	if res.code != 0 {
		t.Fatalf("run failed with code %d\nstderr:\n%s", res.code, res.stderr)
	}
	for _, line := range strings.Split(res.stderr, "\n") {
		if strings.HasPrefix(line, "+ ") {
			t.Fatalf("trace should be silent when disabled, got: %q", line)
		}
	}
}

func TestE2ECheckReportsHealthyProject(t *testing.T) {
	proj := newProject(t)

	res := proj.run(t, nil, "--check", proj.dir)

	if res.code != 0 {
		t.Fatalf("check failed with code %d\nstdout:\n%s", res.code, res.stdout)
	}
	for _, probe := range []string{"project-dir", "manifest", "entry", "binary:python3", "binary:pip3"} {
		if !strings.Contains(res.stdout, "ok   "+probe) {
			t.Fatalf("probe %q not reported healthy:\n%s", probe, res.stdout)
		}
	}
}

// project is one temp project directory wired to the fake toolchain.
type project struct {
	dir     string
	logPath string
}

type runResult struct {
	code   int
	stdout string
	stderr string
}

func newProject(t *testing.T) *project {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"requirements.txt", "app.py"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# placeholder\n"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return &project{
		dir:     dir,
		logPath: filepath.Join(t.TempDir(), "calls.log"),
	}
}

// run executes the launcher against the project with the fake toolchain first
// on PATH. extraEnv entries are appended on top of the test process's own
// environment.
func (p *project) run(t *testing.T, extraEnv []string, args ...string) runResult {
	t.Helper()

	cmd := exec.Command(launcherBin, args...)
	cmd.Env = append(
		environWithPath(fakeBinDir+string(os.PathListSeparator)+os.Getenv("PATH")),
		append([]string{"FAKE_LOG=" + p.logPath}, extraEnv...)...,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			t.Fatalf("launcher did not run: %v", err)
		}
		code = exitErr.ExitCode()
	}
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// calls returns the fake toolchain invocations in order.
func (p *project) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(p.logPath)
	if err != nil {
		t.Fatalf("failed to read call log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func (p *project) clearLog(t *testing.T) {
	t.Helper()
	if err := os.Remove(p.logPath); err != nil {
		t.Fatalf("failed to clear call log: %v", err)
	}
}

func containsCall(calls []string, want string) bool {
	for _, c := range calls {
		if c == want {
			return true
		}
	}
	return false
}

func containsPrefix(calls []string, prefix string) bool {
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// environWithPath returns the current environment with PATH replaced.
func environWithPath(path string) []string {
	env := os.Environ()
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PATH="+path)
}

// writeFakeToolchain creates python3 and pip3 stand-ins in dir. python3 only
// understands "-m venv <dir>"; it seeds the new environment with its own
// fake pip and python, the same way a real venv seeds its tools.
func writeFakeToolchain(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	python3 := `#!/bin/sh
if [ "$1" = "-m" ] && [ "$2" = "venv" ]; then
	echo "venv-create $3" >> "$FAKE_LOG"
	if [ "${FAKE_VENV_EXIT:-0}" -ne 0 ]; then
		echo "python3: venv creation failed" >&2
		exit "${FAKE_VENV_EXIT:-0}"
	fi
	mkdir -p "$3/bin"
	cat > "$3/bin/pip" <<'PIP'
#!/bin/sh
echo "pip $*" >> "$FAKE_LOG"
if [ "${FAKE_PIP_EXIT:-0}" -ne 0 ]; then
	echo "pip: install failed" >&2
fi
exit "${FAKE_PIP_EXIT:-0}"
PIP
	cat > "$3/bin/python" <<'PY'
#!/bin/sh
echo "python $* VIRTUAL_ENV=$VIRTUAL_ENV" >> "$FAKE_LOG"
case "$PATH" in
	"$VIRTUAL_ENV/bin":*) echo "path-head-ok" >> "$FAKE_LOG" ;;
esac
exit "${FAKE_APP_EXIT:-0}"
PY
	chmod +x "$3/bin/pip" "$3/bin/python"
	exit 0
fi
echo "unexpected python3 invocation: $*" >&2
exit 64
`

	pip3 := `#!/bin/sh
exit 0
`

	for name, content := range map[string]string{"python3": python3, "pip3": pip3} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o755); err != nil {
			return err
		}
	}
	return nil
}
