package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calloway/weatherline"
)

func shCmd(script string) weatherline.Command {
	return weatherline.Command{Name: "sh", Args: []string{"-c", script}}
}

func TestExecRunner_Run_WiresStdio(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), shCmd("echo to-stdout; echo to-stderr 1>&2"))

	require.NoError(t, err)
	assert.Equal(t, "to-stdout\n", stdout.String(), "child stdout must pass through")
	assert.Equal(t, "to-stderr\n", stderr.String(), "child stderr must pass through")
}

func TestExecRunner_Run_ChildExitStatus(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{}

	err := r.Run(context.Background(), shCmd("exit 3"))

	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err), "child's exit status must survive verbatim")
}

func TestExecRunner_Run_HonorsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o600))

	var stdout bytes.Buffer
	r := &ExecRunner{Stdout: &stdout}

	cmd := shCmd("ls")
	cmd.Dir = dir
	require.NoError(t, r.Run(context.Background(), cmd))

	assert.Contains(t, stdout.String(), "marker.txt", "child must run in the command's Dir")
}

func TestExecRunner_Run_HonorsEnv(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	r := &ExecRunner{Stdout: &stdout}

	cmd := shCmd("echo $LAUNCH_PROBE")
	cmd.Env = []string{"LAUNCH_PROBE=bound"}
	require.NoError(t, r.Run(context.Background(), cmd))

	assert.Equal(t, "bound\n", stdout.String(), "child must see exactly the command's Env")
}

func TestExecRunner_TraceEcho(t *testing.T) {
	t.Parallel()

	t.Run("enabled echoes before execution", func(t *testing.T) {
		t.Parallel()

		var trace bytes.Buffer
		r := &ExecRunner{Trace: true, TraceW: &trace}

		require.NoError(t, r.Run(context.Background(), shCmd("true")))

		assert.Equal(t, "+ sh -c true\n", trace.String(), "trace line must use the shell xtrace form")
	})

	t.Run("echoes even when the command fails to start", func(t *testing.T) {
		t.Parallel()

		var trace bytes.Buffer
		r := &ExecRunner{Trace: true, TraceW: &trace}

		err := r.Run(context.Background(), weatherline.Command{Name: "definitely-not-a-real-tool"})

		require.Error(t, err)
		assert.Equal(t, "+ definitely-not-a-real-tool\n", trace.String())
	})

	t.Run("disabled stays silent", func(t *testing.T) {
		t.Parallel()

		var trace bytes.Buffer
		r := &ExecRunner{Trace: false, TraceW: &trace}

		require.NoError(t, r.Run(context.Background(), shCmd("true")))

		assert.Empty(t, trace.String())
	})

	t.Run("falls back to Stderr when TraceW unset", func(t *testing.T) {
		t.Parallel()

		var stderr bytes.Buffer
		r := &ExecRunner{Trace: true, Stderr: &stderr}

		require.NoError(t, r.Run(context.Background(), shCmd("true")))

		assert.Contains(t, stderr.String(), "+ sh -c true\n")
	})
}

func TestExecRunner_LookPath(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{}

	path, err := r.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = r.LookPath("definitely-not-a-real-tool")
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	t.Run("nil is success", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, ExitCode(nil))
	})

	t.Run("child status passes through", func(t *testing.T) {
		t.Parallel()
		r := &ExecRunner{}
		err := r.Run(context.Background(), shCmd("exit 7"))
		assert.Equal(t, 7, ExitCode(err))
	})

	t.Run("unresolvable tool maps to 127", func(t *testing.T) {
		t.Parallel()
		r := &ExecRunner{}
		err := r.Run(context.Background(), weatherline.Command{Name: "definitely-not-a-real-tool"})
		assert.Equal(t, 127, ExitCode(err))
	})

	t.Run("wrapped not-found still maps to 127", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("resolving tool: %w", exec.ErrNotFound)
		assert.Equal(t, 127, ExitCode(err))
	})

	t.Run("anything else maps to 1", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1, ExitCode(errors.New("unexpected")))
	})
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cmd  weatherline.Command
		want string
	}{
		{"bare binary", weatherline.Command{Name: "python3"}, "python3"},
		{
			"binary with args",
			weatherline.Command{Name: "python3", Args: []string{"-m", "venv", "venv"}},
			"python3 -m venv venv",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cmd.String())
		})
	}
}
