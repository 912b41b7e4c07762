package check

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsFixedOrder(t *testing.T) {
	steps := Steps()
	require.Len(t, steps, 4)
	assert.True(t, strings.HasPrefix(steps[0].Command, "black "))
	assert.True(t, strings.HasPrefix(steps[1].Command, "mypy "))
	assert.True(t, strings.HasPrefix(steps[2].Command, "isort "))
	assert.True(t, strings.HasPrefix(steps[3].Command, "pylint "))
	for _, step := range steps {
		assert.Contains(t, step.Command, "*.py")
	}
}

func TestLintStepDisableList(t *testing.T) {
	lint := Steps()[3].Command
	for _, code := range []string{"C0114", "C0103", "W0611", "W0613", "R0913"} {
		assert.Contains(t, lint, code)
	}
	// Genuine correctness categories stay enabled.
	assert.NotContains(t, lint, "E1101")
	assert.NotContains(t, lint, "W0601")
}

func TestRunContinuesAfterFailures(t *testing.T) {
	out := &bytes.Buffer{}
	r := &Runner{Dir: t.TempDir(), Stdout: out, Stderr: out}

	steps := []Step{
		{Announce: "first", Command: "exit 2"},
		{Announce: "second", Command: "echo still running"},
		{Announce: "third", Command: "exit 0"},
	}
	code, err := r.run(context.Background(), steps)
	require.NoError(t, err)

	assert.Equal(t, 0, code, "exit code comes from the last step only")
	assert.Contains(t, out.String(), "first")
	assert.Contains(t, out.String(), "still running")
	assert.Contains(t, out.String(), "third")
}

func TestRunReturnsLastStepStatus(t *testing.T) {
	out := &bytes.Buffer{}
	r := &Runner{Dir: t.TempDir(), Stdout: out, Stderr: out}

	steps := []Step{
		{Announce: "ok", Command: "echo fine"},
		{Announce: "lint", Command: "exit 7"},
	}
	code, err := r.run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestRunExecutesInDir(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}
	r := &Runner{Dir: dir, Stdout: out, Stderr: out}

	steps := []Step{{Announce: "touch", Command: "echo done > marker.txt"}}
	code, err := r.run(context.Background(), steps)
	require.NoError(t, err)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(dir, "marker.txt"))
	require.NoError(t, err)
	assert.Equal(t, "done\n", string(data))
}

func TestRunMissingToolDoesNotAbort(t *testing.T) {
	out := &bytes.Buffer{}
	r := &Runner{Dir: t.TempDir(), Stdout: out, Stderr: out}

	steps := []Step{
		{Announce: "missing", Command: "definitely-not-a-real-tool-xyz"},
		{Announce: "after", Command: "echo reached"},
	}
	code, err := r.run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "reached")
}
