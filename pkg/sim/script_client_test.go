package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traffic.star")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScriptClientObserve(t *testing.T) {
	path := writeScript(t, `
def observe(tick):
    if tick % 2 == 0:
        return [3, 5]
    return []
`)
	logger := zerolog.Nop()
	client, err := NewScriptClient(path, &logger, RegionUS, 10, 1)
	require.NoError(t, err)

	reqs := client.Observe(0)
	require.Len(t, reqs, 2)
	assert.Equal(t, 3, reqs[0].ExecutionTime)
	assert.Equal(t, 5, reqs[1].ExecutionTime)
	assert.Equal(t, 0, reqs[0].StartTick)
	assert.Equal(t, 10, reqs[0].DeadlineTicks)

	assert.Empty(t, client.Observe(1))
}

func TestScriptClientRequiresObserveFunction(t *testing.T) {
	path := writeScript(t, `x = 1`)
	logger := zerolog.Nop()
	_, err := NewScriptClient(path, &logger, RegionUS, 0, 1)
	assert.ErrorContains(t, err, "observe")
}

func TestScriptClientRejectsNonFunctionObserve(t *testing.T) {
	path := writeScript(t, `observe = 42`)
	logger := zerolog.Nop()
	_, err := NewScriptClient(path, &logger, RegionUS, 0, 1)
	assert.ErrorContains(t, err, "not a function")
}

func TestScriptClientMissingFile(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewScriptClient(filepath.Join(t.TempDir(), "nope.star"), &logger, RegionUS, 0, 1)
	assert.Error(t, err)
}
