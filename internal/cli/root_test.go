package cli

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

// runCLI executes the command tree with args and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--no-color"))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestForever(t *testing.T) {
	out, err := runCLI(t, "", "forever", "--until", "10", "--speed", "limp", "--seed", "1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}, lines[:10])
	assert.Contains(t, lines[10], "10 steps")
}

func TestRepeat(t *testing.T) {
	out, err := runCLI(t, "", "repeat", "begin=0,end=30,step=5")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "0\n5\n10\n15\n20\n25 (last)\n"), out)
	assert.Contains(t, out, "6 steps")
}

func TestRepeat_DegenerateRange(t *testing.T) {
	out, err := runCLI(t, "", "repeat", "0:10:0")
	require.NoError(t, err)
	assert.Contains(t, out, "0 steps")
}

func TestForEach_Stdin(t *testing.T) {
	doc := `{"users":[{"name":"ann"},{"name":"bob"}]}`
	out, err := runCLI(t, doc, "foreach", "--path", "$.users")
	require.NoError(t, err)

	assert.Contains(t, out, `0: {"name":"ann"}`)
	assert.Contains(t, out, `1: {"name":"bob"}`)
}

func TestForEach_FileObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"b":1,"a":2}`), 0o644))

	out, err := runCLI(t, "", "foreach", path, "--speed", "fast")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "b: 1\na: 2\n"), out)
	assert.NotContains(t, out, "(last)")
}

func TestForEach_InvalidJSON(t *testing.T) {
	_, err := runCLI(t, "{", "foreach")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	out, err := runCLI(t, "", "forever", "--until", "5", "--report", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"bursts"`)
	assert.Contains(t, out, `"steps": 5`)
}

func TestSpeeds(t *testing.T) {
	out, err := runCLI(t, "", "speeds", "--speed", "rapid")
	require.NoError(t, err)

	assert.Contains(t, out, "*rapid")
	assert.Contains(t, out, "defensive")
	assert.Contains(t, out, "throughput")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazyiter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("speed: turbo\nspeeds:\n  turbo: 120\n"), 0o644))

	out, err := runCLI(t, "", "speeds", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "*turbo")

	// Flags override the file.
	out, err = runCLI(t, "", "speeds", "--config", path, "--speed", "slow")
	require.NoError(t, err)
	assert.Contains(t, out, "*slow")
	assert.NotContains(t, out, "*turbo")
}

func TestConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazyiter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("speed: warp\n"), 0o644))

	_, err := runCLI(t, "", "speeds", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown speed")
}

func TestInvalidFlags(t *testing.T) {
	_, err := runCLI(t, "", "forever", "--rest", "0s")
	assert.Error(t, err)

	_, err = runCLI(t, "", "forever", "--until", "-1")
	assert.Error(t, err)

	_, err = runCLI(t, "", "forever", "--format", "junit")
	assert.Error(t, err)
}
