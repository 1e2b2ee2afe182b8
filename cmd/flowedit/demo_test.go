package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, string) {
	t.Helper()
	color.NoColor = true
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String(), errOut.String()
}

func TestDemoSession(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "none.toml")
	out, _ := runRoot(t, "demo", "--no-color", "--config", cfg, "--cols", "50", "--rows", "22")

	assert.Contains(t, out, "6 nodes")
	assert.Contains(t, out, "rejected: jump source may only target a jump-target anchor")
	assert.Contains(t, out, "fetch jumps to notify, 5 links")
	assert.Contains(t, out, "selected start, fetch, check, retry, end, notify")
	assert.Contains(t, out, "nothing selected")
	assert.Contains(t, out, "envelope {40 20} -> {80 40}")
	assert.Contains(t, out, "now at {340 200}")
	assert.Contains(t, out, "5 -> 4 links")
	assert.Contains(t, out, "scale 1.6")
	assert.Contains(t, out, "check jumps to <nil>, 5 nodes")

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "%% sample workflow")
	assert.Contains(t, out, "┌")
}

func TestVersionFlag(t *testing.T) {
	out, _ := runRoot(t, "--version")
	assert.Equal(t, "flowedit dev\n", out)
}
