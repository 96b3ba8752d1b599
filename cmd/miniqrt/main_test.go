package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReportsArgError(t *testing.T) {
	assert.Equal(t, exitArgError, run([]string{"only-one-arg"}))
}

func TestRunReportsArgErrorOnMissingScript(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.bmp")
	assert.Equal(t, exitArgError, run([]string{filepath.Join(dir, "no-such-script.txt"), out}))
}

func TestRunReportsArgErrorOnMalformedScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "view.txt")
	require.NoError(t, os.WriteFile(script, []byte("not enough fields\n"), 0o644))
	out := filepath.Join(dir, "out.bmp")
	assert.Equal(t, exitArgError, run([]string{script, out}))
}

func TestRunWritesBMPOnSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("full-scene render is expensive; skipped under -short")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "view.txt")
	require.NoError(t, os.WriteFile(script, []byte("0 0 -30 0 0\n"), 0o644))
	out := filepath.Join(dir, "out.bmp")

	t.Chdir(dir)

	code := run([]string{script, out})
	require.Equal(t, exitOK, code)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(renderWidth*renderHeight*4/2))
}
