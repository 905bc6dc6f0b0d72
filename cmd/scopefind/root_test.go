package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/scopefind/internal/config"
)

type runRecorder struct {
	called bool
	cfg    config.Config
}

func (r *runRecorder) run(cfg config.Config) error {
	r.called = true
	r.cfg = cfg
	return nil
}

func execute(t *testing.T, args ...string) (*runRecorder, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	rec := &runRecorder{}
	cmd := newRootCmd(rec.run)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return rec, out.String(), err
}

func TestRunsWithDirectoryAndFlags(t *testing.T) {
	dir := t.TempDir()
	rec, _, err := execute(t, "--max-matches", "5", "--no-watch", dir)
	require.NoError(t, err)
	require.True(t, rec.called)

	assert.Equal(t, dir, rec.cfg.Root)
	assert.Equal(t, 5, rec.cfg.MaxMatches)
	assert.False(t, rec.cfg.Watch)
	assert.Equal(t, int64(2<<20), rec.cfg.MaxFileSize)
}

func TestNotADirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	rec, _, err := execute(t, missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrNotDirectory))
	assert.Equal(t, "not a directory: "+missing, err.Error())
	assert.False(t, rec.called)

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, _, err = execute(t, file)
	assert.True(t, errors.Is(err, config.ErrNotDirectory))
}

func TestVersion(t *testing.T) {
	rec, out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "scopefind "+version+"\n", out)
	assert.False(t, rec.called)
}

func TestDumpConfig(t *testing.T) {
	dir := t.TempDir()
	rec, out, err := execute(t, "--dump-config", "--max-matches", "7", dir)
	require.NoError(t, err)
	assert.False(t, rec.called)
	assert.Contains(t, out, "max_matches: 7")
	assert.Contains(t, out, "root: "+dir)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(t.TempDir(), "scopefind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_matches: 11\nsort: date\n"), 0o600))
	t.Setenv("SCOPEFIND_MAX_FILE_SIZE", "4096")

	rec, _, err := execute(t, "--config", path, dir)
	require.NoError(t, err)
	assert.Equal(t, 11, rec.cfg.MaxMatches)
	assert.Equal(t, int64(4096), rec.cfg.MaxFileSize)
	assert.Equal(t, "date", rec.cfg.Sort)

	// Flags win over the file.
	rec, _, err = execute(t, "--config", path, "--max-matches", "3", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.cfg.MaxMatches)
}

func TestTooManyArgs(t *testing.T) {
	_, _, err := execute(t, t.TempDir(), t.TempDir())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "accepts at most 1 arg"))
}
