package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tday/internal/storage"
)

func keystrokes(t *testing.T, s string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(s), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestRun_QuitCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), options{configPath: configPath}, keystrokes(t, "q"), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr.String())
	assert.True(t, strings.HasSuffix(stdout.String(), "Quitting program...\n"))
	assert.FileExists(t, configPath)
	assert.FileExists(t, filepath.Join(dir, "tday.db"))
}

func TestRun_LockedDatabaseFails(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("db_path = \"todo.db\"\nbusy_timeout_ms = 50\n"), 0o644))

	holder, err := storage.Open(context.Background(), filepath.Join(dir, "todo.db"), storage.Options{})
	require.NoError(t, err)
	defer holder.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), options{configPath: configPath}, keystrokes(t, "q"), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr.String(), "[error] open database: "), stderr.String())
	assert.Contains(t, stderr.String(), "database is locked")
	assert.Equal(t, 1, strings.Count(stderr.String(), "\n"))
	assert.Equal(t, "Quitting program...\n", stdout.String())
}

func TestRun_BadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_level = \"loud\"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), options{configPath: configPath}, keystrokes(t, ""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Equal(t, "[error] load config: unknown log level \"loud\"\n", stderr.String())
	assert.Equal(t, "Quitting program...\n", stdout.String())
}

func TestSession_ShutdownOnce(t *testing.T) {
	var out bytes.Buffer
	s := &session{out: &out}
	s.shutdown()
	s.shutdown()
	assert.Equal(t, "Quitting program...\n", out.String())
}

func TestRun_DBFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "elsewhere", "today.db")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), options{configPath: filepath.Join(dir, "config.toml"), dbPath: dbPath}, keystrokes(t, "q"), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.FileExists(t, dbPath)
	assert.NoFileExists(t, filepath.Join(dir, "tday.db"))
}

func TestRootCmd_Flags(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	var stdout, stderr bytes.Buffer

	cmd := newRootCmd(keystrokes(t, "q"), &stdout, &stderr)
	cmd.SetArgs([]string{"--config", configPath})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, "tday.db"))

	cmd = newRootCmd(keystrokes(t, "q"), &stdout, &stderr)
	cmd.SetArgs([]string{"--config", configPath, "extra"})
	assert.Error(t, cmd.Execute())
}

func TestRootCmd_FailureIsReported(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_level = \"loud\"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(keystrokes(t, ""), &stdout, &stderr)
	cmd.SetArgs([]string{"--config", configPath})

	assert.ErrorIs(t, cmd.Execute(), errReported)
}
