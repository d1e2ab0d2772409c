package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticHandler_ErrorLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewDiagnosticHandler(&buf, slog.LevelError))

	log.Error("update entry", ErrKey, errors.New("database is locked"))

	assert.Equal(t, "[error] update entry: database is locked\n", buf.String())
}

func TestDiagnosticHandler_DropsBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewDiagnosticHandler(&buf, slog.LevelError))

	log.Debug("reload page", "entries", 3)
	log.Info("key", "view", "list")

	assert.Empty(t, buf.String())
}

func TestDiagnosticHandler_NoErrAttr(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewDiagnosticHandler(&buf, slog.LevelDebug))

	log.Warn("stdin is not a terminal", "fd", 0)

	assert.Equal(t, "[warn] stdin is not a terminal\n", buf.String())
}

func TestDiagnosticHandler_WithAttrsCarriesErr(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewDiagnosticHandler(&buf, slog.LevelError)).With(ErrKey, "boom")

	log.Error("open database")

	assert.Equal(t, "[error] open database: boom\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelError},
		{"error", slog.LevelError},
		{"WARN", slog.LevelWarn},
		{"info", slog.LevelInfo},
		{" debug ", slog.LevelDebug},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNew_WritesLogFile(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "tday.log")

	log, closeFn, err := New(&stderr, slog.LevelError, path)
	require.NoError(t, err)

	log.Debug("reload page", "entries", 2)
	log.Error("delete entry", ErrKey, errors.New("no such table"))
	require.NoError(t, closeFn())

	assert.Equal(t, "[error] delete entry: no such table\n", stderr.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	for _, want := range []string{"level=DEBUG", "msg=\"reload page\"", "entries=2", "level=ERROR", "err=\"no such table\""} {
		assert.True(t, strings.Contains(out, want), "expected %q in log file:\n%s", want, out)
	}
}

func TestNew_WithoutLogFile(t *testing.T) {
	var stderr bytes.Buffer
	log, closeFn, err := New(&stderr, slog.LevelError, "")
	require.NoError(t, err)
	require.NoError(t, closeFn())

	log.Error("load page", ErrKey, "disk I/O error")
	assert.Equal(t, "[error] load page: disk I/O error\n", stderr.String())
}
