package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labstruct.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("LABSTRUCT_ENGINE", "rows")

	path := writeConfig(t, `
engine: ${LABSTRUCT_ENGINE}
format: csv
concurrency: 3
max_file_size: 5MB
log:
  level: debug
detector:
  max_cell_gap: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "rows", cfg.Engine)
	require.Equal(t, "vendor", cfg.Layout)
	require.Equal(t, "csv", cfg.Format)
	require.Equal(t, Size(5<<20), cfg.MaxFileSize)
	require.Equal(t, "text", cfg.Log.Format)
	require.Equal(t, 2, cfg.Detector.MinRows)
	require.Equal(t, 8.0, cfg.Detector.MaxCellGap)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)

	opts := cfg.Options()
	require.Equal(t, "rows", opts.Engine)
	require.Equal(t, 3, opts.Concurrency)
	require.Equal(t, int64(5<<20), opts.MaxFileSize)
	require.Equal(t, 8.0, opts.Detection.MaxCellGap)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "engine: tabula\nocr: true\n"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []string{
		"format: pdf\n",
		"log:\n  level: loud\n",
		"log:\n  format: xml\n",
		"concurrency: -1\n",
		"max_file_size: lots\n",
	}
	for _, content := range tests {
		_, err := Load(writeConfig(t, content))
		require.Error(t, err, content)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected Size
	}{
		{"1048576", 1 << 20},
		{"10MB", 10 << 20},
		{"512 kb", 512 << 10},
		{"1GB", 1 << 30},
		{"20B", 20},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		require.NoError(t, err, tt.input)
		require.Equal(t, tt.expected, got, tt.input)
	}
}

func TestParseSizeInvalid(t *testing.T) {
	for _, input := range []string{"", "MB", "ten", "1.5GB", "9999999999GB", "9223372036854775807KB", "-9999999999GB"} {
		_, err := ParseSize(input)
		require.Error(t, err, input)
	}

	got, err := ParseSize("8589934591GB")
	require.NoError(t, err)
	require.Equal(t, Size(8589934591<<30), got)
}
