package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.LogsDir = abs

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "data", "reports"), paths.ReportsDir)
	assert.Equal(t, abs, paths.LogsDir)
	assert.Equal(t, filepath.Join(base, "data", "reports", DeliveriesCSV), paths.GetReportPath(DeliveriesCSV))
	assert.Equal(t, filepath.Join(base, "data", "bookings.csv"), paths.GetDataPath("bookings.csv"))
}

func TestPaths_EnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = t.TempDir()

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.True(t, FileExists(paths.ReportsDir))
	assert.False(t, FileExists(paths.GetReportPath("missing.csv")))
}

func TestPaths_ResolveInput(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = t.TempDir()

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	require.NoError(t, os.WriteFile(paths.GetDataPath("bookings.csv"), []byte("id\n"), 0o644))

	abs := filepath.Join(t.TempDir(), "events.csv")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "found in data dir", in: "bookings.csv", want: paths.GetDataPath("bookings.csv")},
		{name: "absolute kept", in: abs, want: abs},
		{name: "unknown kept", in: "nowhere.csv", want: "nowhere.csv"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paths.ResolveInput(tt.in))
		})
	}
}
