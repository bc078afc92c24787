package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsanalytics/internal/config"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietConfig(t *testing.T) string {
	return writeTemp(t, "config.yaml", "logging:\n  level: error\n")
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o *options)
	}{
		{
			name:    "missing input",
			args:    []string{"-policy", "skip"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-in", "x.csv", "-bogus"},
			wantErr: true,
		},
		{
			name: "all flags",
			args: []string{"-in", "b.csv", "-out", "o.csv", "-policy", "collect", "-workers", "4",
				"-start-col", "checkin", "-end-col", "checkout", "-id-col", "ref"},
			check: func(t *testing.T, o *options) {
				cfg := config.Default()
				o.apply(cfg)
				assert.Equal(t, "collect", cfg.Occupancy.Policy)
				assert.Equal(t, 4, cfg.Occupancy.Workers)
				assert.Equal(t, "checkin", cfg.Occupancy.StartColumn)
				assert.Equal(t, "checkout", cfg.Occupancy.EndColumn)
				assert.Equal(t, "ref", cfg.Occupancy.IDColumn)
			},
		},
		{
			name: "unset flags keep config",
			args: []string{"-in", "b.csv"},
			check: func(t *testing.T, o *options) {
				cfg := config.Default()
				o.apply(cfg)
				assert.Equal(t, config.PolicyFail, cfg.Occupancy.Policy)
				assert.Equal(t, config.DefaultStartColumn, cfg.Occupancy.StartColumn)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func TestRun(t *testing.T) {
	in := writeTemp(t, "bookings.csv", "ref,checkin,checkout\n"+
		"b1,2024-03-01,2024-03-03\n"+
		"b2,2024-03-09,2024-03-08\n")
	out := filepath.Join(t.TempDir(), "occupancy.csv")

	err := run(context.Background(), []string{
		"-in", in, "-out", out, "-policy", "collect",
		"-id-col", "ref", "-start-col", "checkin", "-end-col", "checkout",
		"-config", quietConfig(t),
	}, io.Discard)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, config.DateOccupiedColumn, records[0][len(records[0])-1])
	assert.Equal(t, "2024-03-03", records[3][len(records[3])-1])
}

func TestRunFailsOnInvalidBooking(t *testing.T) {
	in := writeTemp(t, "bookings.csv", "id,started_at,closed_at\nb1,2024-03-09,2024-03-08\n")
	out := filepath.Join(t.TempDir(), "occupancy.csv")

	err := run(context.Background(), []string{"-in", in, "-out", out, "-config", quietConfig(t)}, io.Discard)
	assert.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestRunDirectory(t *testing.T) {
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.csv"), []byte("id,started_at,closed_at\na1,2024-05-01,2024-05-02\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b.csv"), []byte("id,started_at,closed_at\nb1,2024-05-01,2024-05-01\n"), 0o644))
	outDir := filepath.Join(t.TempDir(), "out")

	err := run(context.Background(), []string{"-in", inDir, "-out", outDir, "-config", quietConfig(t)}, io.Discard)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "a.occupancy.csv"))
	assert.FileExists(t, filepath.Join(outDir, "b.occupancy.csv"))
}

func TestRunResolvesInputFromDataDir(t *testing.T) {
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "stays.csv"),
		[]byte("id,started_at,closed_at\ns1,2024-06-01,2024-06-03\n"), 0o644))

	cfgPath := writeTemp(t, "config.yaml", "logging:\n  level: error\npaths:\n  base_dir: "+base+"\n")
	out := filepath.Join(t.TempDir(), "occupancy.csv")

	err := run(context.Background(), []string{"-in", "stays.csv", "-out", out, "-config", cfgPath}, io.Discard)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-06-03")
}
