package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "opsanalytics/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, PolicyFail, cfg.Occupancy.Policy)
	assert.Equal(t, []string{"GNR"}, cfg.Picking.ExcludedPickTypes)
	assert.Equal(t, "15:04:05", cfg.Picking.EventTimeLayout)
	assert.NoError(t, cfg.validate())
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "defaults without file",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
occupancy:
  policy: collect
  workers: 4
picking:
  excluded_pick_types: [GNR, RET]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, PolicyCollect, cfg.Occupancy.Policy)
				assert.Equal(t, 4, cfg.Occupancy.Workers)
				assert.Equal(t, []string{"GNR", "RET"}, cfg.Picking.ExcludedPickTypes)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"OPSA_SERVER_PORT":                 "7070",
				"OPSA_OCCUPANCY_POLICY":            "skip",
				"OPSA_PICKING_EXCLUDED_PICK_TYPES": "GNR,NAG",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, PolicySkip, cfg.Occupancy.Policy)
				assert.Equal(t, []string{"GNR", "NAG"}, cfg.Picking.ExcludedPickTypes)
			},
		},
		{
			name:    "unknown policy",
			env:     map[string]string{"OPSA_OCCUPANCY_POLICY": "ignore"},
			wantErr: "unknown occupancy policy",
		},
		{
			name:    "invalid port",
			file:    "server:\n  port: 70000\n",
			wantErr: "invalid server port",
		},
		{
			name:    "bad sample ratio",
			env:     map[string]string{"OPSA_TELEMETRY_SAMPLE_RATIO": "1.5"},
			wantErr: "sample ratio",
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var appErr *apperrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate_NormalisesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "logfmt"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)

	cfg.Logging.Format = "TEXT"
	cfg.Logging.Output = "stderr"
	require.NoError(t, cfg.validate())
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}
