package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application paths
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string
}

// ResolvePaths resolves the configured directories against BaseDir. An
// empty BaseDir means the current working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}

	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(c.Paths.DataDir),
		ReportsDir: resolve(c.Paths.ReportsDir),
		LogsDir:    resolve(c.Paths.LogsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetDataPath returns the path for an input data file
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// ResolveInput returns in unchanged when it exists or is absolute;
// otherwise a relative name found under DataDir resolves there.
func (p *Paths) ResolveInput(in string) string {
	if in == "" || filepath.IsAbs(in) || FileExists(in) {
		return in
	}
	if candidate := p.GetDataPath(in); FileExists(candidate) {
		return candidate
	}
	return in
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogValue implements slog.LogValuer
func (p *Paths) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base", p.BaseDir),
		slog.String("data", p.DataDir),
		slog.String("reports", p.ReportsDir),
		slog.String("logs", p.LogsDir),
	)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
