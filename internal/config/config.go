package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "opsanalytics/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. OPSA_SERVER_PORT.
const EnvPrefix = "OPSA"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Occupancy OccupancyConfig `yaml:"occupancy" envconfig:"OCCUPANCY"`
	Picking   PickingConfig   `yaml:"picking" envconfig:"PICKING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration. Relative
// directories are resolved against BaseDir.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// OccupancyConfig configures booking expansion.
type OccupancyConfig struct {
	Policy            string   `yaml:"policy" envconfig:"POLICY"`
	Workers           int      `yaml:"workers" envconfig:"WORKERS"`
	ParallelThreshold int      `yaml:"parallel_threshold" envconfig:"PARALLEL_THRESHOLD"`
	IDColumn          string   `yaml:"id_column" envconfig:"ID_COLUMN"`
	StartColumn       string   `yaml:"start_column" envconfig:"START_COLUMN"`
	EndColumn         string   `yaml:"end_column" envconfig:"END_COLUMN"`
	TimeLayouts       []string `yaml:"time_layouts" envconfig:"TIME_LAYOUTS"`
}

// PickingConfig configures order cleaning and aggregation.
type PickingConfig struct {
	ExcludedPickTypes []string `yaml:"excluded_pick_types" envconfig:"EXCLUDED_PICK_TYPES"`
	EventTimeLayout   string   `yaml:"event_time_layout" envconfig:"EVENT_TIME_LAYOUT"`
	WriteWorkbook     bool     `yaml:"write_workbook" envconfig:"WRITE_WORKBOOK"`
}

// TelemetryConfig controls tracing and metrics.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, the first config file
// found and OPSA_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	path := os.Getenv(EnvPrefix + "_CONFIG")
	if path == "" {
		path = getConfigFilePath()
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file. An empty path skips
// the file layer.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("file", path)
		}
	}

	// Fields without a set variable are left untouched, so env only
	// overrides what it names.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	switch strings.ToLower(c.Occupancy.Policy) {
	case PolicyFail, PolicyCollect, PolicySkip:
	default:
		return fmt.Errorf("unknown occupancy policy %q", c.Occupancy.Policy)
	}

	if c.Occupancy.Workers < 0 {
		return fmt.Errorf("occupancy workers must not be negative")
	}

	if c.Occupancy.StartColumn == "" || c.Occupancy.EndColumn == "" {
		return fmt.Errorf("occupancy start and end columns are required")
	}

	if len(c.Occupancy.TimeLayouts) == 0 {
		return fmt.Errorf("at least one occupancy time layout is required")
	}

	if c.Picking.EventTimeLayout == "" {
		return fmt.Errorf("picking event time layout is required")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0,1]")
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "stderr", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ReportsDir: DefaultReportsDir,
			LogsDir:    DefaultLogsDir,
		},
		Occupancy: OccupancyConfig{
			Policy:            PolicyFail,
			ParallelThreshold: DefaultParallelThreshold,
			IDColumn:          DefaultIDColumn,
			StartColumn:       DefaultStartColumn,
			EndColumn:         DefaultEndColumn,
			TimeLayouts:       DefaultTimeLayouts(),
		},
		Picking: PickingConfig{
			ExcludedPickTypes: []string{"GNR"},
			EventTimeLayout:   EventTimeLayout,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			SampleRatio:    1,
			MetricsEnabled: true,
		},
	}
}
