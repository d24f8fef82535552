package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when SIMEVAL_CONFIG is not set.
const DefaultPath = "configs/simeval.yaml"

// clockLayout is the time-of-day format of rule windows.
const clockLayout = "15:04:05"

// Config is the root configuration structure for the evaluation service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	API        APIConfig        `yaml:"api"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	TSDB       TSDBConfig       `yaml:"tsdb"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Rules      RulesConfig      `yaml:"rules"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// TSDBConfig contains VictoriaMetrics settings. Points are sent as line
// protocol to its /write endpoint.
type TSDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig contains Prometheus metric settings.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// EvaluationConfig locates pipeline inputs and outputs and holds the power
// model.
type EvaluationConfig struct {
	// TimelineFile is the JSON event log exported by the simulator.
	TimelineFile string `yaml:"timeline_file"`

	// ItineraryFile is an optional YAML waypoint table. When empty,
	// waypoints are derived from the timeline's Move events.
	ItineraryFile string `yaml:"itinerary_file"`

	// BuildingFile is the YAML building layout.
	BuildingFile string `yaml:"building_file"`

	// ReportDir receives Energy_evaluation_*.txt reports.
	ReportDir string `yaml:"report_dir"`

	// JitterMaxMS bounds the offset of synthesized occupancy messages.
	JitterMaxMS int `yaml:"jitter_max_ms"`

	// Seed fixes the jitter sequence. Zero draws a random sequence.
	Seed uint64 `yaml:"seed"`

	Profile ProfileConfig `yaml:"profile"`
}

// ProfileConfig is the power-draw profile.
type ProfileConfig struct {
	// Baseline is the yearly Wh draw of the two non-lighting device classes.
	Baseline []float64 `yaml:"baseline"`

	// Draw is Watts indexed by [category][state]; category 0 is sub-room,
	// 1 is room; states are On, Dim, Off.
	Draw [][]float64 `yaml:"draw"`
}

// RulesConfig controls the lighting rules applied before aggregation.
type RulesConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DimStart string `yaml:"dim_start"`
	DimEnd   string `yaml:"dim_end"`
}

// Path returns the configuration file path from SIMEVAL_CONFIG, or
// DefaultPath.
func Path() string {
	if v := os.Getenv("SIMEVAL_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SIMEVAL_SECTION_KEY
// For example: SIMEVAL_DATABASE_PATH, SIMEVAL_EVALUATION_REPORT_DIR
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Simulated office floor",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/simeval.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "simeval",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		TSDB: TSDBConfig{
			URL:           "http://localhost:8428",
			BatchSize:     1000,
			FlushInterval: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Namespace: "simeval",
		},
		Evaluation: EvaluationConfig{
			TimelineFile: "./data/events.json",
			BuildingFile: "configs/building.yaml",
			ReportDir:    "./reports",
			JitterMaxMS:  1000,
			Profile: ProfileConfig{
				Baseline: []float64{1, 1},
				Draw:     [][]float64{{45, 0, 0}, {40, 20, 0}},
			},
		},
		Rules: RulesConfig{
			Enabled:  true,
			DimStart: "06:30:00",
			DimEnd:   "17:59:59",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SIMEVAL_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("SIMEVAL_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("SIMEVAL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SIMEVAL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SIMEVAL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("SIMEVAL_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("SIMEVAL_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("SIMEVAL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// TSDB
	if v := os.Getenv("SIMEVAL_TSDB_URL"); v != "" {
		cfg.TSDB.URL = v
	}

	// Evaluation
	if v := os.Getenv("SIMEVAL_EVALUATION_TIMELINE_FILE"); v != "" {
		cfg.Evaluation.TimelineFile = v
	}
	if v := os.Getenv("SIMEVAL_EVALUATION_REPORT_DIR"); v != "" {
		cfg.Evaluation.ReportDir = v
	}

	// Logging
	if v := os.Getenv("SIMEVAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("site.timezone %q is not a known zone", c.Site.Timezone))
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	// TSDB validation
	if c.TSDB.Enabled && c.TSDB.URL == "" {
		errs = append(errs, "tsdb.url is required when tsdb is enabled")
	}

	// Evaluation validation
	if c.Evaluation.TimelineFile == "" {
		errs = append(errs, "evaluation.timeline_file is required")
	}
	if c.Evaluation.BuildingFile == "" {
		errs = append(errs, "evaluation.building_file is required")
	}
	if c.Evaluation.ReportDir == "" {
		errs = append(errs, "evaluation.report_dir is required")
	}
	if c.Evaluation.JitterMaxMS < 0 {
		errs = append(errs, "evaluation.jitter_max_ms must not be negative")
	}
	if len(c.Evaluation.Profile.Baseline) != 2 {
		errs = append(errs, "evaluation.profile.baseline must have 2 entries")
	}
	if len(c.Evaluation.Profile.Draw) != 2 {
		errs = append(errs, "evaluation.profile.draw must have 2 rows")
	} else {
		for i, row := range c.Evaluation.Profile.Draw {
			if len(row) != 3 {
				errs = append(errs, fmt.Sprintf("evaluation.profile.draw[%d] must have 3 entries", i))
			}
		}
	}

	// Rules validation
	if c.Rules.Enabled {
		if _, err := time.Parse(clockLayout, c.Rules.DimStart); err != nil {
			errs = append(errs, "rules.dim_start must be HH:MM:SS")
		}
		if _, err := time.Parse(clockLayout, c.Rules.DimEnd); err != nil {
			errs = append(errs, "rules.dim_end must be HH:MM:SS")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetJitterMax returns the synthesized-message jitter bound as a Duration.
func (c *Config) GetJitterMax() time.Duration {
	return time.Duration(c.Evaluation.JitterMaxMS) * time.Millisecond
}

// GetLocation returns the site timezone. Validate guarantees it loads.
func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
