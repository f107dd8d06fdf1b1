package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"javasegment/internal/application/common/retry"
	"javasegment/internal/domain/service/segmentation"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Segmenter SegmenterConfig `mapstructure:"segmenter" yaml:"segmenter"`
	Report    ReportConfig    `mapstructure:"report"    yaml:"report"`
	Audit     AuditConfig     `mapstructure:"audit"     yaml:"audit"`
	NATS      NATSConfig      `mapstructure:"nats"      yaml:"nats"`
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"`
	Log       LogConfig       `mapstructure:"log"       yaml:"log"`
}

// APIConfig holds API server configuration.
type APIConfig struct {
	Host           string        `mapstructure:"host"             yaml:"host"`
	Port           string        `mapstructure:"port"             yaml:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	MaxSourceBytes int           `mapstructure:"max_source_bytes" yaml:"max_source_bytes"`
	EnableLogging  *bool         `mapstructure:"enable_logging"   yaml:"enable_logging"`
}

// Address returns host:port for the HTTP listener.
func (a APIConfig) Address() string {
	return a.Host + ":" + a.Port
}

// LoggingEnabled reports whether request logging middleware is installed. Defaults to true.
func (a APIConfig) LoggingEnabled() bool {
	return a.EnableLogging == nil || *a.EnableLogging
}

// SegmenterConfig tunes the segmentation engine.
type SegmenterConfig struct {
	ScanMode     string `mapstructure:"scan_mode"     yaml:"scan_mode"`
	SanitizeText bool   `mapstructure:"sanitize_text" yaml:"sanitize_text"`
	CacheSize    int    `mapstructure:"cache_size"    yaml:"cache_size"`
	Concurrency  int    `mapstructure:"concurrency"   yaml:"concurrency"`
}

// Options converts the section into segmentation options.
func (s SegmenterConfig) Options() (segmentation.Options, error) {
	mode, err := segmentation.ParseScanMode(s.ScanMode)
	if err != nil {
		return segmentation.Options{}, err
	}
	return segmentation.Options{ScanMode: mode, SanitizeText: s.SanitizeText}, nil
}

// ReportConfig holds report engine client configuration.
type ReportConfig struct {
	BaseURL      string        `mapstructure:"base_url"      yaml:"base_url"`
	Endpoint     string        `mapstructure:"endpoint"      yaml:"endpoint"`
	APIKey       string        `mapstructure:"api_key"       yaml:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"       yaml:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"   yaml:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"     yaml:"max_delay"`
	SendRawText  bool          `mapstructure:"send_raw_text" yaml:"send_raw_text"`
}

// Retry builds the retry policy for report engine calls.
func (r ReportConfig) Retry() *retry.RetryConfig {
	cfg := retry.DefaultRetryConfig()
	cfg.MaxRetries = r.MaxRetries
	if r.InitialDelay > 0 {
		cfg.InitialDelay = r.InitialDelay
	}
	if r.MaxDelay > 0 {
		cfg.MaxDelay = r.MaxDelay
	}
	return cfg
}

// AuditConfig holds audit log configuration.
type AuditConfig struct {
	Enabled        bool   `mapstructure:"enabled"          yaml:"enabled"`
	Dir            string `mapstructure:"dir"              yaml:"dir"`
	MaxBytes       int64  `mapstructure:"max_bytes"        yaml:"max_bytes"`
	MaxDataEntries int    `mapstructure:"max_data_entries" yaml:"max_data_entries"`
	Console        bool   `mapstructure:"console"          yaml:"console"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled"        yaml:"enabled"`
	URL           string        `mapstructure:"url"            yaml:"url"`
	Subject       string        `mapstructure:"subject"        yaml:"subject"`
	Stream        string        `mapstructure:"stream"         yaml:"stream"`
	MaxReconnects int           `mapstructure:"max_reconnects" yaml:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" yaml:"reconnect_wait"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"         yaml:"enabled"`
	Host           string `mapstructure:"host"            yaml:"host"`
	Port           int    `mapstructure:"port"            yaml:"port"`
	User           string `mapstructure:"user"            yaml:"user"`
	Password       string `mapstructure:"password"        yaml:"password"`
	Name           string `mapstructure:"name"            yaml:"name"`
	SSLMode        string `mapstructure:"sslmode"         yaml:"sslmode"`
	Schema         string `mapstructure:"schema"          yaml:"schema"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
}

// DSN returns the database connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.Schema)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// EnvPrefix is prepended to every environment override, e.g. JAVASEG_REPORT_BASE_URL.
const EnvPrefix = "JAVASEG"

// Legacy environment variables still honored for the audit log limits.
const (
	LegacyAuditMaxBytesEnv = "DB_AUDIT_LOG_MAX_BYTES"
	LegacyAuditMaxDataEnv  = "DB_AUDIT_LOG_MAX_DATA"
)

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.read_timeout", "30s")
	v.SetDefault("api.write_timeout", "10m")
	v.SetDefault("api.max_source_bytes", 2<<20)

	v.SetDefault("segmenter.scan_mode", string(segmentation.ScanModeLiteralAware))
	v.SetDefault("segmenter.sanitize_text", true)
	v.SetDefault("segmenter.cache_size", 256)
	v.SetDefault("segmenter.concurrency", 4)

	v.SetDefault("report.endpoint", "report")
	v.SetDefault("report.timeout", "2m")
	v.SetDefault("report.max_retries", 2)
	v.SetDefault("report.initial_delay", "500ms")
	v.SetDefault("report.max_delay", "10s")

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.dir", "logs/audit")
	v.SetDefault("audit.max_bytes", 1<<20)
	v.SetDefault("audit.max_data_entries", 50)
	v.SetDefault("audit.console", true)

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject", "segments.reported")
	v.SetDefault("nats.stream", "SEGMENTS")
	v.SetDefault("nats.max_reconnects", 5)
	v.SetDefault("nats.reconnect_wait", "2s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "javasegment")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// BindEnvironment enables JAVASEG_* overrides and the legacy audit variables.
func BindEnvironment(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("audit.max_bytes", EnvPrefix+"_AUDIT_MAX_BYTES", LegacyAuditMaxBytesEnv); err != nil {
		return err
	}
	return v.BindEnv("audit.max_data_entries", EnvPrefix+"_AUDIT_MAX_DATA_ENTRIES", LegacyAuditMaxDataEnv)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Segmenter.Options(); err != nil {
		return fmt.Errorf("segmenter.scan_mode: %w", err)
	}
	if c.Segmenter.Concurrency < 1 {
		return errors.New("segmenter.concurrency must be at least 1")
	}
	if c.Segmenter.CacheSize < 0 {
		return errors.New("segmenter.cache_size cannot be negative")
	}

	if c.Report.BaseURL != "" &&
		!strings.HasPrefix(c.Report.BaseURL, "http://") && !strings.HasPrefix(c.Report.BaseURL, "https://") {
		return errors.New("report.base_url must be an http or https URL")
	}
	if c.Report.MaxRetries < 0 {
		return errors.New("report.max_retries cannot be negative")
	}

	if c.Audit.Enabled {
		if c.Audit.MaxBytes <= 0 {
			return errors.New("audit.max_bytes must be positive")
		}
		if c.Audit.MaxDataEntries <= 0 {
			return errors.New("audit.max_data_entries must be positive")
		}
	}

	if c.NATS.Enabled {
		if !strings.HasPrefix(c.NATS.URL, "nats://") {
			return errors.New("nats.url must use the nats:// scheme")
		}
		if c.NATS.Subject == "" || c.NATS.Stream == "" {
			return errors.New("nats.subject and nats.stream are required")
		}
	}

	if c.Database.Enabled {
		if c.Database.User == "" {
			return errors.New("database.user is required")
		}
		if c.Database.Name == "" {
			return errors.New("database.name is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return errors.New("database.port must be between 1 and 65535")
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not supported", c.Log.Level)
	}
	return nil
}
