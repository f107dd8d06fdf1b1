package config

import (
	"bytes"
	"testing"
	"time"

	"javasegment/internal/domain/service/segmentation"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindEnvironment(v))
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.API.Address())
	assert.True(t, cfg.API.LoggingEnabled())
	assert.Equal(t, "literal_aware", cfg.Segmenter.ScanMode)
	assert.True(t, cfg.Segmenter.SanitizeText)
	assert.Equal(t, 4, cfg.Segmenter.Concurrency)
	assert.Equal(t, int64(1<<20), cfg.Audit.MaxBytes)
	assert.Equal(t, 50, cfg.Audit.MaxDataEntries)
	assert.Equal(t, "segments.reported", cfg.NATS.Subject)
	assert.Equal(t, "SEGMENTS", cfg.NATS.Stream)
	assert.False(t, cfg.NATS.Enabled)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Report.Timeout)

	opts, err := cfg.Segmenter.Options()
	require.NoError(t, err)
	assert.Equal(t, segmentation.DefaultOptions(), opts)
}

func TestLoad_YAML(t *testing.T) {
	v := newViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
segmenter:
  scan_mode: raw
  sanitize_text: false
report:
  base_url: https://reports.internal
  api_key: secret
  max_retries: 4
audit:
  max_bytes: 2048
log:
  level: debug
`)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "raw", cfg.Segmenter.ScanMode)
	assert.False(t, cfg.Segmenter.SanitizeText)
	assert.Equal(t, "https://reports.internal", cfg.Report.BaseURL)
	assert.Equal(t, 4, cfg.Report.Retry().MaxRetries)
	assert.Equal(t, int64(2048), cfg.Audit.MaxBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestBindEnvironment(t *testing.T) {
	t.Run("prefixed variables", func(t *testing.T) {
		t.Setenv("JAVASEG_SEGMENTER_SCAN_MODE", "raw")
		t.Setenv("JAVASEG_REPORT_BASE_URL", "http://localhost:9000")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)

		assert.Equal(t, "raw", cfg.Segmenter.ScanMode)
		assert.Equal(t, "http://localhost:9000", cfg.Report.BaseURL)
	})

	t.Run("legacy audit variables", func(t *testing.T) {
		t.Setenv(LegacyAuditMaxBytesEnv, "4096")
		t.Setenv(LegacyAuditMaxDataEnv, "10")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)

		assert.Equal(t, int64(4096), cfg.Audit.MaxBytes)
		assert.Equal(t, 10, cfg.Audit.MaxDataEntries)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load(newViper(t))
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{"unknown scan mode", func(c *Config) { c.Segmenter.ScanMode = "ast" }, "segmenter.scan_mode"},
		{"zero concurrency", func(c *Config) { c.Segmenter.Concurrency = 0 }, "segmenter.concurrency"},
		{"bad report url", func(c *Config) { c.Report.BaseURL = "ftp://x" }, "report.base_url"},
		{"negative retries", func(c *Config) { c.Report.MaxRetries = -1 }, "report.max_retries"},
		{"audit max bytes", func(c *Config) { c.Audit.MaxBytes = 0 }, "audit.max_bytes"},
		{"nats scheme", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "http://x" }, "nats.url"},
		{"database user", func(c *Config) { c.Database.Enabled = true }, "database.user"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}

	t.Run("disabled sections are not checked", func(t *testing.T) {
		cfg := valid()
		cfg.Audit.Enabled = false
		cfg.Audit.MaxBytes = 0
		cfg.Database.User = ""

		assert.NoError(t, cfg.Validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", Schema: "public"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable search_path=public", d.DSN())
}
