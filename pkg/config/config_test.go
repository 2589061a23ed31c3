package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars clears all markpro-related environment variables.
func clearEnvVars() {
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"MARKPRO_DATA_DIR", "MARKPRO_STORAGE", "MARKPRO_STORAGE_PATH", "MARKPRO_NAMESPACE",
		"REDIS_URL", "DATABASE_URL",
		"MARKPRO_EVENTS", "RABBITMQ_URL", "MARKPRO_EVENTS_EXCHANGE",
		"VERIFIER_MODE", "LICENSE_SERVER_URL", "LICENSE_PRODUCT_PERMALINK", "LICENSE_SERVER_TOKEN",
		"VERIFY_TIMEOUT", "VERIFY_BREAKER_FAILURES", "VERIFY_BREAKER_TIMEOUT",
		"API_ADDR", "MCP_ADDR", "MCP_AUTH_TOKEN", "UPGRADE_URL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	assert.Equal(t, StorageFile, cfg.Storage)
	assert.Equal(t, "markpro", cfg.Namespace)
	assert.Equal(t, ".markpro", filepath.Base(cfg.DataDir))

	assert.Equal(t, EventsNoop, cfg.Events)

	assert.Equal(t, VerifierStub, cfg.VerifierMode)
	assert.Equal(t, "https://api.gumroad.com", cfg.LicenseServerURL)
	assert.Equal(t, "markdown-pro", cfg.LicenseProductPermalink)
	assert.Empty(t, cfg.LicenseServerToken)
	assert.Equal(t, 5*time.Second, cfg.VerifyTimeout)
	assert.Equal(t, 5, cfg.VerifyBreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.VerifyBreakerTimeout)

	assert.Equal(t, "0.0.0.0:8080", cfg.APIAddr)
	assert.Equal(t, "0.0.0.0:8082", cfg.MCPAddr)
	assert.Equal(t, "https://gumroad.com/l/markdown-pro", cfg.UpgradeURL)
}

func TestLoad_WithCustomEnvVars(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	os.Setenv("APP_ENV", "production")
	os.Setenv("MARKPRO_STORAGE", "redis")
	os.Setenv("REDIS_URL", "redis://cache:6379/2")
	os.Setenv("MARKPRO_EVENTS", "rabbitmq")
	os.Setenv("VERIFIER_MODE", "remote")
	os.Setenv("LICENSE_SERVER_TOKEN", "secret")
	os.Setenv("VERIFY_TIMEOUT", "1500ms")
	os.Setenv("VERIFY_BREAKER_FAILURES", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, EventsRabbitMQ, cfg.Events)
	assert.Equal(t, VerifierRemote, cfg.VerifierMode)
	assert.Equal(t, "secret", cfg.LicenseServerToken)
	assert.Equal(t, 1500*time.Millisecond, cfg.VerifyTimeout)
	assert.Equal(t, 3, cfg.VerifyBreakerFailures)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	os.Setenv("VERIFY_TIMEOUT", "soon")
	os.Setenv("VERIFY_BREAKER_FAILURES", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.VerifyTimeout)
	assert.Equal(t, 5, cfg.VerifyBreakerFailures)
}

func TestLoad_InProcessEvents(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	os.Setenv("MARKPRO_EVENTS", "inprocess")
	os.Setenv("MARKPRO_EVENTS_EXCHANGE", "custom.events")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EventsInProcess, cfg.Events)
	assert.Equal(t, "custom.events", cfg.EventsExchange)
}

func TestLoad_RejectsUnknownModes(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MARKPRO_STORAGE", "s3"},
		{"MARKPRO_EVENTS", "kafka"},
		{"VERIFIER_MODE", "oracle"},
		{"VERIFY_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnvVars()
			defer clearEnvVars()
			os.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_SlotStorePath(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{"file default", Config{Storage: StorageFile, DataDir: "/data"}, filepath.Join("/data", "slots.json")},
		{"sqlite default", Config{Storage: StorageSQLite, DataDir: "/data"}, filepath.Join("/data", "markpro.db")},
		{"explicit path", Config{Storage: StorageSQLite, DataDir: "/data", StoragePath: "/tmp/x.db"}, "/tmp/x.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.SlotStorePath())
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		appEnv   string
		expected bool
	}{
		{"development", true},
		{"production", false},
		{"test", false},
	}

	for _, tt := range tests {
		t.Run(tt.appEnv, func(t *testing.T) {
			cfg := &Config{AppEnv: tt.appEnv}
			assert.Equal(t, tt.expected, cfg.IsDevelopment())
			assert.Equal(t, tt.appEnv == "production", cfg.IsProduction())
		})
	}
}
