package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	// Each sub-config should be non-zero
	assert.NotEqual(t, DescribeConfig{}, cfg.Describe)
	assert.NotEqual(t, BatchConfig{}, cfg.Batch)
	assert.NotEqual(t, ProvidersConfig{}, cfg.Providers)
	assert.NotEqual(t, LoaderConfig{}, cfg.Loader)
	assert.NotEqual(t, CacheConfig{}, cfg.Cache)
	assert.NotEqual(t, ServerConfig{}, cfg.Server)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
	assert.NotEmpty(t, cfg.Log.OutputPaths)
}

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

// --- Individual Default*Config functions ---

func TestDefaultDescribeConfig(t *testing.T) {
	cfg := DefaultDescribeConfig()
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "What's in this image?", cfg.Prompt)
	assert.Equal(t, 300, cfg.MaxTokens)
	assert.Empty(t, cfg.Model)
	assert.Empty(t, cfg.SystemPrompt)
}

func TestDefaultBatchConfig(t *testing.T) {
	cfg := DefaultBatchConfig()
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 20, cfg.MaxBatchSize)
	assert.Zero(t, cfg.RateLimitRPS)
}

func TestDefaultProvidersConfig(t *testing.T) {
	cfg := DefaultProvidersConfig()
	assert.Empty(t, cfg.OpenAI.APIKey)
	assert.Equal(t, 60*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "2024-07-01-preview", cfg.Azure.APIVersion)
	assert.Equal(t, 2, cfg.Claude.MaxRetries)
}

func TestDefaultLoaderConfig(t *testing.T) {
	cfg := DefaultLoaderConfig()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, int64(20<<20), cfg.MaxImageSize)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestDefaultCacheConfig(t *testing.T) {
	cfg := DefaultCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1000, cfg.LocalMaxSize)
	assert.Equal(t, 10*time.Minute, cfg.LocalTTL)
	assert.Equal(t, "visiondesc:", cfg.KeyPrefix)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, "visiondesc", cfg.MetricsNamespace)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.True(t, cfg.EnableCaller)
	assert.False(t, cfg.EnableStacktrace)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "visiondesc", cfg.ServiceName)
	assert.Equal(t, 0.1, cfg.SampleRate)
}
