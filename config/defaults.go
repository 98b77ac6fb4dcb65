// =============================================================================
// 📦 visiondesc 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/batch"
	"github.com/BaSui01/visiondesc/llm/multimodal"
	"github.com/BaSui01/visiondesc/llm/providers"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Describe:  DefaultDescribeConfig(),
		Batch:     DefaultBatchConfig(),
		Providers: DefaultProvidersConfig(),
		Loader:    DefaultLoaderConfig(),
		Cache:     DefaultCacheConfig(),
		Server:    DefaultServerConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultDescribeConfig 返回默认描述参数
func DefaultDescribeConfig() DescribeConfig {
	return DescribeConfig{
		Provider:  "openai",
		Prompt:    llm.DefaultPrompt,
		MaxTokens: llm.DefaultMaxTokens,
	}
}

// DefaultBatchConfig 返回默认批量配置
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Concurrency:    batch.DefaultConcurrency,
		MaxBatchSize:   batch.DefaultMaxBatchSize,
		RateLimitRPS:   0,
		RateLimitBurst: 1,
	}
}

// DefaultProvidersConfig 返回默认服务商配置（凭证为空）
func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		OpenAI: OpenAIConfig{
			Timeout:    providers.DefaultTimeout,
			MaxRetries: 2,
		},
		Azure: AzureConfig{
			APIVersion: providers.DefaultAzureAPIVersion,
			Timeout:    providers.DefaultTimeout,
			MaxRetries: 2,
		},
		Claude: ClaudeConfig{
			Timeout:    providers.DefaultTimeout,
			MaxRetries: 2,
		},
	}
}

// DefaultLoaderConfig 返回默认图片加载配置
func DefaultLoaderConfig() LoaderConfig {
	d := multimodal.DefaultLoaderConfig()
	return LoaderConfig{
		Timeout:      d.Timeout,
		MaxImageSize: d.MaxImageSize,
		UserAgent:    d.UserAgent,
	}
}

// DefaultCacheConfig 返回默认缓存配置（关闭）
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      false,
		LocalMaxSize: 1000,
		LocalTTL:     10 * time.Minute,
		KeyPrefix:    "visiondesc:",
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			TTL:      24 * time.Hour,
		},
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:         8080,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     5 * time.Minute,
		IdleTimeout:      2 * time.Minute,
		ShutdownTimeout:  15 * time.Second,
		MaxBodyBytes:     1 << 20,
		MetricsNamespace: "visiondesc",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		Insecure:     true,
		ServiceName:  "visiondesc",
		SampleRate:   0.1,
	}
}
