// =============================================================================
// 📦 visiondesc 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + .env 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvFile(".env").
//	    WithEnvPrefix("VISIONDESC").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → .env 文件 → 环境变量
// =============================================================================
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/BaSui01/visiondesc/llm/providers"
)

// DefaultEnvPrefix 环境变量前缀
const DefaultEnvPrefix = "VISIONDESC"

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 visiondesc 的完整配置结构
type Config struct {
	// Describe 单张描述的默认参数
	Describe DescribeConfig `yaml:"describe" env:"DESCRIBE"`

	// Batch 批量执行配置
	Batch BatchConfig `yaml:"batch" env:"BATCH"`

	// Providers 各服务商配置
	Providers ProvidersConfig `yaml:"providers" env:"PROVIDERS"`

	// Loader 图片加载配置
	Loader LoaderConfig `yaml:"loader" env:"LOADER"`

	// Cache 描述缓存配置
	Cache CacheConfig `yaml:"cache" env:"CACHE"`

	// Server HTTP 服务配置
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// DescribeConfig 描述请求默认值
type DescribeConfig struct {
	// 默认 Provider: openai, azure, claude
	Provider string `yaml:"provider" env:"PROVIDER"`
	// 提示词
	Prompt string `yaml:"prompt" env:"PROMPT"`
	// 最大 Token 数
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// 模型（为空时使用 Provider 默认模型）
	Model string `yaml:"model" env:"MODEL"`
	// 系统提示词
	SystemPrompt string `yaml:"system_prompt" env:"SYSTEM_PROMPT"`
}

// BatchConfig 批量执行配置
type BatchConfig struct {
	// 默认并发数
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
	// 单批上限
	MaxBatchSize int `yaml:"max_batch_size" env:"MAX_BATCH_SIZE"`
	// Provider 调用限速（每秒请求数，0 表示不限速）
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// 限速突发量
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// ProvidersConfig 服务商配置
type ProvidersConfig struct {
	OpenAI OpenAIConfig `yaml:"openai" env:"OPENAI"`
	Azure  AzureConfig  `yaml:"azure" env:"AZURE"`
	Claude ClaudeConfig `yaml:"claude" env:"CLAUDE"`
}

// OpenAIConfig OpenAI 配置
type OpenAIConfig struct {
	APIKey       string        `yaml:"api_key" env:"API_KEY"`
	BaseURL      string        `yaml:"base_url" env:"BASE_URL"`
	Model        string        `yaml:"model" env:"MODEL"`
	Organization string        `yaml:"organization" env:"ORGANIZATION"`
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// SDK 传输层重试次数
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
}

// AzureConfig Azure OpenAI 配置
type AzureConfig struct {
	APIKey         string        `yaml:"api_key" env:"API_KEY"`
	Endpoint       string        `yaml:"endpoint" env:"ENDPOINT"`
	DeploymentName string        `yaml:"deployment_name" env:"DEPLOYMENT_NAME"`
	APIVersion     string        `yaml:"api_version" env:"API_VERSION"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries     int           `yaml:"max_retries" env:"MAX_RETRIES"`
}

// ClaudeConfig Anthropic Claude 配置
type ClaudeConfig struct {
	APIKey     string        `yaml:"api_key" env:"API_KEY"`
	BaseURL    string        `yaml:"base_url" env:"BASE_URL"`
	Model      string        `yaml:"model" env:"MODEL"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries int           `yaml:"max_retries" env:"MAX_RETRIES"`
}

// LoaderConfig 图片加载配置
type LoaderConfig struct {
	// 下载超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 单张图片最大字节数
	MaxImageSize int64 `yaml:"max_image_size" env:"MAX_IMAGE_SIZE"`
	// 下载时使用的 User-Agent
	UserAgent string `yaml:"user_agent" env:"USER_AGENT"`
	// 拒绝本地文件路径，serve 命令总是开启
	DisableLocalFiles bool `yaml:"disable_local_files" env:"DISABLE_LOCAL_FILES"`
}

// CacheConfig 描述缓存配置
type CacheConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 本地 LRU 容量
	LocalMaxSize int `yaml:"local_max_size" env:"LOCAL_MAX_SIZE"`
	// 本地过期时间
	LocalTTL time.Duration `yaml:"local_ttl" env:"LOCAL_TTL"`
	// 键前缀
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
	// Redis 二级缓存
	Redis RedisConfig `yaml:"redis" env:"REDIS"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 是否启用 Redis 二级缓存
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 连接池大小
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// 过期时间
	TTL time.Duration `yaml:"ttl" env:"TTL"`
	// 是否启用 TLS
	TLSEnabled bool `yaml:"tls_enabled" env:"TLS_ENABLED"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTP 端口
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// 写入超时（需覆盖最慢的批量请求）
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// 空闲连接超时
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	// 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// 请求体上限（字节）
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	// Prometheus 指标命名空间
	MetricsNamespace string `yaml:"metrics_namespace" env:"METRICS_NAMESPACE"`
	// TLS 证书与私钥，同时设置时以 HTTPS 监听
	TLSCertFile string `yaml:"tls_cert_file" env:"TLS_CERT_FILE"`
	TLSKeyFile  string `yaml:"tls_key_file" env:"TLS_KEY_FILE"`
}

// TLSEnabled 证书与私钥均已配置
func (c ServerConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 是否使用明文 gRPC
	Insecure bool `yaml:"insecure" env:"INSECURE"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envFile    string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  DefaultEnvPrefix,
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvFile 设置 .env 文件路径，文件中的变量不覆盖已存在的环境变量
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → .env 文件 → 环境变量 → 约定凭证变量回退
func (l *Loader) Load() (*Config, error) {
	// 1. 从默认值开始
	cfg := DefaultConfig()

	// 2. 如果指定了配置文件，从文件加载
	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// 3. 把 .env 写入进程环境
	if l.envFile != "" {
		if err := l.loadEnvFile(); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	// 4. 从环境变量覆盖
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// 5. OPENAI_API_KEY 等约定变量补全缺失凭证
	cfg.Providers.applyCredentialFallbacks()

	// 6. 运行验证器
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadEnvFile 加载 .env 文件，文件不存在时忽略
func (l *Loader) loadEnvFile() error {
	if _, err := os.Stat(l.envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(l.envFile)
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// 获取 env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		// 如果是结构体，递归处理
		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		// 获取环境变量值
		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		// 设置字段值
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// applyCredentialFallbacks 用服务商约定的环境变量补全缺失字段
func (p *ProvidersConfig) applyCredentialFallbacks() {
	oc := providers.OpenAIConfig{BaseProviderConfig: providers.BaseProviderConfig{APIKey: p.OpenAI.APIKey}}.WithEnvFallback()
	p.OpenAI.APIKey = oc.APIKey

	ac := providers.AzureOpenAIConfig{
		APIKey:         p.Azure.APIKey,
		Endpoint:       p.Azure.Endpoint,
		DeploymentName: p.Azure.DeploymentName,
		APIVersion:     p.Azure.APIVersion,
	}.WithEnvFallback()
	p.Azure.APIKey = ac.APIKey
	p.Azure.Endpoint = ac.Endpoint
	p.Azure.DeploymentName = ac.DeploymentName
	p.Azure.APIVersion = ac.APIVersion

	cc := providers.ClaudeConfig{BaseProviderConfig: providers.BaseProviderConfig{APIKey: p.Claude.APIKey}}.WithEnvFallback()
	p.Claude.APIKey = cc.APIKey
}

// ProviderConfigs 转换为 providers 包使用的配置
func (p ProvidersConfig) ProviderConfigs() providers.Configs {
	openaiRetries := p.OpenAI.MaxRetries
	azureRetries := p.Azure.MaxRetries
	claudeRetries := p.Claude.MaxRetries

	return providers.Configs{
		OpenAI: providers.OpenAIConfig{
			BaseProviderConfig: providers.BaseProviderConfig{
				APIKey:     p.OpenAI.APIKey,
				BaseURL:    p.OpenAI.BaseURL,
				Model:      p.OpenAI.Model,
				Timeout:    p.OpenAI.Timeout,
				MaxRetries: &openaiRetries,
			},
			Organization: p.OpenAI.Organization,
		},
		Azure: providers.AzureOpenAIConfig{
			APIKey:         p.Azure.APIKey,
			Endpoint:       p.Azure.Endpoint,
			DeploymentName: p.Azure.DeploymentName,
			APIVersion:     p.Azure.APIVersion,
			Timeout:        p.Azure.Timeout,
			MaxRetries:     &azureRetries,
		},
		Claude: providers.ClaudeConfig{
			BaseProviderConfig: providers.BaseProviderConfig{
				APIKey:     p.Claude.APIKey,
				BaseURL:    p.Claude.BaseURL,
				Model:      p.Claude.Model,
				Timeout:    p.Claude.Timeout,
				MaxRetries: &claudeRetries,
			},
		},
	}
}

// validProviders 可接受的 Provider 名称（含别名）
var validProviders = map[string]bool{
	"openai": true, "azure": true, "azure-openai": true, "claude": true, "anthropic": true,
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	// 验证描述默认值
	if !validProviders[strings.ToLower(c.Describe.Provider)] {
		errs = append(errs, fmt.Sprintf("unknown provider %q", c.Describe.Provider))
	}
	if c.Describe.MaxTokens <= 0 {
		errs = append(errs, "describe.max_tokens must be positive")
	}

	// 验证批量配置
	if c.Batch.Concurrency <= 0 {
		errs = append(errs, "batch.concurrency must be positive")
	}
	if c.Batch.MaxBatchSize <= 0 {
		errs = append(errs, "batch.max_batch_size must be positive")
	}
	if c.Batch.RateLimitRPS < 0 {
		errs = append(errs, "batch.rate_limit_rps must not be negative")
	}

	// 验证加载器配置
	if c.Loader.MaxImageSize <= 0 {
		errs = append(errs, "loader.max_image_size must be positive")
	}

	// 验证缓存配置
	if c.Cache.Enabled && c.Cache.LocalMaxSize <= 0 {
		errs = append(errs, "cache.local_max_size must be positive when cache is enabled")
	}
	if c.Cache.Enabled && c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		errs = append(errs, "cache.redis.addr is required when redis is enabled")
	}

	// 验证服务器配置
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, "server.tls_cert_file and server.tls_key_file must be set together")
	}

	// 验证日志与遥测
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
