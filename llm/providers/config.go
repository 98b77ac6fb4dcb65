package providers

import (
	"os"
	"time"
)

// 凭证环境变量
const (
	EnvOpenAIAPIKey          = "OPENAI_API_KEY"
	EnvAnthropicAPIKey       = "ANTHROPIC_API_KEY"
	EnvAzureOpenAIAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvAzureOpenAIEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureOpenAIDeployment = "AZURE_OPENAI_DEPLOYMENT"
	EnvAzureOpenAIAPIVersion = "AZURE_OPENAI_API_VERSION"
)

// DefaultAzureAPIVersion Azure OpenAI 默认 API 版本
const DefaultAzureAPIVersion = "2024-07-01-preview"

// BaseProviderConfig 所有 Provider 共享的基础配置字段。
// 通过嵌入此结构体，各 Provider 的 Config 自动获得 APIKey、BaseURL、Model、Timeout、MaxRetries。
type BaseProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// MaxRetries 传给 SDK 的传输层重试次数，nil 表示使用 SDK 默认值
	MaxRetries *int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// OpenAIConfig OpenAI Provider 配置
type OpenAIConfig struct {
	BaseProviderConfig `yaml:",inline"`
	Organization       string `json:"organization,omitempty" yaml:"organization,omitempty"`
}

// AzureOpenAIConfig Azure OpenAI Provider 配置。
// 模型由部署决定，DeploymentName 即请求中的 model。
type AzureOpenAIConfig struct {
	APIKey         string        `json:"api_key" yaml:"api_key"`
	Endpoint       string        `json:"endpoint" yaml:"endpoint"`
	DeploymentName string        `json:"deployment_name" yaml:"deployment_name"`
	APIVersion     string        `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Timeout        time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxRetries     *int          `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// ClaudeConfig Anthropic Claude Provider 配置
type ClaudeConfig struct {
	BaseProviderConfig `yaml:",inline"`
}

// Configs 按 Provider 分组的配置集合，供 factory 使用
type Configs struct {
	OpenAI OpenAIConfig      `json:"openai" yaml:"openai"`
	Azure  AzureOpenAIConfig `json:"azure" yaml:"azure"`
	Claude ClaudeConfig      `json:"claude" yaml:"claude"`
}

// WithEnvFallback 用 OPENAI_API_KEY 补全缺失的 APIKey
func (c OpenAIConfig) WithEnvFallback() OpenAIConfig {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvOpenAIAPIKey)
	}
	return c
}

// WithEnvFallback 用 AZURE_OPENAI_* 补全缺失字段，APIVersion 最终回落到默认版本
func (c AzureOpenAIConfig) WithEnvFallback() AzureOpenAIConfig {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAzureOpenAIAPIKey)
	}
	if c.Endpoint == "" {
		c.Endpoint = os.Getenv(EnvAzureOpenAIEndpoint)
	}
	if c.DeploymentName == "" {
		c.DeploymentName = os.Getenv(EnvAzureOpenAIDeployment)
	}
	if c.APIVersion == "" {
		c.APIVersion = os.Getenv(EnvAzureOpenAIAPIVersion)
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAzureAPIVersion
	}
	return c
}

// WithEnvFallback 用 ANTHROPIC_API_KEY 补全缺失的 APIKey
func (c ClaudeConfig) WithEnvFallback() ClaudeConfig {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAnthropicAPIKey)
	}
	return c
}

// WithEnvFallback 对所有 Provider 应用环境变量回退
func (c Configs) WithEnvFallback() Configs {
	return Configs{
		OpenAI: c.OpenAI.WithEnvFallback(),
		Azure:  c.Azure.WithEnvFallback(),
		Claude: c.Claude.WithEnvFallback(),
	}
}
