package azure

import (
	azuresdk "github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/providers"
	"github.com/BaSui01/visiondesc/llm/providers/openai"
)

const (
	// ProviderName 注册名
	ProviderName = "azure"
	// DefaultSystemPrompt 请求未指定系统提示时发送的系统消息
	DefaultSystemPrompt = "You are a helpful assistant."
)

// AzureOpenAIProvider 实现 Azure OpenAI 图片描述。
// 请求体与 OpenAI 相同，路由到 /openai/deployments/{deployment}/chat/completions。
type AzureOpenAIProvider struct {
	*openai.OpenAIProvider
	cfg providers.AzureOpenAIConfig
}

// NewAzureOpenAIProvider 创建 Azure OpenAI 提供者。
// APIKey、Endpoint、DeploymentName 缺失时一次性报告所有缺失项。
func NewAzureOpenAIProvider(cfg providers.AzureOpenAIConfig, logger *zap.Logger, opts ...providers.Option) (*AzureOpenAIProvider, error) {
	var missing []string
	if cfg.APIKey == "" {
		missing = append(missing, "apiKey")
	}
	if cfg.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if cfg.DeploymentName == "" {
		missing = append(missing, "deploymentName")
	}
	if len(missing) > 0 {
		return nil, providers.MissingConfig("Azure OpenAI", ProviderName, missing...)
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = providers.DefaultAzureAPIVersion
	}

	clientOpts := []option.RequestOption{
		azuresdk.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azuresdk.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(providers.HTTPClient(cfg.Timeout)),
	}
	if cfg.MaxRetries != nil {
		clientOpts = append(clientOpts, option.WithMaxRetries(*cfg.MaxRetries))
	}

	return &AzureOpenAIProvider{
		OpenAIProvider: openai.NewWithSettings(openai.Settings{
			Name:                ProviderName,
			Label:               "Azure OpenAI",
			Model:               cfg.DeploymentName,
			FixedModel:          true,
			DefaultSystemPrompt: DefaultSystemPrompt,
		}, clientOpts, logger, opts...),
		cfg: cfg,
	}, nil
}

// Deployment 返回部署名
func (p *AzureOpenAIProvider) Deployment() string { return p.cfg.DeploymentName }

// APIVersion 返回使用的 API 版本
func (p *AzureOpenAIProvider) APIVersion() string { return p.cfg.APIVersion }

var _ llm.Provider = (*AzureOpenAIProvider)(nil)
