package factory

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/providers"
	claude "github.com/BaSui01/visiondesc/llm/providers/anthropic"
	"github.com/BaSui01/visiondesc/llm/providers/azure"
	"github.com/BaSui01/visiondesc/llm/providers/openai"
	"github.com/BaSui01/visiondesc/types"
)

// NormalizeName 把别名映射为规范名称：azure-openai → azure，anthropic → claude。
// 未知名称原样返回（小写）。
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "azure-openai", "azure_openai", "azureopenai":
		return azure.ProviderName
	case "anthropic":
		return claude.ProviderName
	default:
		return name
	}
}

// NewProvider creates a Provider by name from the matching section of configs.
//
// Supported names: openai, azure (azure-openai), claude (anthropic).
func NewProvider(name string, configs providers.Configs, logger *zap.Logger, opts ...providers.Option) (llm.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		p   llm.Provider
		err error
	)
	switch NormalizeName(name) {
	case openai.ProviderName:
		p, err = asProvider(openai.NewOpenAIProvider(configs.OpenAI, logger, opts...))
	case azure.ProviderName:
		p, err = asProvider(azure.NewAzureOpenAIProvider(configs.Azure, logger, opts...))
	case claude.ProviderName:
		p, err = asProvider(claude.NewClaudeProvider(configs.Claude, logger, opts...))
	default:
		err = types.Errorf(types.ErrInvalidRequest,
			"unknown provider %q: supported providers are %s", name, strings.Join(SupportedProviders(), ", ")).
			WithHTTPStatus(http.StatusBadRequest)
	}
	return p, err
}

// asProvider 避免把 nil 指针包装成非 nil 接口
func asProvider[P llm.Provider](p P, err error) (llm.Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SupportedProviders returns the canonical provider names.
func SupportedProviders() []string {
	return []string{openai.ProviderName, azure.ProviderName, claude.ProviderName}
}

// RegistryConfig 描述要登记的 Provider 与默认 Provider
type RegistryConfig struct {
	// Default 默认 Provider 名称，可使用别名
	Default string `json:"default" yaml:"default"`
	// Providers 各 Provider 的配置
	Providers providers.Configs `json:"providers" yaml:"providers"`
}

// NewRegistry 为每个配置完整的 Provider 创建描述服务并登记。
// 缺少凭证的 Provider 记录告警后跳过；默认 Provider 无法登记时返回错误。
func NewRegistry(cfg RegistryConfig, logger *zap.Logger, serviceOpts []llm.ServiceOption, opts ...providers.Option) (*llm.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := llm.NewRegistry()
	for _, name := range SupportedProviders() {
		p, err := NewProvider(name, cfg.Providers, logger, opts...)
		if err != nil {
			logger.Warn("skipping provider: initialization failed",
				zap.String("provider", name),
				zap.Error(err))
			continue
		}
		svc, err := llm.NewService(p, serviceOpts...)
		if err != nil {
			return nil, fmt.Errorf("create %s service: %w", name, err)
		}
		reg.Register(svc)
		logger.Info("provider registered", zap.String("provider", name))
	}

	if cfg.Default != "" {
		if err := reg.SetDefault(NormalizeName(cfg.Default)); err != nil {
			return reg, fmt.Errorf("failed to set default provider %q: %w", cfg.Default, err)
		}
	}

	return reg, nil
}
