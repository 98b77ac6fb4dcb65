package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/llm/providers"
	"github.com/BaSui01/visiondesc/types"
)

func fullConfigs() providers.Configs {
	return providers.Configs{
		OpenAI: providers.OpenAIConfig{BaseProviderConfig: providers.BaseProviderConfig{APIKey: "sk-test"}},
		Azure: providers.AzureOpenAIConfig{
			APIKey:         "az-test",
			Endpoint:       "https://res.openai.azure.com",
			DeploymentName: "vision",
		},
		Claude: providers.ClaudeConfig{BaseProviderConfig: providers.BaseProviderConfig{APIKey: "sk-ant-test"}},
	}
}

// =============================================================================
// Factory Tests
// =============================================================================

func TestNewProvider_AllProviders(t *testing.T) {
	tests := []struct {
		name         string
		providerName string
		wantName     string
		wantModel    string
	}{
		{"openai", "openai", "openai", "gpt-4o"},
		{"azure", "azure", "azure", "vision"},
		{"azure alias", "azure-openai", "azure", "vision"},
		{"claude", "claude", "claude", "claude-3-sonnet-20240229"},
		{"anthropic alias", "anthropic", "claude", "claude-3-sonnet-20240229"},
		{"case insensitive", " OpenAI ", "openai", "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.providerName, fullConfigs(), zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
			assert.Equal(t, tt.wantModel, p.DefaultModel())
		})
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider("gemini", fullConfigs(), zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "openai, azure, claude")
}

func TestNewProvider_MissingCredentials(t *testing.T) {
	for _, name := range SupportedProviders() {
		t.Run(name, func(t *testing.T) {
			_, err := NewProvider(name, providers.Configs{}, nil)
			require.Error(t, err)
			assert.Equal(t, types.ErrNotConfigured, types.GetErrorCode(err))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "azure", NormalizeName("azure-openai"))
	assert.Equal(t, "azure", NormalizeName("AZURE_OPENAI"))
	assert.Equal(t, "claude", NormalizeName("anthropic"))
	assert.Equal(t, "openai", NormalizeName("openai"))
	assert.Equal(t, "other", NormalizeName("Other"))
}

func TestSupportedProviders(t *testing.T) {
	assert.Equal(t, []string{"openai", "azure", "claude"}, SupportedProviders())
}

// =============================================================================
// Registry Tests
// =============================================================================

func TestNewRegistry_AllConfigured(t *testing.T) {
	reg, err := NewRegistry(RegistryConfig{Default: "anthropic", Providers: fullConfigs()}, zap.NewNop(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"azure", "claude", "openai"}, reg.List())
	svc, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "claude", svc.Provider().Name())
}

func TestNewRegistry_SkipsUnconfigured(t *testing.T) {
	cfg := RegistryConfig{
		Default: "openai",
		Providers: providers.Configs{
			OpenAI: providers.OpenAIConfig{BaseProviderConfig: providers.BaseProviderConfig{APIKey: "sk-test"}},
		},
	}
	reg, err := NewRegistry(cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"openai"}, reg.List())
}

func TestNewRegistry_DefaultNotConfigured(t *testing.T) {
	cfg := RegistryConfig{
		Default: "azure",
		Providers: providers.Configs{
			OpenAI: providers.OpenAIConfig{BaseProviderConfig: providers.BaseProviderConfig{APIKey: "sk-test"}},
		},
	}
	reg, err := NewRegistry(cfg, zap.NewNop(), nil)
	require.Error(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, types.ErrNotConfigured, types.GetErrorCode(err))
}
