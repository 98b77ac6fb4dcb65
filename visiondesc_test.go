package visiondesc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/visiondesc/llm/providers"
	"github.com/BaSui01/visiondesc/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT",
		"AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION",
	} {
		t.Setenv(key, "")
	}
}

func fakeChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-4o",`+
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%q}}]}`, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewOpenAI_DescribesThroughService(t *testing.T) {
	clearEnv(t)
	srv := fakeChatServer(t, "a cat on a sofa")
	retries := 0

	svc, err := NewOpenAI(providers.OpenAIConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			APIKey:     "sk-test",
			BaseURL:    srv.URL + "/v1",
			Timeout:    5 * time.Second,
			MaxRetries: &retries,
		},
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "openai", svc.Provider().Name())

	text, err := svc.GetDescription(context.Background(), "https://example.com/cat.jpg", nil)
	require.NoError(t, err)
	assert.Equal(t, "a cat on a sofa", text)

	results, err := svc.GetDescriptionBatch(context.Background(),
		[]string{"https://example.com/1.jpg", "https://example.com/2.jpg"},
		&DescribeOptions{Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success)
	}
}

func TestNewOpenAI_EnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	svc, err := NewOpenAI(providers.OpenAIConfig{})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", svc.Provider().DefaultModel())
}

func TestConstructors_MissingConfig(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		build   func() error
		wantMsg string
	}{
		{"openai", func() error { _, err := NewOpenAI(providers.OpenAIConfig{}); return err },
			"Missing required OpenAI configuration: apiKey"},
		{"azure", func() error { _, err := NewAzureOpenAI(providers.AzureOpenAIConfig{}); return err },
			"apiKey, endpoint, deploymentName"},
		{"claude", func() error { _, err := NewClaude(providers.ClaudeConfig{}); return err },
			"Missing required Anthropic configuration: apiKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			require.Error(t, err)
			assert.Equal(t, types.ErrNotConfigured, types.GetErrorCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNew_Aliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("AZURE_OPENAI_API_KEY", "az")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://res.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "vision")

	svc, err := New("anthropic", providers.Configs{})
	require.NoError(t, err)
	assert.Equal(t, "claude", svc.Provider().Name())

	svc, err = New("azure-openai", providers.Configs{})
	require.NoError(t, err)
	assert.Equal(t, "azure", svc.Provider().Name())
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("gemini", providers.Configs{})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
}

func TestNew_ServiceOptions(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk")

	svc, err := NewOpenAI(providers.OpenAIConfig{}, WithServiceOptions())
	require.NoError(t, err)
	assert.Equal(t, 20, svc.MaxBatchSize())
}
