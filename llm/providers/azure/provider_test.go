package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/providers"
	"github.com/BaSui01/visiondesc/types"
)

const completionBody = `{
  "id": "chatcmpl-az",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "A red bicycle."}}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`

type capturedRequest struct {
	Path       string
	APIVersion string
	APIKey     string
	Body       struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
}

func newTestProvider(t *testing.T, captured *capturedRequest, status int, body string) *AzureOpenAIProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.APIVersion = r.URL.Query().Get("api-version")
		captured.APIKey = r.Header.Get("Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	retries := 0
	p, err := NewAzureOpenAIProvider(providers.AzureOpenAIConfig{
		APIKey:         "azure-key",
		Endpoint:       server.URL,
		DeploymentName: "vision-deploy",
		Timeout:        5 * time.Second,
		MaxRetries:     &retries,
	}, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestNewAzureOpenAIProvider_MissingConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  providers.AzureOpenAIConfig
		want string
	}{
		{
			name: "all missing",
			cfg:  providers.AzureOpenAIConfig{},
			want: "Missing required Azure OpenAI configuration: apiKey, endpoint, deploymentName",
		},
		{
			name: "deployment missing",
			cfg:  providers.AzureOpenAIConfig{APIKey: "k", Endpoint: "https://x.openai.azure.com"},
			want: "Missing required Azure OpenAI configuration: deploymentName",
		},
		{
			name: "key missing",
			cfg:  providers.AzureOpenAIConfig{Endpoint: "https://x.openai.azure.com", DeploymentName: "d"},
			want: "Missing required Azure OpenAI configuration: apiKey",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewAzureOpenAIProvider(tt.cfg, zap.NewNop())
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Equal(t, types.ErrNotConfigured, types.GetErrorCode(err))

			e, ok := types.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, e.Message)
		})
	}
}

func TestNewAzureOpenAIProvider_Defaults(t *testing.T) {
	p, err := NewAzureOpenAIProvider(providers.AzureOpenAIConfig{
		APIKey:         "k",
		Endpoint:       "https://x.openai.azure.com",
		DeploymentName: "vision-deploy",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "azure", p.Name())
	assert.Equal(t, "vision-deploy", p.DefaultModel())
	assert.Equal(t, "vision-deploy", p.Deployment())
	assert.Equal(t, "2024-07-01-preview", p.APIVersion())
}

func TestAzureOpenAIProvider_Describe(t *testing.T) {
	var captured capturedRequest
	p := newTestProvider(t, &captured, http.StatusOK, completionBody)

	req := (&llm.DescribeOptions{Model: "ignored-model"}).WithDefaults().Request("https://example.com/bike.jpg")
	desc, err := p.Describe(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "A red bicycle.", desc)

	assert.Equal(t, "/openai/deployments/vision-deploy/chat/completions", captured.Path)
	assert.Equal(t, "2024-07-01-preview", captured.APIVersion)
	assert.Equal(t, "azure-key", captured.APIKey)
	assert.Equal(t, "vision-deploy", captured.Body.Model)

	require.Len(t, captured.Body.Messages, 2)
	assert.Equal(t, "system", captured.Body.Messages[0].Role)
	var system string
	require.NoError(t, json.Unmarshal(captured.Body.Messages[0].Content, &system))
	assert.Equal(t, DefaultSystemPrompt, system)
}

func TestAzureOpenAIProvider_Describe_CustomSystemPrompt(t *testing.T) {
	var captured capturedRequest
	p := newTestProvider(t, &captured, http.StatusOK, completionBody)

	req := (&llm.DescribeOptions{SystemPrompt: "You are an art critic."}).WithDefaults().Request("https://example.com/a.jpg")
	_, err := p.Describe(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, captured.Body.Messages, 2)
	var system string
	require.NoError(t, json.Unmarshal(captured.Body.Messages[0].Content, &system))
	assert.Equal(t, "You are an art critic.", system)
}

func TestAzureOpenAIProvider_Describe_Error(t *testing.T) {
	var captured capturedRequest
	p := newTestProvider(t, &captured, http.StatusUnauthorized,
		`{"error":{"code":"401","message":"Access denied due to invalid subscription key."}}`)

	_, err := p.Describe(context.Background(), (&llm.DescribeOptions{}).WithDefaults().Request("https://example.com/a.jpg"))
	require.Error(t, err)
	assert.Equal(t, types.ErrAuthentication, types.GetErrorCode(err))

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Contains(t, e.Message, "Azure OpenAI API request failed: ")
	assert.Equal(t, "azure", e.Provider)
}
