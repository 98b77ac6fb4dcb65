package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/api"
	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/testutil"
	"github.com/BaSui01/visiondesc/testutil/mocks"
	"github.com/BaSui01/visiondesc/types"
)

func newDescribeHandler(t *testing.T, provider *mocks.MockProvider) *DescribeHandler {
	t.Helper()
	reg := llm.NewRegistry()
	svc, err := llm.NewService(provider)
	require.NoError(t, err)
	reg.Register(svc)
	require.NoError(t, reg.SetDefault(provider.Name()))
	return NewDescribeHandler(reg, 0, zap.NewNop())
}

func postJSON(path, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestDescribeHandler_HandleDescribe(t *testing.T) {
	provider := mocks.NewMockProvider().WithResponse("a red bicycle")
	h := newDescribeHandler(t, provider)

	w := httptest.NewRecorder()
	h.HandleDescribe(w, postJSON("/v1/describe",
		`{"identifier":"https://example.com/bike.jpg","prompt":"Describe briefly","max_tokens":50}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                 `json:"success"`
		Data    api.DescribeResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "a red bicycle", resp.Data.Description)
	assert.Equal(t, "mock", resp.Data.Provider)

	call := provider.LastCall()
	require.NotNil(t, call)
	assert.Equal(t, "Describe briefly", call.Prompt)
	assert.Equal(t, 50, call.MaxTokens)
}

func TestDescribeHandler_HandleDescribe_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"wrong content type", "text/plain", `{"identifier":"https://example.com/x.jpg"}`, http.StatusUnsupportedMediaType},
		{"missing identifier", "application/json", `{"prompt":"hi"}`, http.StatusBadRequest},
		{"negative max tokens", "application/json", `{"identifier":"https://example.com/x.jpg","max_tokens":-1}`, http.StatusBadRequest},
		{"unknown field", "application/json", `{"identifier":"https://example.com/x.jpg","temperature":1}`, http.StatusBadRequest},
		{"unknown provider", "application/json", `{"identifier":"https://example.com/x.jpg","provider":"gemini"}`, http.StatusBadRequest},
		{"relative path", "application/json", `{"identifier":"photos/cat.jpg"}`, http.StatusBadRequest},
		{"file scheme", "application/json", `{"identifier":"file:///etc/passwd"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := mocks.NewMockProvider()
			h := newDescribeHandler(t, provider)

			r := httptest.NewRequest(http.MethodPost, "/v1/describe", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			h.HandleDescribe(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Zero(t, provider.CallCount())
		})
	}
}

func TestDescribeHandler_HandleBatch(t *testing.T) {
	provider := mocks.NewMockProvider().WithErrorFor("https://example.com/b.png", errors.New("boom"))
	h := newDescribeHandler(t, provider)

	w := httptest.NewRecorder()
	h.HandleBatch(w, postJSON("/v1/describe/batch",
		`{"identifiers":["https://example.com/a.png","https://example.com/b.png","https://example.com/c.png"],"concurrency":2}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data api.BatchDescribeResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.NotEmpty(t, resp.Data.BatchID)
	require.Len(t, resp.Data.Results, 3)
	assert.Equal(t, "https://example.com/a.png", resp.Data.Results[0].Identifier)
	assert.True(t, resp.Data.Results[0].Success)
	assert.False(t, resp.Data.Results[1].Success)
	assert.Equal(t, "boom", resp.Data.Results[1].Error)
	assert.Equal(t, 3, resp.Data.Summary.Total)
	assert.Equal(t, 2, resp.Data.Summary.Succeeded)
	assert.Equal(t, 1, resp.Data.Summary.Failed)
}

func TestDescribeHandler_HandleBatch_TooLarge(t *testing.T) {
	h := newDescribeHandler(t, mocks.NewMockProvider())

	ids := make([]string, 21)
	for i := range ids {
		ids[i] = fmt.Sprintf("https://example.com/img-%d.png", i)
	}

	w := httptest.NewRecorder()
	h.HandleBatch(w, postJSON("/v1/describe/batch", testutil.MustJSON(api.BatchDescribeRequest{Identifiers: ids})))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, string(types.ErrBatchTooLarge), resp.Error.Code)
	assert.Equal(t, "Maximum of 20 images allowed per batch request", resp.Error.Message)
}

func TestDescribeHandler_HandleBatch_NegativeConcurrency(t *testing.T) {
	h := newDescribeHandler(t, mocks.NewMockProvider())

	w := httptest.NewRecorder()
	h.HandleBatch(w, postJSON("/v1/describe/batch", `{"identifiers":["https://example.com/a.png"],"concurrency":-1}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDescribeHandler_HandleProviders(t *testing.T) {
	h := NewDescribeHandler(llm.NewRegistry(), 0, nil)

	w := httptest.NewRecorder()
	h.HandleProviders(w, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data api.ProvidersResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Empty(t, resp.Data.Default)
	assert.Empty(t, resp.Data.Providers)
}

func TestDescribeHandler_RejectsServerFilePaths(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "credentials.png")
	require.NoError(t, os.WriteFile(secret, []byte("top-secret-token"), 0o600))

	t.Run("describe", func(t *testing.T) {
		provider := mocks.NewMockProvider().WithResponse("leaked")
		h := newDescribeHandler(t, provider)

		w := httptest.NewRecorder()
		h.HandleDescribe(w, postJSON("/v1/describe", testutil.MustJSON(api.DescribeRequest{Identifier: secret})))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := testutil.MustParseJSON[Response](w.Body.String())
		assert.Equal(t, string(types.ErrInvalidRequest), resp.Error.Code)
		assert.Equal(t, "identifier must be an http(s) URL or a data URL", resp.Error.Message)
		assert.NotContains(t, w.Body.String(), "top-secret-token")
		assert.Zero(t, provider.CallCount())
	})

	t.Run("batch", func(t *testing.T) {
		provider := mocks.NewMockProvider().WithResponse("leaked")
		h := newDescribeHandler(t, provider)

		body := testutil.MustJSON(api.BatchDescribeRequest{
			Identifiers: []string{"https://example.com/ok.png", secret},
		})
		w := httptest.NewRecorder()
		h.HandleBatch(w, postJSON("/v1/describe/batch", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := testutil.MustParseJSON[Response](w.Body.String())
		assert.Equal(t, string(types.ErrInvalidRequest), resp.Error.Code)
		assert.Equal(t, "identifiers[1] must be an http(s) URL or a data URL", resp.Error.Message)
		assert.Zero(t, provider.CallCount())
	})

	t.Run("data URL accepted", func(t *testing.T) {
		provider := mocks.NewMockProvider().WithResponse("a single pixel")
		h := newDescribeHandler(t, provider)

		w := httptest.NewRecorder()
		h.HandleDescribe(w, postJSON("/v1/describe",
			testutil.MustJSON(api.DescribeRequest{Identifier: "data:image/png;base64,iVBORw0KGgo="})))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, provider.CallCount())
	})
}
