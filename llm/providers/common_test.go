package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/llm/multimodal"
	"github.com/BaSui01/visiondesc/types"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		code      types.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, types.ErrAuthentication, false},
		{http.StatusForbidden, types.ErrAuthentication, false},
		{http.StatusNotFound, types.ErrModelNotFound, false},
		{http.StatusTooManyRequests, types.ErrRateLimit, true},
		{http.StatusBadRequest, types.ErrInvalidRequest, false},
		{http.StatusUnprocessableEntity, types.ErrInvalidRequest, false},
		{http.StatusGatewayTimeout, types.ErrUpstreamTimeout, true},
		{http.StatusServiceUnavailable, types.ErrServiceUnavailable, true},
		{529, types.ErrServiceUnavailable, true},
		{http.StatusInternalServerError, types.ErrUpstreamError, true},
		{http.StatusBadGateway, types.ErrUpstreamError, true},
		{http.StatusConflict, types.ErrUpstreamError, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := MapHTTPError(tt.status, "msg", "openai")
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.status, err.HTTPStatus)
			assert.Equal(t, "openai", err.Provider)
			assert.Equal(t, "msg", err.Message)
		})
	}
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"openai envelope", `{"error":{"message":"bad key","type":"invalid_request_error"}}`, "bad key (type: invalid_request_error)"},
		{"anthropic envelope", `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, "Overloaded (type: overloaded_error)"},
		{"inner object only", `{"message":"quota exceeded","type":"insufficient_quota"}`, "quota exceeded (type: insufficient_quota)"},
		{"no type", `{"error":{"message":"nope"}}`, "nope"},
		{"plain text", "Bad Gateway", "Bad Gateway"},
		{"json without message", `{"detail":"x"}`, `{"detail":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadErrorMessage(tt.raw))
		})
	}
}

func TestRequestFailed(t *testing.T) {
	cause := errors.New("sdk error")

	t.Run("http status", func(t *testing.T) {
		err := RequestFailed("OpenAI", "openai", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, cause)
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, types.ErrAuthentication, e.Code)
		assert.Equal(t, "OpenAI API request failed: bad key", e.Message)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("status text fallback", func(t *testing.T) {
		err := RequestFailed("Claude", "claude", http.StatusBadGateway, "", cause)
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "Claude API request failed: Bad Gateway", e.Message)
		assert.True(t, e.Retryable)
	})

	t.Run("transport failure", func(t *testing.T) {
		err := RequestFailed("OpenAI", "openai", 0, "", errors.New("dial tcp: connection refused"))
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, types.ErrUpstreamError, e.Code)
		assert.True(t, e.Retryable)
		assert.True(t, strings.HasPrefix(e.Message, "OpenAI API request failed: "))
	})

	t.Run("deadline", func(t *testing.T) {
		err := RequestFailed("OpenAI", "openai", 0, "", fmt.Errorf("post: %w", context.DeadlineExceeded))
		assert.Equal(t, types.ErrUpstreamTimeout, types.GetErrorCode(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled", func(t *testing.T) {
		err := RequestFailed("OpenAI", "openai", 0, "", fmt.Errorf("post: %w", context.Canceled))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, types.ErrorCode(""), types.GetErrorCode(err))
	})
}

func TestEmptyResponseAndMissingConfig(t *testing.T) {
	empty := EmptyResponse("OpenAI", "openai")
	assert.Equal(t, types.ErrEmptyResponse, empty.Code)
	assert.Equal(t, "No response content received from OpenAI", empty.Message)

	missing := MissingConfig("Azure OpenAI", "azure", "apiKey", "endpoint")
	assert.Equal(t, types.ErrNotConfigured, missing.Code)
	assert.Equal(t, "Missing required Azure OpenAI configuration: apiKey, endpoint", missing.Message)
}

func TestImageURL(t *testing.T) {
	loader := multimodal.NewLoader(multimodal.DefaultLoaderConfig(), zap.NewNop())
	ctx := context.Background()

	got, err := ImageURL(ctx, loader, "https://example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.jpg", got)

	dataURL := "data:image/png;base64,iVBORw0KGgo="
	got, err = ImageURL(ctx, loader, dataURL)
	require.NoError(t, err)
	assert.Equal(t, dataURL, got)

	path := filepath.Join(t.TempDir(), "a.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a"), 0o600))
	got, err = ImageURL(ctx, loader, path)
	require.NoError(t, err)
	assert.Equal(t, "data:image/gif;base64,R0lGODlh", got)

	_, err = ImageURL(ctx, loader, filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)
	assert.Equal(t, types.ErrImageLoadFailed, types.GetErrorCode(err))
}

func TestChooseModel(t *testing.T) {
	assert.Equal(t, "req", ChooseModel("req", "cfg", "fallback"))
	assert.Equal(t, "cfg", ChooseModel("", "cfg", "fallback"))
	assert.Equal(t, "fallback", ChooseModel("", "", "fallback"))
}

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions(zap.NewNop())
	assert.NotNil(t, o.Loader)

	custom := multimodal.NewLoader(multimodal.LoaderConfig{MaxImageSize: 1}, nil)
	o = ApplyOptions(zap.NewNop(), WithLoader(custom))
	assert.Same(t, custom, o.Loader)
}

func TestHTTPClient(t *testing.T) {
	assert.Equal(t, DefaultTimeout, HTTPClient(0).Timeout)
	assert.Equal(t, DefaultTimeout/2, HTTPClient(DefaultTimeout/2).Timeout)
}
