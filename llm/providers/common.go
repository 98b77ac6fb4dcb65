package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/internal/tlsutil"
	"github.com/BaSui01/visiondesc/llm/multimodal"
	"github.com/BaSui01/visiondesc/types"
)

// DefaultTimeout 单次 Provider 调用的默认超时
const DefaultTimeout = 60 * time.Second

// HTTPClient 返回 SDK 使用的 TLS 加固 HTTP 客户端，timeout<=0 时使用 DefaultTimeout
func HTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return tlsutil.SecureHTTPClient(timeout)
}

// MapHTTPError 将 HTTP 状态码映射为带有合适重试标记的 types.Error
// 这是所有提供者使用的通用错误映射函数
func MapHTTPError(status int, msg string, provider string) *types.Error {
	var code types.ErrorCode
	retryable := false

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		code = types.ErrAuthentication
	case status == http.StatusNotFound:
		code = types.ErrModelNotFound
	case status == http.StatusTooManyRequests:
		code = types.ErrRateLimit
		retryable = true
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		code = types.ErrInvalidRequest
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		code = types.ErrUpstreamTimeout
		retryable = true
	case status == http.StatusServiceUnavailable, status == 529: // 529: 部分服务商表示模型过载
		code = types.ErrServiceUnavailable
		retryable = true
	default:
		code = types.ErrUpstreamError
		retryable = status >= 500
	}

	return types.NewError(code, msg).
		WithHTTPStatus(status).
		WithRetryable(retryable).
		WithProvider(provider)
}

// ReadErrorMessage 从上游错误响应体中提取错误消息
// 尝试解析 JSON 错误响应，失败则回退到原始文本
func ReadErrorMessage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	type errorBody struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	// OpenAI 与 Anthropic 都使用 {"error": {"message": ..., "type": ...}}，
	// SDK 有时只保留内层对象
	var errResp struct {
		errorBody
		Error errorBody `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &errResp); err != nil {
		return raw
	}
	body := errResp.Error
	if body.Message == "" {
		body = errResp.errorBody
	}
	if body.Message == "" {
		return raw
	}
	if body.Type != "" && body.Type != "error" {
		return fmt.Sprintf("%s (type: %s)", body.Message, body.Type)
	}
	return body.Message
}

// RequestFailed 把一次失败的上游调用转换为统一错误。
// status 为 0 表示请求没有拿到 HTTP 响应。
func RequestFailed(label, provider string, status int, raw string, err error) error {
	prefix := label + " API request failed"

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", prefix, err)
	case errors.Is(err, context.DeadlineExceeded):
		return types.Errorf(types.ErrUpstreamTimeout, "%s: %v", prefix, err).
			WithCause(err).
			WithHTTPStatus(http.StatusGatewayTimeout).
			WithRetryable(true).
			WithProvider(provider)
	case status == 0:
		return types.Errorf(types.ErrUpstreamError, "%s: %v", prefix, err).
			WithCause(err).
			WithHTTPStatus(http.StatusBadGateway).
			WithRetryable(true).
			WithProvider(provider)
	}

	msg := ReadErrorMessage(raw)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return MapHTTPError(status, prefix+": "+msg, provider).WithCause(err)
}

// EmptyResponse 上游返回成功但没有文本内容
func EmptyResponse(label, provider string) *types.Error {
	return types.Errorf(types.ErrEmptyResponse, "No response content received from %s", label).
		WithHTTPStatus(http.StatusBadGateway).
		WithProvider(provider)
}

// MissingConfig 一次性报告所有缺失的配置项
func MissingConfig(label, provider string, fields ...string) *types.Error {
	return types.Errorf(types.ErrNotConfigured, "Missing required %s configuration: %s", label, strings.Join(fields, ", ")).
		WithHTTPStatus(http.StatusServiceUnavailable).
		WithProvider(provider)
}

// ImageURL 返回可放入 image_url 的地址：远程 URL 与 data URL 原样透传，
// 本地文件经 loader 读取后编码为 base64 data URL。
func ImageURL(ctx context.Context, loader *multimodal.Loader, identifier string) (string, error) {
	if multimodal.IsRemote(identifier) || multimodal.IsDataURL(identifier) {
		return identifier, nil
	}
	img, err := loader.Load(ctx, identifier)
	if err != nil {
		return "", err
	}
	return img.DataURL(), nil
}

// ChooseModel 按优先级选择模型（请求 > 配置 > 兜底）
func ChooseModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}

// Options 构造 Provider 时的可选依赖
type Options struct {
	Loader *multimodal.Loader
}

// Option 配置 Options
type Option func(*Options)

// WithLoader 指定读取本地图片与远程图片的 Loader
func WithLoader(l *multimodal.Loader) Option {
	return func(o *Options) { o.Loader = l }
}

// ApplyOptions 应用选项，未指定 Loader 时使用默认配置创建
func ApplyOptions(logger *zap.Logger, opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Loader == nil {
		o.Loader = multimodal.NewLoader(multimodal.DefaultLoaderConfig(), logger)
	}
	return o
}
