package claude

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/multimodal"
	"github.com/BaSui01/visiondesc/llm/providers"
)

const (
	// ProviderName 注册名
	ProviderName = "claude"
	// DefaultModel 未指定模型时使用的模型
	DefaultModel = "claude-3-sonnet-20240229"
)

// ClaudeProvider 实现 Anthropic Claude 图片描述。
// 图片统一读取后以 base64 图片块发送，本地文件与远程 URL 行为一致。
type ClaudeProvider struct {
	client anthropic.Client
	model  string
	loader *multimodal.Loader
	logger *zap.Logger
}

// NewClaudeProvider 创建 Claude 提供者。APIKey 缺失时返回 NOT_CONFIGURED。
func NewClaudeProvider(cfg providers.ClaudeConfig, logger *zap.Logger, opts ...providers.Option) (*ClaudeProvider, error) {
	if cfg.APIKey == "" {
		return nil, providers.MissingConfig("Anthropic", ProviderName, "apiKey")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := providers.ApplyOptions(logger, opts...)

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(providers.HTTPClient(cfg.Timeout)),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}
	if cfg.MaxRetries != nil {
		clientOpts = append(clientOpts, option.WithMaxRetries(*cfg.MaxRetries))
	}

	return &ClaudeProvider{
		client: anthropic.NewClient(clientOpts...),
		model:  providers.ChooseModel("", cfg.Model, DefaultModel),
		loader: o.Loader,
		logger: logger.With(zap.String("component", "provider"), zap.String("provider", ProviderName)),
	}, nil
}

// Name 返回提供者名称
func (p *ClaudeProvider) Name() string { return ProviderName }

// DefaultModel 返回默认模型
func (p *ClaudeProvider) DefaultModel() string { return p.model }

// Describe 读取图片并发送 base64 图片块与提示词，返回拼接后的文本块
func (p *ClaudeProvider) Describe(ctx context.Context, req *llm.DescribeRequest) (string, error) {
	img, err := p.loader.Load(ctx, req.Identifier)
	if err != nil {
		return "", err
	}

	model := req.ModelOr(p.model)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(multimodal.ClaudeMediaType(img.ContentType), img.Base64()),
				anthropic.NewTextBlock(req.Prompt),
			),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", mapError(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", providers.EmptyResponse("Claude", ProviderName)
	}

	p.logger.Debug("describe completed",
		zap.String("model", model),
		zap.String("identifier", req.Identifier),
		zap.String("media_type", img.ContentType),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return sb.String(), nil
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return providers.RequestFailed("Claude", ProviderName, apiErr.StatusCode, apiErr.RawJSON(), err)
	}
	return providers.RequestFailed("Claude", ProviderName, 0, "", err)
}

var _ llm.Provider = (*ClaudeProvider)(nil)
