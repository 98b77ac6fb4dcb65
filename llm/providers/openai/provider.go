package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/multimodal"
	"github.com/BaSui01/visiondesc/llm/providers"
)

const (
	// ProviderName 注册名
	ProviderName = "openai"
	// DefaultModel 未指定模型时使用的模型
	DefaultModel = "gpt-4o"
)

// Settings 描述一个 Chat Completions 兼容端点的差异部分。
// OpenAI 与 Azure OpenAI 共享请求构造和响应解析，只在这些字段上不同。
type Settings struct {
	Name  string // 注册名，用于日志与指标
	Label string // 错误消息中的展示名
	Model string // 默认模型
	// FixedModel 为 true 时忽略请求中的模型（Azure 的模型由部署决定）
	FixedModel bool
	// DefaultSystemPrompt 请求未指定系统提示时使用
	DefaultSystemPrompt string
}

// OpenAIProvider 实现 OpenAI 图片描述。
// 远程图片以 image_url 传递，本地文件读取后以 base64 data URL 传递。
type OpenAIProvider struct {
	client   openaisdk.Client
	settings Settings
	loader   *multimodal.Loader
	logger   *zap.Logger
}

// NewOpenAIProvider 创建 OpenAI 提供者。APIKey 缺失时返回 NOT_CONFIGURED。
func NewOpenAIProvider(cfg providers.OpenAIConfig, logger *zap.Logger, opts ...providers.Option) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, providers.MissingConfig("OpenAI", ProviderName, "apiKey")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(providers.HTTPClient(cfg.Timeout)),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}
	if cfg.Organization != "" {
		clientOpts = append(clientOpts, option.WithOrganization(cfg.Organization))
	}
	if cfg.MaxRetries != nil {
		clientOpts = append(clientOpts, option.WithMaxRetries(*cfg.MaxRetries))
	}

	return NewWithSettings(Settings{
		Name:  ProviderName,
		Label: "OpenAI",
		Model: providers.ChooseModel("", cfg.Model, DefaultModel),
	}, clientOpts, logger, opts...), nil
}

// NewWithSettings 用给定的 SDK 选项创建 Chat Completions 提供者，供兼容端点复用
func NewWithSettings(settings Settings, clientOpts []option.RequestOption, logger *zap.Logger, opts ...providers.Option) *OpenAIProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := providers.ApplyOptions(logger, opts...)

	return &OpenAIProvider{
		client:   openaisdk.NewClient(clientOpts...),
		settings: settings,
		loader:   o.Loader,
		logger:   logger.With(zap.String("component", "provider"), zap.String("provider", settings.Name)),
	}
}

// Name 返回提供者名称
func (p *OpenAIProvider) Name() string { return p.settings.Name }

// DefaultModel 返回默认模型
func (p *OpenAIProvider) DefaultModel() string { return p.settings.Model }

// Describe 发送一张图片与提示词，返回模型的文本描述
func (p *OpenAIProvider) Describe(ctx context.Context, req *llm.DescribeRequest) (string, error) {
	imageURL, err := providers.ImageURL(ctx, p.loader, req.Identifier)
	if err != nil {
		return "", err
	}

	model := p.settings.Model
	if !p.settings.FixedModel {
		model = req.ModelOr(model)
	}
	params := p.buildParams(req, model, imageURL)

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", p.mapError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", providers.EmptyResponse(p.settings.Label, p.settings.Name)
	}

	p.logger.Debug("describe completed",
		zap.String("model", model),
		zap.String("identifier", req.Identifier),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) buildParams(req *llm.DescribeRequest, model, imageURL string) openaisdk.ChatCompletionNewParams {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = p.settings.DefaultSystemPrompt
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openaisdk.SystemMessage(systemPrompt))
	}
	messages = append(messages, openaisdk.UserMessage([]openaisdk.ChatCompletionContentPartUnionParam{
		openaisdk.TextContentPart(req.Prompt),
		openaisdk.ImageContentPart(openaisdk.ChatCompletionContentPartImageImageURLParam{URL: imageURL}),
	}))

	return openaisdk.ChatCompletionNewParams{
		Model:     openaisdk.ChatModel(model),
		Messages:  messages,
		MaxTokens: openaisdk.Int(int64(req.MaxTokens)),
	}
}

func (p *OpenAIProvider) mapError(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		return providers.RequestFailed(p.settings.Label, p.settings.Name, apiErr.StatusCode, apiErr.RawJSON(), err)
	}
	return providers.RequestFailed(p.settings.Label, p.settings.Name, 0, "", err)
}

var _ llm.Provider = (*OpenAIProvider)(nil)
