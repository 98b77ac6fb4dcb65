// Package visiondesc provides a top-level convenience entry point for
// describing images with OpenAI, Azure OpenAI or Anthropic Claude.
//
// Usage:
//
//	import "github.com/BaSui01/visiondesc"
//
//	svc, err := visiondesc.NewOpenAI(providers.OpenAIConfig{})          // OPENAI_API_KEY
//	svc, err := visiondesc.NewClaude(providers.ClaudeConfig{})          // ANTHROPIC_API_KEY
//	svc, err := visiondesc.New("azure", providers.Configs{}, visiondesc.WithLogger(l))
//
//	text, err := svc.GetDescription(ctx, "https://example.com/dog.jpg", nil)
//	results, err := svc.GetDescriptionBatch(ctx, images, &visiondesc.DescribeOptions{Concurrency: 5})
//
// Missing credentials fall back to the provider's conventional environment
// variables. Every constructor returns an [llm.Service]; batch calls never
// fail as a whole because of one image.
package visiondesc

import (
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/batch"
	"github.com/BaSui01/visiondesc/llm/factory"
	"github.com/BaSui01/visiondesc/llm/providers"
)

// DescribeOptions are the optional per-call parameters.
type DescribeOptions = llm.DescribeOptions

// Result is the outcome of one image within a batch.
type Result = batch.Result

// Option configures the service created by the constructors.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	serviceOpts  []llm.ServiceOption
	providerOpts []providers.Option
}

// WithLogger sets a custom zap logger for the provider and the service.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithServiceOptions adds options such as cache, rate limit or metrics.
func WithServiceOptions(opts ...llm.ServiceOption) Option {
	return func(o *options) { o.serviceOpts = append(o.serviceOpts, opts...) }
}

// WithProviderOptions adds provider options such as a custom image loader.
func WithProviderOptions(opts ...providers.Option) Option {
	return func(o *options) { o.providerOpts = append(o.providerOpts, opts...) }
}

// New creates a describe service for the named provider.
// Supported names: openai, azure (azure-openai), claude (anthropic).
func New(name string, configs providers.Configs, opts ...Option) (*llm.Service, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	p, err := factory.NewProvider(name, configs.WithEnvFallback(), o.logger, o.providerOpts...)
	if err != nil {
		return nil, err
	}

	serviceOpts := append([]llm.ServiceOption{llm.WithLogger(o.logger)}, o.serviceOpts...)
	return llm.NewService(p, serviceOpts...)
}

// NewOpenAI creates an OpenAI describe service. API key from OPENAI_API_KEY when unset.
func NewOpenAI(cfg providers.OpenAIConfig, opts ...Option) (*llm.Service, error) {
	return New("openai", providers.Configs{OpenAI: cfg}, opts...)
}

// NewAzureOpenAI creates an Azure OpenAI describe service.
// Missing fields come from AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT,
// AZURE_OPENAI_DEPLOYMENT and AZURE_OPENAI_API_VERSION.
func NewAzureOpenAI(cfg providers.AzureOpenAIConfig, opts ...Option) (*llm.Service, error) {
	return New("azure", providers.Configs{Azure: cfg}, opts...)
}

// NewClaude creates an Anthropic Claude describe service. API key from ANTHROPIC_API_KEY when unset.
func NewClaude(cfg providers.ClaudeConfig, opts ...Option) (*llm.Service, error) {
	return New("claude", providers.Configs{Claude: cfg}, opts...)
}
