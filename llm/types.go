package llm

const (
	// DefaultPrompt is sent when the caller gives no prompt.
	DefaultPrompt = "What's in this image?"

	// DefaultMaxTokens bounds the length of a description.
	DefaultMaxTokens = 300

	// DefaultConcurrency is the batch concurrency when none is given.
	DefaultConcurrency = 3
)

// DescribeOptions 调用方可选的生成参数
type DescribeOptions struct {
	Prompt       string `json:"prompt,omitempty" yaml:"prompt"`
	MaxTokens    int    `json:"max_tokens,omitempty" yaml:"max_tokens"`
	Model        string `json:"model,omitempty" yaml:"model"`
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt"`
	// Concurrency 只对批量调用生效
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency"`
}

// WithDefaults returns a copy with zero fields filled in. A nil receiver
// yields the defaults. Model is left empty so providers apply their own.
func (o *DescribeOptions) WithDefaults() DescribeOptions {
	var out DescribeOptions
	if o != nil {
		out = *o
	}
	if out.Prompt == "" {
		out.Prompt = DefaultPrompt
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	if out.Concurrency <= 0 {
		out.Concurrency = DefaultConcurrency
	}
	return out
}

// DescribeRequest 单张图片的描述请求
type DescribeRequest struct {
	Identifier   string `json:"identifier"`
	Prompt       string `json:"prompt"`
	MaxTokens    int    `json:"max_tokens"`
	Model        string `json:"model,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// Request builds the single-item request for identifier.
func (o DescribeOptions) Request(identifier string) *DescribeRequest {
	return &DescribeRequest{
		Identifier:   identifier,
		Prompt:       o.Prompt,
		MaxTokens:    o.MaxTokens,
		Model:        o.Model,
		SystemPrompt: o.SystemPrompt,
	}
}

// ModelOr returns the request model, or fallback when unset.
func (r *DescribeRequest) ModelOr(fallback string) string {
	if r.Model != "" {
		return r.Model
	}
	return fallback
}
