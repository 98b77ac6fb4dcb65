package api

import (
	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/llm/batch"
)

// =============================================================================
// 图片描述类型
// =============================================================================

// DescribeOptions 描述请求的可选参数，未设置的字段使用服务端默认值。
type DescribeOptions struct {
	// 服务商名称（openai、azure、claude），为空时使用默认服务商
	Provider string `json:"provider,omitempty" example:"openai"`
	// 提示词
	Prompt string `json:"prompt,omitempty" example:"What's in this image?"`
	// 最大生成 Token 数
	MaxTokens int `json:"max_tokens,omitempty" example:"300"`
	// 模型名称，为空时使用服务商默认模型
	Model string `json:"model,omitempty" example:"gpt-4o"`
	// 系统提示词
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// LLMOptions 转换为 llm.DescribeOptions
func (o DescribeOptions) LLMOptions() *llm.DescribeOptions {
	return &llm.DescribeOptions{
		Prompt:       o.Prompt,
		MaxTokens:    o.MaxTokens,
		Model:        o.Model,
		SystemPrompt: o.SystemPrompt,
	}
}

// DescribeRequest 单张图片描述请求。
// @Description 单张图片描述请求结构
type DescribeRequest struct {
	// 图片 http(s) URL 或 data URL，不接受服务端本地路径
	Identifier string `json:"identifier" example:"https://example.com/dog.jpg" binding:"required"`
	DescribeOptions
}

// DescribeResponse 单张图片描述响应。
// @Description 单张图片描述响应结构
type DescribeResponse struct {
	// 图片标识
	Identifier string `json:"identifier"`
	// 生成的描述
	Description string `json:"description"`
	// 处理请求的服务商
	Provider string `json:"provider"`
}

// BatchDescribeRequest 批量描述请求。
// @Description 批量描述请求结构
type BatchDescribeRequest struct {
	// 图片标识列表，顺序即结果顺序
	Identifiers []string `json:"identifiers" binding:"required"`
	DescribeOptions
	// 最大并发数，默认 3
	Concurrency int `json:"concurrency,omitempty" example:"3"`
}

// LLMOptions 转换为 llm.DescribeOptions
func (r BatchDescribeRequest) LLMOptions() *llm.DescribeOptions {
	o := r.DescribeOptions.LLMOptions()
	o.Concurrency = r.Concurrency
	return o
}

// BatchDescribeResponse 批量描述响应。
// @Description 批量描述响应结构
type BatchDescribeResponse struct {
	// 批次 ID
	BatchID string `json:"batch_id"`
	// 处理请求的服务商
	Provider string `json:"provider"`
	// 与输入逐位对齐的结果
	Results []batch.Result `json:"results"`
	// 成功/失败统计
	Summary batch.Summary `json:"summary"`
}

// ProvidersResponse 已配置服务商列表。
type ProvidersResponse struct {
	Default   string   `json:"default"`
	Providers []string `json:"providers"`
}
