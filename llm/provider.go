package llm

import "context"

// Provider 定义了统一的图片描述适配接口。
// 每个实现只负责单张图片的请求构建与响应解析，批量与并发由 Service 负责。
type Provider interface {
	// Describe 对单张图片生成文字描述
	Describe(ctx context.Context, req *DescribeRequest) (string, error)

	// Name 返回 Provider 的唯一标识
	Name() string

	// DefaultModel 返回请求未指定模型时使用的模型（Azure 为部署名）
	DefaultModel() string
}
