// MockProvider 是 llm.Provider 的测试模拟实现。
//
// 支持固定响应、按标识符注入错误、人为延迟与并发探针。
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/visiondesc/llm"
	"github.com/BaSui01/visiondesc/testutil"
)

// --- MockProvider 结构 ---

// MockProvider 是图片描述 Provider 的模拟实现
type MockProvider struct {
	mu sync.Mutex

	// 响应配置
	name         string
	model        string
	response     string
	responseFunc func(req *llm.DescribeRequest) (string, error)
	err          error
	errFor       map[string]error
	panicFor     map[string]bool

	// 行为控制
	delay time.Duration
	probe *testutil.ConcurrencyProbe

	// 调用记录
	calls []llm.DescribeRequest
}

// --- 构造函数和 Builder 方法 ---

// NewMockProvider 创建新的 MockProvider，默认返回 "description of <identifier>"
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:     "mock",
		model:    "mock-vision",
		errFor:   make(map[string]error),
		panicFor: make(map[string]bool),
	}
}

// WithName 设置 Provider 名称
func (m *MockProvider) WithName(name string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	return m
}

// WithModel 设置默认模型
func (m *MockProvider) WithModel(model string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
	return m
}

// WithResponse 设置固定响应内容
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithResponseFunc 设置自定义响应函数，优先级高于固定响应
func (m *MockProvider) WithResponseFunc(fn func(req *llm.DescribeRequest) (string, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responseFunc = fn
	return m
}

// WithError 所有调用都返回 err
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithErrorFor 指定标识符返回 err
func (m *MockProvider) WithErrorFor(identifier string, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errFor[identifier] = err
	return m
}

// WithPanicFor 指定标识符触发 panic
func (m *MockProvider) WithPanicFor(identifier string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicFor[identifier] = true
	return m
}

// WithDelay 设置响应延迟，ctx 取消时提前返回
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithProbe 记录同时在途的调用数
func (m *MockProvider) WithProbe(p *testutil.ConcurrencyProbe) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probe = p
	return m
}

// --- llm.Provider 实现 ---

// Name 返回 Provider 名称
func (m *MockProvider) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// DefaultModel 返回默认模型
func (m *MockProvider) DefaultModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// Describe 按配置返回描述或错误
func (m *MockProvider) Describe(ctx context.Context, req *llm.DescribeRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, *req)
	probe := m.probe
	delay := m.delay
	err := m.err
	itemErr, hasItemErr := m.errFor[req.Identifier]
	shouldPanic := m.panicFor[req.Identifier]
	fn := m.responseFunc
	response := m.response
	m.mu.Unlock()

	if probe != nil {
		exit := probe.Enter(req.Identifier)
		defer exit()
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if shouldPanic {
		panic("mock provider panic for " + req.Identifier)
	}
	if hasItemErr {
		return "", itemErr
	}
	if err != nil {
		return "", err
	}
	if fn != nil {
		return fn(req)
	}
	if response != "" {
		return response, nil
	}
	return "description of " + req.Identifier, nil
}

// --- 查询方法 ---

// Calls 返回所有调用记录的副本
func (m *MockProvider) Calls() []llm.DescribeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.DescribeRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回调用次数
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall 返回最后一次调用，没有调用时返回 nil
func (m *MockProvider) LastCall() *llm.DescribeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	c := m.calls[len(m.calls)-1]
	return &c
}

// Reset 清空调用记录
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

var _ llm.Provider = (*MockProvider)(nil)
