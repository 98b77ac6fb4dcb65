package llm

import (
	"net/http"
	"sort"
	"sync"

	"github.com/BaSui01/visiondesc/types"
)

// Registry 按 Provider 名称管理多个描述服务，并指定一个默认服务。
// 可被多个 goroutine 并发使用。
type Registry struct {
	services       map[string]*Service
	defaultService string
	mu             sync.RWMutex
}

// NewRegistry 创建空的 Registry
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]*Service),
	}
}

// Register 以 Provider 名称登记服务，同名服务被替换
func (r *Registry) Register(svc *Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.Provider().Name()] = svc
}

// Get 按名称查找服务
func (r *Registry) Get(name string) (*Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[name]
	return svc, ok
}

// Default 返回默认服务，未设置或已被移除时返回 NOT_CONFIGURED
func (r *Registry) Default() (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultService == "" {
		return nil, types.NewError(types.ErrNotConfigured, "no default provider set").
			WithHTTPStatus(http.StatusServiceUnavailable)
	}
	svc, ok := r.services[r.defaultService]
	if !ok {
		return nil, types.Errorf(types.ErrNotConfigured, "default provider %q not registered", r.defaultService).
			WithHTTPStatus(http.StatusServiceUnavailable)
	}
	return svc, nil
}

// SetDefault 把已登记的服务设为默认
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[name]; !ok {
		return types.Errorf(types.ErrNotConfigured, "provider %q not registered", name).
			WithHTTPStatus(http.StatusServiceUnavailable)
	}
	r.defaultService = name
	return nil
}

// Resolve 空名称返回默认服务，否则按名称查找
func (r *Registry) Resolve(name string) (*Service, error) {
	if name == "" {
		return r.Default()
	}
	if svc, ok := r.Get(name); ok {
		return svc, nil
	}
	return nil, types.Errorf(types.ErrNotConfigured, "provider %q not configured", name).
		WithHTTPStatus(http.StatusBadRequest)
}

// List 返回排序后的已登记名称
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len 返回已登记的服务数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}
