// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 描述请求指标
	describeRequestsTotal   *prometheus.CounterVec
	describeRequestDuration *prometheus.HistogramVec
	describeInFlight        *prometheus.GaugeVec

	// 批量指标
	batchRunsTotal  *prometheus.CounterVec
	batchItemsTotal *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchSize       *prometheus.HistogramVec

	// 缓存指标
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 描述请求指标
	c.describeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "describe_requests_total",
			Help:      "Total number of single-image describe calls sent to a provider",
		},
		[]string{"provider", "model", "status"},
	)

	c.describeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "describe_request_duration_seconds",
			Help:      "Describe call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	c.describeInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "describe_in_flight",
			Help:      "Number of batch items currently being described",
		},
		[]string{"provider"},
	)

	// 批量指标
	c.batchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_runs_total",
			Help:      "Total number of batch describe calls",
		},
		[]string{"provider", "status"}, // status: completed, rejected
	)

	c.batchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Total number of batch items by outcome",
		},
		[]string{"provider", "status"}, // status: success, failure
	)

	c.batchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Batch describe duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"provider"},
	)

	c.batchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size_items",
			Help:      "Number of identifiers per batch call",
			Buckets:   []float64{1, 2, 5, 10, 15, 20},
		},
		[]string{"provider"},
	)

	// 缓存指标
	c.cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	c.cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// =============================================================================
// 🖼️ 描述请求指标记录
// =============================================================================

// RecordDescribe 记录一次 Provider 描述调用
func (c *Collector) RecordDescribe(provider, model, status string, duration time.Duration) {
	c.describeRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.describeRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// IncInFlight 批量条目开始执行
func (c *Collector) IncInFlight(provider string) {
	c.describeInFlight.WithLabelValues(provider).Inc()
}

// DecInFlight 批量条目执行结束
func (c *Collector) DecInFlight(provider string) {
	c.describeInFlight.WithLabelValues(provider).Dec()
}

// =============================================================================
// 📦 批量指标记录
// =============================================================================

// RecordBatch 记录一次批量调用
func (c *Collector) RecordBatch(provider, status string, size int, duration time.Duration) {
	c.batchRunsTotal.WithLabelValues(provider, status).Inc()
	c.batchSize.WithLabelValues(provider).Observe(float64(size))
	if status != "rejected" {
		c.batchDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// RecordBatchItem 记录单个批量条目的结果
func (c *Collector) RecordBatchItem(provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.batchItemsTotal.WithLabelValues(provider, status).Inc()
}

// =============================================================================
// 💾 缓存指标记录
// =============================================================================

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(cacheType string) {
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
