package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.describeRequestsTotal)
	assert.NotNil(t, collector.describeRequestDuration)
	assert.NotNil(t, collector.batchRunsTotal)
	assert.NotNil(t, collector.batchItemsTotal)
}

func TestNewCollector_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector(nextTestNamespace(), nil)
	})
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("POST", "/v1/describe", 200, 100*time.Millisecond)
	collector.RecordHTTPRequest("POST", "/v1/describe", 201, 50*time.Millisecond)
	collector.RecordHTTPRequest("POST", "/v1/describe/batch", 400, 5*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/v1/describe", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/v1/describe/batch", "4xx")))
}

func TestCollector_RecordDescribe(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordDescribe("openai", "gpt-4o", "success", 500*time.Millisecond)
	collector.RecordDescribe("openai", "gpt-4o", "error", 20*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.describeRequestsTotal.WithLabelValues("openai", "gpt-4o", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.describeRequestsTotal.WithLabelValues("openai", "gpt-4o", "error")))
	assert.Greater(t, testutil.CollectAndCount(collector.describeRequestDuration), 0)
}

func TestCollector_InFlight(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.IncInFlight("claude")
	collector.IncInFlight("claude")
	collector.DecInFlight("claude")

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.describeInFlight.WithLabelValues("claude")))
}

func TestCollector_RecordBatch(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordBatch("azure-openai", "completed", 3, 2*time.Second)
	collector.RecordBatch("azure-openai", "rejected", 21, 0)
	collector.RecordBatchItem("azure-openai", true)
	collector.RecordBatchItem("azure-openai", true)
	collector.RecordBatchItem("azure-openai", false)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.batchRunsTotal.WithLabelValues("azure-openai", "completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.batchRunsTotal.WithLabelValues("azure-openai", "rejected")))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.batchItemsTotal.WithLabelValues("azure-openai", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.batchItemsTotal.WithLabelValues("azure-openai", "failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.batchDuration))
}

func TestCollector_RecordCacheOperation(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordCacheHit("description")
	collector.RecordCacheMiss("description")
	collector.RecordCacheMiss("description")

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.cacheHits.WithLabelValues("description")))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.cacheMisses.WithLabelValues("description")))
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
			collector.RecordDescribe("openai", "gpt-4o", "success", 100*time.Millisecond)
			collector.RecordBatchItem("openai", true)
			collector.RecordCacheHit("description")
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(10), testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "/health", "2xx")))
	assert.Equal(t, float64(10), testutil.ToFloat64(collector.describeRequestsTotal.WithLabelValues("openai", "gpt-4o", "success")))
	assert.Equal(t, float64(10), testutil.ToFloat64(collector.batchItemsTotal.WithLabelValues("openai", "success")))
}

func TestCollector_MetricsRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	// 创建 collector（会自动注册到默认 registry）
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	// 手动注册到自定义 registry
	registry.MustRegister(collector.describeRequestsTotal)
	collector.RecordDescribe("claude", "claude-3-sonnet-20240229", "success", time.Second)

	count, err := testutil.GatherAndCount(registry)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{302, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
		{100, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCode(tt.code))
	}
}
