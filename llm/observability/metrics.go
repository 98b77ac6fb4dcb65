package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/BaSui01/visiondesc/llm"

// Metrics 图片描述的 OpenTelemetry 追踪与指标
type Metrics struct {
	tracer trace.Tracer
	meter  metric.Meter
	// 计数器
	describeTotal  metric.Int64Counter
	errorTotal     metric.Int64Counter
	cacheHitTotal  metric.Int64Counter
	cacheMissTotal metric.Int64Counter
	batchItemTotal metric.Int64Counter
	// 直方图
	describeDuration metric.Float64Histogram
	batchDuration    metric.Float64Histogram
	// 活跃请求
	activeRequests metric.Int64UpDownCounter
}

// Option 配置 Metrics
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider 使用指定的 TracerProvider，默认使用全局 Provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider 使用指定的 MeterProvider，默认使用全局 Provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// NewMetrics 创建指标收集器
func NewMetrics(opts ...Option) (*Metrics, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}

	m := &Metrics{
		tracer: o.tracerProvider.Tracer(instrumentationName),
		meter:  o.meterProvider.Meter(instrumentationName),
	}

	var err error

	// 描述请求计数
	m.describeTotal, err = m.meter.Int64Counter("visiondesc.describe.total",
		metric.WithDescription("Total number of describe calls sent to a provider"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	// 错误计数
	m.errorTotal, err = m.meter.Int64Counter("visiondesc.error.total",
		metric.WithDescription("Total number of describe errors"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	// 缓存命中
	m.cacheHitTotal, err = m.meter.Int64Counter("visiondesc.cache.hit.total",
		metric.WithDescription("Total cache hits"),
		metric.WithUnit("{hit}"))
	if err != nil {
		return nil, err
	}

	// 缓存未命中
	m.cacheMissTotal, err = m.meter.Int64Counter("visiondesc.cache.miss.total",
		metric.WithDescription("Total cache misses"),
		metric.WithUnit("{miss}"))
	if err != nil {
		return nil, err
	}

	// 批量条目
	m.batchItemTotal, err = m.meter.Int64Counter("visiondesc.batch.item.total",
		metric.WithDescription("Total batch items by outcome"),
		metric.WithUnit("{item}"))
	if err != nil {
		return nil, err
	}

	// 描述延迟
	m.describeDuration, err = m.meter.Float64Histogram("visiondesc.describe.duration",
		metric.WithDescription("Describe call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30))
	if err != nil {
		return nil, err
	}

	// 批次延迟
	m.batchDuration, err = m.meter.Float64Histogram("visiondesc.batch.duration",
		metric.WithDescription("Batch duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120))
	if err != nil {
		return nil, err
	}

	// 活跃请求数
	m.activeRequests, err = m.meter.Int64UpDownCounter("visiondesc.describe.active",
		metric.WithDescription("Number of active describe calls"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RequestAttrs 请求属性
type RequestAttrs struct {
	Provider   string
	Model      string
	Identifier string
	RequestID  string
	BatchID    string
}

func (a RequestAttrs) common() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("provider", a.Provider),
		attribute.String("model", a.Model),
	}
}

// ResponseAttrs 响应属性
type ResponseAttrs struct {
	Status    string
	ErrorCode string
	Err       error
	Duration  time.Duration
	Cached    bool
	Length    int
}

// StartDescribe 开始单张图片的描述追踪
func (m *Metrics) StartDescribe(ctx context.Context, attrs RequestAttrs) (context.Context, trace.Span) {
	spanAttrs := []attribute.KeyValue{
		attribute.String("visiondesc.provider", attrs.Provider),
		attribute.String("visiondesc.model", attrs.Model),
		attribute.String("visiondesc.identifier", attrs.Identifier),
	}
	if attrs.RequestID != "" {
		spanAttrs = append(spanAttrs, attribute.String("visiondesc.request_id", attrs.RequestID))
	}
	if attrs.BatchID != "" {
		spanAttrs = append(spanAttrs, attribute.String("visiondesc.batch_id", attrs.BatchID))
	}

	ctx, span := m.tracer.Start(ctx, "visiondesc.describe", trace.WithAttributes(spanAttrs...))

	m.activeRequests.Add(ctx, 1, metric.WithAttributes(attrs.common()...))

	return ctx, span
}

// EndDescribe 结束描述追踪
func (m *Metrics) EndDescribe(ctx context.Context, span trace.Span, req RequestAttrs, resp ResponseAttrs) {
	defer span.End()

	commonAttrs := append(req.common(), attribute.String("status", resp.Status))

	m.activeRequests.Add(ctx, -1, metric.WithAttributes(req.common()...))

	if resp.Cached {
		m.cacheHitTotal.Add(ctx, 1, metric.WithAttributes(req.common()...))
		span.SetAttributes(attribute.Bool("visiondesc.cache_hit", true))
	} else {
		m.describeTotal.Add(ctx, 1, metric.WithAttributes(commonAttrs...))
		m.describeDuration.Record(ctx, resp.Duration.Seconds(), metric.WithAttributes(commonAttrs...))
	}

	if resp.Err != nil {
		m.errorTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", req.Provider),
			attribute.String("model", req.Model),
			attribute.String("error_code", resp.ErrorCode)))

		span.RecordError(resp.Err)
		span.SetStatus(codes.Error, resp.Err.Error())
		span.SetAttributes(attribute.String("error.code", resp.ErrorCode))
	}

	span.SetAttributes(
		attribute.String("visiondesc.status", resp.Status),
		attribute.Int("visiondesc.description_length", resp.Length),
		attribute.Float64("visiondesc.duration_ms", float64(resp.Duration.Milliseconds())))
}

// RecordCacheMiss 记录缓存未命中
func (m *Metrics) RecordCacheMiss(ctx context.Context, provider, model string) {
	m.cacheMissTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model)))
}

// BatchAttrs 批次属性
type BatchAttrs struct {
	Provider    string
	BatchID     string
	Size        int
	Concurrency int
}

// StartBatch 开始批次追踪
func (m *Metrics) StartBatch(ctx context.Context, attrs BatchAttrs) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "visiondesc.describe_batch",
		trace.WithAttributes(
			attribute.String("visiondesc.provider", attrs.Provider),
			attribute.String("visiondesc.batch_id", attrs.BatchID),
			attribute.Int("visiondesc.batch.size", attrs.Size),
			attribute.Int("visiondesc.batch.concurrency", attrs.Concurrency)))
}

// EndBatch 结束批次追踪；err 只在前置条件失败时非空
func (m *Metrics) EndBatch(ctx context.Context, span trace.Span, attrs BatchAttrs, succeeded, failed int, duration time.Duration, err error) {
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	providerAttr := attribute.String("provider", attrs.Provider)
	m.batchItemTotal.Add(ctx, int64(succeeded), metric.WithAttributes(providerAttr, attribute.String("status", "success")))
	m.batchItemTotal.Add(ctx, int64(failed), metric.WithAttributes(providerAttr, attribute.String("status", "failure")))
	m.batchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(providerAttr))

	span.SetAttributes(
		attribute.Int("visiondesc.batch.succeeded", succeeded),
		attribute.Int("visiondesc.batch.failed", failed))
}

// Tracer 获取 Tracer
func (m *Metrics) Tracer() trace.Tracer {
	return m.tracer
}
