package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/visiondesc/internal/metrics"
	"github.com/BaSui01/visiondesc/llm/batch"
	"github.com/BaSui01/visiondesc/llm/cache"
	"github.com/BaSui01/visiondesc/llm/observability"
	"github.com/BaSui01/visiondesc/types"
)

// Service 将单张图片的 Provider 调用与批量执行器组合为完整的描述服务。
// Service 由调用方显式构造并持有，可被多个 goroutine 并发使用。
type Service struct {
	provider     Provider
	logger       *zap.Logger
	collector    *metrics.Collector
	otel         *observability.Metrics
	cache        cache.Cache
	limiter      *rate.Limiter
	maxBatchSize int
}

// ServiceOption 配置 Service
type ServiceOption func(*Service)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics 设置 Prometheus 指标收集器
func WithMetrics(c *metrics.Collector) ServiceOption {
	return func(s *Service) { s.collector = c }
}

// WithObservability 设置 OpenTelemetry 追踪与指标
func WithObservability(m *observability.Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.otel = m
		}
	}
}

// WithCache 设置描述缓存
func WithCache(c cache.Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithRateLimiter 对 Provider 调用限速（缓存命中不计）
func WithRateLimiter(l *rate.Limiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithRateLimit 以每秒请求数与突发量创建限速器，rps<=0 表示不限速
func WithRateLimit(rps float64, burst int) ServiceOption {
	return func(s *Service) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBatchSize 覆盖单批上限，n<=0 时保持默认值
func WithMaxBatchSize(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// NewService 创建描述服务。provider 为 nil 时返回 NOT_CONFIGURED。
func NewService(provider Provider, opts ...ServiceOption) (*Service, error) {
	if provider == nil {
		return nil, types.NewError(types.ErrNotConfigured, "no description provider configured").
			WithHTTPStatus(http.StatusServiceUnavailable)
	}

	s := &Service{
		provider:     provider,
		logger:       zap.NewNop(),
		maxBatchSize: batch.DefaultMaxBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.otel == nil {
		m, err := observability.NewMetrics()
		if err != nil {
			return nil, err
		}
		s.otel = m
	}
	s.logger = s.logger.With(
		zap.String("component", "describe_service"),
		zap.String("provider", provider.Name()),
	)

	return s, nil
}

// Provider 返回底层 Provider
func (s *Service) Provider() Provider {
	return s.provider
}

// MaxBatchSize 返回单批上限
func (s *Service) MaxBatchSize() int {
	return s.maxBatchSize
}

// GetDescription 描述单张图片
func (s *Service) GetDescription(ctx context.Context, identifier string, opts *DescribeOptions) (string, error) {
	o := opts.WithDefaults()
	if _, ok := types.RequestID(ctx); !ok {
		ctx = types.WithRequestID(ctx, uuid.NewString())
	}
	ctx = types.WithProvider(ctx, s.provider.Name())

	return s.describe(ctx, o.Request(identifier))
}

// GetDescriptionBatch 以有界并发描述多张图片，结果与输入逐位对齐。
// 只有批次超过上限时返回错误；单张失败记录在对应的 Result 中。
func (s *Service) GetDescriptionBatch(ctx context.Context, identifiers []string, opts *DescribeOptions) ([]batch.Result, error) {
	o := opts.WithDefaults()
	batchID, ok := types.BatchID(ctx)
	if !ok {
		batchID = uuid.NewString()
		ctx = types.WithBatchID(ctx, batchID)
	}
	ctx = types.WithProvider(ctx, s.provider.Name())

	logger := s.logger.With(zap.String("batch_id", batchID))
	attrs := observability.BatchAttrs{
		Provider:    s.provider.Name(),
		BatchID:     batchID,
		Size:        len(identifiers),
		Concurrency: o.Concurrency,
	}
	ctx, span := s.otel.StartBatch(ctx, attrs)

	if err := batch.ValidateBatchSize(identifiers, s.maxBatchSize); err != nil {
		logger.Warn("batch rejected",
			zap.Int("size", len(identifiers)),
			zap.Int("max_batch_size", s.maxBatchSize),
		)
		if s.collector != nil {
			s.collector.RecordBatch(s.provider.Name(), "rejected", len(identifiers), 0)
		}
		s.otel.EndBatch(ctx, span, attrs, 0, 0, 0, err)
		return nil, err
	}

	logger.Info("batch started",
		zap.Int("size", len(identifiers)),
		zap.Int("concurrency", o.Concurrency),
	)

	executor := batch.NewExecutor(
		batch.Config{Concurrency: o.Concurrency, MaxBatchSize: s.maxBatchSize},
		batch.WithLogger(logger),
		batch.WithObserver(&batchObserver{provider: s.provider.Name(), collector: s.collector}),
	)

	start := time.Now()
	results, err := executor.Run(ctx, identifiers, func(ctx context.Context, identifier string) (string, error) {
		return s.describe(ctx, o.Request(identifier))
	})
	elapsed := time.Since(start)
	if err != nil {
		s.otel.EndBatch(ctx, span, attrs, 0, 0, elapsed, err)
		return nil, err
	}

	summary := batch.Summarize(results)
	s.otel.EndBatch(ctx, span, attrs, summary.Succeeded, summary.Failed, elapsed, nil)
	if s.collector != nil {
		s.collector.RecordBatch(s.provider.Name(), "completed", len(identifiers), elapsed)
	}

	logger.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", elapsed),
	)

	return results, nil
}

// describe 执行单张图片的描述：缓存、限速、Provider 调用、回写缓存。
func (s *Service) describe(ctx context.Context, req *DescribeRequest) (string, error) {
	if strings.TrimSpace(req.Identifier) == "" {
		return "", types.NewError(types.ErrInvalidRequest, "image identifier is empty").
			WithHTTPStatus(http.StatusBadRequest)
	}

	providerName := s.provider.Name()
	model := req.ModelOr(s.provider.DefaultModel())
	requestID, _ := types.RequestID(ctx)
	batchID, _ := types.BatchID(ctx)
	reqAttrs := observability.RequestAttrs{
		Provider:   providerName,
		Model:      model,
		Identifier: req.Identifier,
		RequestID:  requestID,
		BatchID:    batchID,
	}
	ctx, span := s.otel.StartDescribe(ctx, reqAttrs)

	var key string
	if s.cache != nil {
		key = cache.GenerateKey(cache.KeyParts{
			Provider:     providerName,
			Model:        model,
			Prompt:       req.Prompt,
			SystemPrompt: req.SystemPrompt,
			MaxTokens:    req.MaxTokens,
			Identifier:   req.Identifier,
		})
		if entry, err := s.cache.Get(ctx, key); err == nil {
			if s.collector != nil {
				s.collector.RecordCacheHit("description")
			}
			s.otel.EndDescribe(ctx, span, reqAttrs, observability.ResponseAttrs{
				Status: "success",
				Cached: true,
				Length: len(entry.Description),
			})
			return entry.Description, nil
		}
		if s.collector != nil {
			s.collector.RecordCacheMiss("description")
		}
		s.otel.RecordCacheMiss(ctx, providerName, model)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			} else {
				err = types.NewError(types.ErrRateLimit, "rate limit wait exceeds deadline").
					WithCause(err).
					WithRetryable(true).
					WithHTTPStatus(http.StatusTooManyRequests)
			}
			s.otel.EndDescribe(ctx, span, reqAttrs, observability.ResponseAttrs{
				Status:    "error",
				ErrorCode: string(types.GetErrorCode(err)),
				Err:       err,
			})
			return "", err
		}
	}

	start := time.Now()
	description, err := s.provider.Describe(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		if s.collector != nil {
			s.collector.RecordDescribe(providerName, model, "error", elapsed)
		}
		s.otel.EndDescribe(ctx, span, reqAttrs, observability.ResponseAttrs{
			Status:    "error",
			ErrorCode: string(types.GetErrorCode(err)),
			Err:       err,
			Duration:  elapsed,
		})
		s.logger.Debug("describe failed",
			zap.String("identifier", req.Identifier),
			zap.String("model", model),
			zap.Error(err),
		)
		return "", err
	}

	if s.collector != nil {
		s.collector.RecordDescribe(providerName, model, "success", elapsed)
	}
	s.otel.EndDescribe(ctx, span, reqAttrs, observability.ResponseAttrs{
		Status:   "success",
		Duration: elapsed,
		Length:   len(description),
	})

	if s.cache != nil {
		entry := &cache.Entry{Description: description, Provider: providerName, Model: model}
		if err := s.cache.Set(ctx, key, entry); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("cache set failed", zap.String("identifier", req.Identifier), zap.Error(err))
		}
	}

	return description, nil
}

// batchObserver 把执行器的条目事件转换为 Prometheus 指标
type batchObserver struct {
	provider  string
	collector *metrics.Collector
}

func (o *batchObserver) ItemStarted(index int, item string) {
	if o.collector != nil {
		o.collector.IncInFlight(o.provider)
	}
}

func (o *batchObserver) ItemFinished(index int, result batch.Result, elapsed time.Duration) {
	if o.collector != nil {
		o.collector.DecInFlight(o.provider)
		o.collector.RecordBatchItem(o.provider, result.Success)
	}
}
