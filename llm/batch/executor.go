package batch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/BaSui01/visiondesc/types"
)

const (
	// DefaultConcurrency is used when no positive concurrency is configured.
	DefaultConcurrency = 3

	// DefaultMaxBatchSize is the per-call item ceiling.
	DefaultMaxBatchSize = 20
)

// ErrNilOperation is returned by Run when op is nil.
var ErrNilOperation = errors.New("batch operation is nil")

// errEmptyDescription replaces a successful operation that produced no text.
var errEmptyDescription = errors.New("operation returned an empty description")

// Operation turns one identifier into a description or fails.
type Operation func(ctx context.Context, item string) (string, error)

// Result is the outcome of one item, aligned by position with the input.
// Exactly one of Description and Error is non-empty.
type Result struct {
	Identifier  string `json:"identifier"`
	Success     bool   `json:"success"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Config 配置批量执行器。
type Config struct {
	// Concurrency 同时执行的 Operation 上限，<=0 时使用 DefaultConcurrency
	Concurrency int `json:"concurrency" yaml:"concurrency"`
	// MaxBatchSize 单次调用的条目上限，<=0 时执行器不做上限检查
	MaxBatchSize int `json:"max_batch_size" yaml:"max_batch_size"`
}

// DefaultConfig 返回合理的默认值。
func DefaultConfig() Config {
	return Config{
		Concurrency:  DefaultConcurrency,
		MaxBatchSize: DefaultMaxBatchSize,
	}
}

// Observer receives per-item lifecycle callbacks. Implementations must be
// safe for concurrent use.
type Observer interface {
	ItemStarted(index int, item string)
	ItemFinished(index int, result Result, elapsed time.Duration)
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Executor runs an Operation over many items with bounded concurrency.
// An Executor holds no per-call state and may be shared by concurrent Run calls.
type Executor struct {
	config   Config
	observer Observer
	logger   *zap.Logger
}

// NewExecutor 创建新的批量执行器。
func NewExecutor(config Config, opts ...Option) *Executor {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	e := &Executor{
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("component", "batch_executor"))
	return e
}

// Config returns the effective configuration.
func (e *Executor) Config() Config {
	return e.config
}

// Run executes op once per item and returns one Result per item in input
// order. The only error returned is a precondition failure (batch too large or
// nil op); per-item failures are reported inside the results.
//
// If ctx is cancelled, items that have not started yet are recorded as failed
// with the context error; items already running are awaited.
func (e *Executor) Run(ctx context.Context, items []string, op Operation) ([]Result, error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	if e.config.MaxBatchSize > 0 {
		if err := ValidateBatchSize(items, e.config.MaxBatchSize); err != nil {
			return nil, err
		}
	}

	results := make([]Result, len(items))
	if len(items) == 0 {
		return results, nil
	}

	sem := semaphore.NewWeighted(int64(e.config.Concurrency))
	var wg sync.WaitGroup

	for i, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			e.logger.Debug("batch cancelled before all items started",
				zap.Int("started", i),
				zap.Int("total", len(items)),
				zap.Error(err),
			)
			for j := i; j < len(items); j++ {
				results[j] = failure(items[j], err)
			}
			break
		}

		wg.Add(1)
		go func(index int, item string) {
			defer wg.Done()
			defer sem.Release(1)
			results[index] = e.runItem(ctx, index, item, op)
		}(i, item)
	}

	wg.Wait()
	return results, nil
}

func (e *Executor) runItem(ctx context.Context, index int, item string, op Operation) (result Result) {
	if e.observer != nil {
		e.observer.ItemStarted(index, item)
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("batch item panicked",
				zap.Int("index", index),
				zap.String("item", item),
				zap.Any("panic", r),
			)
			result = failure(item, fmt.Errorf("panic: %v", r))
		}
		if e.observer != nil {
			e.observer.ItemFinished(index, result, time.Since(start))
		}
	}()

	description, err := op(ctx, item)
	if err != nil {
		e.logger.Debug("batch item failed",
			zap.Int("index", index),
			zap.String("item", item),
			zap.Error(err),
		)
		return failure(item, err)
	}
	if description == "" {
		e.logger.Debug("batch item produced no description",
			zap.Int("index", index),
			zap.String("item", item),
		)
		return failure(item, errEmptyDescription)
	}
	return Result{Identifier: item, Success: true, Description: description}
}

// failure records err on the item. Structured errors contribute their
// message without the code prefix; an empty message falls back to the
// error's code or type.
func failure(item string, err error) Result {
	msg := err.Error()
	if e, ok := types.AsError(err); ok {
		switch {
		case e.Message != "":
			msg = e.Message
		case e.Code != "":
			msg = string(e.Code)
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("operation failed (%T)", err)
	}
	return Result{Identifier: item, Success: false, Error: msg}
}

// Run executes op over items with the given concurrency and no batch-size cap.
func Run(ctx context.Context, items []string, op Operation, concurrency int) ([]Result, error) {
	return NewExecutor(Config{Concurrency: concurrency}).Run(ctx, items, op)
}

// ValidateBatchSize rejects item lists longer than limit. A non-positive
// limit means DefaultMaxBatchSize; callers that want no cap skip the call.
func ValidateBatchSize(items []string, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxBatchSize
	}
	if len(items) <= limit {
		return nil
	}
	return types.Errorf(types.ErrBatchTooLarge, "Maximum of %d images allowed per batch request", limit).
		WithHTTPStatus(http.StatusBadRequest)
}

// Summary 聚合一批结果的统计。
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Summarize counts successes and failures.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// SuccessRate returns the fraction of succeeded items.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}
