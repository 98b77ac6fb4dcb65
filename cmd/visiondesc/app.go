package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/config"
	icache "github.com/BaSui01/visiondesc/internal/cache"
	"github.com/BaSui01/visiondesc/internal/metrics"
	"github.com/BaSui01/visiondesc/internal/telemetry"
	"github.com/BaSui01/visiondesc/llm"
	llmcache "github.com/BaSui01/visiondesc/llm/cache"
	llmfactory "github.com/BaSui01/visiondesc/llm/factory"
	"github.com/BaSui01/visiondesc/llm/multimodal"
	"github.com/BaSui01/visiondesc/llm/observability"
	"github.com/BaSui01/visiondesc/llm/providers"
)

// =============================================================================
// 🧩 应用装配
// =============================================================================

// App 持有由配置装配出的全部运行时组件
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  *llm.Registry
	Collector *metrics.Collector
	Telemetry *telemetry.Providers
	Redis     *icache.Manager
}

// newApp 按配置装配 Provider、描述服务、缓存、限速、指标与遥测。
// collector 为 nil 时不记录 Prometheus 指标（CLI 单次调用）。
func newApp(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Collector: collector,
	}

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
		otelProviders = &telemetry.Providers{}
	}
	app.Telemetry = otelProviders

	otelMetrics, err := observability.NewMetrics(
		observability.WithTracerProvider(otelProviders.TracerProvider()),
		observability.WithMeterProvider(otelProviders.MeterProvider()),
	)
	if err != nil {
		_ = app.Close(context.Background())
		return nil, fmt.Errorf("create observability metrics: %w", err)
	}

	serviceOpts := []llm.ServiceOption{
		llm.WithLogger(logger),
		llm.WithObservability(otelMetrics),
		llm.WithMaxBatchSize(cfg.Batch.MaxBatchSize),
		llm.WithRateLimit(cfg.Batch.RateLimitRPS, cfg.Batch.RateLimitBurst),
	}
	if collector != nil {
		serviceOpts = append(serviceOpts, llm.WithMetrics(collector))
	}

	if cfg.Cache.Enabled {
		descCache, err := app.buildCache()
		if err != nil {
			_ = app.Close(context.Background())
			return nil, err
		}
		serviceOpts = append(serviceOpts, llm.WithCache(descCache))
	}

	loader := multimodal.NewLoader(multimodal.LoaderConfig{
		Timeout:           cfg.Loader.Timeout,
		MaxImageSize:      cfg.Loader.MaxImageSize,
		UserAgent:         cfg.Loader.UserAgent,
		DisableLocalFiles: cfg.Loader.DisableLocalFiles,
	}, logger)

	reg, err := llmfactory.NewRegistry(llmfactory.RegistryConfig{
		Default:   cfg.Describe.Provider,
		Providers: cfg.Providers.ProviderConfigs(),
	}, logger, serviceOpts, providers.WithLoader(loader))
	app.Registry = reg
	if err != nil {
		_ = app.Close(context.Background())
		return nil, err
	}

	return app, nil
}

// buildCache 创建本地 LRU 缓存，启用 Redis 时挂载二级缓存
func (a *App) buildCache() (llmcache.Cache, error) {
	cc := a.Config.Cache
	cacheCfg := llmcache.Config{
		Enabled:      true,
		LocalMaxSize: cc.LocalMaxSize,
		LocalTTL:     cc.LocalTTL,
		RemoteTTL:    cc.Redis.TTL,
		KeyPrefix:    cc.KeyPrefix,
	}

	if !cc.Redis.Enabled {
		return llmcache.NewMultiLevelCache(nil, cacheCfg, a.Logger), nil
	}

	redisCfg := icache.DefaultConfig()
	redisCfg.Addr = cc.Redis.Addr
	redisCfg.Password = cc.Redis.Password
	redisCfg.DB = cc.Redis.DB
	redisCfg.DefaultTTL = cc.Redis.TTL
	redisCfg.TLSEnabled = cc.Redis.TLSEnabled
	if cc.Redis.PoolSize > 0 {
		redisCfg.PoolSize = cc.Redis.PoolSize
	}

	mgr, err := icache.NewManager(redisCfg, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
	}
	a.Redis = mgr
	return llmcache.NewMultiLevelCache(mgr, cacheCfg, a.Logger), nil
}

// Service 解析服务商名称，空名称返回默认服务
func (a *App) Service(name string) (*llm.Service, error) {
	return a.Registry.Resolve(llmfactory.NormalizeName(name))
}

// Close 释放 Redis 连接并刷新遥测数据
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
