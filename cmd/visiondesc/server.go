package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/api/handlers"
	"github.com/BaSui01/visiondesc/internal/server"
)

// =============================================================================
// 🖥️ Server
// =============================================================================

// Server 描述服务的 HTTP 入口
type Server struct {
	app    *App
	logger *zap.Logger

	healthHandler   *handlers.HealthHandler
	describeHandler *handlers.DescribeHandler

	httpManager *server.Manager
}

// NewServer 创建服务器实例
func NewServer(app *App) *Server {
	s := &Server{
		app:    app,
		logger: app.Logger,
	}
	s.initHandlers()
	return s
}

// initHandlers 初始化所有 handlers 与健康检查
func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewRegistryHealthCheck(s.app.Registry))
	if s.app.Redis != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("redis", s.app.Redis.Ping))
	}

	s.describeHandler = handlers.NewDescribeHandler(s.app.Registry, s.app.Config.Server.MaxBodyBytes, s.logger)
}

// Handler 构建路由与中间件链
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("GET /ready", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/describe", s.describeHandler.HandleDescribe)
	mux.HandleFunc("POST /v1/describe/batch", s.describeHandler.HandleBatch)
	mux.HandleFunc("GET /v1/providers", s.describeHandler.HandleProviders)

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		RequestLogger(s.logger),
	}
	if s.app.Collector != nil {
		middlewares = append(middlewares, MetricsMiddleware(s.app.Collector, mux))
	}

	return Chain(mux, middlewares...)
}

// Start 启动 HTTP 服务器（非阻塞）
func (s *Server) Start() error {
	srvCfg := s.app.Config.Server
	s.httpManager = server.NewManager(s.Handler(), server.FromServerConfig(srvCfg), s.logger)

	var err error
	if srvCfg.TLSEnabled() {
		err = s.httpManager.StartTLS(srvCfg.TLSCertFile, srvCfg.TLSKeyFile)
	} else {
		err = s.httpManager.Start()
	}
	if err != nil {
		return err
	}

	s.logger.Info("HTTP server started",
		zap.String("addr", s.httpManager.Addr()),
		zap.Bool("tls", srvCfg.TLSEnabled()),
		zap.Strings("providers", s.app.Registry.List()),
	)
	return nil
}

// Run 阻塞直到 ctx 取消或服务异常退出，然后释放应用资源
func (s *Server) Run(ctx context.Context) error {
	err := s.httpManager.Run(ctx)

	if closeErr := s.app.Close(context.WithoutCancel(ctx)); closeErr != nil {
		s.logger.Error("resource cleanup failed", zap.Error(closeErr))
	}
	s.logger.Info("graceful shutdown completed")
	return err
}
