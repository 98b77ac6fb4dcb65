// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 visiondesc 提供 OTLP/gRPC 导出的 TracerProvider 和 MeterProvider，
// 供 llm/observability 的 Span 与指标使用。
// 当遥测功能禁用时，使用全局 noop 实现，不连接任何外部服务。
package telemetry
