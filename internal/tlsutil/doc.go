// Package tlsutil 提供集中式 TLS 配置，
// 为服务商 SDK 客户端、图片下载器、HTTP 服务端和 Redis 连接提供安全加固的 TLS 设置（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
