// Package config 提供 visiondesc 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → .env 文件 → VISIONDESC_* 环境变量 的顺序叠加，
// 服务商凭证缺失时回退到 OPENAI_API_KEY、ANTHROPIC_API_KEY、AZURE_OPENAI_* 等约定变量。
package config
