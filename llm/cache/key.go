package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// KeyParts 决定一次描述结果的全部输入
type KeyParts struct {
	Provider     string
	Model        string
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Identifier   string
}

// GenerateKey 生成缓存键，字段以 NUL 分隔避免拼接歧义
func GenerateKey(p KeyParts) string {
	fields := []string{
		p.Provider,
		p.Model,
		p.Prompt,
		p.SystemPrompt,
		strconv.Itoa(p.MaxTokens),
		p.Identifier,
	}
	hash := sha256.Sum256([]byte(strings.Join(fields, "\x00")))
	return "describe:" + hex.EncodeToString(hash[:16])
}
