package config

import (
	"errors"
	"path/filepath"
	"strings"
)

// IdentityConfig 身份配置
//
// 节点 ID 由 Ed25519 公钥的 SHA-256 派生，私钥保存在 KeyFile 中。
type IdentityConfig struct {
	// KeyFile 密钥文件路径
	// 为空时使用 ${DataDir}/identity.key
	KeyFile string `json:"key_file"`

	// AutoGenerate 当密钥文件不存在时是否自动生成
	AutoGenerate bool `json:"auto_generate"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		KeyFile:      "",
		AutoGenerate: true,
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if strings.HasSuffix(c.KeyFile, "/") {
		return errors.New("identity: key_file must be a file path")
	}
	return nil
}

// ResolveKeyFile 返回实际使用的密钥文件路径
func (c IdentityConfig) ResolveKeyFile(dataDir string) string {
	if c.KeyFile != "" {
		return c.KeyFile
	}
	return filepath.Join(dataDir, "identity.key")
}

// WithKeyFile 设置密钥文件路径
func (c IdentityConfig) WithKeyFile(path string) IdentityConfig {
	c.KeyFile = path
	return c
}

// WithAutoGenerate 设置是否自动生成密钥
func (c IdentityConfig) WithAutoGenerate(auto bool) IdentityConfig {
	c.AutoGenerate = auto
	return c
}
