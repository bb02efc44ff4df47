package config

import "fmt"

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别: debug / info / warn / error
	Level string `json:"level"`

	// Format 输出格式: console / text / json
	Format string `json:"format"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "console",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("log: invalid level %q", c.Level)
	}
	switch c.Format {
	case "console", "text", "json", "":
	default:
		return fmt.Errorf("log: invalid format %q", c.Format)
	}
	return nil
}
