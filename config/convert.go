package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保持默认值。
//
// 示例 JSON:
//
//	{
//	  "storage": {"data_dir": "/var/lib/dalight", "backend": "bolt"},
//	  "record_store": {"max_providers_per_key": 20}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置并验证
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "mobile": bbolt 单文件、关闭值日志回收、较小的容量
//   - "server": BadgerDB、同步写入、较大的容量
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	switch presetName {
	case "mobile":
		cfg.Storage.Backend = BackendBolt
		cfg.Storage.GCInterval = 0
		cfg.RecordStore.MaxRecords = 256
		cfg.RecordStore.MaxProvidedKeys = 256
		cfg.Metrics.Enable = false
	case "server":
		cfg.Storage.Backend = BackendBadger
		cfg.Storage.SyncWrites = true
		cfg.Storage.GCInterval = Duration(5 * time.Minute)
		cfg.RecordStore.MaxRecords = 65536
		cfg.RecordStore.MaxProvidedKeys = 65536
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}

// CloneConfig 克隆配置
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	return &cloned
}
