package config

import "errors"

// RecordStoreConfig DHT 记录存储配置
//
// 四项容量限制在存储创建后不可修改。
type RecordStoreConfig struct {
	// MaxRecords 值记录数量上限（仅作参考，不强制）
	MaxRecords int `json:"max_records"`

	// MaxValueBytes 单个值的字节上限（值长度必须严格小于该值）
	MaxValueBytes int `json:"max_value_bytes"`

	// MaxProvidersPerKey 每个键保留的 Provider 数量上限
	MaxProvidersPerKey int `json:"max_providers_per_key"`

	// MaxProvidedKeys Provider 表中不同键的数量上限
	MaxProvidedKeys int `json:"max_provided_keys"`
}

// DefaultRecordStoreConfig 返回默认记录存储配置
func DefaultRecordStoreConfig() RecordStoreConfig {
	return RecordStoreConfig{
		MaxRecords:         1024,
		MaxValueBytes:      65 * 1024,
		MaxProvidersPerKey: 20, // Kademlia K
		MaxProvidedKeys:    1024,
	}
}

// Validate 验证记录存储配置
func (c RecordStoreConfig) Validate() error {
	if c.MaxRecords < 0 || c.MaxValueBytes < 0 || c.MaxProvidersPerKey < 0 || c.MaxProvidedKeys < 0 {
		return errors.New("record_store: limits must not be negative")
	}
	return nil
}
