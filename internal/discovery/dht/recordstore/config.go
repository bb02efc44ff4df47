package recordstore

import (
	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/internal/discovery/dht"
)

// 默认容量
const (
	// DefaultMaxRecords 默认值记录数量上限
	DefaultMaxRecords = 1024

	// DefaultMaxValueBytes 默认单值字节上限
	DefaultMaxValueBytes = 65 * 1024

	// DefaultMaxProvidersPerKey 默认每键 Provider 上限（Kademlia K）
	DefaultMaxProvidersPerKey = 20

	// DefaultMaxProvidedKeys 默认 Provider 表不同键上限
	DefaultMaxProvidedKeys = 1024
)

// Config 记录存储配置
//
// 存储创建后不可修改。
type Config struct {
	// MaxRecords 值记录数量上限（仅作参考，不强制）
	MaxRecords int

	// MaxValueBytes 值长度必须严格小于该值
	MaxValueBytes int

	// MaxProvidersPerKey 每个键保留的 Provider 数量上限
	MaxProvidersPerKey int

	// MaxProvidedKeys Provider 表中不同键的数量上限
	MaxProvidedKeys int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxRecords:         DefaultMaxRecords,
		MaxValueBytes:      DefaultMaxValueBytes,
		MaxProvidersPerKey: DefaultMaxProvidersPerKey,
		MaxProvidedKeys:    DefaultMaxProvidedKeys,
	}
}

// ConfigFromUnified 从统一配置创建记录存储配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}

	rs := cfg.RecordStore
	return Config{
		MaxRecords:         rs.MaxRecords,
		MaxValueBytes:      rs.MaxValueBytes,
		MaxProvidersPerKey: rs.MaxProvidersPerKey,
		MaxProvidedKeys:    rs.MaxProvidedKeys,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.MaxRecords < 0 || c.MaxValueBytes < 0 || c.MaxProvidersPerKey < 0 || c.MaxProvidedKeys < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// WithMaxValueBytes 设置单值字节上限
func (c Config) WithMaxValueBytes(n int) Config {
	c.MaxValueBytes = n
	return c
}

// WithMaxProvidersPerKey 设置每键 Provider 上限
func (c Config) WithMaxProvidersPerKey(n int) Config {
	c.MaxProvidersPerKey = n
	return c
}

// WithMaxProvidedKeys 设置 Provider 表不同键上限
func (c Config) WithMaxProvidedKeys(n int) Config {
	c.MaxProvidedKeys = n
	return c
}

// ============================================================================
//                              Option
// ============================================================================

// Option Store 构造选项
type Option func(*options)

type options struct {
	clock     clock.Clock
	distancer dht.Distancer
	metrics   *Metrics
}

func defaultOptions() options {
	return options{
		clock:     clock.New(),
		distancer: dht.XORDistancer{},
	}
}

// WithClock 设置时间源（TTL 编解码使用）
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithDistancer 设置 Provider 排序使用的距离度量
func WithDistancer(d dht.Distancer) Option {
	return func(o *options) {
		if d != nil {
			o.distancer = d
		}
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
