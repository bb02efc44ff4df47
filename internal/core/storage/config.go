package storage

import (
	"time"

	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/internal/core/storage/engine"
)

// Config Storage 模块配置
//
// 测试代码应使用 t.TempDir() 创建临时目录，确保测试与生产一致。
type Config struct {
	// Backend 存储后端（badger / bolt）
	Backend engine.Backend

	// Path 存储路径（badger 为目录，bolt 为文件，必需）
	Path string

	// SyncWrites 是否同步写入
	SyncWrites bool

	// GCEnabled 是否启用值日志回收（仅 badger）
	GCEnabled bool

	// GCInterval 值日志回收间隔
	GCInterval time.Duration

	// GCDiscardRatio 值日志回收丢弃比例
	GCDiscardRatio float64

	// BlockCacheSize 块缓存大小（字节）
	BlockCacheSize int64

	// Compression 压缩级别（0 禁用）
	Compression int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Backend:        engine.BackendBadger,
		Path:           "./data/dalight.db",
		SyncWrites:     false,
		GCEnabled:      true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
		BlockCacheSize: 64 << 20,
		Compression:    1,
	}
}

// ConfigFromUnified 从统一配置创建 Storage 配置
func ConfigFromUnified(cfg *config.Config) Config {
	storageCfg := DefaultConfig()

	if cfg == nil {
		return storageCfg
	}

	s := cfg.Storage
	if s.Backend != "" {
		storageCfg.Backend = engine.Backend(s.Backend)
	}
	if s.DataDir != "" {
		storageCfg.Path = s.DBPath()
	}
	storageCfg.SyncWrites = s.SyncWrites
	storageCfg.GCEnabled = s.GCInterval > 0
	if s.GCInterval > 0 {
		storageCfg.GCInterval = s.GCInterval.Duration()
	}
	if s.GCDiscardRatio > 0 {
		storageCfg.GCDiscardRatio = s.GCDiscardRatio
	}
	if s.BlockCacheSize > 0 {
		storageCfg.BlockCacheSize = s.BlockCacheSize
	}
	storageCfg.Compression = s.Compression

	return storageCfg
}

// ToEngineConfig 转换为引擎配置
func (c *Config) ToEngineConfig() *engine.Config {
	engineCfg := engine.DefaultConfig(c.Path).WithBackend(c.Backend)

	engineCfg.SyncWrites = c.SyncWrites
	engineCfg.Badger.GCDiscardRatio = c.GCDiscardRatio
	engineCfg.Badger.BlockCacheSize = c.BlockCacheSize
	engineCfg.Badger.ZSTDCompressionLevel = c.Compression
	if c.GCEnabled {
		engineCfg.Badger.GCInterval = c.GCInterval
	} else {
		engineCfg.Badger.GCInterval = 0
	}

	return engineCfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Path == "" {
		return ErrInvalidConfig
	}

	switch c.Backend {
	case engine.BackendBadger, engine.BackendBolt:
	default:
		return ErrInvalidConfig
	}

	if c.GCEnabled && c.GCInterval < time.Minute {
		c.GCInterval = time.Minute
	}

	if c.GCDiscardRatio <= 0 || c.GCDiscardRatio > 1 {
		c.GCDiscardRatio = 0.5
	}

	return nil
}

// WithPath 设置存储路径
func (c Config) WithPath(path string) Config {
	c.Path = path
	return c
}

// WithBackend 设置存储后端
func (c Config) WithBackend(b engine.Backend) Config {
	c.Backend = b
	return c
}

// WithSyncWrites 设置同步写入
func (c Config) WithSyncWrites(sync bool) Config {
	c.SyncWrites = sync
	return c
}

// WithGC 设置垃圾回收配置
func (c Config) WithGC(enabled bool, interval time.Duration) Config {
	c.GCEnabled = enabled
	c.GCInterval = interval
	return c
}
