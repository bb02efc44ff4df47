package engine

import (
	"os"
	"path/filepath"
	"time"
)

// Backend 存储后端类型
type Backend string

const (
	// BackendBadger BadgerDB（默认）
	BackendBadger Backend = "badger"
	// BackendBolt bbolt 单文件数据库
	BackendBolt Backend = "bolt"
)

// Config 存储引擎配置
//
// 测试代码应使用 t.TempDir() 创建临时目录，确保测试与生产一致。
type Config struct {
	// Backend 存储后端
	Backend Backend

	// Path 数据路径（必需）
	// badger 为目录，bolt 为文件
	Path string

	// SyncWrites 是否同步写入
	// 启用后每次写入都会同步到磁盘，更安全但性能较低
	SyncWrites bool

	// ReadOnly 是否只读模式
	ReadOnly bool

	// Badger 特定选项
	Badger BadgerOptions

	// Bolt 特定选项
	Bolt BoltOptions
}

// BadgerOptions BadgerDB 特定选项
type BadgerOptions struct {
	// MemTableSize 内存表大小（字节），默认 64MB
	MemTableSize int64

	// ValueLogFileSize 值日志文件大小（字节），默认 1GB
	ValueLogFileSize int64

	// BlockCacheSize 块缓存大小（字节），默认 256MB
	BlockCacheSize int64

	// NumCompactors 压缩器数量，默认 4
	NumCompactors int

	// ZSTDCompressionLevel ZSTD 压缩级别，0 表示禁用压缩
	ZSTDCompressionLevel int

	// GCInterval 值日志垃圾回收间隔，0 表示禁用
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例，默认 0.5
	GCDiscardRatio float64
}

// BoltOptions bbolt 特定选项
type BoltOptions struct {
	// OpenTimeout 获取文件锁的超时时间，默认 1s
	OpenTimeout time.Duration

	// Bucket 数据所在 bucket 名称
	Bucket string
}

// DefaultConfig 返回默认配置（badger 后端）
func DefaultConfig(path string) *Config {
	return &Config{
		Backend:    BackendBadger,
		Path:       path,
		SyncWrites: false,
		ReadOnly:   false,
		Badger:     DefaultBadgerOptions(),
		Bolt:       DefaultBoltOptions(),
	}
}

// DefaultBadgerOptions 返回默认 BadgerDB 选项
func DefaultBadgerOptions() BadgerOptions {
	return BadgerOptions{
		MemTableSize:         64 << 20, // 64MB
		ValueLogFileSize:     1 << 30,  // 1GB
		BlockCacheSize:       256 << 20,
		NumCompactors:        4,
		ZSTDCompressionLevel: 1,
		GCInterval:           10 * time.Minute,
		GCDiscardRatio:       0.5,
	}
}

// DefaultBoltOptions 返回默认 bbolt 选项
func DefaultBoltOptions() BoltOptions {
	return BoltOptions{
		OpenTimeout: time.Second,
		Bucket:      "kv",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Path == "" {
		return ErrInvalidConfig
	}

	switch c.Backend {
	case BackendBadger:
		if c.Badger.MemTableSize < 1<<20 { // 最小 1MB
			return ErrInvalidConfig
		}
		if c.Badger.ValueLogFileSize < 1<<20 {
			return ErrInvalidConfig
		}
	case BackendBolt:
		if c.Bolt.Bucket == "" {
			return ErrInvalidConfig
		}
	default:
		return ErrInvalidConfig
	}

	return nil
}

// EnsureDir 确保数据目录存在
//
// badger 需要 Path 本身为目录，bolt 只需要父目录存在。
func (c *Config) EnsureDir() error {
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath

	dir := c.Path
	if c.Backend == BackendBolt {
		dir = filepath.Dir(c.Path)
	}
	return os.MkdirAll(dir, 0o755)
}

// WithSyncWrites 设置同步写入
func (c *Config) WithSyncWrites(sync bool) *Config {
	c.SyncWrites = sync
	return c
}

// WithReadOnly 设置只读模式
func (c *Config) WithReadOnly(readOnly bool) *Config {
	c.ReadOnly = readOnly
	return c
}

// WithBackend 设置存储后端
func (c *Config) WithBackend(b Backend) *Config {
	c.Backend = b
	return c
}
