package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// 存储后端名称
const (
	BackendBadger = "badger"
	BackendBolt   = "bolt"
)

// StorageConfig 存储配置
//
// 数据目录结构：
//
//	${DataDir}/
//	├── dalight.db/         # BadgerDB 数据库目录（backend=badger）
//	├── dalight.bolt        # bbolt 数据库文件（backend=bolt）
//	└── identity.key        # 节点私钥
type StorageConfig struct {
	// DataDir 数据目录路径
	// 默认值: "./data"
	DataDir string `json:"data_dir"`

	// Backend 存储后端: "badger"（默认）或 "bolt"
	Backend string `json:"backend"`

	// SyncWrites 是否每次写入都同步到磁盘
	SyncWrites bool `json:"sync_writes"`

	// GCInterval BadgerDB 值日志回收间隔，0 表示禁用
	GCInterval Duration `json:"gc_interval"`

	// GCDiscardRatio BadgerDB 值日志回收丢弃比例
	GCDiscardRatio float64 `json:"gc_discard_ratio"`

	// BlockCacheSize BadgerDB 块缓存大小（字节）
	BlockCacheSize int64 `json:"block_cache_size"`

	// Compression BadgerDB ZSTD 压缩级别，0 表示禁用
	Compression int `json:"compression"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:        "./data",
		Backend:        BackendBadger,
		SyncWrites:     false,
		GCInterval:     Duration(10 * time.Minute),
		GCDiscardRatio: 0.5,
		BlockCacheSize: 64 << 20, // 64MB，轻节点无需更大缓存
		Compression:    1,
	}
}

// Validate 验证存储配置的有效性
func (c *StorageConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("storage: data_dir cannot be empty")
	}
	switch c.Backend {
	case BackendBadger, BackendBolt:
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Backend)
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("storage: gc_interval must not be negative")
	}
	if c.GCDiscardRatio < 0 || c.GCDiscardRatio > 1 {
		return fmt.Errorf("storage: gc_discard_ratio must be within [0, 1]")
	}
	if c.BlockCacheSize < 0 {
		return fmt.Errorf("storage: block_cache_size must not be negative")
	}
	return nil
}

// DBPath 返回数据库路径
//
// badger 为目录，bolt 为单个文件。
func (c *StorageConfig) DBPath() string {
	if c.Backend == BackendBolt {
		return filepath.Join(c.DataDir, "dalight.bolt")
	}
	return filepath.Join(c.DataDir, "dalight.db")
}
