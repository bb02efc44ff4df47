package storage

import (
	"github.com/dep2p/go-dalight/internal/core/storage/engine"
)

// 重导出 engine 包的错误，方便使用方直接使用
var (
	// ErrNotFound 键不存在
	ErrNotFound = engine.ErrNotFound

	// ErrEmptyKey 空键
	ErrEmptyKey = engine.ErrEmptyKey

	// ErrClosed 引擎已关闭
	ErrClosed = engine.ErrClosed

	// ErrReadOnly 只读模式
	ErrReadOnly = engine.ErrReadOnly

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = engine.ErrInvalidConfig
)

// 重导出错误检查函数
var (
	// IsNotFound 检查是否为 key not found 错误
	IsNotFound = engine.IsNotFound

	// IsClosed 检查是否为 engine closed 错误
	IsClosed = engine.IsClosed
)
