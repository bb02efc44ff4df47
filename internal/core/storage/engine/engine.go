// Package engine 定义存储引擎接口
//
// 上层组件（kv 命名空间存储、DHT 记录存储）只依赖本包的接口，
// 不感知底层实现。
//
// # 实现
//
//   - badger: BadgerDB 实现（默认）
//   - bolt:   bbolt 实现（单文件，适合移动端/嵌入式）
//
// # 线程安全
//
// 所有接口实现必须保证线程安全。批量操作在提交前是独立的，
// 不影响其他并发操作。
package engine

// Engine 存储引擎接口
//
// 提供键值存储的基本操作、前缀迭代与批量写入。
type Engine interface {
	// Get 获取指定键的值
	//
	// 参数:
	//   - key: 键（不能为空）
	//
	// 返回:
	//   - []byte: 值的副本（调用者可以安全修改）
	//   - error: ErrNotFound 如果键不存在，其他错误表示存储故障
	Get(key []byte) ([]byte, error)

	// Put 设置键值对，键已存在时覆盖
	Put(key, value []byte) error

	// Delete 删除指定键
	//
	// 如果键不存在，不返回错误（幂等操作）。
	Delete(key []byte) error

	// Has 检查键是否存在
	Has(key []byte) (bool, error)

	// NewPrefixIterator 创建前缀迭代器
	//
	// 迭代器保持创建时的快照视图，调用者负责 Close()。
	NewPrefixIterator(prefix []byte) Iterator

	// NewBatch 创建新的批量写入对象
	NewBatch() Batch

	// Start 启动存储引擎（后台 GC 等）
	Start() error

	// Sync 同步数据到磁盘
	Sync() error

	// Stats 获取引擎统计信息
	Stats() *Stats

	// Close 关闭存储引擎
	Close() error
}

// Batch 批量写入接口
//
// 用于将多个写入操作合并为一次原子写入。
// Batch 不是线程安全的，不应在多个 goroutine 中并发使用。
type Batch interface {
	// Put 添加一个写入操作到批量中
	Put(key, value []byte)

	// Delete 添加一个删除操作到批量中
	Delete(key []byte)

	// Write 原子性地写入所有操作，写入后批量对象被重置
	Write() error

	// Reset 清空所有待写入的操作
	Reset()

	// Size 返回待写入的操作数量
	Size() int
}

// Iterator 迭代器接口
//
// 使用模式:
//
//	iter := eng.NewPrefixIterator(prefix)
//	defer iter.Close()
//
//	for iter.First(); iter.Valid(); iter.Next() {
//	    key := iter.Key()
//	    value := iter.Value()
//	}
//
//	if err := iter.Error(); err != nil {
//	    return err
//	}
type Iterator interface {
	// First 移动到第一个键值对
	First() bool

	// Next 移动到下一个键值对
	Next() bool

	// Valid 检查迭代器是否指向有效位置
	Valid() bool

	// Key 返回当前键的副本
	Key() []byte

	// Value 返回当前值的副本
	Value() []byte

	// Close 释放迭代器占用的资源
	Close()

	// Error 返回迭代过程中的错误，应在迭代完成后检查
	Error() error
}

// Stats 引擎统计信息
type Stats struct {
	KeyCount    int64 `json:"key_count"`
	DiskSize    int64 `json:"disk_size"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	NumWrites   int64 `json:"num_writes"`
	NumReads    int64 `json:"num_reads"`
	NumDeletes  int64 `json:"num_deletes"`
}

// CopyBytes 复制字节切片
func CopyBytes(src []byte) []byte {
	if src == nil {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}
