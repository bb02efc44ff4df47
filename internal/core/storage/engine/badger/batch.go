package badger

import (
	"sync/atomic"

	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dgraph-io/badger/v4"
)

// WriteBatch BadgerDB 批量写入实现
type WriteBatch struct {
	db    *Engine
	batch *badger.WriteBatch
	count atomic.Int32
}

// Put 添加一个写入操作到批量中
func (b *WriteBatch) Put(key, value []byte) {
	if len(key) == 0 {
		return
	}

	// WriteBatch.Set 的错误在 Flush 时返回
	_ = b.batch.Set(key, value)
	b.count.Add(1)
}

// Delete 添加一个删除操作到批量中
func (b *WriteBatch) Delete(key []byte) {
	if len(key) == 0 {
		return
	}

	_ = b.batch.Delete(key)
	b.count.Add(1)
}

// Write 执行批量写入
func (b *WriteBatch) Write() error {
	if b.db.closed.Load() {
		return engine.ErrClosed
	}

	if b.db.config.ReadOnly {
		return engine.ErrReadOnly
	}

	if err := b.batch.Flush(); err != nil {
		return convertError(err)
	}

	b.db.stats.numWrites.Add(int64(b.count.Load()))

	// Flush 之后的 WriteBatch 不可复用
	b.batch = b.db.db.NewWriteBatch()
	b.count.Store(0)

	return nil
}

// Reset 重置批量对象
//
// badger.WriteBatch 没有 Reset，Flush 之后也不可复用，只能重新创建。
func (b *WriteBatch) Reset() {
	b.batch.Cancel()
	b.count.Store(0)
	b.batch = b.db.db.NewWriteBatch()
}

// Size 返回批量中的操作数量
func (b *WriteBatch) Size() int {
	return int(b.count.Load())
}

// 编译时检查接口实现
var _ engine.Batch = (*WriteBatch)(nil)
