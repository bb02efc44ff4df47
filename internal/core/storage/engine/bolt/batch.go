package bolt

import (
	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"go.etcd.io/bbolt"
)

type op struct {
	key    []byte
	value  []byte
	delete bool
}

// WriteBatch bbolt 批量写入，Write 时在一个读写事务内提交
type WriteBatch struct {
	db  *Engine
	ops []op
}

// Put 添加一个写入操作到批量中
func (b *WriteBatch) Put(key, value []byte) {
	if len(key) == 0 {
		return
	}
	v := engine.CopyBytes(value)
	if v == nil {
		v = []byte{}
	}
	b.ops = append(b.ops, op{key: engine.CopyBytes(key), value: v})
}

// Delete 添加一个删除操作到批量中
func (b *WriteBatch) Delete(key []byte) {
	if len(key) == 0 {
		return
	}
	b.ops = append(b.ops, op{key: engine.CopyBytes(key), delete: true})
}

// Write 原子性地写入所有操作
func (b *WriteBatch) Write() error {
	if b.db.closed.Load() {
		return engine.ErrClosed
	}
	if b.db.config.ReadOnly {
		return engine.ErrReadOnly
	}
	if len(b.ops) == 0 {
		return nil
	}

	var puts, dels int64
	err := b.db.db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(b.db.bucket)
		for _, o := range b.ops {
			if o.delete {
				if err := bk.Delete(o.key); err != nil {
					return err
				}
				dels++
				continue
			}
			if err := bk.Put(o.key, o.value); err != nil {
				return err
			}
			puts++
		}
		return nil
	})
	if err != nil {
		return convertError(err)
	}

	b.db.stats.numWrites.Add(puts)
	b.db.stats.numDeletes.Add(dels)
	b.Reset()
	return nil
}

// Reset 清空所有待写入的操作
func (b *WriteBatch) Reset() {
	b.ops = b.ops[:0]
}

// Size 返回待写入的操作数量
func (b *WriteBatch) Size() int {
	return len(b.ops)
}

var _ engine.Batch = (*WriteBatch)(nil)
