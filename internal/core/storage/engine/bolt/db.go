package bolt

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dep2p/go-dalight/pkg/lib/log"
	"go.etcd.io/bbolt"
)

var logger = log.Logger("storage/bolt")

// Engine bbolt 存储引擎
type Engine struct {
	db     *bbolt.DB
	bucket []byte
	config *engine.Config
	closed atomic.Bool

	stats struct {
		numReads    atomic.Int64
		numWrites   atomic.Int64
		numDeletes  atomic.Int64
		cacheHits   atomic.Int64
		cacheMisses atomic.Int64
	}
}

// New 打开（必要时创建）bbolt 数据库文件
func New(cfg *engine.Config) (*Engine, error) {
	if cfg == nil {
		return nil, engine.ErrInvalidConfig
	}

	cfg.Backend = engine.BackendBolt

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureDir(); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{
		Timeout:  cfg.Bolt.OpenTimeout,
		NoSync:   !cfg.SyncWrites,
		ReadOnly: cfg.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("opening bolt: %w", convertError(err))
	}

	e := &Engine{
		db:     db,
		bucket: []byte(cfg.Bolt.Bucket),
		config: cfg,
	}

	if !cfg.ReadOnly {
		if err := db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(e.bucket)
			return err
		}); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bolt.Bucket, err)
		}
	}

	logger.Debug("打开 bolt 存储", "path", cfg.Path, "bucket", cfg.Bolt.Bucket)
	return e, nil
}

// Start bbolt 没有后台任务
func (e *Engine) Start() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	return nil
}

// Get 获取指定键的值
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, engine.ErrClosed
	}
	if len(key) == 0 {
		return nil, engine.ErrEmptyKey
	}

	var value []byte
	err := e.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(e.bucket)
		if b == nil {
			return engine.ErrNotFound
		}
		v := b.Get(key)
		if v == nil {
			return engine.ErrNotFound
		}
		// 事务结束后 v 失效，必须拷贝
		value = engine.CopyBytes(v)
		return nil
	})

	e.stats.numReads.Add(1)
	if err != nil {
		if err == engine.ErrNotFound {
			e.stats.cacheMisses.Add(1)
		}
		return nil, err
	}
	e.stats.cacheHits.Add(1)

	return value, nil
}

// Put 设置键值对
func (e *Engine) Put(key, value []byte) error {
	if err := e.checkWritable(key); err != nil {
		return err
	}

	err := e.db.Update(func(tx *bbolt.Tx) error {
		// bbolt 要求 value 非 nil
		if value == nil {
			value = []byte{}
		}
		return tx.Bucket(e.bucket).Put(key, value)
	})
	if err != nil {
		return convertError(err)
	}

	e.stats.numWrites.Add(1)
	return nil
}

// Delete 删除指定键
func (e *Engine) Delete(key []byte) error {
	if err := e.checkWritable(key); err != nil {
		return err
	}

	err := e.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(e.bucket).Delete(key)
	})
	if err != nil {
		return convertError(err)
	}

	e.stats.numDeletes.Add(1)
	return nil
}

// Has 检查键是否存在
func (e *Engine) Has(key []byte) (bool, error) {
	if e.closed.Load() {
		return false, engine.ErrClosed
	}
	if len(key) == 0 {
		return false, engine.ErrEmptyKey
	}

	var exists bool
	err := e.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(e.bucket); b != nil {
			exists = b.Get(key) != nil
		}
		return nil
	})

	return exists, err
}

func (e *Engine) checkWritable(key []byte) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if e.config.ReadOnly {
		return engine.ErrReadOnly
	}
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return nil
}

// NewPrefixIterator 创建前缀迭代器
func (e *Engine) NewPrefixIterator(prefix []byte) engine.Iterator {
	if e.closed.Load() {
		return &Iterator{err: engine.ErrClosed}
	}

	it := &Iterator{}
	it.err = e.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(e.bucket)
		if b == nil {
			return nil
		}

		c := b.Cursor()
		var k, v []byte
		if len(prefix) > 0 {
			k, v = c.Seek(prefix)
		} else {
			k, v = c.First()
		}
		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			it.entries = append(it.entries, entry{
				key:   engine.CopyBytes(k),
				value: engine.CopyBytes(v),
			})
		}
		return nil
	})

	return it
}

// NewBatch 创建新的批量写入对象
func (e *Engine) NewBatch() engine.Batch {
	return &WriteBatch{db: e}
}

// Sync 同步数据到磁盘
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if e.config.ReadOnly {
		return nil
	}
	return e.db.Sync()
}

// Stats 获取引擎统计信息
func (e *Engine) Stats() *engine.Stats {
	s := &engine.Stats{
		CacheHits:   e.stats.cacheHits.Load(),
		CacheMisses: e.stats.cacheMisses.Load(),
		NumWrites:   e.stats.numWrites.Load(),
		NumReads:    e.stats.numReads.Load(),
		NumDeletes:  e.stats.numDeletes.Load(),
	}

	if e.closed.Load() {
		return s
	}

	err := e.db.View(func(tx *bbolt.Tx) error {
		s.DiskSize = tx.Size()
		if b := tx.Bucket(e.bucket); b != nil {
			s.KeyCount = int64(b.Stats().KeyN)
		}
		return nil
	})
	if err != nil {
		logger.Debug("读取 bolt 统计失败", "error", err)
	}

	return s
}

// Close 关闭存储引擎
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	return e.db.Close()
}

// convertError 转换 bbolt 错误到引擎错误
func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bbolt.ErrDatabaseReadOnly), errors.Is(err, bbolt.ErrTxNotWritable):
		return engine.ErrReadOnly
	case errors.Is(err, bbolt.ErrDatabaseNotOpen):
		return engine.ErrClosed
	case errors.Is(err, bbolt.ErrKeyRequired):
		return engine.ErrEmptyKey
	case errors.Is(err, bbolt.ErrInvalid), errors.Is(err, bbolt.ErrChecksum), errors.Is(err, bbolt.ErrVersionMismatch):
		return fmt.Errorf("%w: %v", engine.ErrCorrupted, err)
	default:
		return err
	}
}

var _ engine.Engine = (*Engine)(nil)
