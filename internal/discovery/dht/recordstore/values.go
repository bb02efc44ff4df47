package recordstore

import (
	"errors"
	"iter"

	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dep2p/go-dalight/pkg/types"
	"go.uber.org/multierr"
)

// Database 值记录的持久化能力
//
// 键已经处于 DHT 值记录命名空间内，*kv.Store 满足该接口。
type Database interface {
	// Get 读取值，不存在时返回 engine.ErrNotFound
	Get(key []byte) ([]byte, error)

	// Put 写入值（覆盖）
	Put(key, value []byte) error

	// Delete 删除键
	Delete(key []byte) error

	// PrefixScan 扫描前缀下的所有键值对，fn 返回 false 时停止
	PrefixScan(prefix []byte, fn func(key, value []byte) bool) error
}

// valueTable 值记录表
type valueTable struct {
	db            Database
	codec         *Codec
	maxValueBytes int
}

func newValueTable(db Database, codec *Codec, maxValueBytes int) *valueTable {
	return &valueTable{
		db:            db,
		codec:         codec,
		maxValueBytes: maxValueBytes,
	}
}

// get 读取记录，不存在返回 (nil, nil)
func (t *valueTable) get(key types.Key) (*ValueRecord, error) {
	data, err := t.db.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil, nil
		}
		return nil, newStoreError("get", key, err)
	}

	r, err := t.codec.Decode(key, data)
	if err != nil {
		return nil, newStoreError("get", key, err)
	}
	return r, nil
}

// put 写入记录，超长值不改变已有状态
func (t *valueTable) put(r *ValueRecord) error {
	if len(r.Value) >= t.maxValueBytes {
		return ErrValueTooLarge
	}

	if err := t.db.Put(r.Key.Bytes(), t.codec.Encode(r)); err != nil {
		return newStoreError("put", r.Key, err)
	}
	return nil
}

// remove 尽力删除，错误只记日志
func (t *valueTable) remove(key types.Key) {
	if err := t.db.Delete(key.Bytes()); err != nil {
		logger.Debug("删除值记录失败", "key", string(key), "error", err)
	}
}

// records 全量扫描
//
// 每次调用重新开始。单条记录解码失败时产出 (nil, err) 并继续。
func (t *valueTable) records() iter.Seq2[*ValueRecord, error] {
	return func(yield func(*ValueRecord, error) bool) {
		stopped := false

		err := t.db.PrefixScan(nil, func(k, v []byte) bool {
			key := types.KeyFromBytes(k)
			r, err := t.codec.Decode(key, v)
			if err != nil {
				err = newStoreError("iterate", key, err)
				r = nil
			}
			if !yield(r, err) {
				stopped = true
				return false
			}
			return true
		})

		if err != nil && !stopped {
			yield(nil, newStoreError("iterate", "", err))
		}
	}
}

// CollectRecords 收集序列中的全部记录
//
// 解码失败的记录被跳过，所有错误合并后返回。
func CollectRecords(seq iter.Seq2[*ValueRecord, error]) ([]*ValueRecord, error) {
	var (
		out  []*ValueRecord
		errs error
	)
	for r, err := range seq {
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, r)
	}
	return out, errs
}
