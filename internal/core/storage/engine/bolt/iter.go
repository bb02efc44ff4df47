package bolt

import "github.com/dep2p/go-dalight/internal/core/storage/engine"

type entry struct {
	key   []byte
	value []byte
}

// Iterator bbolt 前缀迭代器
//
// 创建时已拷贝全部匹配项，Close 不需要释放事务。
type Iterator struct {
	entries []entry
	pos     int
	started bool
	err     error
}

// First 移动到第一个键值对
func (it *Iterator) First() bool {
	it.started = true
	it.pos = 0
	return it.Valid()
}

// Next 移动到下一个键值对
func (it *Iterator) Next() bool {
	if !it.started {
		return it.First()
	}
	if it.pos < len(it.entries) {
		it.pos++
	}
	return it.Valid()
}

// Valid 检查迭代器是否指向有效位置
func (it *Iterator) Valid() bool {
	return it.started && it.pos < len(it.entries)
}

// Key 返回当前键
func (it *Iterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return engine.CopyBytes(it.entries[it.pos].key)
}

// Value 返回当前值
func (it *Iterator) Value() []byte {
	if !it.Valid() {
		return nil
	}
	return engine.CopyBytes(it.entries[it.pos].value)
}

// Close 释放拷贝的数据
func (it *Iterator) Close() {
	it.entries = nil
	it.pos = 0
}

// Error 返回迭代过程中的错误
func (it *Iterator) Error() error {
	return it.err
}

var _ engine.Iterator = (*Iterator)(nil)
