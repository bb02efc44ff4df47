package recordstore

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-dalight/pkg/types"
)

// 预定义错误
var (
	// ErrValueTooLarge 值超过 MaxValueBytes
	ErrValueTooLarge = errors.New("recordstore: value too large")

	// ErrMaxProvidedKeys Provider 表不同键数量已达上限
	ErrMaxProvidedKeys = errors.New("recordstore: max provided keys reached")

	// ErrDecode 持久化条目无法解码
	ErrDecode = errors.New("recordstore: decode entry")

	// ErrInvalidRecord 空记录
	ErrInvalidRecord = errors.New("recordstore: invalid record")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("recordstore: invalid config")
)

// StoreError 底层存储操作错误
type StoreError struct {
	Op  string    // 操作名称
	Key types.Key // 相关键
	Err error     // 底层错误
}

// Error 实现 error 接口
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("recordstore %s %q: %v", e.Op, string(e.Key), e.Err)
	}
	return fmt.Sprintf("recordstore %s: %v", e.Op, e.Err)
}

// Unwrap 实现错误解包
func (e *StoreError) Unwrap() error {
	return e.Err
}

// newStoreError 创建存储错误
func newStoreError(op string, key types.Key, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}

// decodeError 包装解码错误，保证 errors.Is(err, ErrDecode)
func decodeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

// IsValueTooLarge 检查是否为值过大错误
func IsValueTooLarge(err error) bool {
	return errors.Is(err, ErrValueTooLarge)
}

// IsMaxProvidedKeys 检查是否为键数量上限错误
func IsMaxProvidedKeys(err error) bool {
	return errors.Is(err, ErrMaxProvidedKeys)
}

// IsDecode 检查是否为解码错误
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}
