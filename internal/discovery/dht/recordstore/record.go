package recordstore

import (
	"bytes"
	"slices"
	"time"

	"github.com/dep2p/go-dalight/pkg/types"
)

// ValueRecord DHT 值记录
//
// 每个键最多一条，后写覆盖先写。
type ValueRecord struct {
	// Key 内容键
	Key types.Key

	// Value 值
	Value []byte

	// Publisher 发布者，零值表示无
	Publisher types.NodeID

	// Expires 过期时间，零值表示永不过期
	Expires time.Time
}

// HasPublisher 是否带有发布者
//
// 全零 NodeID 表示没有发布者，持久化后同样还原为"无"。
// NodeID 是公钥的 SHA-256，真实节点不会得到全零 ID。
func (r *ValueRecord) HasPublisher() bool {
	return !r.Publisher.IsEmpty()
}

// IsExpired 检查记录在 now 时刻是否已过期
func (r *ValueRecord) IsExpired(now time.Time) bool {
	return !r.Expires.IsZero() && !now.Before(r.Expires)
}

// Equal 比较两条值记录（过期时间精确比较）
func (r *ValueRecord) Equal(other *ValueRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Key == other.Key &&
		bytes.Equal(r.Value, other.Value) &&
		r.Publisher == other.Publisher &&
		r.Expires.Equal(other.Expires)
}

// ProviderRecord Provider 记录
//
// 每个 (Key, Provider) 最多一条。
type ProviderRecord struct {
	// Key 内容键
	Key types.Key

	// Provider 提供者节点 ID
	Provider types.NodeID

	// Expires 过期时间，零值表示永不过期
	Expires time.Time

	// Addrs 提供者的传输地址
	Addrs []string
}

// IsExpired 检查记录在 now 时刻是否已过期
func (r ProviderRecord) IsExpired(now time.Time) bool {
	return !r.Expires.IsZero() && !now.Before(r.Expires)
}

// clone 返回不共享地址切片的副本
func (r ProviderRecord) clone() ProviderRecord {
	r.Addrs = slices.Clone(r.Addrs)
	return r
}
