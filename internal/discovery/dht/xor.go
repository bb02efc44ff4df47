package dht

import (
	"bytes"
	"math/bits"

	"github.com/dep2p/go-dalight/pkg/types"
	"github.com/minio/sha256-simd"
)

// DistanceLen 距离字节长度（SHA-256）
const DistanceLen = sha256.Size

// Distance Kademlia XOR 距离（大端序，数值越小越近）
type Distance [DistanceLen]byte

// Compare 比较两个距离
// 返回：
//
//	-1 如果 d < other
//	 0 如果 d == other
//	 1 如果 d > other
func (d Distance) Compare(other Distance) int {
	return bytes.Compare(d[:], other[:])
}

// Less 判断 d 是否严格小于 other
func (d Distance) Less(other Distance) bool {
	return d.Compare(other) < 0
}

// LeadingZeros 返回前导零位数（即共同前缀长度）
func (d Distance) LeadingZeros() int {
	for i, b := range d {
		if b != 0 {
			return i*8 + bits.LeadingZeros8(b)
		}
	}
	return DistanceLen * 8
}

// HashKey 将内容键映射到 Kademlia 键空间
func HashKey(key types.Key) [DistanceLen]byte {
	return sha256.Sum256(key.Bytes())
}

// HashNodeID 将节点 ID 映射到 Kademlia 键空间
func HashNodeID(id types.NodeID) [DistanceLen]byte {
	return sha256.Sum256(id[:])
}

// XORDistance 计算两个键空间点的 XOR 距离
func XORDistance(a, b [DistanceLen]byte) Distance {
	var d Distance
	for i := range d {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// KeyDistance 计算节点到内容键的距离
//
// 两者都先经过 SHA-256 哈希，再做 XOR。
func KeyDistance(key types.Key, node types.NodeID) Distance {
	return XORDistance(HashKey(key), HashNodeID(node))
}

// CompareDistance 比较 a 和 b 到 key 的距离
func CompareDistance(a, b types.NodeID, key types.Key) int {
	target := HashKey(key)
	return XORDistance(HashNodeID(a), target).Compare(XORDistance(HashNodeID(b), target))
}

// CommonPrefixLen 计算两个 NodeID 在键空间中的共同前缀长度（按位计数）
func CommonPrefixLen(a, b types.NodeID) int {
	return XORDistance(HashNodeID(a), HashNodeID(b)).LeadingZeros()
}

// ============================================================================
//                              Distancer
// ============================================================================

// Distancer 距离度量
//
// 记录存储通过该接口对 Provider 排序，测试可以注入固定的距离表。
type Distancer interface {
	// Distance 返回节点到内容键的距离
	Distance(key types.Key, node types.NodeID) Distance
}

// XORDistancer 默认的 Kademlia XOR 距离度量
type XORDistancer struct{}

// Distance 实现 Distancer
func (XORDistancer) Distance(key types.Key, node types.NodeID) Distance {
	return KeyDistance(key, node)
}

// DistancerFunc 函数适配器
type DistancerFunc func(key types.Key, node types.NodeID) Distance

// Distance 实现 Distancer
func (f DistancerFunc) Distance(key types.Key, node types.NodeID) Distance {
	return f(key, node)
}

var (
	_ Distancer = XORDistancer{}
	_ Distancer = DistancerFunc(nil)
)
