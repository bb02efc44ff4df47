// Package dht 提供 Kademlia 键空间的距离度量
//
// 内容键和节点 ID 都经过 SHA-256 映射到同一个 256 位键空间，
// 两点的距离为哈希值的 XOR，按大端序数值比较。
//
// 子包 recordstore 实现 DHT 参与者使用的记录存储。
package dht
