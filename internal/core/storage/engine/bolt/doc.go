// Package bolt 提供基于 bbolt 的存储引擎实现
//
// 所有键值保存在单个 bucket 中，适合对进程数和磁盘占用敏感的轻节点。
// 前缀迭代器在只读事务内拷贝匹配的键值对，迭代期间不持有事务。
package bolt
