// Package recordstore 实现 DHT 参与者的本地记录存储
//
// Store 是 DHT 协议引擎在每次查找、发布和 Provider 通告时调用的存储后端，
// 由四部分组成：
//
//   - 值记录表：通过 Database 能力持久化，每个键一条记录，TTL 以相对秒数保存
//   - 条目编解码：ValueRecord 与持久化 Entry 之间的转换
//   - Provider 记录表：内存中按距离升序、容量受限的 Provider 列表
//   - 本地 Provided 集合：Provider 表中 provider 为本节点的记录，与表严格同步
//
// # 容量
//
//   - MaxValueBytes: 值长度必须严格小于该值
//   - MaxProvidersPerKey: 每个键保留最近的 N 个 Provider，更远的静默丢弃
//   - MaxProvidedKeys: Provider 表中不同键的数量上限，超出时拒绝新键
//   - MaxRecords: 仅作参考，不强制
//
// # 并发
//
// 所有操作在一把互斥锁内完成。Providers 和 Provided 返回快照，
// Records 在迭代期间不持有锁。存储内部没有后台任务，过期只在调用
// RemoveExpiredProviders 时清理。
//
// # 使用示例
//
//	eng, _ := storage.New("/data/dalight.db")
//	s, err := recordstore.New(localID, recordstore.DefaultConfig(), kv.NewDHTValues(eng))
//	if err != nil {
//	    return err
//	}
//
//	err = s.Put(&recordstore.ValueRecord{Key: key, Value: data, Expires: time.Now().Add(time.Hour)})
//	err = s.AddProvider(recordstore.ProviderRecord{Key: key, Provider: localID})
//
//	for rec := range s.Provided() {
//	    // 重新发布本地提供的内容
//	}
package recordstore
