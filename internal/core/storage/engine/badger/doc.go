// Package badger 实现基于 BadgerDB 的存储引擎
//
// BadgerDB 是一个嵌入式 LSM 键值存储，支持 MVCC、压缩与值日志垃圾回收。
// 本包将其适配为 engine.Engine，供 kv 命名空间存储与 DHT 记录存储使用。
//
// # 使用示例
//
//	cfg := engine.DefaultConfig("/data/dalight.db")
//	db, err := badger.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Put([]byte("key"), []byte("value")); err != nil {
//	    return err
//	}
//	value, err := db.Get([]byte("key"))
package badger
