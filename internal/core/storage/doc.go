// Package storage 提供统一的持久化存储服务
//
// 按配置选择 BadgerDB 或 bbolt 引擎，并通过 Fx 管理引擎生命周期。
// 上层组件通过 kv 包的前缀命名空间访问数据：
//
//	前缀     | 模块           | 说明
//	---------|----------------|------------------
//	d/v/     | DHT            | 值记录
//	d/p/     | DHT            | Provider 记录（保留）
//
// # 使用示例
//
// 使用 Fx 依赖注入：
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    storage.Module(),
//	)
//
// 手动创建：
//
//	eng, err := storage.New("/data/dalight.db")
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	values := kv.NewDHTValues(eng)
package storage
