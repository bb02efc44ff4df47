// Package identity 管理本节点的 Ed25519 身份
//
// 节点 ID 为公钥的 SHA-256，私钥以 PEM 格式保存在数据目录中。
// 记录存储使用节点 ID 判断哪些 Provider 记录属于本地 Provided 集合。
//
// 使用示例:
//
//	id, err := identity.LoadOrCreate(path, true)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(id.ID())
package identity
