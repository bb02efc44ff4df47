// Package dalight 数据可用性轻节点的 DHT 记录存储
//
// 根包组装身份、存储引擎和记录存储三个模块，
// 供命令行和嵌入方直接打开一个数据目录。
//
// 使用示例:
//
//	cfg := config.NewConfig()
//	cfg.Storage.DataDir = "/var/lib/dalight"
//
//	node, err := dalight.Open(cfg)
//	if err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	err = node.Store().Put(&recordstore.ValueRecord{Key: "k", Value: v})
package dalight

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "dalight " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}
