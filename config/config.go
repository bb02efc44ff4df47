// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持预设配置（mobile/server）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Storage.DataDir = "/var/lib/dalight"
//
//	// 应用预设
//	config.ApplyPreset(cfg, "mobile")
//
//	// 从文件加载
//	cfg, err := config.LoadFile("dalight.json")
package config

// Config 是轻节点记录存储的完整配置结构
//
// 配置按照功能模块组织：
//   - Identity: 节点身份
//   - Storage: 存储引擎与数据目录
//   - RecordStore: DHT 记录存储容量限制
//   - Log: 日志输出
//   - Metrics: 指标导出
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// RecordStore DHT 记录存储配置
	RecordStore RecordStoreConfig `json:"record_store"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity:    DefaultIdentityConfig(),
		Storage:     DefaultStorageConfig(),
		RecordStore: DefaultRecordStoreConfig(),
		Log:         DefaultLogConfig(),
		Metrics:     DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
func (c *Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.RecordStore.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return nil
}
