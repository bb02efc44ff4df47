package main

import (
	"os"

	"github.com/dep2p/go-dalight/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量名（均使用 DALIGHT_ 前缀）
const (
	envPrefix      = "DALIGHT_"
	envDataDir     = envPrefix + "DATA_DIR"
	envBackend     = envPrefix + "BACKEND"
	envLogLevel    = envPrefix + "LOG_LEVEL"
	envLogFormat   = envPrefix + "LOG_FORMAT"
	envMetricsAddr = envPrefix + "METRICS_ADDR"
)

// loadConfig 构建本次运行的配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（DALIGHT_* 前缀）
//  3. 预设
//  4. 配置文件
//  5. 默认值
func loadConfig(opts options, set map[string]bool) (*config.Config, error) {
	cfg := config.NewConfig()
	if opts.configFile != "" {
		loaded, err := config.LoadFile(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.preset != "" {
		if err := config.ApplyPreset(cfg, opts.preset); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if set["data-dir"] {
		cfg.Storage.DataDir = opts.dataDir
	}
	if set["backend"] {
		cfg.Storage.Backend = opts.backend
	}
	if set["log-level"] {
		cfg.Log.Level = opts.logLevel
	}
	if set["log-format"] {
		cfg.Log.Format = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖配置
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(envDataDir); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv(envBackend); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(envLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(envMetricsAddr); v != "" {
		cfg.Metrics.ListenAddr = v
	}
}
