package storage

import (
	"context"
	"fmt"

	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dep2p/go-dalight/internal/core/storage/engine/badger"
	"github.com/dep2p/go-dalight/internal/core/storage/engine/bolt"
	"github.com/dep2p/go-dalight/internal/core/storage/kv"
	"github.com/dep2p/go-dalight/pkg/lib/log"
	"go.uber.org/fx"
)

var logger = log.Logger("core/storage")

// Params Storage 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Storage 模块提供的结果
type Result struct {
	fx.Out

	Engine engine.Engine
	Config Config
}

// Module 返回 Storage Fx 模块
//
// 提供:
//   - engine.Engine: 存储引擎实例
//   - Config: 存储配置
//
// 生命周期:
//   - OnStart: 启动引擎（GC 等后台任务）
//   - OnStop: 关闭引擎
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(
			ProvideStorage,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideStorage 提供存储引擎和配置
func ProvideStorage(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)

	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	eng, err := NewEngine(cfg)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Engine: eng,
		Config: cfg,
	}, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, eng engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Debug("正在启动存储引擎")
			if err := eng.Start(); err != nil {
				logger.Error("存储引擎启动失败", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Debug("正在关闭存储引擎")
			if err := eng.Close(); err != nil {
				logger.Warn("存储引擎关闭失败", "error", err)
				return err
			}
			logger.Debug("存储引擎已关闭")
			return nil
		},
	})
}

// NewEngine 根据配置创建存储引擎
func NewEngine(cfg Config) (engine.Engine, error) {
	logger.Debug("创建存储引擎", "backend", cfg.Backend, "path", cfg.Path)

	engineCfg := cfg.ToEngineConfig()

	var (
		eng engine.Engine
		err error
	)
	switch cfg.Backend {
	case engine.BackendBadger:
		eng, err = badger.New(engineCfg)
	case engine.BackendBolt:
		eng, err = bolt.New(engineCfg)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Backend)
	}
	if err != nil {
		logger.Error("创建存储引擎失败", "backend", cfg.Backend, "error", err)
		return nil, err
	}

	return eng, nil
}

// NewKVStore 创建带前缀的 KVStore
func NewKVStore(eng engine.Engine, prefix []byte) *kv.Store {
	return kv.New(eng, prefix)
}

// ============= 便捷函数 =============

// New 使用默认配置（badger）创建持久化存储引擎
func New(path string) (engine.Engine, error) {
	return NewEngine(DefaultConfig().WithPath(path))
}

// ============= 类型别名（便于外部使用） =============

// Engine 是 engine.Engine 的类型别名
type Engine = engine.Engine

// KVStore 是 kv.Store 的类型别名
type KVStore = kv.Store
