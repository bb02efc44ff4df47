package recordstore

import (
	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dep2p/go-dalight/internal/core/storage/kv"
	"github.com/dep2p/go-dalight/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Params 记录存储模块依赖参数
type Params struct {
	fx.In

	Engine     engine.Engine
	LocalID    types.NodeID
	UnifiedCfg *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Clock      clock.Clock           `optional:"true"`
}

// Result 记录存储模块提供的结果
type Result struct {
	fx.Out

	Store   *Store
	Metrics *Metrics
}

// Module 返回记录存储 Fx 模块
//
// 依赖:
//   - engine.Engine: 由 storage.Module() 提供
//   - types.NodeID: 本节点 ID
//
// 提供:
//   - *Store
//   - *Metrics（未启用指标时为 nil）
func Module() fx.Option {
	return fx.Module("recordstore",
		fx.Provide(ProvideStore),
	)
}

// ProvideStore 基于引擎的 d/v/ 命名空间创建记录存储
func ProvideStore(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)

	var opts []Option
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}

	var metrics *Metrics
	if p.Registerer != nil && (p.UnifiedCfg == nil || p.UnifiedCfg.Metrics.Enable) {
		metrics = NewMetrics(p.Registerer)
		opts = append(opts, WithMetrics(metrics))
	}

	s, err := New(p.LocalID, cfg, kv.NewDHTValues(p.Engine), opts...)
	if err != nil {
		return Result{}, err
	}

	return Result{Store: s, Metrics: metrics}, nil
}
