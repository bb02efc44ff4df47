package dalight

import (
	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/internal/core/identity"
	"github.com/dep2p/go-dalight/internal/core/storage"
	"github.com/dep2p/go-dalight/internal/discovery/dht/recordstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// buildFxApp 组装 Fx 应用
//
// 模块顺序：identity → storage → recordstore。
// 组件通过 fx.Populate 注入到 node。
func buildFxApp(cfg *config.Config, clk clock.Clock, node *Node) *fx.App {
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Supply(cfg),
		fx.Provide(
			func() clock.Clock { return clk },
			newRegistry,
			func(r *prometheus.Registry) prometheus.Registerer { return r },
		),
		identity.Module(),
		storage.Module(),
		recordstore.Module(),
		fx.Populate(&node.identity, &node.engine, &node.store, &node.registry),
	)
}

// newRegistry 创建带进程与运行时指标的注册表
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
