package dalight

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/internal/core/identity"
	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dep2p/go-dalight/internal/discovery/dht/recordstore"
	"github.com/dep2p/go-dalight/pkg/lib/log"
	"github.com/dep2p/go-dalight/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var logger = log.Logger("dalight")

// ErrNilConfig 配置为 nil
var ErrNilConfig = errors.New("dalight: config is nil")

// Node 打开的数据目录
//
// 持有身份、存储引擎和记录存储，Close 后不可再使用。
type Node struct {
	app   *fx.App
	cfg   *config.Config
	clock clock.Clock

	identity *identity.Identity
	engine   engine.Engine
	store    *recordstore.Store
	registry *prometheus.Registry

	closeOnce sync.Once
	closeErr  error
}

// Option 节点选项
type Option func(*Node)

// WithClock 设置时间源
func WithClock(c clock.Clock) Option {
	return func(n *Node) {
		n.clock = c
	}
}

// Open 打开数据目录并启动各模块
//
// 参数:
//   - cfg: 统一配置，打开前会先验证
//   - opts: 节点选项
//
// 返回:
//   - *Node: 已启动的节点
//   - error: 配置无效或启动失败
func Open(cfg *config.Config, opts ...Option) (*Node, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	n := &Node{cfg: cfg, clock: clock.New()}
	for _, opt := range opts {
		opt(n)
	}

	n.app = buildFxApp(cfg, n.clock, n)
	if err := n.app.Err(); err != nil {
		return nil, fmt.Errorf("初始化失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.app.StartTimeout())
	defer cancel()
	if err := n.app.Start(ctx); err != nil {
		return nil, fmt.Errorf("启动失败: %w", err)
	}

	logger.Info("节点已打开",
		"id", n.identity.ID().ShortString(),
		"dataDir", cfg.Storage.DataDir,
		"backend", cfg.Storage.Backend)

	return n, nil
}

// ID 返回本节点 ID
func (n *Node) ID() types.NodeID {
	return n.identity.ID()
}

// Identity 返回本节点身份
func (n *Node) Identity() *identity.Identity {
	return n.identity
}

// Config 返回打开时使用的配置
func (n *Node) Config() *config.Config {
	return n.cfg
}

// Clock 返回时间源
func (n *Node) Clock() clock.Clock {
	return n.clock
}

// Engine 返回存储引擎
func (n *Node) Engine() engine.Engine {
	return n.engine
}

// Store 返回记录存储
func (n *Node) Store() *recordstore.Store {
	return n.store
}

// Registry 返回 Prometheus 注册表
func (n *Node) Registry() *prometheus.Registry {
	return n.registry
}

// Close 停止各模块并关闭存储引擎
//
// 可重复调用，返回第一次关闭的结果。
func (n *Node) Close() error {
	n.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.app.StopTimeout())
		defer cancel()

		n.closeErr = n.app.Stop(ctx)
		logger.Info("节点已关闭", "id", n.identity.ID().ShortString())
	})
	return n.closeErr
}
