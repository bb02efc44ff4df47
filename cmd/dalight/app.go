package main

import (
	"fmt"
	"io"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-dalight"
	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/internal/core/identity"
	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dep2p/go-dalight/internal/discovery/dht/recordstore"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// env 子命令的运行环境
type env struct {
	cfg      *config.Config
	out      io.Writer
	clock    clock.Clock
	identity *identity.Identity
	engine   engine.Engine
	store    *recordstore.Store
	registry *prometheus.Registry
}

// execute 打开节点、执行 fn，并在返回前关闭节点
func execute(cfg *config.Config, out io.Writer, fn func(*env) error) (err error) {
	node, err := dalight.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := node.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("关闭失败: %w", cerr))
		}
	}()

	return fn(&env{
		cfg:      cfg,
		out:      out,
		clock:    node.Clock(),
		identity: node.Identity(),
		engine:   node.Engine(),
		store:    node.Store(),
		registry: node.Registry(),
	})
}
