package identity

import (
	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/pkg/lib/log"
	"github.com/dep2p/go-dalight/pkg/types"
	"go.uber.org/fx"
)

var logger = log.Logger("core/identity")

// Params 身份模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result 身份模块提供的结果
type Result struct {
	fx.Out

	Identity *Identity
	NodeID   types.NodeID
}

// Module 返回身份 Fx 模块
//
// 提供:
//   - *Identity: 本节点身份
//   - types.NodeID: 本节点 ID（供记录存储使用）
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideIdentity),
	)
}

// ProvideIdentity 从配置的密钥文件加载或生成身份
//
// 未提供统一配置时生成临时身份，不落盘。
func ProvideIdentity(p Params) (Result, error) {
	if p.UnifiedCfg == nil {
		id, err := Generate()
		if err != nil {
			return Result{}, err
		}
		return Result{Identity: id, NodeID: id.ID()}, nil
	}

	path := p.UnifiedCfg.Identity.ResolveKeyFile(p.UnifiedCfg.Storage.DataDir)
	id, err := LoadOrCreate(path, p.UnifiedCfg.Identity.AutoGenerate)
	if err != nil {
		return Result{}, err
	}

	logger.Debug("身份已加载", "id", id.ID().ShortString())
	return Result{Identity: id, NodeID: id.ID()}, nil
}
