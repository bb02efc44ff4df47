package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dep2p/go-dalight/internal/core/storage/kv"
	"github.com/dep2p/go-dalight/internal/discovery/dht/recordstore"
	"github.com/dep2p/go-dalight/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	errRecordNotFound  = errors.New("记录不存在")
	errMetricsDisabled = errors.New("指标未启用（metrics.enable = false）")
)

// command 子命令
type command struct {
	usage   string
	summary string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"list": {
		usage:   "list",
		summary: "列出全部值记录",
		run:     runList,
	},
	"get": {
		usage:   "get <key>",
		summary: "读取值记录",
		minArgs: 1,
		maxArgs: 1,
		run:     runGet,
	},
	"put": {
		usage:   "put <key> <value> [ttl]",
		summary: "写入值记录，ttl 如 30m、24h",
		minArgs: 2,
		maxArgs: 3,
		run:     runPut,
	},
	"rm": {
		usage:   "rm <key>",
		summary: "删除值记录",
		minArgs: 1,
		maxArgs: 1,
		run:     runRemove,
	},
	"purge": {
		usage:   "purge",
		summary: "删除全部值记录",
		run:     runPurge,
	},
	"stats": {
		usage:   "stats",
		summary: "打印存储统计（JSON）",
		run:     runStats,
	},
	"serve": {
		usage:   "serve",
		summary: "导出 /metrics 直到收到 SIGINT",
		run:     runServe,
	},
}

// ============================================================================
//                              值记录命令
// ============================================================================

func runList(_ context.Context, e *env, _ []string) error {
	count, skipped := 0, 0
	for r, err := range e.store.Records() {
		if err != nil {
			skipped++
			logger.Warn("跳过无法解码的记录", "error", err)
			continue
		}
		printRecord(e.out, r)
		count++
	}

	fmt.Fprintf(e.out, "共 %d 条记录", count)
	if skipped > 0 {
		fmt.Fprintf(e.out, "，跳过 %d 条", skipped)
	}
	fmt.Fprintln(e.out)
	return nil
}

func runGet(_ context.Context, e *env, args []string) error {
	r, err := e.store.Get(types.Key(args[0]))
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("%w: %s", errRecordNotFound, args[0])
	}
	printRecord(e.out, r)
	return nil
}

func runPut(_ context.Context, e *env, args []string) error {
	r := &recordstore.ValueRecord{
		Key:       types.Key(args[0]),
		Value:     []byte(args[1]),
		Publisher: e.identity.ID(),
	}

	if len(args) == 3 {
		ttl, err := time.ParseDuration(args[2])
		if err != nil {
			return fmt.Errorf("无效的 ttl %q: %w", args[2], err)
		}
		if ttl <= 0 {
			return fmt.Errorf("无效的 ttl %q: 必须为正数", args[2])
		}
		r.Expires = e.clock.Now().Add(ttl)
	}

	if err := e.store.Put(r); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "已写入 %s\n", r.Key)
	return nil
}

func runRemove(_ context.Context, e *env, args []string) error {
	e.store.Remove(types.Key(args[0]))
	fmt.Fprintf(e.out, "已删除 %s\n", args[0])
	return nil
}

func runPurge(_ context.Context, e *env, _ []string) error {
	n, err := kv.NewDHTValues(e.engine).DeletePrefix(nil)
	if err != nil {
		return fmt.Errorf("清空值记录失败: %w", err)
	}
	fmt.Fprintf(e.out, "已删除 %d 条记录\n", n)
	return nil
}

// printRecord 输出单条记录：键、值、发布者、过期时间
func printRecord(w io.Writer, r *recordstore.ValueRecord) {
	publisher := "-"
	if r.HasPublisher() {
		publisher = r.Publisher.String()
	}

	expires := "never"
	if !r.Expires.IsZero() {
		expires = r.Expires.UTC().Format(time.RFC3339)
	}

	fmt.Fprintf(w, "%s\t%q\tpublisher=%s\texpires=%s\n", r.Key, r.Value, publisher, expires)
}

// ============================================================================
//                              统计与指标
// ============================================================================

// statsOutput stats 命令的 JSON 输出
type statsOutput struct {
	NodeID  string            `json:"node_id"`
	Backend string            `json:"backend"`
	Values  int64             `json:"values"`
	Store   recordstore.Stats `json:"store"`
	Engine  *engine.Stats     `json:"engine"`
}

func runStats(_ context.Context, e *env, _ []string) error {
	values, err := kv.NewDHTValues(e.engine).Count(nil)
	if err != nil {
		return fmt.Errorf("统计值记录失败: %w", err)
	}

	out := statsOutput{
		NodeID:  e.identity.ID().String(),
		Backend: e.cfg.Storage.Backend,
		Values:  values,
		Store:   e.store.Stats(),
		Engine:  e.engine.Stats(),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, string(data))
	return nil
}

// runServe 导出 /metrics 直到 ctx 结束
func runServe(ctx context.Context, e *env, _ []string) error {
	if !e.cfg.Metrics.Enable {
		return errMetricsDisabled
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{Registry: e.registry}))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", e.cfg.Metrics.ListenAddr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", e.cfg.Metrics.ListenAddr, err)
	}

	fmt.Fprintf(e.out, "指标服务已启动: http://%s/metrics，按 Ctrl+C 退出\n", ln.Addr())
	logger.Info("指标服务已启动", "addr", ln.Addr().String(), "node", e.identity.ID().ShortString())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("正在关闭指标服务")
		return srv.Shutdown(shutdownCtx)

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
