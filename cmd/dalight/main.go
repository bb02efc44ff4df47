// Package main 提供 dalight 命令行入口
//
// 打开数据目录中的 DHT 记录存储，用于查看和编辑值记录，
// 或以 serve 方式导出 Prometheus 指标。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dep2p/go-dalight"
	"github.com/dep2p/go-dalight/config"
	"github.com/dep2p/go-dalight/pkg/lib/log"
)

var logger = log.Logger("dalight/cmd")

var (
	errMissingCommand = errors.New("缺少命令")
	errUsage          = errors.New("参数数量不正确")
)

// options 命令行参数
//
// 命令行参数仅覆盖本次运行，持久化配置放在 JSON 配置文件中。
type options struct {
	configFile string
	preset     string
	dataDir    string
	backend    string
	logLevel   string
	logFormat  string

	showVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// run 解析参数并执行子命令
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("dalight", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configFile, "config", "", "配置文件路径")
	fs.StringVar(&opts.preset, "preset", "", "预设配置 (mobile/server)")
	fs.StringVar(&opts.dataDir, "data-dir", "", "数据目录（默认: ./data）")
	fs.StringVar(&opts.backend, "backend", "", "存储后端 (badger/bolt)")
	fs.StringVar(&opts.logLevel, "log-level", "", "日志级别 (debug/info/warn/error)")
	fs.StringVar(&opts.logFormat, "log-format", "", "日志格式 (console/text/json)")
	fs.BoolVar(&opts.showVersion, "version", false, "显示版本信息")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.showVersion {
		fmt.Fprintln(stdout, dalight.VersionInfo())
		return nil
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errMissingCommand
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fs.Usage()
		return fmt.Errorf("未知命令: %s", name)
	}

	cmdArgs := fs.Args()[1:]
	if len(cmdArgs) < cmd.minArgs || len(cmdArgs) > cmd.maxArgs {
		return fmt.Errorf("%w，用法: dalight %s", errUsage, cmd.usage)
	}

	cfg, err := loadConfig(opts, visitedFlags(fs))
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	if err := setupLogging(stderr, cfg.Log); err != nil {
		return err
	}

	logger.Debug("执行命令", "command", name, "dataDir", cfg.Storage.DataDir, "backend", cfg.Storage.Backend)

	return execute(cfg, stdout, func(e *env) error {
		return cmd.run(ctx, e, cmdArgs)
	})
}

// setupLogging 设置日志输出
func setupLogging(w io.Writer, c config.LogConfig) error {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	return log.Setup(w, log.Format(c.Format), level)
}

// visitedFlags 返回被显式设置的参数名
func visitedFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// printUsage 打印帮助信息
func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "用法: dalight [参数] <命令> [命令参数]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "命令:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-28s %s\n", cmd.usage, cmd.summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "参数:")
	fs.PrintDefaults()
}
