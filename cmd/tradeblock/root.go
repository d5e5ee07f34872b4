package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tradeblock/internal/app"
	"tradeblock/internal/config"
	"tradeblock/internal/log"
	"tradeblock/internal/store"
)

type session struct {
	configPath string
	noJournal  bool

	logger *zap.Logger
	store  *store.Store
	app    *app.App
}

func newRootCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tradeblock",
		Short:         "TradeBlock API 命令行客户端",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return rt.init()
		},
	}

	cmd.PersistentFlags().StringVar(&rt.configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	cmd.PersistentFlags().BoolVar(&rt.noJournal, "no-journal", false, "本次运行不写入请求审计记录")

	cmd.AddCommand(
		newUserCommand(rt),
		newCounterpartiesCommand(rt),
		newTradesCommand(rt),
		newQuickTradesCommand(rt),
		newSettleCommand(rt),
		newRequestCommand(rt),
		newJournalCommand(rt),
	)
	return cmd
}

// run 执行命令并在结束后释放资源，命令失败时同样关闭数据库并刷新日志。
func run(ctx context.Context, rt *session, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCommand(rt)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	defer rt.close()
	return cmd.ExecuteContext(ctx)
}

func (rt *session) init() error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if rt.noJournal {
		cfg.Journal.Enabled = false
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	rt.logger = logger

	if cfg.Journal.Enabled {
		st, err := store.NewSQLite(cfg.Database)
		if err != nil {
			return fmt.Errorf("初始化数据库失败: %w", err)
		}
		rt.store = st
	}

	a, err := app.New(cfg, logger, rt.store)
	if err != nil {
		return err
	}
	rt.app = a
	return nil
}

func (rt *session) close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil && rt.logger != nil {
			rt.logger.Warn("关闭数据库失败", zap.Error(err))
		}
		rt.store = nil
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
		rt.logger = nil
	}
}
