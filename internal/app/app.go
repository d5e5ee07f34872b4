package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tradeblock/internal/config"
	"tradeblock/internal/journal"
	"tradeblock/internal/store"
	"tradeblock/internal/tradeblock"
)

// App 聚合核心依赖：配置、日志、审计记录与 TradeBlock 客户端。
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	journal *journal.Service
	client  *tradeblock.Client
}

// New 创建 App 实例。store 为 nil 或审计关闭时不记录请求。
func New(cfg *config.Config, logger *zap.Logger, st *store.Store) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: 配置不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		store:  st,
	}

	if cfg.Journal.Enabled && st != nil {
		svc, err := journal.NewService(st, logger.Named("journal"))
		if err != nil {
			return nil, fmt.Errorf("初始化审计记录失败: %w", err)
		}
		a.journal = svc
	}

	opts := ClientOptions(cfg.Client)
	opts.Logger = logger.Named("client")
	if a.journal != nil {
		opts.Recorder = a.journal
	}

	client, err := tradeblock.New(opts)
	if err != nil {
		return nil, err
	}
	a.client = client

	logger.Info("TradeBlock 客户端已初始化",
		zap.String("environment", cfg.App.Environment),
		zap.String("base_url", client.BaseURL()),
		zap.Bool("journal", a.journal != nil),
	)

	return a, nil
}

// ClientOptions 将配置转换为客户端构造参数。
func ClientOptions(cfg config.ClientConfig) *tradeblock.Options {
	return &tradeblock.Options{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		Demo:      cfg.Demo,
		Protocol:  cfg.Protocol,
		Host:      cfg.Host,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Headers:   cfg.Headers,
	}
}

// Client 返回 TradeBlock 客户端。
func (a *App) Client() *tradeblock.Client {
	return a.client
}

// Journal 返回审计服务，未启用时为 nil。
func (a *App) Journal() *journal.Service {
	return a.journal
}

// ServeJournal 启动审计查询接口并阻塞到 ctx 结束。
func (a *App) ServeJournal(ctx context.Context, port int) error {
	if a.journal == nil {
		return fmt.Errorf("app: 审计记录未启用")
	}
	if port <= 0 {
		port = a.cfg.Journal.Port
	}
	return serveJournal(ctx, a.journal, port, a.logger)
}
