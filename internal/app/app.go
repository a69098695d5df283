package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"propguard/internal/adviser"
	"propguard/internal/config"
	"propguard/internal/engine"
	"propguard/internal/gateway/broker"
	"propguard/internal/gateway/notifier"
	"propguard/internal/gateway/provider"
	"propguard/internal/logger"
	"propguard/internal/market"
	"propguard/internal/order"
	"propguard/internal/risk"
	"propguard/internal/scheduler"
	httpapi "propguard/internal/transport/http"
	"propguard/internal/transport/ws"
)

// 中文说明：
// App 负责把各组件装配成一个可运行的监控/顾问进程：
// HTTP 面 + websocket 推送 + 数据轮询循环 + 顾问循环 + 画像热加载。

type App struct {
	cfg     *config.Config
	engine  *engine.Engine
	server  *httpapi.Server
	hub     *ws.Hub
	persona *adviser.PersonaManager
}

// NewApp 按配置装配全部依赖。只装配，不启动。
func NewApp(cfg *config.Config) (*App, error) {
	gw, err := broker.NewBridgeClient(broker.BridgeConfig{
		BaseURL:        cfg.Broker.BridgeURL,
		Token:          cfg.Broker.Token,
		TimeoutSeconds: cfg.Broker.TimeoutSeconds,
	})
	if err != nil {
		return nil, err
	}

	persona := adviser.NewPersonaManager(cfg.AI.PersonaPath)
	model := &provider.OpenAIChatClient{
		BaseURL:     cfg.AI.APIURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}
	advGate := adviser.New(model, persona, adviser.Options{
		Enabled:     cfg.AI.Enabled && cfg.AI.APIKey != "",
		Cooldown:    time.Duration(cfg.AI.CooldownSeconds) * time.Second,
		DailyBudget: cfg.AI.DailyCallBudget,
		MaxFails:    cfg.AI.MaxFails,
	})
	if cfg.AI.Enabled && cfg.AI.APIKey == "" {
		logger.Warnf("ai.enabled=true 但未提供 API key，顾问网关保持禁用")
	}

	var notify notifier.TextNotifier = notifier.Nop{}
	if tg := cfg.Notify.Telegram; tg.Enabled && tg.BotToken != "" && tg.ChatID != "" {
		notify = notifier.NewTelegram(tg.BotToken, tg.ChatID)
	}

	hub := ws.NewHub()
	eng := engine.New(engine.Params{
		Gateway:     gw,
		Store:       market.NewSnapshotStore(),
		Adviser:     advGate,
		Router:      order.NewRouter(gw),
		Notifier:    notify,
		Broadcaster: hubBroadcaster{hub: hub},
		Limits: risk.Limits{
			AccountSize:     cfg.Risk.AccountSize,
			MaxTotalLoss:    cfg.Risk.MaxTotalLoss,
			SafeDailyBuffer: cfg.Risk.SafeDailyBuffer,
		},
		Symbols:  cfg.Market.Symbols,
		LTF:      market.ParseTimeframe(cfg.Market.Timeframe),
		HTF:      market.ParseTimeframe(cfg.Market.HigherTimeframe),
		BarCount: cfg.Market.BarCount,
	})

	server, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:      cfg.App.HTTPAddr,
		Engine:    eng,
		Hub:       hub,
		StaticDir: cfg.App.StaticDir,
	})
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, engine: eng, server: server, hub: hub, persona: persona}, nil
}

// Engine 暴露编排器，主要供测试与调试入口使用。
func (a *App) Engine() *engine.Engine { return a.engine }

// Run 启动全部长驻协程，任一出错或 ctx 取消即整体退出。
func (a *App) Run(ctx context.Context) error {
	refresh := time.Duration(a.cfg.App.RefreshSeconds) * time.Second
	if refresh <= 0 {
		refresh = 2 * time.Second
	}
	advisory := time.Duration(a.cfg.AI.IntervalSeconds) * time.Second
	if advisory <= 0 {
		advisory = 60 * time.Second
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("HTTP 服务监听 %s", a.server.Addr())
		return a.server.Start(ctx)
	})
	g.Go(func() error {
		scheduler.Every(ctx, "data", refresh, a.engine.DataCycle)
		return nil
	})
	g.Go(func() error {
		scheduler.Every(ctx, "advisory", advisory, a.engine.AdvisoryCycle)
		return nil
	})
	g.Go(func() error {
		if err := a.persona.Watch(ctx); err != nil {
			logger.Warnf("画像文件监听退出: %v", err)
		}
		return nil
	})

	return g.Wait()
}
