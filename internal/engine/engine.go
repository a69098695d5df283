package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"propguard/internal/adviser"
	"propguard/internal/gateway/broker"
	"propguard/internal/gateway/notifier"
	"propguard/internal/market"
	"propguard/internal/order"
	"propguard/internal/risk"
)

// 中文说明：
// Engine 是核心编排器：持有快照表、顾问网关、券商网关与下单路由，
// 对外提供传输层消费的查询/下单接口。
// 共享状态的归属规则：快照表只由数据循环写；顾问状态只在网关内部改。

// Envelope 由传输层定义具体推送通道，这里只依赖最小接口。
type Broadcaster interface {
	BroadcastMarketData(symbol string, snap market.Snapshot)
	BroadcastStatus(status Status)
	BroadcastPositions(book broker.Book)
}

// Status 账户/连接状态帧。
type Status struct {
	Connected      bool     `json:"connected"`
	Balance        float64  `json:"balance"`
	Equity         float64  `json:"equity"`
	SymbolsTracked int      `json:"symbols_tracked"`
	TrackedList    []string `json:"tracked_list"`
}

type Engine struct {
	gw       broker.Gateway
	store    *market.SnapshotStore
	adviser  *adviser.Gateway
	router   *order.Router
	notify   notifier.TextNotifier
	bc       Broadcaster
	limits   risk.Limits
	ltf      market.Timeframe
	htf      market.Timeframe
	barCount int

	mu             sync.RWMutex
	symbols        []string
	connected      bool
	riskNoticeSent bool
}

// Params Engine 依赖集合。
type Params struct {
	Gateway     broker.Gateway
	Store       *market.SnapshotStore
	Adviser     *adviser.Gateway
	Router      *order.Router
	Notifier    notifier.TextNotifier
	Broadcaster Broadcaster
	Limits      risk.Limits
	Symbols     []string
	LTF         market.Timeframe
	HTF         market.Timeframe
	BarCount    int
}

func New(p Params) *Engine {
	if p.Notifier == nil {
		p.Notifier = notifier.Nop{}
	}
	if p.BarCount <= 0 {
		p.BarCount = 100
	}
	return &Engine{
		gw:       p.Gateway,
		store:    p.Store,
		adviser:  p.Adviser,
		router:   p.Router,
		notify:   p.Notifier,
		bc:       p.Broadcaster,
		limits:   p.Limits,
		ltf:      p.LTF,
		htf:      p.HTF,
		barCount: p.BarCount,
		symbols:  append([]string(nil), p.Symbols...),
	}
}

// Symbols 当前跟踪的品种列表副本。
func (e *Engine) Symbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.symbols...)
}

// AddSymbol 运行时追加品种，先向券商校验品种存在。
func (e *Engine) AddSymbol(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol 为空")
	}
	if _, err := e.gw.FetchInstrumentMeta(ctx, symbol); err != nil {
		return fmt.Errorf("券商不认识品种 %s: %w", symbol, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.symbols {
		if s == symbol {
			return nil
		}
	}
	e.symbols = append(e.symbols, symbol)
	return nil
}

// MarketState 全部最新快照。
func (e *Engine) MarketState() map[string]market.Snapshot {
	return e.store.All()
}

// Snapshot 指定品种的最新快照。
func (e *Engine) Snapshot(symbol string) (market.Snapshot, bool) {
	return e.store.Get(symbol)
}

// CheckRiskGate 实时拉账户执行风控判定。账户不可得视为拦截（fail closed）。
func (e *Engine) CheckRiskGate(ctx context.Context) risk.Verdict {
	acct, err := e.gw.FetchAccount(ctx)
	if err != nil {
		return risk.Verdict{Reason: "blocked: account unavailable: " + err.Error()}
	}
	return risk.Check(acct.Balance, acct.Equity, e.limits)
}

// Advisory 对指定品种请求顾问裁决（HTTP 查询路径）。
func (e *Engine) Advisory(ctx context.Context, symbol string) (adviser.Verdict, error) {
	snap, ok := e.store.Get(symbol)
	if !ok {
		return adviser.Verdict{}, fmt.Errorf("symbol %s not tracked or no data", symbol)
	}
	return e.adviser.Advise(ctx, symbol, snap), nil
}

// Trade 风控闸门 → 规范化 → 下单。
func (e *Engine) Trade(ctx context.Context, intent order.Intent) (order.Result, error) {
	if verdict := e.CheckRiskGate(ctx); !verdict.Passed {
		return order.Result{}, &risk.BlockedError{Verdict: verdict}
	}
	return e.router.Route(ctx, intent)
}

// Positions 当前持仓与挂单。
func (e *Engine) Positions(ctx context.Context) (broker.Book, error) {
	return e.gw.ListOpenPositionsAndOrders(ctx)
}

// ModifyPosition 调整持仓的止损/止盈。
func (e *Engine) ModifyPosition(ctx context.Context, ticket int64, sl, tp float64) error {
	return e.gw.ModifyPosition(ctx, ticket, sl, tp)
}

// ClosePosition 市价平掉指定持仓。
func (e *Engine) ClosePosition(ctx context.Context, ticket int64) error {
	return e.gw.ClosePosition(ctx, ticket)
}

func (e *Engine) setConnected(ok bool) {
	e.mu.Lock()
	e.connected = ok
	e.mu.Unlock()
}

// Connected 数据循环最近一轮是否拿到了账户数据。
func (e *Engine) Connected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

// AccountStatus 组装状态帧。
func (e *Engine) AccountStatus(ctx context.Context) Status {
	symbols := e.Symbols()
	st := Status{SymbolsTracked: len(symbols), TrackedList: symbols}
	acct, err := e.gw.FetchAccount(ctx)
	if err == nil {
		st.Connected = true
		st.Balance = acct.Balance
		st.Equity = acct.Equity
	}
	return st
}
