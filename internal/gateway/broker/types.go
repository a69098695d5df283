package broker

import (
	"context"

	"propguard/internal/market"
)

// 中文说明：
// 券商（MT5 终端）侧的抽象契约。核心只依赖这里的接口，
// 所有方法都带 ctx、显式返回错误，严禁跨边界抛异常。

// Account 账户资金状态。
type Account struct {
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Currency string  `json:"currency,omitempty"`
}

// InstrumentMeta 品种的报价精度与手数约束。
type InstrumentMeta struct {
	Symbol     string  `json:"symbol"`
	Digits     int     `json:"digits"`
	TickSize   float64 `json:"tick_size"`
	TickValue  float64 `json:"tick_value"`
	VolumeMin  float64 `json:"volume_min"`
	VolumeMax  float64 `json:"volume_max"`
	VolumeStep float64 `json:"volume_step"`
}

// OrderType 下单方向/类型，沿用 MT5 命名。
type OrderType string

const (
	OrderBuy       OrderType = "BUY"
	OrderSell      OrderType = "SELL"
	OrderBuyLimit  OrderType = "BUY_LIMIT"
	OrderSellLimit OrderType = "SELL_LIMIT"
	OrderBuyStop   OrderType = "BUY_STOP"
	OrderSellStop  OrderType = "SELL_STOP"
)

// IsMarket 市价单（即时成交）。
func (t OrderType) IsMarket() bool {
	return t == OrderBuy || t == OrderSell
}

// FillMode 成交模式。
type FillMode string

const (
	FillIOC    FillMode = "IOC"
	FillFOK    FillMode = "FOK"
	FillReturn FillMode = "RETURN"
)

// OrderRequest 规范化后的下单请求。
type OrderRequest struct {
	Symbol    string    `json:"symbol"`
	Type      OrderType `json:"type"`
	Volume    float64   `json:"volume"`
	Price     float64   `json:"price"`
	SL        float64   `json:"sl"`
	TP        float64   `json:"tp"`
	Fill      FillMode  `json:"fill"`
	Deviation int       `json:"deviation"`
	Comment   string    `json:"comment,omitempty"`
}

// OrderResult 券商返回的下单结果。
type OrderResult struct {
	Ticket  int64  `json:"ticket"`
	Retcode int    `json:"retcode"`
	Message string `json:"message,omitempty"`
}

// Position 持仓记录。
type Position struct {
	Ticket  int64   `json:"ticket"`
	Symbol  string  `json:"symbol"`
	Type    string  `json:"type"`
	Volume  float64 `json:"volume"`
	Price   float64 `json:"price"`
	SL      float64 `json:"sl"`
	TP      float64 `json:"tp"`
	Profit  float64 `json:"profit"`
	Comment string  `json:"comment,omitempty"`
}

// PendingOrder 挂单记录。
type PendingOrder struct {
	Ticket int64   `json:"ticket"`
	Symbol string  `json:"symbol"`
	Type   string  `json:"type"`
	Volume float64 `json:"volume"`
	Price  float64 `json:"price"`
	SL     float64 `json:"sl"`
	TP     float64 `json:"tp"`
}

// Book 当前持仓与挂单。
type Book struct {
	Positions []Position     `json:"positions"`
	Orders    []PendingOrder `json:"orders"`
}

// Gateway 核心消费的券商契约。
type Gateway interface {
	// Connect 幂等：已连接时直接返回 nil。
	Connect(ctx context.Context) error
	FetchBars(ctx context.Context, symbol string, tf market.Timeframe, count int) ([]market.Candle, error)
	FetchQuote(ctx context.Context, symbol string) (market.Quote, error)
	FetchAccount(ctx context.Context) (Account, error)
	FetchInstrumentMeta(ctx context.Context, symbol string) (InstrumentMeta, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	ModifyPosition(ctx context.Context, ticket int64, sl, tp float64) error
	ClosePosition(ctx context.Context, ticket int64) error
	ListOpenPositionsAndOrders(ctx context.Context) (Book, error)
}
