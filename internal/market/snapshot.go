package market

import "time"

// 中文说明：
// Snapshot 是核心在各组件间传递的唯一市场状态单元：
// 数据轮询循环每轮整体重建并覆盖写入，读方只拿副本，不做部分更新。

// Bias 趋势方向分类。
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasRange   Bias = "RANGE"
)

// LiquidityState 流动性扫荡状态。
type LiquidityState string

const (
	LiquidityResting   LiquidityState = "Resting"
	LiquiditySweepHigh LiquidityState = "SweepHigh"
	LiquiditySweepLow  LiquidityState = "SweepLow"
	LiquidityUnknown   LiquidityState = "Unknown"
)

// ImbalanceState 三根 K 线缺口（FVG）状态。
type ImbalanceState string

const (
	ImbalanceAbsent         ImbalanceState = "Absent"
	ImbalancePresentBullish ImbalanceState = "PresentBullish"
	ImbalancePresentBearish ImbalanceState = "PresentBearish"
	ImbalanceUnknown        ImbalanceState = "Unknown"
)

// ATR 波动状态。
const (
	ATRRegimeExpanding = "Expanding"
	ATRRegimeNormal    = "Normal"
	ATRRegimeLow       = "Low"
)

// IndicatorValues 附着在最新一根 K 线上的指标值。
type IndicatorValues struct {
	Close       float64 `json:"close"`
	EMA20       float64 `json:"ema20"`
	EMA50       float64 `json:"ema50"`
	ATR         float64 `json:"atr"`
	ATRBaseline float64 `json:"atr_baseline"`
	RSI         float64 `json:"rsi"`
}

// Structure 结构检测输出。
type Structure struct {
	Liquidity LiquidityState `json:"liquidity_state"`
	Imbalance ImbalanceState `json:"imbalance_state"`
}

// Snapshot 单个品种的市场状态聚合。
type Snapshot struct {
	Symbol     string             `json:"symbol"`
	Bias       Bias               `json:"bias"`
	LTFBias    Bias               `json:"ltf_bias"`
	HTFBias    Bias               `json:"htf_bias"`
	Timeframe  Timeframe          `json:"timeframe"`
	HTF        Timeframe          `json:"htf"`
	Indicators IndicatorValues    `json:"indicators"`
	ATRRegime  string             `json:"atr_regime"`
	Structure  Structure          `json:"structure"`
	Session    string             `json:"session"`
	Bid        float64            `json:"bid"`
	Ask        float64            `json:"ask"`
	Extras     map[string]float64 `json:"extras,omitempty"`
	AsOf       time.Time          `json:"as_of"`
}
