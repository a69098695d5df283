package analysis

import (
	"time"

	"propguard/internal/analysis/indicator"
	"propguard/internal/analysis/structure"
	"propguard/internal/market"
)

// 中文说明：
// 把指标引擎与结构检测的输出合成单个品种的 Snapshot。
// 低周期为主视角（bias/指标/结构取自低周期），高周期只贡献方向参考。

// ClassifyBias 由收盘价与双 EMA 的排列决定方向，对任意输入恰好命中一种分类。
func ClassifyBias(close, ema20, ema50 float64) market.Bias {
	switch {
	case close > ema20 && ema20 > ema50:
		return market.BiasBullish
	case close < ema20 && ema20 < ema50:
		return market.BiasBearish
	default:
		return market.BiasRange
	}
}

// ClassifyATRRegime ATR 相对自身基线的波动状态。
func ClassifyATRRegime(atr, baseline float64) string {
	switch {
	case baseline > 0 && atr > baseline*1.5:
		return market.ATRRegimeExpanding
	case baseline > 0 && atr < baseline*0.7:
		return market.ATRRegimeLow
	default:
		return market.ATRRegimeNormal
	}
}

// SessionLabel 按 UTC 小时粗分交易时段。
func SessionLabel(t time.Time) string {
	switch h := t.UTC().Hour(); {
	case h >= 22 || h < 7:
		return "Asia"
	case h < 12:
		return "London"
	case h < 16:
		return "London/NY"
	default:
		return "NewYork"
	}
}

// BuildSnapshot 合成快照。两个周期都必须已注释完毕，调用方保证非 nil。
func BuildSnapshot(symbol string, ltf market.Timeframe, ltfSeries *indicator.Series,
	htf market.Timeframe, htfSeries *indicator.Series, quote market.Quote, now time.Time) market.Snapshot {

	vals := ltfSeries.Last()
	htfVals := htfSeries.Last()
	ltfBias := ClassifyBias(vals.Close, vals.EMA20, vals.EMA50)

	return market.Snapshot{
		Symbol:     symbol,
		Bias:       ltfBias,
		LTFBias:    ltfBias,
		HTFBias:    ClassifyBias(htfVals.Close, htfVals.EMA20, htfVals.EMA50),
		Timeframe:  ltf,
		HTF:        htf,
		Indicators: vals,
		ATRRegime:  ClassifyATRRegime(vals.ATR, vals.ATRBaseline),
		Structure:  structure.Detect(ltfSeries.Candles, ltf.Lookback()),
		Session:    SessionLabel(now),
		Bid:        quote.Bid,
		Ask:        quote.Ask,
		Extras:     indicator.Extras(ltfSeries.Candles),
		AsOf:       now.UTC(),
	}
}
