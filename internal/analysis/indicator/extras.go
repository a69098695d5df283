package indicator

import (
	"math"

	"github.com/markcheno/go-talib"

	"propguard/internal/market"
)

// 中文说明：
// 附加指标（MACD/Stoch/Williams %R/ROC）只进提示词给模型参考，
// 不参与 bias 判定，口径差异无所谓，直接用 talib。

// Extras 计算附加指标的最新值。序列太短时返回空 map，不报错。
func Extras(candles []market.Candle) map[string]float64 {
	out := make(map[string]float64)
	if len(candles) < 35 { // MACD(12,26,9) 的最长暖机段
		return out
	}
	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	macd, signal, hist := talib.Macd(closes, 12, 26, 9)
	put(out, "macd", lastValid(macd))
	put(out, "macd_signal", lastValid(signal))
	put(out, "macd_hist", lastValid(hist))

	k, d := talib.Stoch(highs, lows, closes, 14, 3, talib.SMA, 3, talib.SMA)
	put(out, "stoch_k", lastValid(k))
	put(out, "stoch_d", lastValid(d))

	put(out, "williams_r", lastValid(talib.WillR(highs, lows, closes, 14)))
	put(out, "roc", lastValid(talib.Roc(closes, 9)))
	return out
}

func put(m map[string]float64, key string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	m[key] = math.Round(v*10000) / 10000
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
			return series[i]
		}
	}
	return math.NaN()
}
