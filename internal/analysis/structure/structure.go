package structure

import (
	"propguard/internal/logger"
	"propguard/internal/market"
)

// 中文说明：
// 流动性扫荡 + 三根 K 线缺口（FVG）检测。
// 检测失败一律降级为 Unknown/Unknown，绝不让异常穿透到轮询循环。

var unknown = market.Structure{
	Liquidity: market.LiquidityUnknown,
	Imbalance: market.ImbalanceUnknown,
}

// Detect 在 lookback 窗口内检测结构状态。
// lookback 会被收缩到 len(candles)-5，收缩后不足 5 根返回 Unknown/Unknown。
func Detect(candles []market.Candle, lookback int) (result market.Structure) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("结构检测异常，降级为 Unknown: %v", r)
			result = unknown
		}
	}()

	if lookback > len(candles)-5 {
		lookback = len(candles) - 5
	}
	if lookback < 5 {
		return unknown
	}

	return market.Structure{
		Liquidity: detectSweep(candles, lookback),
		Imbalance: detectImbalance(candles, lookback),
	}
}

// detectImbalance 自最新一根向前扫描三根组合 (i-2, i-1, i)，取最近一个缺口。
func detectImbalance(candles []market.Candle, lookback int) market.ImbalanceState {
	start := len(candles) - 1
	end := len(candles) - lookback
	if end < 2 {
		end = 2
	}
	for i := start; i > end; i-- {
		prev2 := candles[i-2]
		curr := candles[i]
		if prev2.High < curr.Low {
			return market.ImbalancePresentBullish
		}
		if prev2.Low > curr.High {
			return market.ImbalancePresentBearish
		}
	}
	return market.ImbalanceAbsent
}

// detectSweep 当前 K 线刺破窗口极值但收回去，视为扫荡。
// 扫高点回落偏空，扫低点收回偏多。
func detectSweep(candles []market.Candle, lookback int) market.LiquidityState {
	last := candles[len(candles)-1]
	window := candles[len(candles)-lookback : len(candles)-1]

	recentHigh := window[0].High
	recentLow := window[0].Low
	for _, c := range window[1:] {
		if c.High > recentHigh {
			recentHigh = c.High
		}
		if c.Low < recentLow {
			recentLow = c.Low
		}
	}

	switch {
	case last.High > recentHigh && last.Close < recentHigh:
		return market.LiquiditySweepHigh
	case last.Low < recentLow && last.Close > recentLow:
		return market.LiquiditySweepLow
	default:
		return market.LiquidityResting
	}
}
