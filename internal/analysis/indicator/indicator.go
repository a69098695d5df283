package indicator

import (
	"errors"
	"math"

	"propguard/internal/market"
)

// 中文说明：
// 趋势/波动指标引擎。纯函数，无 I/O。
// EMA 以首值播种（alpha=2/(span+1)），RSI 用 Wilder 平滑（alpha=1/period），
// 与常见图表软件的口径一致；talib 的 EMA 用 SMA 播种、前导段为 NaN，
// 口径不同，所以核心五项指标手工计算，talib 只用于 extras 附加指标。

// MinBars 指标有效所需的最少 K 线数（EMA50 稳定 + ATR 基线窗口）。
const MinBars = 55

const (
	emaFastSpan   = 20
	emaSlowSpan   = 50
	atrPeriod     = 14
	atrBasePeriod = 20
	rsiPeriod     = 14
)

var ErrInsufficientHistory = errors.New("insufficient history")

// Series 是带指标注释的 K 线序列，各切片与 Candles 等长对齐。
type Series struct {
	Candles     []market.Candle
	EMA20       []float64
	EMA50       []float64
	TR          []float64
	ATR         []float64
	ATRBaseline []float64
	RSI         []float64
}

// Last 返回最新一根 K 线上的指标值。
func (s *Series) Last() market.IndicatorValues {
	n := len(s.Candles) - 1
	return market.IndicatorValues{
		Close:       s.Candles[n].Close,
		EMA20:       s.EMA20[n],
		EMA50:       s.EMA50[n],
		ATR:         s.ATR[n],
		ATRBaseline: s.ATRBaseline[n],
		RSI:         s.RSI[n],
	}
}

// Annotate 计算 EMA20/EMA50、TR、ATR(14)、ATR 基线(20)、RSI(14)。
// 少于 MinBars 根返回 ErrInsufficientHistory。
func Annotate(candles []market.Candle) (*Series, error) {
	if len(candles) < MinBars {
		return nil, ErrInsufficientHistory
	}
	n := len(candles)
	closes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
	}

	s := &Series{
		Candles:     candles,
		EMA20:       ema(closes, emaFastSpan),
		EMA50:       ema(closes, emaSlowSpan),
		TR:          make([]float64, n),
		ATR:         make([]float64, n),
		ATRBaseline: make([]float64, n),
		RSI:         wilderRSI(closes, rsiPeriod),
	}

	for i, c := range candles {
		if i == 0 {
			s.TR[i] = c.High - c.Low
			continue
		}
		prevClose := candles[i-1].Close
		s.TR[i] = math.Max(c.High-c.Low,
			math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
	}
	sma(s.TR, atrPeriod, s.ATR)
	sma(s.ATR, atrBasePeriod, s.ATRBaseline)
	return s, nil
}

// ema 指数移动平均，首值播种。
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	alpha := 2.0 / float64(span+1)
	for i, v := range values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}

// sma 简单移动平均，窗口未满时用已有数据的均值。
func sma(values []float64, period int, out []float64) {
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
			out[i] = sum / float64(period)
			continue
		}
		out[i] = sum / float64(i+1)
	}
}

// wilderRSI RSI(period)，涨跌幅用 Wilder 平滑（alpha=1/period）。
// 窗口内无下跌时除数为零，按定义收敛到 100 而不是报错。
func wilderRSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	alpha := 1.0 / float64(period)
	var avgUp, avgDown float64
	for i := range closes {
		if i == 0 {
			out[i] = 50 // 无涨跌信息，中性
			continue
		}
		delta := closes[i] - closes[i-1]
		up, down := 0.0, 0.0
		if delta > 0 {
			up = delta
		} else {
			down = -delta
		}
		if i == 1 {
			avgUp, avgDown = up, down
		} else {
			avgUp = alpha*up + (1-alpha)*avgUp
			avgDown = alpha*down + (1-alpha)*avgDown
		}
		if avgDown == 0 {
			out[i] = 100
			continue
		}
		rs := avgUp / avgDown
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
