package market

import (
	"strings"
	"time"
)

// Timeframe K 线周期标签（MT5 习惯命名）。
type Timeframe string

const (
	TimeframeM1  Timeframe = "M1"
	TimeframeM5  Timeframe = "M5"
	TimeframeM15 Timeframe = "M15"
	TimeframeH1  Timeframe = "H1"
	TimeframeH4  Timeframe = "H4"
	TimeframeD1  Timeframe = "D1"
)

// ParseTimeframe 归一化周期标签，未知标签原样返回（由 Lookback 给默认值兜底）。
func ParseTimeframe(s string) Timeframe {
	return Timeframe(strings.ToUpper(strings.TrimSpace(s)))
}

// Lookback 返回结构检测使用的回看根数。
// 周期越短噪音越多，需要更长的窗口；未识别的标签退回 40。
func (tf Timeframe) Lookback() int {
	switch tf {
	case TimeframeM1, TimeframeM5:
		return 150
	case TimeframeM15:
		return 100
	case TimeframeH1:
		return 75
	case TimeframeH4:
		return 40
	case TimeframeD1:
		return 15
	default:
		return 40
	}
}

// Duration 返回周期对应的时长，未知标签返回 0。
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TimeframeM1:
		return time.Minute
	case TimeframeM5:
		return 5 * time.Minute
	case TimeframeM15:
		return 15 * time.Minute
	case TimeframeH1:
		return time.Hour
	case TimeframeH4:
		return 4 * time.Hour
	case TimeframeD1:
		return 24 * time.Hour
	default:
		return 0
	}
}
