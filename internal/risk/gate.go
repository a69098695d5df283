package risk

import "fmt"

// 中文说明：
// 挑战账户的资金保护闸门。纯谓词，无状态，每次调用重新判定，禁止缓存结果。
// 两条规则：净值跌破总亏损上限 → 拦截；浮动回撤触及当日安全垫 → 拦截。

// Limits 挑战规则的静态配置。
type Limits struct {
	AccountSize     float64
	MaxTotalLoss    float64
	SafeDailyBuffer float64
}

// Verdict 闸门判定结果。
type Verdict struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// BlockedError 把闸门拦截包装成下单路径的调用方可见错误。
type BlockedError struct {
	Verdict Verdict
}

func (e *BlockedError) Error() string { return e.Verdict.Reason }

// Check 对当前余额/净值执行判定。总亏损上限是硬出局线，两条同时触发时以它为准。
func Check(balance, equity float64, limits Limits) Verdict {
	if floor := limits.AccountSize - limits.MaxTotalLoss; equity < floor {
		return Verdict{Reason: fmt.Sprintf("blocked: max loss hit (equity=%.2f floor=%.2f)", equity, floor)}
	}
	if dd := balance - equity; dd > limits.SafeDailyBuffer {
		return Verdict{Reason: fmt.Sprintf("blocked: daily buffer exceeded (drawdown=%.2f limit=%.2f)", dd, limits.SafeDailyBuffer)}
	}
	return Verdict{Passed: true}
}
