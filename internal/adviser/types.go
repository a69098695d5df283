package adviser

import "time"

// 中文说明：
// 顾问裁决对象。网关合成的裁决（禁用/冷却/配额/失败）一律是 WAIT 族，
// 带上分类后调用方可以区分"模型觉得不该进"与"根本没问过模型"。

// Action 建议动作。
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionWait Action = "WAIT"
)

// WaitClass WAIT 的分类。
// WAIT_SOFT 仅由模型给出（盘面不满足），WAIT_RISK 是资金/配额护栏，
// WAIT_DATA 是没有可用裁决（禁用、冷却无缓存、调用或解析失败）。
type WaitClass string

const (
	WaitSoft WaitClass = "WAIT_SOFT"
	WaitRisk WaitClass = "WAIT_RISK"
	WaitData WaitClass = "WAIT_DATA"
)

// WaitReason 一条有序的等待原因。
type WaitReason struct {
	Class  WaitClass `json:"class"`
	Detail string    `json:"detail"`
}

// Verdict 顾问网关返回给调用方的裁决。
type Verdict struct {
	Symbol       string       `json:"symbol"`
	Action       Action       `json:"action"`
	SetupQuality string       `json:"setup_quality,omitempty"` // HIGH/MID/LOW
	Entry        *float64     `json:"entry,omitempty"`
	SL           *float64     `json:"sl,omitempty"`
	TP           *float64     `json:"tp,omitempty"`
	WaitReasons  []WaitReason `json:"wait_reasons,omitempty"`
	Rationale    string       `json:"rationale,omitempty"`
	Source       string       `json:"source"` // model | cache | gateway
	At           time.Time    `json:"at"`
}

// synthesized 构造网关合成的 WAIT 裁决。
func synthesized(symbol string, class WaitClass, detail string, at time.Time) Verdict {
	return Verdict{
		Symbol:      symbol,
		Action:      ActionWait,
		WaitReasons: []WaitReason{{Class: class, Detail: detail}},
		Rationale:   detail,
		Source:      "gateway",
		At:          at,
	}
}
