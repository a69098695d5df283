package engine

import (
	"context"
	"fmt"
	"time"

	"propguard/internal/adviser"
	"propguard/internal/gateway/notifier"
	"propguard/internal/logger"
	"propguard/internal/metrics"
)

// 中文说明：
// 顾问循环：比数据循环慢一个数量级。先过风控闸门，
// 再问旗舰品种（跟踪列表第一个）的裁决，格式化后推给通知渠道。
// 任何失败只记日志，循环不中断。

const advisoryTimeout = 45 * time.Second

// AdvisoryCycle 跑一轮顾问询问。
func (e *Engine) AdvisoryCycle(ctx context.Context) {
	symbols := e.Symbols()
	if len(symbols) == 0 {
		return
	}
	flagship := symbols[0]

	actx, cancel := context.WithTimeout(ctx, advisoryTimeout)
	defer cancel()

	// 资金护栏在前：接近回撤限制时不花钱问模型
	if verdict := e.CheckRiskGate(actx); !verdict.Passed {
		metrics.RiskBlocks.WithLabelValues("advisory").Inc()
		logger.Warnf("顾问循环: 风控拦截，跳过本轮: %s", verdict.Reason)
		e.notifyRiskBlock(verdict.Reason)
		return
	}
	e.clearRiskNotice()

	snap, ok := e.store.Get(flagship)
	if !ok {
		logger.Debugf("顾问循环: %s 还没有快照，跳过", flagship)
		return
	}

	verdict := e.adviser.Advise(actx, flagship, snap)
	msg := FormatVerdictMessage(verdict)
	if err := e.notify.SendText(msg.RenderMarkdown()); err != nil {
		logger.Warnf("顾问循环: 通知发送失败: %v", err)
	}
}

// notifyRiskBlock 风控拦截只在状态翻转时推一次，避免刷屏。
func (e *Engine) notifyRiskBlock(reason string) {
	e.mu.Lock()
	already := e.riskNoticeSent
	e.riskNoticeSent = true
	e.mu.Unlock()
	if already {
		return
	}
	msg := notifier.Message{
		Icon:      "🛑",
		Title:     "风控拦截",
		Lines:     []string{reason},
		Footer:    "顾问与下单已暂停，等待回撤恢复",
		Timestamp: time.Now(),
	}
	if err := e.notify.SendText(msg.RenderMarkdown()); err != nil {
		logger.Warnf("风控通知发送失败: %v", err)
	}
}

func (e *Engine) clearRiskNotice() {
	e.mu.Lock()
	e.riskNoticeSent = false
	e.mu.Unlock()
}

// FormatVerdictMessage 裁决 → 推送消息。
func FormatVerdictMessage(v adviser.Verdict) notifier.Message {
	icon := "⏸"
	switch v.Action {
	case adviser.ActionBuy:
		icon = "🟢"
	case adviser.ActionSell:
		icon = "🔴"
	}
	lines := []string{
		fmt.Sprintf("action: %s", v.Action),
	}
	if v.SetupQuality != "" {
		lines = append(lines, fmt.Sprintf("quality: %s", v.SetupQuality))
	}
	if v.Entry != nil {
		lines = append(lines, fmt.Sprintf("entry: %.5f", *v.Entry))
	}
	if v.SL != nil {
		lines = append(lines, fmt.Sprintf("sl: %.5f", *v.SL))
	}
	if v.TP != nil {
		lines = append(lines, fmt.Sprintf("tp: %.5f", *v.TP))
	}
	for _, wr := range v.WaitReasons {
		lines = append(lines, fmt.Sprintf("wait[%s]: %s", wr.Class, wr.Detail))
	}
	return notifier.Message{
		Icon:      icon,
		Title:     fmt.Sprintf("%s 顾问裁决", v.Symbol),
		Lines:     lines,
		Footer:    v.Rationale,
		Timestamp: v.At,
	}
}
