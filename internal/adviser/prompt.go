package adviser

import (
	"fmt"
	"sort"
	"strings"

	"propguard/internal/market"
)

// 中文说明：
// 提示词渲染。用户段把快照的技术面/结构面/环境字段全部铺开，
// 并用固定的 JSON 输出约束收口，解析端按同一份 schema 校验。

const outputContract = `Respond with a single JSON object, no prose outside it:
{
  "action": "BUY" | "SELL" | "WAIT",
  "setup_quality": "HIGH" | "MID" | "LOW",
  "entry": number or null,
  "sl": number or null,
  "tp": number or null,
  "wait_reasons": [{"class": "WAIT_SOFT" | "WAIT_RISK" | "WAIT_DATA", "detail": "short text"}],
  "rationale": "max 20 words"
}
For BUY/SELL always provide entry, sl and tp. For WAIT leave them null and
explain in wait_reasons (class WAIT_SOFT when the setup is simply not there).`

// RenderUserPrompt 把快照渲染为用户提示词。
func RenderUserPrompt(snap market.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate this setup for a funded 100k challenge account (capital preservation first).\n\n")
	fmt.Fprintf(&b, "Symbol: %s\nSession: %s\nTimeframe: %s (HTF %s)\n", snap.Symbol, snap.Session, snap.Timeframe, snap.HTF)
	fmt.Fprintf(&b, "Bid/Ask: %.5f / %.5f\n\n", snap.Bid, snap.Ask)

	iv := snap.Indicators
	fmt.Fprintf(&b, "Technicals:\n")
	fmt.Fprintf(&b, "- close=%.5f ema20=%.5f ema50=%.5f\n", iv.Close, iv.EMA20, iv.EMA50)
	fmt.Fprintf(&b, "- rsi=%.1f atr=%.5f atr_baseline=%.5f regime=%s\n", iv.RSI, iv.ATR, iv.ATRBaseline, snap.ATRRegime)
	fmt.Fprintf(&b, "- bias=%s ltf_bias=%s htf_bias=%s\n\n", snap.Bias, snap.LTFBias, snap.HTFBias)

	fmt.Fprintf(&b, "Structure:\n")
	fmt.Fprintf(&b, "- liquidity=%s imbalance=%s\n", snap.Structure.Liquidity, snap.Structure.Imbalance)

	if len(snap.Extras) > 0 {
		keys := make([]string, 0, len(snap.Extras))
		for k := range snap.Extras {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(&b, "\nSecondary indicators:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s=%.4f\n", k, snap.Extras[k])
		}
	}

	b.WriteString("\n")
	b.WriteString(outputContract)
	return b.String()
}
