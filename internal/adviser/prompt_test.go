package adviser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"propguard/internal/market"
)

func TestRenderUserPrompt(t *testing.T) {
	prompt := RenderUserPrompt(market.Snapshot{
		Symbol:    "XAUUSD",
		Session:   "London",
		Timeframe: market.TimeframeM5,
		HTF:       market.TimeframeH1,
		Bias:      market.BiasBullish,
		Indicators: market.IndicatorValues{
			Close: 1980.5, EMA20: 1978.2, EMA50: 1975.1, RSI: 61.3, ATR: 2.4, ATRBaseline: 2.1,
		},
		ATRRegime: market.ATRRegimeNormal,
		Structure: market.Structure{Liquidity: market.LiquiditySweepLow, Imbalance: market.ImbalanceAbsent},
		Extras:    map[string]float64{"macd": 0.52, "willr": -22.1},
	})

	assert.Contains(t, prompt, "Symbol: XAUUSD")
	assert.Contains(t, prompt, "Session: London")
	assert.Contains(t, prompt, "liquidity=SweepLow")
	assert.Contains(t, prompt, "rsi=61.3")
	// 输出约束永远在末尾
	assert.Contains(t, prompt, `"action": "BUY" | "SELL" | "WAIT"`)
	// extras 按键名排序，渲染稳定
	assert.Less(t, strings.Index(prompt, "macd="), strings.Index(prompt, "willr="))
}

func TestRenderUserPrompt_NoExtras(t *testing.T) {
	prompt := RenderUserPrompt(market.Snapshot{Symbol: "EURUSD"})
	assert.NotContains(t, prompt, "Secondary indicators")
	assert.Contains(t, prompt, outputContract)
}

func TestPersonaManager_Defaults(t *testing.T) {
	m := NewPersonaManager("")
	assert.Contains(t, m.SystemPrompt(), "funded")
}
