package config

import (
	"fmt"
	"strings"

	"propguard/internal/market"
)

func validate(c *Config) error {
	for i, sym := range c.Market.Symbols {
		s := strings.ToUpper(strings.TrimSpace(sym))
		if s == "" {
			return fmt.Errorf("market.symbols[%d] 为空", i)
		}
		c.Market.Symbols[i] = s
	}
	for _, tf := range []string{c.Market.Timeframe, c.Market.HigherTimeframe} {
		if market.ParseTimeframe(tf).Duration() == 0 {
			return fmt.Errorf("无法识别的周期标签 %q", tf)
		}
	}
	if market.ParseTimeframe(c.Market.HigherTimeframe).Duration() <= market.ParseTimeframe(c.Market.Timeframe).Duration() {
		return fmt.Errorf("higher_timeframe (%s) 必须大于 timeframe (%s)", c.Market.HigherTimeframe, c.Market.Timeframe)
	}
	if c.Risk.SafeDailyBuffer > c.Risk.MaxDailyLoss {
		return fmt.Errorf("risk.safe_daily_buffer (%.0f) 不应超过 max_daily_loss (%.0f)", c.Risk.SafeDailyBuffer, c.Risk.MaxDailyLoss)
	}
	if c.Risk.MaxTotalLoss >= c.Risk.AccountSize {
		return fmt.Errorf("risk.max_total_loss 不应超过账户规模")
	}
	return nil
}
