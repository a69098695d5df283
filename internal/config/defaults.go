package config

// 默认值常量。账户限额沿用 100k 挑战的标准参数。
const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppHTTPAddr     = ":8000"
	defaultRefreshSeconds  = 2
	defaultTimeframe       = "M5"
	defaultHigherTimeframe = "H1"
	defaultBarCount        = 100
	defaultBrokerURL       = "http://127.0.0.1:5005"
	defaultBrokerTimeout   = 10
	defaultAccountSize     = 100_000
	defaultMaxDailyLoss    = 5_000
	defaultMaxTotalLoss    = 10_000
	defaultSafeBuffer      = 4_500
	defaultAIURL           = "https://api.openai.com/v1"
	defaultAIModel         = "gpt-4o-mini"
	defaultAITemperature   = 0.2
	defaultAITimeout       = 30
	defaultAICooldown      = 120
	defaultAIDailyBudget   = 30
	defaultAIMaxFails      = 3
	defaultAIInterval      = 60
)

var defaultSymbols = []string{"XAUUSD", "BTCUSD", "EURUSD"}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.App.RefreshSeconds <= 0 {
		c.App.RefreshSeconds = defaultRefreshSeconds
	}
	if len(c.Market.Symbols) == 0 {
		c.Market.Symbols = append([]string(nil), defaultSymbols...)
	}
	if c.Market.Timeframe == "" {
		c.Market.Timeframe = defaultTimeframe
	}
	if c.Market.HigherTimeframe == "" {
		c.Market.HigherTimeframe = defaultHigherTimeframe
	}
	if c.Market.BarCount <= 0 {
		c.Market.BarCount = defaultBarCount
	}
	if c.Broker.BridgeURL == "" {
		c.Broker.BridgeURL = defaultBrokerURL
	}
	if c.Broker.TimeoutSeconds <= 0 {
		c.Broker.TimeoutSeconds = defaultBrokerTimeout
	}
	if c.Risk.AccountSize <= 0 {
		c.Risk.AccountSize = defaultAccountSize
	}
	if c.Risk.MaxDailyLoss <= 0 {
		c.Risk.MaxDailyLoss = defaultMaxDailyLoss
	}
	if c.Risk.MaxTotalLoss <= 0 {
		c.Risk.MaxTotalLoss = defaultMaxTotalLoss
	}
	if c.Risk.SafeDailyBuffer <= 0 {
		c.Risk.SafeDailyBuffer = defaultSafeBuffer
	}
	if c.AI.APIURL == "" {
		c.AI.APIURL = defaultAIURL
	}
	if c.AI.Model == "" {
		c.AI.Model = defaultAIModel
	}
	if c.AI.Temperature <= 0 {
		c.AI.Temperature = defaultAITemperature
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = defaultAITimeout
	}
	if c.AI.CooldownSeconds <= 0 {
		c.AI.CooldownSeconds = defaultAICooldown
	}
	if c.AI.DailyCallBudget <= 0 {
		c.AI.DailyCallBudget = defaultAIDailyBudget
	}
	if c.AI.MaxFails <= 0 {
		c.AI.MaxFails = defaultAIMaxFails
	}
	if c.AI.IntervalSeconds <= 0 {
		c.AI.IntervalSeconds = defaultAIInterval
	}
}
