package config

// Config 主配置载体。
type Config struct {
	App    AppConfig    `toml:"app"`
	Market MarketConfig `toml:"market"`
	Broker BrokerConfig `toml:"broker"`
	Risk   RiskConfig   `toml:"risk"`
	AI     AIConfig     `toml:"ai"`
	Notify NotifyConfig `toml:"notify"`
}

type AppConfig struct {
	Env            string `toml:"env"`
	LogLevel       string `toml:"log_level"`
	HTTPAddr       string `toml:"http_addr"`
	LogPath        string `toml:"log_path"`
	LLMLog         string `toml:"llm_log_path"`
	LLMDump        bool   `toml:"llm_dump_payload"`
	RefreshSeconds int    `toml:"refresh_seconds"`
	StaticDir      string `toml:"static_dir"`
}

// MarketConfig 跟踪的品种与周期。
type MarketConfig struct {
	Symbols         []string `toml:"symbols"`
	Timeframe       string   `toml:"timeframe"`
	HigherTimeframe string   `toml:"higher_timeframe"`
	BarCount        int      `toml:"bar_count"`
}

// BrokerConfig MT5 桥接服务访问方式。
type BrokerConfig struct {
	BridgeURL      string `toml:"bridge_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// RiskConfig 挑战账户的硬回撤限制。
type RiskConfig struct {
	AccountSize     float64 `toml:"account_size"`
	MaxDailyLoss    float64 `toml:"max_daily_loss"`
	MaxTotalLoss    float64 `toml:"max_total_loss"`
	SafeDailyBuffer float64 `toml:"safe_daily_buffer"`
}

// AIConfig 顾问网关与推理服务设置。
type AIConfig struct {
	Enabled         bool    `toml:"enabled"`
	APIURL          string  `toml:"api_url"`
	APIKey          string  `toml:"api_key"`
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	CooldownSeconds int     `toml:"cooldown_seconds"`
	DailyCallBudget int     `toml:"daily_call_budget"`
	MaxFails        int     `toml:"max_fails"`
	IntervalSeconds int     `toml:"interval_seconds"`
	PersonaPath     string  `toml:"persona_path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}
