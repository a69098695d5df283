package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.App.HTTPAddr)
	assert.Equal(t, 2, cfg.App.RefreshSeconds)
	assert.Equal(t, []string{"XAUUSD", "BTCUSD", "EURUSD"}, cfg.Market.Symbols)
	assert.Equal(t, "M5", cfg.Market.Timeframe)
	assert.Equal(t, "H1", cfg.Market.HigherTimeframe)
	assert.Equal(t, 100_000.0, cfg.Risk.AccountSize)
	assert.Equal(t, 4_500.0, cfg.Risk.SafeDailyBuffer)
	assert.Equal(t, 120, cfg.AI.CooldownSeconds)
	assert.Equal(t, 30, cfg.AI.DailyCallBudget)
	assert.Equal(t, 3, cfg.AI.MaxFails)
	assert.True(t, cfg.AI.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  http_addr: ":9100"
market:
  symbols: ["xauusd", " eurusd "]
  timeframe: "M15"
  higher_timeframe: "H4"
ai:
  enabled: false
  daily_call_budget: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.App.HTTPAddr)
	// 符号统一大写去空白
	assert.Equal(t, []string{"XAUUSD", "EURUSD"}, cfg.Market.Symbols)
	assert.Equal(t, "M15", cfg.Market.Timeframe)
	assert.Equal(t, 10, cfg.AI.DailyCallBudget)
	// 显式 false 不被默认值吃掉
	assert.False(t, cfg.AI.Enabled)
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown timeframe", "market:\n  timeframe: \"M7\"\n"},
		{"htf not above ltf", "market:\n  timeframe: \"H1\"\n  higher_timeframe: \"M5\"\n"},
		{"equal timeframes", "market:\n  timeframe: \"H1\"\n  higher_timeframe: \"H1\"\n"},
		{"buffer above daily loss", "risk:\n  safe_daily_buffer: 6000\n  max_daily_loss: 5000\n"},
		{"total loss swallows account", "risk:\n  account_size: 10000\n  max_total_loss: 10000\n"},
		{"blank symbol", "market:\n  symbols: [\"XAUUSD\", \"  \"]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverridesEmptySecrets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MT5_BRIDGE_TOKEN", "bridge-secret")

	cfg, err := Load(writeConfig(t, "ai:\n  api_key: \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "bridge-secret", cfg.Broker.Token)
}

func TestLoad_ConfiguredSecretWinsOverEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(writeConfig(t, "ai:\n  api_key: \"sk-file\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.AI.APIKey)
}
