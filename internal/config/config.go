package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// 中文说明：
// 配置来源：YAML 文件 + 环境变量兜底（密钥类只建议走环境变量）。
// 文件不存在时用默认值跑起来，方便本地快速启动。

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	// bool 默认值区分不了“没写”和“显式 false”，走 viper 默认值
	v.SetDefault("ai.enabled", true)
	v.SetDefault("notify.telegram.enabled", true)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides 密钥类配置允许环境变量覆盖空值，沿用原部署习惯的变量名。
func (c *Config) applyEnvOverrides() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Notify.Telegram.BotToken == "" {
		c.Notify.Telegram.BotToken = os.Getenv("TELE_TOKEN")
	}
	if c.Notify.Telegram.ChatID == "" {
		c.Notify.Telegram.ChatID = os.Getenv("TELE_ID")
	}
	if c.Broker.Token == "" {
		c.Broker.Token = os.Getenv("MT5_BRIDGE_TOKEN")
	}
}
