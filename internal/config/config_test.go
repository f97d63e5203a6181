package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "KOD.L", cfg.Instrument.Symbol)
	assert.Equal(t, "Kodal Minerals", cfg.Instrument.Name)
	assert.Equal(t, "KOD.XLON", cfg.Instrument.PrimarySymbol)
	assert.Equal(t, 15, cfg.Yahoo.HistoryDays)
	assert.Equal(t, 10, cfg.Report.AverageWindow)
	require.NotNil(t, cfg.Report.HighVolumeRatio)
	require.NotNil(t, cfg.Report.LowVolumeRatio)
	assert.Equal(t, 1.5, *cfg.Report.HighVolumeRatio)
	assert.Equal(t, 0.5, *cfg.Report.LowVolumeRatio)
	assert.Equal(t, "GBP", cfg.Report.Currency)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
instrument:
  symbol: ABC.L
  name: Abc Mining
telegram:
  bot_token: file-token
  chat_id: "42"
report:
  high_volume_ratio: 2
  low_volume_ratio: 0.25
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ABC.L", cfg.Instrument.Symbol)
	assert.Equal(t, "ABC.XLON", cfg.Instrument.PrimarySymbol)
	assert.Equal(t, "file-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	th := cfg.Thresholds()
	assert.Equal(t, "2", th.High.String())
	assert.Equal(t, "0.25", th.Low.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "telegram:\n  bot_token: file-token\n")
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("CHAT_ID", "1001")
	t.Setenv("MARKETSTACK_KEY", "ms-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "1001", cfg.Telegram.ChatID)
	assert.Equal(t, "ms-key", cfg.Marketstack.APIKey)
}

func TestLoad_TelegramChatIDPreferredOverChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "primary")
	t.Setenv("CHAT_ID", "secondary")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Telegram.ChatID)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "instrument: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ExplicitZeroLowRatioKept(t *testing.T) {
	path := writeConfig(t, `
report:
  low_volume_ratio: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.NotNil(t, cfg.Report.LowVolumeRatio)
	assert.Zero(t, *cfg.Report.LowVolumeRatio)
	th := cfg.Thresholds()
	assert.True(t, th.Low.IsZero())
	assert.Equal(t, "1.5", th.High.String())
}

func TestValidate_MissingCredentialsAllowed(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	require.NoError(t, cfg.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errSub string
	}{
		{"inverted thresholds", func(c *Config) { c.Report.LowVolumeRatio = ratio(2) }, "low_volume_ratio"},
		{"negative low threshold", func(c *Config) { c.Report.LowVolumeRatio = ratio(-0.1) }, "low_volume_ratio"},
		{"zero high threshold", func(c *Config) { c.Report.HighVolumeRatio = ratio(0) }, "low_volume_ratio"},
		{"short history", func(c *Config) { c.Yahoo.HistoryDays = 5 }, "history_days"},
		{"bad cron", func(c *Config) { c.Report.NextRunCron = "not a cron" }, "next_run_cron"},
		{"bad timezone", func(c *Config) { c.Report.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad currency", func(c *Config) { c.Report.Currency = "XXX1" }, "currency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestDump_MasksSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Telegram.BotToken = "123456:ABCDEF"
	cfg.Marketstack.APIKey = "abc"

	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.NotContains(t, out, "123456:ABCDEF")
	assert.True(t, strings.Contains(out, "12*********EF"), out)
	assert.NotContains(t, out, "api_key: abc")
	assert.Equal(t, "123456:ABCDEF", cfg.Telegram.BotToken)
}
