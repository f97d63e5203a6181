package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"KodalReport/internal/calculator"
)

// Config holds all application configuration.
type Config struct {
	Instrument struct {
		Symbol        string `yaml:"symbol"`
		Name          string `yaml:"name"`
		PrimarySymbol string `yaml:"primary_symbol"`
	} `yaml:"instrument"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIURL   string `yaml:"api_url"`
	} `yaml:"telegram"`
	Marketstack struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"marketstack"`
	Yahoo struct {
		ChartURL    string `yaml:"chart_url"`
		HistoryDays int    `yaml:"history_days"`
	} `yaml:"yahoo"`
	Report struct {
		AverageWindow   int     `yaml:"average_window"`
		// Pointers so an explicit 0 is kept rather than defaulted.
		HighVolumeRatio *float64 `yaml:"high_volume_ratio"`
		LowVolumeRatio  *float64 `yaml:"low_volume_ratio"`
		Currency        string  `yaml:"currency"`
		Timezone        string  `yaml:"timezone"`
		NextRunCron     string  `yaml:"next_run_cron"`
	} `yaml:"report"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Proxy      string `yaml:"proxy"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := firstNonEmpty(getenv("TELEGRAM_TOKEN"), getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		c.Telegram.BotToken = v
	}
	if v := firstNonEmpty(getenv("TELEGRAM_CHAT_ID"), getenv("CHAT_ID")); v != "" {
		c.Telegram.ChatID = v
	}
	if v := getenv("MARKETSTACK_KEY"); v != "" {
		c.Marketstack.APIKey = v
	}
	if v := getenv("TICKER_SYMBOL"); v != "" {
		c.Instrument.Symbol = v
	}
	if v := getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("REPORT_CRON"); v != "" {
		c.Report.NextRunCron = v
	}
}

func (c *Config) applyDefaults() {
	if c.Instrument.Symbol == "" {
		c.Instrument.Symbol = "KOD.L"
	}
	if c.Instrument.Name == "" {
		c.Instrument.Name = "Kodal Minerals"
	}
	if c.Instrument.PrimarySymbol == "" {
		c.Instrument.PrimarySymbol = primarySymbolFor(c.Instrument.Symbol)
	}
	if c.Telegram.APIURL == "" {
		c.Telegram.APIURL = "https://api.telegram.org"
	}
	if c.Marketstack.BaseURL == "" {
		c.Marketstack.BaseURL = "https://api.marketstack.com/v1"
	}
	if c.Yahoo.ChartURL == "" {
		c.Yahoo.ChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if c.Yahoo.HistoryDays == 0 {
		c.Yahoo.HistoryDays = 15
	}
	if c.Report.AverageWindow == 0 {
		c.Report.AverageWindow = 10
	}
	if c.Report.HighVolumeRatio == nil {
		c.Report.HighVolumeRatio = ratio(1.5)
	}
	if c.Report.LowVolumeRatio == nil {
		c.Report.LowVolumeRatio = ratio(0.5)
	}
	if c.Report.Currency == "" {
		c.Report.Currency = money.GBP
	}
	if c.Report.Timezone == "" {
		c.Report.Timezone = "Europe/London"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = 30
	}
}

// primarySymbolFor maps a Yahoo-style London ticker (KOD.L) to the
// Marketstack exchange suffix (KOD.XLON).
func primarySymbolFor(symbol string) string {
	if base, ok := strings.CutSuffix(symbol, ".L"); ok {
		return base + ".XLON"
	}
	return symbol
}

// Validate checks that configured values are usable. Bot credentials are
// checked at delivery time, not here.
func (c *Config) Validate() error {
	if c.Instrument.Symbol == "" {
		return fmt.Errorf("instrument.symbol is required")
	}
	if c.Report.AverageWindow <= 0 {
		return fmt.Errorf("report.average_window must be positive")
	}
	if c.Yahoo.HistoryDays < c.Report.AverageWindow {
		return fmt.Errorf("yahoo.history_days (%d) must cover report.average_window (%d)",
			c.Yahoo.HistoryDays, c.Report.AverageWindow)
	}
	if c.Report.HighVolumeRatio == nil || c.Report.LowVolumeRatio == nil {
		return fmt.Errorf("report volume ratios are not set")
	}
	if *c.Report.LowVolumeRatio < 0 || *c.Report.LowVolumeRatio >= *c.Report.HighVolumeRatio {
		return fmt.Errorf("report.low_volume_ratio must be >= 0 and below report.high_volume_ratio")
	}
	if money.GetCurrency(c.Report.Currency) == nil {
		return fmt.Errorf("report.currency %q is not a known currency code", c.Report.Currency)
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("report.timezone: %w", err)
	}
	if c.Report.NextRunCron != "" {
		if _, err := cron.ParseStandard(c.Report.NextRunCron); err != nil {
			return fmt.Errorf("report.next_run_cron: %w", err)
		}
	}
	if c.TimeoutSec <= 0 {
		return fmt.Errorf("timeout_sec must be positive")
	}
	return nil
}

// Thresholds returns the volume trend band.
func (c *Config) Thresholds() calculator.Thresholds {
	return calculator.Thresholds{
		High: decimal.NewFromFloat(*c.Report.HighVolumeRatio),
		Low:  decimal.NewFromFloat(*c.Report.LowVolumeRatio),
	}
}

func ratio(v float64) *float64 { return &v }

// Location returns the report timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Redacted returns a copy with credentials masked, for display.
func (c *Config) Redacted() Config {
	out := *c
	out.Telegram.BotToken = mask(out.Telegram.BotToken)
	out.Marketstack.APIKey = mask(out.Marketstack.APIKey)
	return out
}

// Dump renders the redacted config as YAML.
func (c *Config) Dump() (string, error) {
	red := c.Redacted()
	data, err := yaml.Marshal(&red)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
