package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values_test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeFile(t, `
exchange:
  public_data: true
trading:
  symbols: [BTC-USDT, ETH-USDT]
  poll_interval: 30s
  initial_balance: 2500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, cfg.Trading.Symbols)
	assert.Equal(t, 30*time.Second, cfg.Trading.PollInterval)
	assert.Equal(t, 2500.0, cfg.Trading.InitialBalance)

	// не заданные в файле ключи берутся из Default()
	assert.Equal(t, 0.001, cfg.Trading.TradeQuantity)
	assert.Equal(t, 5*time.Second, cfg.Trading.ErrorBackoff)
	assert.Equal(t, time.Hour, cfg.Trading.Lookback)
	assert.Equal(t, 100, cfg.Trading.MaxCandles)
	assert.Equal(t, "https://api.kucoin.com", cfg.Exchange.RestURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, `
trading:
  symbols: [SOL-USDT]
`)
	t.Setenv("PAPER_BOT_TRADING_TRADE_QUANTITY", "0.25")
	t.Setenv(apiKeyENV, "key")
	t.Setenv(apiSecretENV, "secret")
	t.Setenv(apiPassphraseENV, "pass")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Trading.TradeQuantity)
	assert.True(t, cfg.Exchange.HasCredentials())
	assert.Equal(t, "key", cfg.Exchange.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWriteDefault_RequiresCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "values_local.yaml")
	require.NoError(t, WriteDefault(path))

	_, err := Load(path)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "exchange.api_key", cfgErr.Field)

	t.Setenv(apiKeyENV, "key")
	t.Setenv(apiSecretENV, "secret")
	t.Setenv(apiPassphraseENV, "pass")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT", "SOL-USDT"}, cfg.Trading.Symbols)
	assert.Equal(t, 60*time.Second, cfg.Trading.PollInterval)
	assert.Equal(t, 10000.0, cfg.Trading.InitialBalance)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Exchange.PublicData = true
		return c
	}
	require.NoError(t, valid().Validate())

	cases := []struct {
		field  string
		mutate func(c *Config)
	}{
		{"trading.symbols", func(c *Config) { c.Trading.Symbols = nil }},
		{"trading.symbols", func(c *Config) { c.Trading.Symbols = []string{""} }},
		{"exchange.api_key", func(c *Config) { c.Exchange.PublicData = false }},
		{"exchange.api_passphrase", func(c *Config) {
			c.Exchange.PublicData = false
			c.Exchange.APIKey = "k"
			c.Exchange.APISecret = "s"
		}},
		{"trading.interval", func(c *Config) { c.Trading.Interval = "7m" }},
		{"trading.trade_quantity", func(c *Config) { c.Trading.TradeQuantity = 0 }},
		{"trading.initial_balance", func(c *Config) { c.Trading.InitialBalance = -1 }},
		{"trading.poll_interval", func(c *Config) { c.Trading.PollInterval = 0 }},
		{"trading.max_candles", func(c *Config) { c.Trading.MaxCandles = 49 }},
		{"report.telegram.chat_id", func(c *Config) { c.Report.Telegram.Token = "t" }},
		{"report.journal.dsn", func(c *Config) { c.Report.Journal.Enabled = true }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}
