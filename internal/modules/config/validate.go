package config

import (
	"fmt"

	"paper_bot/internal/helper"
	"paper_bot/internal/indicators"
)

// ConfigurationError - конфиг непригоден для старта. Бывает только при запуске.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return invalid("trading.symbols", "at least one symbol is required")
	}
	for _, s := range c.Trading.Symbols {
		if s == "" {
			return invalid("trading.symbols", "empty symbol")
		}
	}
	if !c.Exchange.PublicData {
		switch {
		case c.Exchange.APIKey == "":
			return invalid("exchange.api_key", "missing credentials")
		case c.Exchange.APISecret == "":
			return invalid("exchange.api_secret", "missing credentials")
		case c.Exchange.APIPassphrase == "":
			return invalid("exchange.api_passphrase", "missing credentials")
		}
	}
	if c.Exchange.RestURL == "" {
		return invalid("exchange.rest_url", "is required")
	}
	if _, err := helper.KucoinType(c.Trading.Interval); err != nil {
		return invalid("trading.interval", err.Error())
	}

	t := c.Trading
	switch {
	case t.InitialBalance < 0:
		return invalid("trading.initial_balance", "must not be negative")
	case t.TradeQuantity <= 0:
		return invalid("trading.trade_quantity", "must be positive")
	case t.Lookback <= 0:
		return invalid("trading.lookback", "must be positive")
	case t.PollInterval <= 0:
		return invalid("trading.poll_interval", "must be positive")
	case t.ErrorBackoff <= 0:
		return invalid("trading.error_backoff", "must be positive")
	case t.FetchTimeout <= 0:
		return invalid("trading.fetch_timeout", "must be positive")
	case t.MaxCandles < indicators.SMASlowPeriod:
		return invalid("trading.max_candles", fmt.Sprintf("must be at least %d for sma50", indicators.SMASlowPeriod))
	case t.Retention < 0:
		return invalid("trading.retention", "must not be negative")
	}

	if c.Report.Telegram.Token != "" && c.Report.Telegram.ChatID == 0 {
		return invalid("report.telegram.chat_id", "required when token is set")
	}
	if c.Report.Journal.Enabled && c.Report.Journal.DSN == "" {
		return invalid("report.journal.dsn", "required when journal is enabled")
	}
	return nil
}
