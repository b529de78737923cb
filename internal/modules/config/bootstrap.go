package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// WriteDefault кладёт на диск конфиг по умолчанию. Ключи биржи остаются пустыми,
// поэтому без правки файла (или env) бот не стартует.
func WriteDefault(path string) error {
	d := Default()
	doc := yaml.MapSlice{
		{Key: "exchange", Value: yaml.MapSlice{
			{Key: "rest_url", Value: d.Exchange.RestURL},
			{Key: "api_key", Value: ""},
			{Key: "api_secret", Value: ""},
			{Key: "api_passphrase", Value: ""},
			{Key: "key_version", Value: d.Exchange.KeyVersion},
			{Key: "http_timeout", Value: d.Exchange.HTTPTimeout.String()},
			{Key: "public_data", Value: d.Exchange.PublicData},
		}},
		{Key: "trading", Value: yaml.MapSlice{
			{Key: "symbols", Value: d.Trading.Symbols},
			{Key: "strategies", Value: d.Trading.Strategies},
			{Key: "interval", Value: d.Trading.Interval},
			{Key: "lookback", Value: d.Trading.Lookback.String()},
			{Key: "poll_interval", Value: d.Trading.PollInterval.String()},
			{Key: "error_backoff", Value: d.Trading.ErrorBackoff.String()},
			{Key: "fetch_timeout", Value: d.Trading.FetchTimeout.String()},
			{Key: "initial_balance", Value: d.Trading.InitialBalance},
			{Key: "trade_quantity", Value: d.Trading.TradeQuantity},
			{Key: "max_candles", Value: d.Trading.MaxCandles},
			{Key: "retention", Value: d.Trading.Retention.String()},
			{Key: "signal_history", Value: d.Trading.SignalHistory},
			{Key: "warmup_parallel", Value: d.Trading.WarmupParallel},
		}},
		{Key: "stream", Value: yaml.MapSlice{
			{Key: "enabled", Value: d.Stream.Enabled},
			{Key: "reconnect_delay", Value: d.Stream.ReconnectDelay.String()},
		}},
		{Key: "report", Value: yaml.MapSlice{
			{Key: "buffer", Value: d.Report.Buffer},
			{Key: "telegram", Value: yaml.MapSlice{
				{Key: "token", Value: ""},
				{Key: "chat_id", Value: 0},
			}},
			{Key: "redis", Value: yaml.MapSlice{
				{Key: "addr", Value: ""},
				{Key: "password", Value: ""},
				{Key: "db", Value: 0},
				{Key: "channel", Value: d.Report.Redis.Channel},
				{Key: "keep", Value: d.Report.Redis.Keep},
			}},
			{Key: "journal", Value: yaml.MapSlice{
				{Key: "enabled", Value: false},
				{Key: "dsn", Value: ""},
			}},
		}},
		{Key: "service", Value: yaml.MapSlice{
			{Key: "host", Value: d.Service.Host},
			{Key: "admin_port", Value: d.Service.AdminPort},
		}},
		{Key: "tracing", Value: yaml.MapSlice{
			{Key: "enabled", Value: d.Tracing.Enabled},
			{Key: "host", Value: d.Tracing.Host},
			{Key: "port", Value: d.Tracing.Port},
		}},
		{Key: "log", Value: yaml.MapSlice{
			{Key: "level", Value: d.Log.Level},
		}},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal default config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create config dir for %s", path)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return errors.Wrapf(err, "write default config %s", path)
	}
	return nil
}
