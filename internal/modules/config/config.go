package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
	defaultConfigFile = "values_local.yaml"
	envPrefix         = "PAPER_BOT"

	apiKeyENV        = "KUCOIN_API_KEY"
	apiSecretENV     = "KUCOIN_API_SECRET"
	apiPassphraseENV = "KUCOIN_API_PASSPHRASE"
	tokenTelegramENV = "TELEGRAM_TOKEN"
	databaseDSN      = "DATABASE_DSN"
)

type Config struct {
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Trading  TradingConfig  `mapstructure:"trading"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Report   ReportConfig   `mapstructure:"report"`
	Service  ServiceConfig  `mapstructure:"service"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
}

type ExchangeConfig struct {
	RestURL       string        `mapstructure:"rest_url"`
	APIKey        string        `mapstructure:"api_key"`
	APISecret     string        `mapstructure:"api_secret"`
	APIPassphrase string        `mapstructure:"api_passphrase"`
	KeyVersion    string        `mapstructure:"key_version"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	// PublicData: свечи публичные, ключи не обязательны и запросы не подписываются
	PublicData bool `mapstructure:"public_data"`
}

func (e ExchangeConfig) HasCredentials() bool {
	return e.APIKey != "" && e.APISecret != "" && e.APIPassphrase != ""
}

type TradingConfig struct {
	Symbols        []string      `mapstructure:"symbols"`
	Strategies     []string      `mapstructure:"strategies"`
	Interval       string        `mapstructure:"interval"`
	Lookback       time.Duration `mapstructure:"lookback"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	ErrorBackoff   time.Duration `mapstructure:"error_backoff"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	InitialBalance float64       `mapstructure:"initial_balance"`
	TradeQuantity  float64       `mapstructure:"trade_quantity"`
	MaxCandles     int           `mapstructure:"max_candles"`
	Retention      time.Duration `mapstructure:"retention"`
	SignalHistory  int           `mapstructure:"signal_history"`
	WarmupParallel int           `mapstructure:"warmup_parallel"`
}

type StreamConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

type ReportConfig struct {
	Buffer   int            `mapstructure:"buffer"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
	// сколько последних событий держать в списке <channel>:recent
	Keep int64 `mapstructure:"keep"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type ServiceConfig struct {
	Host      string `mapstructure:"host"`
	AdminPort int    `mapstructure:"admin_port"`
}

type TracingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default - значения по умолчанию, они же пишутся в файл при первом запуске.
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			RestURL:     "https://api.kucoin.com",
			KeyVersion:  "2",
			HTTPTimeout: 10 * time.Second,
		},
		Trading: TradingConfig{
			Symbols:        []string{"BTC-USDT", "ETH-USDT", "SOL-USDT"},
			Strategies:     []string{"trend_following", "mean_reversion"},
			Interval:       "1m",
			Lookback:       time.Hour,
			PollInterval:   60 * time.Second,
			ErrorBackoff:   5 * time.Second,
			FetchTimeout:   15 * time.Second,
			InitialBalance: 10000,
			TradeQuantity:  0.001,
			MaxCandles:     100,
			Retention:      2 * time.Hour,
			SignalHistory:  100,
			WarmupParallel: 4,
		},
		Stream: StreamConfig{
			ReconnectDelay: time.Second,
		},
		Report: ReportConfig{
			Buffer: 256,
			Redis: RedisConfig{
				Channel: "paper_bot:events",
				Keep:    500,
			},
		},
		Service: ServiceConfig{
			Host:      "0.0.0.0",
			AdminPort: 8080,
		},
		Tracing: TracingConfig{
			Host: "localhost",
			Port: 6831,
		},
		Log: LogConfig{Level: "info"},
	}
}

// NewConfig читает configs/$CONFIG_FILE. Если файла нет - создаёт дефолтный.
func NewConfig() (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	path := filepath.Join(configDir, getenvDefault(configFilePathENV, defaultConfigFile))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefault(path); err != nil {
			return nil, err
		}
	}
	return Load(path)
}

// Load читает файл через viper, накладывает env и валидирует.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	applySecretEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("exchange.rest_url", d.Exchange.RestURL)
	v.SetDefault("exchange.api_key", d.Exchange.APIKey)
	v.SetDefault("exchange.api_secret", d.Exchange.APISecret)
	v.SetDefault("exchange.api_passphrase", d.Exchange.APIPassphrase)
	v.SetDefault("exchange.key_version", d.Exchange.KeyVersion)
	v.SetDefault("exchange.http_timeout", d.Exchange.HTTPTimeout)
	v.SetDefault("exchange.public_data", d.Exchange.PublicData)

	v.SetDefault("trading.symbols", d.Trading.Symbols)
	v.SetDefault("trading.strategies", d.Trading.Strategies)
	v.SetDefault("trading.interval", d.Trading.Interval)
	v.SetDefault("trading.lookback", d.Trading.Lookback)
	v.SetDefault("trading.poll_interval", d.Trading.PollInterval)
	v.SetDefault("trading.error_backoff", d.Trading.ErrorBackoff)
	v.SetDefault("trading.fetch_timeout", d.Trading.FetchTimeout)
	v.SetDefault("trading.initial_balance", d.Trading.InitialBalance)
	v.SetDefault("trading.trade_quantity", d.Trading.TradeQuantity)
	v.SetDefault("trading.max_candles", d.Trading.MaxCandles)
	v.SetDefault("trading.retention", d.Trading.Retention)
	v.SetDefault("trading.signal_history", d.Trading.SignalHistory)
	v.SetDefault("trading.warmup_parallel", d.Trading.WarmupParallel)

	v.SetDefault("stream.enabled", d.Stream.Enabled)
	v.SetDefault("stream.reconnect_delay", d.Stream.ReconnectDelay)

	v.SetDefault("report.buffer", d.Report.Buffer)
	v.SetDefault("report.telegram.token", d.Report.Telegram.Token)
	v.SetDefault("report.telegram.chat_id", d.Report.Telegram.ChatID)
	v.SetDefault("report.redis.addr", d.Report.Redis.Addr)
	v.SetDefault("report.redis.password", d.Report.Redis.Password)
	v.SetDefault("report.redis.db", d.Report.Redis.DB)
	v.SetDefault("report.redis.channel", d.Report.Redis.Channel)
	v.SetDefault("report.redis.keep", d.Report.Redis.Keep)
	v.SetDefault("report.journal.enabled", d.Report.Journal.Enabled)
	v.SetDefault("report.journal.dsn", d.Report.Journal.DSN)

	v.SetDefault("service.host", d.Service.Host)
	v.SetDefault("service.admin_port", d.Service.AdminPort)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.host", d.Tracing.Host)
	v.SetDefault("tracing.port", d.Tracing.Port)

	v.SetDefault("log.level", d.Log.Level)
}

// секреты удобнее держать в .env / окружении, а не в yaml
func applySecretEnv(cfg *Config) {
	cfg.Exchange.APIKey = getenvDefault(apiKeyENV, cfg.Exchange.APIKey)
	cfg.Exchange.APISecret = getenvDefault(apiSecretENV, cfg.Exchange.APISecret)
	cfg.Exchange.APIPassphrase = getenvDefault(apiPassphraseENV, cfg.Exchange.APIPassphrase)
	cfg.Report.Telegram.Token = getenvDefault(tokenTelegramENV, cfg.Report.Telegram.Token)
	cfg.Report.Journal.DSN = getenvDefault(databaseDSN, cfg.Report.Journal.DSN)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
