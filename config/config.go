package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App             App            `mapstructure:"app"`
	Log             Logger         `mapstructure:"logger"`
	DB              Database       `mapstructure:"database"`
	API             API            `mapstructure:"api"`
	Cache           Cache          `mapstructure:"cache"`
	Telegram        TelegramConfig `mapstructure:"telegram"`
	Strategy        Strategy       `mapstructure:"strategy"`
	MarketData      MarketData     `mapstructure:"market_data"`
	Reporting       Reporting      `mapstructure:"reporting"`
	Bybit           Bybit          `mapstructure:"bybit"`
	AlphaVantage    AlphaVantage   `mapstructure:"alpha_vantage"`
	Metrics         Metrics        `mapstructure:"metrics"`
	RenderServiceID string         `mapstructure:"render_service_id"`
}

type App struct {
	Name           string        `mapstructure:"name"`
	ServiceName    string        `mapstructure:"service_name"`
	StartupTimeout time.Duration `mapstructure:"startup_timeout"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	URL             string `mapstructure:"url" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

type API struct {
	Port int `mapstructure:"port" validate:"gt=0"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token" validate:"required"`
	ChatID                    int64         `mapstructure:"chat_id"`
	PollerTimeout             time.Duration `mapstructure:"poller_timeout"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxUserRequestPerSecond   int           `mapstructure:"max_user_request_per_second"`
	MaxEditMessagePerSecond   int           `mapstructure:"max_edit_message_per_second"`
	RatelimitExpireDuration   time.Duration `mapstructure:"ratelimit_expire_duration"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
}

type SessionWindow struct {
	Name      string `mapstructure:"name"`
	StartHour int    `mapstructure:"start_hour" validate:"gte=0,lte=24"`
	EndHour   int    `mapstructure:"end_hour" validate:"gte=0,lte=24"`
}

type Strategy struct {
	ActiveStrategy     string          `mapstructure:"active_strategy"`
	MaxDailySignals    int             `mapstructure:"max_daily_signals" validate:"gt=0"`
	MinSignalInterval  time.Duration   `mapstructure:"min_signal_interval"`
	MinConfluenceScore float64         `mapstructure:"min_confluence_score"`
	ScoreMin           float64         `mapstructure:"score_min"`
	ScoreMax           float64         `mapstructure:"score_max" validate:"gtefield=ScoreMin"`
	StopLossOffset     float64         `mapstructure:"stop_loss_offset" validate:"gt=0"`
	TakeProfitOffset   float64         `mapstructure:"take_profit_offset" validate:"gt=0"`
	MockSymbol         string          `mapstructure:"mock_symbol"`
	MockEntryPrice     float64         `mapstructure:"mock_entry_price" validate:"gt=0"`
	SignalExpiry       time.Duration   `mapstructure:"signal_expiry"`
	MonitorInterval    time.Duration   `mapstructure:"monitor_interval"`
	ErrorRetryInterval time.Duration   `mapstructure:"error_retry_interval"`
	Sessions           []SessionWindow `mapstructure:"sessions" validate:"dive"`
}

type MarketData struct {
	CryptoSymbols      []string      `mapstructure:"crypto_symbols"`
	ForexSymbols       []string      `mapstructure:"forex_symbols"`
	CommoditySymbols   []string      `mapstructure:"commodity_symbols"`
	ExtraSymbols       []string      `mapstructure:"extra_symbols"`
	CycleInterval      time.Duration `mapstructure:"cycle_interval"`
	ErrorRetryInterval time.Duration `mapstructure:"error_retry_interval"`
	SymbolPause        time.Duration `mapstructure:"symbol_pause"`
	StoreBars          bool          `mapstructure:"store_bars"`
	FeedStatusTTL      time.Duration `mapstructure:"feed_status_ttl"`
}

type Reporting struct {
	Schedule string `mapstructure:"schedule" validate:"required"`
}

type Bybit struct {
	BaseURL             string        `mapstructure:"base_url"`
	TestnetBaseURL      string        `mapstructure:"testnet_base_url"`
	APIKey              string        `mapstructure:"api_key"`
	SecretKey           string        `mapstructure:"secret_key"`
	Testnet             bool          `mapstructure:"testnet"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" validate:"gt=0"`
	RecvWindow          string        `mapstructure:"recv_window"`
	Category            string        `mapstructure:"category"`
	Interval            string        `mapstructure:"interval"`
	Limit               int           `mapstructure:"limit"`
}

// Enabled reports whether credentials for the crypto provider are present.
func (b Bybit) Enabled() bool {
	return b.APIKey != "" && b.SecretKey != ""
}

type AlphaVantage struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key" validate:"required"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" validate:"gt=0"`
	Interval            string        `mapstructure:"interval"`
	OutputSize          string        `mapstructure:"output_size"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "trading-signal-bot")
	v.SetDefault("app.service_name", "telegram-trading-bot")
	v.SetDefault("app.startup_timeout", 60*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.log_level", "Warn")
	v.SetDefault("database.migrations_path", "file://migrations")

	v.SetDefault("api.port", 8080)

	v.SetDefault("cache.default_expiration", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", 15*time.Minute)

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.poller_timeout", 10*time.Second)
	v.SetDefault("telegram.timeout_duration", 2*time.Minute)
	v.SetDefault("telegram.max_global_request_per_second", 30)
	v.SetDefault("telegram.max_user_request_per_second", 1)
	v.SetDefault("telegram.max_edit_message_per_second", 1)
	v.SetDefault("telegram.ratelimit_expire_duration", 30*time.Minute)
	v.SetDefault("telegram.rate_limit_cleanup_duration", 10*time.Minute)

	v.SetDefault("strategy.active_strategy", "multi_confluence")
	v.SetDefault("strategy.max_daily_signals", 3)
	v.SetDefault("strategy.min_signal_interval", time.Hour)
	v.SetDefault("strategy.min_confluence_score", 70)
	v.SetDefault("strategy.score_min", 70)
	v.SetDefault("strategy.score_max", 95)
	v.SetDefault("strategy.stop_loss_offset", 0.0030)
	v.SetDefault("strategy.take_profit_offset", 0.0075)
	v.SetDefault("strategy.mock_symbol", "EURUSD")
	v.SetDefault("strategy.mock_entry_price", 1.0950)
	v.SetDefault("strategy.signal_expiry", 4*time.Hour)
	v.SetDefault("strategy.monitor_interval", 5*time.Minute)
	v.SetDefault("strategy.error_retry_interval", time.Minute)
	v.SetDefault("strategy.sessions", []map[string]interface{}{
		{"name": "London", "start_hour": 8, "end_hour": 17},
		{"name": "New York", "start_hour": 13, "end_hour": 22},
	})

	v.SetDefault("market_data.crypto_symbols", []string{"BTCUSDT", "ETHUSDT", "ADAUSDT", "DOTUSDT"})
	v.SetDefault("market_data.forex_symbols", []string{"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "AUDUSD", "USDCAD", "NZDUSD"})
	v.SetDefault("market_data.commodity_symbols", []string{"XAUUSD"})
	v.SetDefault("market_data.extra_symbols", []string{})
	v.SetDefault("market_data.cycle_interval", 5*time.Minute)
	v.SetDefault("market_data.error_retry_interval", time.Minute)
	v.SetDefault("market_data.symbol_pause", 2*time.Second)
	v.SetDefault("market_data.store_bars", false)
	v.SetDefault("market_data.feed_status_ttl", 15*time.Minute)

	v.SetDefault("reporting.schedule", "0 8 * * *")

	v.SetDefault("bybit.base_url", "https://api.bybit.com")
	v.SetDefault("bybit.testnet_base_url", "https://api-testnet.bybit.com")
	v.SetDefault("bybit.api_key", "")
	v.SetDefault("bybit.secret_key", "")
	v.SetDefault("bybit.testnet", false)
	v.SetDefault("bybit.timeout", 10*time.Second)
	v.SetDefault("bybit.max_request_per_minute", 120)
	v.SetDefault("bybit.recv_window", "5000")
	v.SetDefault("bybit.category", "spot")
	v.SetDefault("bybit.interval", "1")
	v.SetDefault("bybit.limit", 200)

	v.SetDefault("alpha_vantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("alpha_vantage.api_key", "")
	v.SetDefault("alpha_vantage.timeout", 15*time.Second)
	v.SetDefault("alpha_vantage.max_request_per_minute", 5)
	v.SetDefault("alpha_vantage.interval", "1min")
	v.SetDefault("alpha_vantage.output_size", "compact")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("render_service_id", "local")
}

// Load reads config.yaml, .env and the process environment, in that order of
// increasing precedence, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	_ = v.BindEnv("api.port", "API_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the required settings. Any error here is fatal at startup.
func (c *Config) Validate() error {
	if err := goValidator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(c.Telegram.BotToken) <= 20 || !strings.Contains(c.Telegram.BotToken, ":") {
		return errors.New("invalid configuration: telegram bot token format is invalid")
	}
	for _, s := range c.Strategy.Sessions {
		if s.StartHour >= s.EndHour {
			return fmt.Errorf("invalid configuration: session %q must start before it ends", s.Name)
		}
	}
	return nil
}

// Warnings returns settings that are valid but almost certainly unintended.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Strategy.ScoreMin >= c.Strategy.MinConfluenceScore {
		warnings = append(warnings, fmt.Sprintf(
			"strategy.min_confluence_score (%.1f) can never reject a signal: generated scores start at %.1f",
			c.Strategy.MinConfluenceScore, c.Strategy.ScoreMin))
	}
	if !c.Bybit.Enabled() {
		warnings = append(warnings, "bybit credentials are not set, crypto symbols will be skipped")
	}
	if c.Telegram.ChatID == 0 {
		warnings = append(warnings, "telegram.chat_id is not set, broadcast signals and reports are disabled")
	}
	return warnings
}

// Symbols returns every instrument polled by the market data collector.
func (m MarketData) Symbols() []string {
	symbols := make([]string, 0, len(m.CryptoSymbols)+len(m.ForexSymbols)+len(m.CommoditySymbols)+len(m.ExtraSymbols))
	symbols = append(symbols, m.CryptoSymbols...)
	symbols = append(symbols, m.ForexSymbols...)
	symbols = append(symbols, m.CommoditySymbols...)
	symbols = append(symbols, m.ExtraSymbols...)
	return symbols
}
