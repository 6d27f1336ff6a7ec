package config

import (
	"context"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	TelegramBotToken  string        `env:"TELEGRAM_BOT_TOKEN,required"`
	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	CoingeckoBaseURL   string        `env:"COINGECKO_BASE_URL,default=https://api.coingecko.com/api/v3"`
	BinanceBaseURL     string        `env:"BINANCE_BASE_URL,default=https://api.binance.com"`
	BinanceStreamURL   string        `env:"BINANCE_STREAM_URL,default=wss://stream.binance.com:9443/stream"`
	PriceTimeout       time.Duration `env:"PRICE_TIMEOUT,default=5s"`
	PriceFetchDelay    time.Duration `env:"PRICE_FETCH_DELAY,default=1s"`
	PriceRateLimitWait time.Duration `env:"PRICE_RATE_LIMIT_WAIT,default=10s"`
	StreamQuoteMaxAge  time.Duration `env:"STREAM_QUOTE_MAX_AGE,default=60s"`

	PollInterval           time.Duration `env:"POLL_INTERVAL,default=60s"`
	ErrorBackoff           time.Duration `env:"ERROR_BACKOFF,default=60s"`
	VolatilityLookback     time.Duration `env:"VOLATILITY_LOOKBACK,default=10m"`
	VolatilityThresholdPct float64       `env:"VOLATILITY_THRESHOLD_PCT,default=5"`
	NotificationCooldown   time.Duration `env:"NOTIFICATION_COOLDOWN,default=30m"`
	HistoryRetention       time.Duration `env:"HISTORY_RETENTION,default=15m"`

	// Space-separated list of the tickers covered by the global auto-alert
	// subscription.
	WatchListRaw string `env:"WATCH_LIST,default=BTC ETH SOL BNB ADA XRP DOGE MATIC"`

	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) WatchList() []string {
	tickers := strings.Fields(c.WatchListRaw)
	for i, ticker := range tickers {
		tickers[i] = strings.ToUpper(ticker)
	}
	return tickers
}
