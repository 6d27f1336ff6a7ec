package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// coinIDs maps the common tickers straight to their CoinGecko ids so the
// majors never need a /search round trip.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOT":   "polkadot",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"LTC":   "litecoin",
	"BCH":   "bitcoin-cash",
	"XLM":   "stellar",
	"ALGO":  "algorand",
	"VET":   "vechain",
	"ICP":   "internet-computer",
}

// Client fetches spot USD prices from CoinGecko, falling back to Binance's
// public ticker endpoint when CoinGecko cannot serve a ticker.
type Client struct {
	geckoBaseURL   string
	binanceBaseURL string
	client         *http.Client
	rateLimitWait  time.Duration
	logger         *zap.Logger

	mu       sync.Mutex
	resolved map[string]string
}

func NewClient(geckoBaseURL, binanceBaseURL string, timeout, rateLimitWait time.Duration, logger *zap.Logger) *Client {
	return &Client{
		geckoBaseURL:   strings.TrimRight(geckoBaseURL, "/"),
		binanceBaseURL: strings.TrimRight(binanceBaseURL, "/"),
		client:         &http.Client{Timeout: timeout},
		rateLimitWait:  rateLimitWait,
		logger:         logger,
		resolved:       make(map[string]string),
	}
}

func (c *Client) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return decimal.Decimal{}, false
	}

	if id, ok := c.coinID(ctx, ticker); ok {
		if price, ok := c.geckoPrice(ctx, id, false); ok {
			return price, true
		}
		c.logger.Debug("coingecko lookup failed, trying binance", zap.String("ticker", ticker))
	}

	return c.binancePrice(ctx, ticker)
}

func (c *Client) geckoPrice(ctx context.Context, id string, retried bool) (decimal.Decimal, bool) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.geckoBaseURL, url.QueryEscape(id))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, false
	}

	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("coingecko request failed", zap.String("id", id), zap.Error(err))
		return decimal.Decimal{}, false
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusTooManyRequests && !retried {
		c.logger.Warn("coingecko rate limited, waiting", zap.String("id", id), zap.Duration("wait", c.rateLimitWait))
		select {
		case <-ctx.Done():
			return decimal.Decimal{}, false
		case <-time.After(c.rateLimitWait):
		}
		return c.geckoPrice(ctx, id, true)
	}
	if response.StatusCode != http.StatusOK {
		c.logger.Warn("coingecko unexpected status", zap.String("id", id), zap.Int("status", response.StatusCode))
		return decimal.Decimal{}, false
	}

	var payload map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		c.logger.Warn("coingecko decode failed", zap.String("id", id), zap.Error(err))
		return decimal.Decimal{}, false
	}

	price, ok := payload[id]["usd"]
	return price, ok
}

func (c *Client) coinID(ctx context.Context, ticker string) (string, bool) {
	if id, ok := coinIDs[ticker]; ok {
		return id, true
	}

	c.mu.Lock()
	id, ok := c.resolved[ticker]
	c.mu.Unlock()
	if ok {
		return id, id != ""
	}

	id = c.searchCoinID(ctx, ticker)
	c.mu.Lock()
	c.resolved[ticker] = id
	c.mu.Unlock()
	return id, id != ""
}

func (c *Client) searchCoinID(ctx context.Context, ticker string) string {
	endpoint := fmt.Sprintf("%s/search?query=%s", c.geckoBaseURL, url.QueryEscape(ticker))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}

	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("coingecko search failed", zap.String("ticker", ticker), zap.Error(err))
		return ""
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return ""
	}

	var payload geckoSearchResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		c.logger.Warn("coingecko search decode failed", zap.String("ticker", ticker), zap.Error(err))
		return ""
	}
	if len(payload.Coins) == 0 {
		return ""
	}
	// The search endpoint ranks by relevance; take the top hit.
	return payload.Coins[0].ID
}

func (c *Client) binancePrice(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%sUSDT", c.binanceBaseURL, url.QueryEscape(ticker))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, false
	}

	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("binance request failed", zap.String("ticker", ticker), zap.Error(err))
		return decimal.Decimal{}, false
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		c.logger.Warn("binance unexpected status", zap.String("ticker", ticker), zap.Int("status", response.StatusCode))
		return decimal.Decimal{}, false
	}

	var payload binanceTicker
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		c.logger.Warn("binance decode failed", zap.String("ticker", ticker), zap.Error(err))
		return decimal.Decimal{}, false
	}

	c.logger.Debug("binance price served", zap.String("ticker", ticker), zap.String("price", payload.Price.String()))
	return payload.Price, true
}
