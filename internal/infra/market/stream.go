package market

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const streamRedialWait = 5 * time.Second

type streamQuote struct {
	price decimal.Decimal
	at    time.Time
}

// TickerStream keeps a combined Binance miniTicker subscription open and
// caches the last traded price per ticker. The cache is advisory: consumers
// check quote freshness and fall back to REST when the stream is cold.
type TickerStream struct {
	url    string
	dialer *websocket.Dialer
	logger *zap.Logger

	mu     sync.RWMutex
	quotes map[string]streamQuote
}

func NewTickerStream(url string, logger *zap.Logger) *TickerStream {
	return &TickerStream{
		url: url,
		dialer: &websocket.Dialer{
			Proxy: http.ProxyFromEnvironment,
		},
		logger: logger,
		quotes: make(map[string]streamQuote),
	}
}

// Run subscribes to the miniTicker streams for the given tickers and updates
// the quote cache until ctx is cancelled, redialing after any error.
func (s *TickerStream) Run(ctx context.Context, tickers []string) {
	if len(tickers) == 0 {
		return
	}

	for {
		if err := s.consume(ctx, tickers); err != nil && ctx.Err() == nil {
			s.logger.Warn("ticker stream interrupted", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(streamRedialWait):
		}
	}
}

// Quote returns the cached price and its observation time for a ticker.
func (s *TickerStream) Quote(ticker string) (decimal.Decimal, time.Time, bool) {
	s.mu.RLock()
	quote, ok := s.quotes[strings.ToUpper(ticker)]
	s.mu.RUnlock()
	if !ok {
		return decimal.Decimal{}, time.Time{}, false
	}
	return quote.price, quote.at, true
}

func (s *TickerStream) consume(ctx context.Context, tickers []string) error {
	streams := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		streams = append(streams, strings.ToLower(ticker)+"usdt@miniTicker")
	}
	endpoint := s.url + "?streams=" + strings.Join(streams, "/")

	s.logger.Info("stream connect start", zap.String("url", endpoint))
	conn, _, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		s.logger.Error("stream connect failed", zap.String("url", endpoint), zap.Error(err))
		return err
	}
	s.logger.Info("stream connect success", zap.Int("ticker_count", len(tickers)))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		var envelope streamEnvelope
		if err := conn.ReadJSON(&envelope); err != nil {
			return err
		}

		ticker, ok := tickerFromPairSymbol(envelope.Data.Symbol)
		if !ok {
			continue
		}

		s.mu.Lock()
		s.quotes[ticker] = streamQuote{price: envelope.Data.LastPrice, at: time.Now()}
		s.mu.Unlock()
	}
}

func tickerFromPairSymbol(symbol string) (string, bool) {
	symbol = strings.ToUpper(symbol)
	ticker := strings.TrimSuffix(symbol, "USDT")
	if ticker == "" || ticker == symbol {
		return "", false
	}
	return ticker, true
}
