package market

import (
	"context"
	"strings"
	"time"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Source is the price lookup the engine sees: a fresh streamed quote when one
// is cached, the REST chain otherwise. Failed lookups are omitted, never
// surfaced as errors.
type Source struct {
	rest       *Client
	stream     *TickerStream
	maxAge     time.Duration
	fetchDelay time.Duration
	logger     *zap.Logger
}

var _ domain.PriceSource = (*Source)(nil)

func NewSource(rest *Client, stream *TickerStream, maxAge, fetchDelay time.Duration, logger *zap.Logger) *Source {
	return &Source{
		rest:       rest,
		stream:     stream,
		maxAge:     maxAge,
		fetchDelay: fetchDelay,
		logger:     logger,
	}
}

func (s *Source) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if price, ok := s.streamed(ticker); ok {
		return price, true
	}
	return s.rest.GetPrice(ctx, ticker)
}

func (s *Source) GetPrices(ctx context.Context, tickers []string) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(tickers))
	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if _, ok := prices[ticker]; ok {
			continue
		}

		if price, ok := s.streamed(ticker); ok {
			prices[ticker] = price
			continue
		}

		if ctx.Err() != nil {
			return prices
		}
		if price, ok := s.rest.GetPrice(ctx, ticker); ok {
			prices[ticker] = price
		} else {
			s.logger.Warn("price unavailable this cycle", zap.String("ticker", ticker))
		}

		// Pace REST calls to stay under the providers' rate limits.
		select {
		case <-ctx.Done():
			return prices
		case <-time.After(s.fetchDelay):
		}
	}
	return prices
}

func (s *Source) streamed(ticker string) (decimal.Decimal, bool) {
	if s.stream == nil {
		return decimal.Decimal{}, false
	}
	price, at, ok := s.stream.Quote(ticker)
	if !ok || time.Since(at) > s.maxAge {
		return decimal.Decimal{}, false
	}
	return price, true
}
