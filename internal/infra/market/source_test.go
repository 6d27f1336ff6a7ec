package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSourceGetPricesOmitsFailures(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/simple/price" && r.URL.Query().Get("ids") == "bitcoin" {
			_, _ = w.Write([]byte(`{"bitcoin":{"usd":50000}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gecko.Close()

	binance := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer binance.Close()

	rest := newTestClient(gecko.URL, binance.URL)
	source := NewSource(rest, nil, time.Minute, time.Millisecond, zap.NewNop())

	prices := source.GetPrices(context.Background(), []string{"btc", "BTC", "ETH"})
	require.Len(t, prices, 1)
	assert.True(t, prices["BTC"].Equal(decimal.NewFromInt(50000)))
}

func TestSourcePrefersFreshStreamQuote(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gecko.Close()

	stream := NewTickerStream("", zap.NewNop())
	stream.quotes["BTC"] = streamQuote{price: decimal.NewFromInt(51000), at: time.Now()}

	rest := newTestClient(gecko.URL, gecko.URL)
	source := NewSource(rest, stream, time.Minute, time.Millisecond, zap.NewNop())

	price, ok := source.GetPrice(context.Background(), "btc")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(51000)))
}

func TestSourceIgnoresStaleStreamQuote(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":49000}}`))
	}))
	defer gecko.Close()

	stream := NewTickerStream("", zap.NewNop())
	stream.quotes["BTC"] = streamQuote{price: decimal.NewFromInt(51000), at: time.Now().Add(-time.Hour)}

	rest := newTestClient(gecko.URL, gecko.URL)
	source := NewSource(rest, stream, time.Minute, time.Millisecond, zap.NewNop())

	price, ok := source.GetPrice(context.Background(), "BTC")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(49000)))
}

func TestTickerFromPairSymbol(t *testing.T) {
	ticker, ok := tickerFromPairSymbol("btcusdt")
	require.True(t, ok)
	assert.Equal(t, "BTC", ticker)

	_, ok = tickerFromPairSymbol("USDT")
	assert.False(t, ok)

	_, ok = tickerFromPairSymbol("BTCBUSD")
	assert.False(t, ok)
}
