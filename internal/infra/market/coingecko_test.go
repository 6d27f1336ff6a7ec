package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(geckoURL, binanceURL string) *Client {
	return NewClient(geckoURL, binanceURL, time.Second, 10*time.Millisecond, zap.NewNop())
}

func TestClientGetPriceFromCoingecko(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":50123.45}}`))
	}))
	defer gecko.Close()

	client := newTestClient(gecko.URL, "http://127.0.0.1:1")
	price, ok := client.GetPrice(context.Background(), "btc")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromFloat(50123.45)))
}

func TestClientFallsBackToBinance(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gecko.Close()

	binance := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"50000.10"}`))
	}))
	defer binance.Close()

	client := newTestClient(gecko.URL, binance.URL)
	price, ok := client.GetPrice(context.Background(), "BTC")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("50000.10")))
}

func TestClientRetriesAfterRateLimit(t *testing.T) {
	var calls int32
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ethereum":{"usd":3000}}`))
	}))
	defer gecko.Close()

	client := newTestClient(gecko.URL, "http://127.0.0.1:1")
	price, ok := client.GetPrice(context.Background(), "ETH")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientResolvesUnknownTickerViaSearch(t *testing.T) {
	var searches int32
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			atomic.AddInt32(&searches, 1)
			assert.Equal(t, "FLOKI", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`{"coins":[{"id":"floki","symbol":"floki"}]}`))
		case "/simple/price":
			assert.Equal(t, "floki", r.URL.Query().Get("ids"))
			_, _ = w.Write([]byte(`{"floki":{"usd":0.0002}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer gecko.Close()

	client := newTestClient(gecko.URL, "http://127.0.0.1:1")
	ctx := context.Background()

	price, ok := client.GetPrice(ctx, "FLOKI")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromFloat(0.0002)))

	// The resolved id is cached; a second lookup does not search again.
	_, ok = client.GetPrice(ctx, "FLOKI")
	require.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&searches))
}

func TestClientUnknownEverywhereIsAbsent(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			_, _ = w.Write([]byte(`{"coins":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer gecko.Close()

	binance := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer binance.Close()

	client := newTestClient(gecko.URL, binance.URL)
	_, ok := client.GetPrice(context.Background(), "NOPE")
	assert.False(t, ok)
}
