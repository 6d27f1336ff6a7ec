package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSample is one observed price point for an instrument.
type PriceSample struct {
	At    time.Time
	Price decimal.Decimal
}

// PriceSource looks up current USD prices by ticker. Lookups that fail are
// reported as absent rather than as errors: GetPrice returns false and
// GetPrices omits the ticker from the returned map. A partial batch never
// fails as a whole.
type PriceSource interface {
	GetPrice(ctx context.Context, ticker string) (decimal.Decimal, bool)
	GetPrices(ctx context.Context, tickers []string) map[string]decimal.Decimal
}
