package usecase

import (
	"context"
	"errors"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrPriceUnavailable = errors.New("price unavailable")

// PriceUsecase serves on-demand quotes outside the monitoring cycle.
type PriceUsecase struct {
	users  domain.UserRepository
	alerts domain.AlertRepository
	source domain.PriceSource
}

func NewPriceUsecase(users domain.UserRepository, alerts domain.AlertRepository, source domain.PriceSource) *PriceUsecase {
	return &PriceUsecase{users: users, alerts: alerts, source: source}
}

func (u *PriceUsecase) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	normalized, err := normalizeTicker(ticker)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidTicker
	}

	price, ok := u.source.GetPrice(ctx, normalized)
	if !ok {
		return decimal.Decimal{}, ErrPriceUnavailable
	}
	return price, nil
}

// AlertQuote is a current price for one ticker the user has alerts on.
type AlertQuote struct {
	Ticker string
	Price  decimal.Decimal
}

// Snapshot fetches current prices for every ticker the user has alerts on.
// Tickers whose lookup fails this round are omitted.
func (u *PriceUsecase) Snapshot(ctx context.Context, telegramUserID int64) ([]AlertQuote, error) {
	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}

	alerts, err := u.alerts.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(alerts))
	tickers := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		if _, ok := seen[alert.Ticker]; !ok {
			seen[alert.Ticker] = struct{}{}
			tickers = append(tickers, alert.Ticker)
		}
	}

	prices := u.source.GetPrices(ctx, tickers)
	quotes := make([]AlertQuote, 0, len(tickers))
	for _, ticker := range tickers {
		if price, ok := prices[ticker]; ok {
			quotes = append(quotes, AlertQuote{Ticker: ticker, Price: price})
		}
	}
	return quotes, nil
}
