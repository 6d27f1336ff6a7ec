package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotRegistered = errors.New("user not registered")
	ErrInvalidTicker     = errors.New("invalid ticker")
	ErrUnknownTicker     = errors.New("unknown ticker")
	ErrInvalidKind       = errors.New("invalid threshold kind")
	ErrInvalidThreshold  = errors.New("invalid threshold")
	ErrAlertNotFound     = errors.New("alert not found")
)

type AlertUsecase struct {
	users  domain.UserRepository
	alerts domain.AlertRepository
	source domain.PriceSource
}

func NewAlertUsecase(users domain.UserRepository, alerts domain.AlertRepository, source domain.PriceSource) *AlertUsecase {
	return &AlertUsecase{users: users, alerts: alerts, source: source}
}

func (u *AlertUsecase) AddAlert(ctx context.Context, telegramUserID int64, ticker, kind, threshold string) (*domain.Alert, error) {
	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}

	normalizedTicker, err := normalizeTicker(ticker)
	if err != nil {
		return nil, ErrInvalidTicker
	}

	normalizedKind, err := normalizeKind(kind)
	if err != nil {
		return nil, ErrInvalidKind
	}

	decThreshold, err := decimal.NewFromString(strings.TrimSpace(threshold))
	if err != nil || !decThreshold.IsPositive() {
		return nil, ErrInvalidThreshold
	}

	// Confirm the ticker resolves to a live price before persisting.
	if _, ok := u.source.GetPrice(ctx, normalizedTicker); !ok {
		return nil, ErrUnknownTicker
	}

	alert := &domain.Alert{
		UserID:    user.ID,
		Ticker:    normalizedTicker,
		Kind:      normalizedKind,
		Threshold: decThreshold,
	}
	if err := u.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	return alert, nil
}

func (u *AlertUsecase) ListAlerts(ctx context.Context, telegramUserID int64) ([]domain.Alert, error) {
	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}

	return u.alerts.ListByUser(ctx, user.ID)
}

func (u *AlertUsecase) DeleteAlert(ctx context.Context, telegramUserID int64, alertID uint) error {
	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if err == domain.ErrNotFound {
			return ErrUserNotRegistered
		}
		return err
	}

	if err := u.alerts.Delete(ctx, user.ID, alertID); err != nil {
		if err == domain.ErrNotFound {
			return ErrAlertNotFound
		}
		return err
	}

	return nil
}

func normalizeTicker(input string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(input))
	if ticker == "" || len(ticker) > 12 {
		return "", ErrInvalidTicker
	}
	for _, r := range ticker {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", ErrInvalidTicker
		}
	}
	return ticker, nil
}

func normalizeKind(input string) (domain.ThresholdKind, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "above", "up", ">", ">=":
		return domain.ThresholdAbove, nil
	case "below", "down", "<", "<=":
		return domain.ThresholdBelow, nil
	default:
		return "", ErrInvalidKind
	}
}
