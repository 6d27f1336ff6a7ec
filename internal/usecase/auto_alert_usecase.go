package usecase

import (
	"context"

	"github.com/NasaVasa/shadowprice/internal/domain"
)

// AutoAlertUsecase manages the global volatility subscription: one toggle
// that applies to every ticker of the fixed watch-list.
type AutoAlertUsecase struct {
	users     domain.UserRepository
	subs      domain.AutoAlertRepository
	watchList []string
}

func NewAutoAlertUsecase(users domain.UserRepository, subs domain.AutoAlertRepository, watchList []string) *AutoAlertUsecase {
	return &AutoAlertUsecase{users: users, subs: subs, watchList: watchList}
}

func (u *AutoAlertUsecase) SetGlobal(ctx context.Context, telegramUserID int64, enabled bool) error {
	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if err == domain.ErrNotFound {
			return ErrUserNotRegistered
		}
		return err
	}

	return u.subs.SetForUser(ctx, user.ID, u.watchList, enabled)
}

// IsGloballyEnabled reports whether every watch-list ticker is enabled for
// the user.
func (u *AutoAlertUsecase) IsGloballyEnabled(ctx context.Context, telegramUserID int64) (bool, error) {
	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if err == domain.ErrNotFound {
			return false, ErrUserNotRegistered
		}
		return false, err
	}

	subs, err := u.subs.ListByUser(ctx, user.ID)
	if err != nil {
		return false, err
	}

	enabled := make(map[string]bool, len(subs))
	for _, sub := range subs {
		enabled[sub.Ticker] = sub.Enabled
	}
	for _, ticker := range u.watchList {
		if !enabled[ticker] {
			return false, nil
		}
	}
	return true, nil
}

func (u *AutoAlertUsecase) WatchList() []string {
	return u.watchList
}
