package db

import (
	"context"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AutoAlertRepository struct {
	db *gorm.DB
}

func NewAutoAlertRepository(db *gorm.DB) *AutoAlertRepository {
	return &AutoAlertRepository{db: db}
}

func (r *AutoAlertRepository) ListByUser(ctx context.Context, userID uint) ([]domain.AutoAlert, error) {
	var models []autoAlertModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("ticker").Find(&models).Error; err != nil {
		return nil, err
	}

	subs := make([]domain.AutoAlert, 0, len(models))
	for _, model := range models {
		subs = append(subs, domain.AutoAlert{
			UserID:  model.UserID,
			Ticker:  model.Ticker,
			Enabled: model.Enabled,
		})
	}
	return subs, nil
}

// SetForUser upserts one row per ticker with the given enabled flag. Used by
// the global auto-alert toggle, which always applies the whole watch-list.
func (r *AutoAlertRepository) SetForUser(ctx context.Context, userID uint, tickers []string, enabled bool) error {
	if len(tickers) == 0 {
		return nil
	}

	models := make([]autoAlertModel, 0, len(tickers))
	for _, ticker := range tickers {
		models = append(models, autoAlertModel{UserID: userID, Ticker: ticker, Enabled: enabled})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(&models).Error
}

type watchRow struct {
	TelegramUserID int64
	Ticker         string
}

// ListEnabledWatch returns every enabled (subscriber, ticker) pair joined
// with the subscriber's Telegram id.
func (r *AutoAlertRepository) ListEnabledWatch(ctx context.Context) ([]domain.WatchEntry, error) {
	var rows []watchRow
	err := r.db.WithContext(ctx).
		Model(&autoAlertModel{}).
		Select("users.telegram_user_id, auto_alerts.ticker").
		Joins("JOIN users ON users.id = auto_alerts.user_id AND users.deleted_at IS NULL").
		Where("auto_alerts.enabled = ?", true).
		Order("users.telegram_user_id, auto_alerts.ticker").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.WatchEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.WatchEntry{
			TelegramUserID: row.TelegramUserID,
			Ticker:         row.Ticker,
		})
	}
	return entries, nil
}
