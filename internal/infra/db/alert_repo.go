package db

import (
	"context"
	"time"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	model := mapAlertToModel(*alert)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	alert.ID = model.ID
	alert.CreatedAt = model.CreatedAt
	alert.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Alert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) Delete(ctx context.Context, userID uint, alertID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", alertID, userID).Delete(&alertModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type ownedAlertRow struct {
	ID             uint
	UserID         uint
	Ticker         string
	Kind           string
	Threshold      decimal.Decimal
	CreatedAt      time.Time
	TelegramUserID int64
}

// ListAllWithOwners returns every live alert joined with its owner's
// Telegram id, which is what the monitoring engine evaluates each cycle.
func (r *AlertRepository) ListAllWithOwners(ctx context.Context) ([]domain.OwnedAlert, error) {
	var rows []ownedAlertRow
	err := r.db.WithContext(ctx).
		Model(&alertModel{}).
		Select("alerts.id, alerts.user_id, alerts.ticker, alerts.kind, alerts.threshold, alerts.created_at, users.telegram_user_id").
		Joins("JOIN users ON users.id = alerts.user_id AND users.deleted_at IS NULL").
		Order("alerts.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	owned := make([]domain.OwnedAlert, 0, len(rows))
	for _, row := range rows {
		owned = append(owned, domain.OwnedAlert{
			Alert: domain.Alert{
				ID:        row.ID,
				UserID:    row.UserID,
				Ticker:    row.Ticker,
				Kind:      domain.ThresholdKind(row.Kind),
				Threshold: row.Threshold,
				CreatedAt: row.CreatedAt,
			},
			TelegramUserID: row.TelegramUserID,
		})
	}
	return owned, nil
}

func mapAlertsToDomain(models []alertModel) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, mapAlertToDomain(model))
	}
	return alerts
}

func mapAlertToDomain(model alertModel) domain.Alert {
	var deleted *time.Time
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		deleted = &t
	}
	return domain.Alert{
		ID:        model.ID,
		UserID:    model.UserID,
		Ticker:    model.Ticker,
		Kind:      domain.ThresholdKind(model.Kind),
		Threshold: model.Threshold,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		DeletedAt: deleted,
	}
}

func mapAlertToModel(alert domain.Alert) alertModel {
	return alertModel{
		ID:        alert.ID,
		UserID:    alert.UserID,
		Ticker:    alert.Ticker,
		Kind:      string(alert.Kind),
		Threshold: alert.Threshold,
		CreatedAt: alert.CreatedAt,
		UpdatedAt: alert.UpdatedAt,
	}
}
