package db

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type userModel struct {
	ID             uint   `gorm:"primaryKey"`
	TelegramUserID int64  `gorm:"uniqueIndex;not null"`
	Username       string `gorm:""`
	FirstName      string `gorm:""`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

type alertModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"index:idx_alerts_user_deleted,priority:1;not null"`
	Ticker    string          `gorm:"not null"`
	Kind      string          `gorm:"not null"`
	Threshold decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_alerts_user_deleted,priority:2"`
}

type autoAlertModel struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Ticker    string `gorm:"primaryKey"`
	Enabled   bool   `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userModel) TableName() string      { return "users" }
func (alertModel) TableName() string     { return "alerts" }
func (autoAlertModel) TableName() string { return "auto_alerts" }
