package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ThresholdKind is the direction an alert watches: "above" fires when the
// price reaches or exceeds the threshold, "below" when it reaches or drops
// under it.
type ThresholdKind string

const (
	ThresholdAbove ThresholdKind = "above"
	ThresholdBelow ThresholdKind = "below"
)

type Alert struct {
	ID        uint
	UserID    uint
	Ticker    string
	Kind      ThresholdKind
	Threshold decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// OwnedAlert is an alert joined with the Telegram identity of its owner,
// as the monitoring engine needs both to evaluate and to deliver.
type OwnedAlert struct {
	Alert
	TelegramUserID int64
}
