package domain

// AutoAlert is one (user, ticker) opt-in row for volatility notifications.
// A user is globally subscribed when every ticker of the fixed watch-list
// is enabled for them.
type AutoAlert struct {
	UserID  uint
	Ticker  string
	Enabled bool
}

// WatchEntry is an enabled auto-alert row joined with the owner's Telegram
// identity, one per (subscriber, ticker) pair the detector must evaluate.
type WatchEntry struct {
	TelegramUserID int64
	Ticker         string
}
