package telegram

import (
	"errors"
	"strconv"
	"strings"
)

const HelpText = `Commands:
/start - register
/help - show this help
/price <TICKER> - current price
/add_alert <TICKER> <above|below> <threshold> - threshold alert
/alerts - list your alerts
/delete <alert_id> - delete an alert
/prices - current prices for your alert tickers
/auto_alerts - show spike/dump notification status
/auto_alerts <on|off> - toggle spike/dump notifications

Notes:
- Thresholds are in USD.
- "above" fires when the price reaches or exceeds the threshold,
  "below" when it reaches or drops under it.
Example:
/add_alert BTC above 50000
`

var ErrInvalidArguments = errors.New("invalid arguments")

func ParseAddAlertArgs(args string) (ticker, kind, threshold string, err error) {
	parts := strings.Fields(args)
	if len(parts) != 3 {
		return "", "", "", ErrInvalidArguments
	}
	return parts[0], parts[1], parts[2], nil
}

func ParseTicker(args string) (string, error) {
	ticker := strings.TrimSpace(args)
	if ticker == "" || len(strings.Fields(ticker)) != 1 {
		return "", ErrInvalidArguments
	}
	return ticker, nil
}

func ParseAlertID(args string) (uint, error) {
	idStr := strings.TrimSpace(args)
	if idStr == "" {
		return 0, ErrInvalidArguments
	}
	value, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, ErrInvalidArguments
	}
	return uint(value), nil
}

// ParseToggle interprets an on/off argument. An empty argument means "show
// status" and is reported via the second return.
func ParseToggle(args string) (enabled bool, present bool, err error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "":
		return false, false, nil
	case "on", "enable", "enabled":
		return true, true, nil
	case "off", "disable", "disabled":
		return false, true, nil
	default:
		return false, false, ErrInvalidArguments
	}
}
