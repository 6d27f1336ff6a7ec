package usecase

import (
	"fmt"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"github.com/shopspring/decimal"
)

// TriggerOutcome tags one transition of an alert's breach state machine.
type TriggerOutcome int

const (
	// TriggerNoop leaves trigger state unchanged: the condition did not
	// change sides, or no price was available this cycle.
	TriggerNoop TriggerOutcome = iota
	// TriggerFire marks the start of a breach episode; exactly one
	// notification is owed for it.
	TriggerFire
	// TriggerClear marks the end of a breach episode and re-arms the alert.
	TriggerClear
)

// ThresholdEvaluator tracks which alerts are inside a breach episode so that
// each episode notifies at most once. State lives in process memory only; a
// restart begins with every alert re-armed.
type ThresholdEvaluator struct {
	active map[string]struct{}
}

func NewThresholdEvaluator() *ThresholdEvaluator {
	return &ThresholdEvaluator{active: make(map[string]struct{})}
}

// triggerKey identifies one breach episode of one alert.
func triggerKey(alert domain.Alert) string {
	return fmt.Sprintf("%d_%s_%s_%s", alert.ID, alert.Ticker, alert.Kind, alert.Threshold.String())
}

// Evaluate advances the alert's state machine against this cycle's price
// snapshot and reports the transition taken. A ticker absent from the
// snapshot is a no-op with no state change.
func (e *ThresholdEvaluator) Evaluate(alert domain.Alert, prices map[string]decimal.Decimal) (TriggerOutcome, decimal.Decimal) {
	price, ok := prices[alert.Ticker]
	if !ok {
		return TriggerNoop, decimal.Decimal{}
	}

	key := triggerKey(alert)
	_, triggered := e.active[key]

	switch breached := isBreached(alert, price); {
	case breached && !triggered:
		e.active[key] = struct{}{}
		return TriggerFire, price
	case !breached && triggered:
		delete(e.active, key)
		return TriggerClear, price
	default:
		return TriggerNoop, price
	}
}

func isBreached(alert domain.Alert, price decimal.Decimal) bool {
	cmp := price.Cmp(alert.Threshold)
	if alert.Kind == domain.ThresholdBelow {
		return cmp <= 0
	}
	return cmp >= 0
}
