package usecase

import (
	"time"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"github.com/shopspring/decimal"
)

type VolatilityDirection string

const (
	DirectionSpike VolatilityDirection = "spike"
	DirectionDump  VolatilityDirection = "dump"
)

// VolatilityEvent is one qualifying price move over the lookback window for
// a subscribed user.
type VolatilityEvent struct {
	Ticker    string
	Direction VolatilityDirection
	ChangePct decimal.Decimal
	Current   decimal.Decimal
	Baseline  decimal.Decimal
}

type cooldownKey struct {
	telegramUserID int64
	ticker         string
}

// VolatilityDetector keeps a bounded price history per ticker and raises
// spike/dump events, throttled per (user, ticker) by the cooldown. All state
// is owned by the monitor goroutine; no locking needed while cycles never
// overlap.
type VolatilityDetector struct {
	lookback  time.Duration
	retention time.Duration
	cooldown  time.Duration
	threshold decimal.Decimal

	history      map[string][]domain.PriceSample
	lastNotified map[cooldownKey]time.Time
}

func NewVolatilityDetector(lookback, retention, cooldown time.Duration, thresholdPct float64) *VolatilityDetector {
	return &VolatilityDetector{
		lookback:     lookback,
		retention:    retention,
		cooldown:     cooldown,
		threshold:    decimal.NewFromFloat(thresholdPct),
		history:      make(map[string][]domain.PriceSample),
		lastNotified: make(map[cooldownKey]time.Time),
	}
}

// Record appends this cycle's samples and prunes anything that has aged out
// of the retention window.
func (d *VolatilityDetector) Record(now time.Time, prices map[string]decimal.Decimal) {
	cutoff := now.Add(-d.retention)
	for ticker, price := range prices {
		samples := append(d.history[ticker], domain.PriceSample{At: now, Price: price})
		kept := samples[:0]
		for _, sample := range samples {
			if !sample.At.Before(cutoff) {
				kept = append(kept, sample)
			}
		}
		d.history[ticker] = kept
	}
}

// Check evaluates one (user, ticker) pair against the recorded history. A
// qualifying move is reported at most once per cooldown period; the cooldown
// is stamped when the event is returned, so a failed delivery is not
// retried.
func (d *VolatilityDetector) Check(now time.Time, telegramUserID int64, ticker string) (VolatilityEvent, bool) {
	samples := d.history[ticker]
	if len(samples) < 2 {
		return VolatilityEvent{}, false
	}

	baseline, ok := d.baseline(now, samples)
	if !ok || baseline.IsZero() {
		return VolatilityEvent{}, false
	}

	current := samples[len(samples)-1].Price
	change := current.Sub(baseline).Div(baseline).Mul(decimal.NewFromInt(100))
	if change.Abs().Cmp(d.threshold) < 0 {
		return VolatilityEvent{}, false
	}

	key := cooldownKey{telegramUserID: telegramUserID, ticker: ticker}
	if last, ok := d.lastNotified[key]; ok && now.Sub(last) < d.cooldown {
		return VolatilityEvent{}, false
	}
	d.lastNotified[key] = now

	direction := DirectionSpike
	if change.IsNegative() {
		direction = DirectionDump
	}
	return VolatilityEvent{
		Ticker:    ticker,
		Direction: direction,
		ChangePct: change,
		Current:   current,
		Baseline:  baseline,
	}, true
}

// baseline is the earliest retained sample that is at least the lookback
// old. Until such a sample exists the detector cannot evaluate the ticker.
func (d *VolatilityDetector) baseline(now time.Time, samples []domain.PriceSample) (decimal.Decimal, bool) {
	cutoff := now.Add(-d.lookback)
	for _, sample := range samples {
		if !sample.At.After(cutoff) {
			return sample.Price, true
		}
	}
	return decimal.Decimal{}, false
}
