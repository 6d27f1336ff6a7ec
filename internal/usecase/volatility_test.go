package usecase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLookback  = 10 * time.Minute
	testRetention = 15 * time.Minute
	testCooldown  = 30 * time.Minute
)

func newTestDetector() *VolatilityDetector {
	return NewVolatilityDetector(testLookback, testRetention, testCooldown, 5)
}

func record(d *VolatilityDetector, now time.Time, ticker string, price int64) {
	d.Record(now, map[string]decimal.Decimal{ticker: decimal.NewFromInt(price)})
}

func TestVolatilityDetectorSpike(t *testing.T) {
	detector := newTestDetector()
	now := time.Now()

	record(detector, now.Add(-testLookback), "BTC", 100)
	record(detector, now, "BTC", 106)

	event, ok := detector.Check(now, 42, "BTC")
	require.True(t, ok)
	assert.Equal(t, DirectionSpike, event.Direction)
	assert.Equal(t, "6.00", event.ChangePct.StringFixed(2))
	assert.True(t, event.Current.Equal(decimal.NewFromInt(106)))
	assert.True(t, event.Baseline.Equal(decimal.NewFromInt(100)))
}

func TestVolatilityDetectorBelowThreshold(t *testing.T) {
	detector := newTestDetector()
	now := time.Now()

	record(detector, now.Add(-testLookback), "BTC", 100)
	record(detector, now, "BTC", 103)

	_, ok := detector.Check(now, 42, "BTC")
	assert.False(t, ok)
}

func TestVolatilityDetectorDump(t *testing.T) {
	detector := newTestDetector()
	now := time.Now()

	record(detector, now.Add(-testLookback), "ETH", 100)
	record(detector, now, "ETH", 92)

	event, ok := detector.Check(now, 42, "ETH")
	require.True(t, ok)
	assert.Equal(t, DirectionDump, event.Direction)
	assert.Equal(t, "-8.00", event.ChangePct.StringFixed(2))
}

func TestVolatilityDetectorInsufficientHistory(t *testing.T) {
	detector := newTestDetector()
	now := time.Now()

	_, ok := detector.Check(now, 42, "BTC")
	assert.False(t, ok, "no samples at all")

	record(detector, now, "BTC", 100)
	_, ok = detector.Check(now, 42, "BTC")
	assert.False(t, ok, "single sample")

	// Two samples, but none old enough to serve as baseline.
	record(detector, now.Add(time.Minute), "BTC", 110)
	_, ok = detector.Check(now.Add(time.Minute), 42, "BTC")
	assert.False(t, ok, "no sample aged past the lookback")
}

func TestVolatilityDetectorZeroBaseline(t *testing.T) {
	detector := newTestDetector()
	now := time.Now()

	record(detector, now.Add(-testLookback), "DUST", 0)
	record(detector, now, "DUST", 1)

	_, ok := detector.Check(now, 42, "DUST")
	assert.False(t, ok)
}

func TestVolatilityDetectorPrunesRetentionWindow(t *testing.T) {
	detector := newTestDetector()
	start := time.Now()

	for i := 0; i < 30; i++ {
		record(detector, start.Add(time.Duration(i)*time.Minute), "BTC", 100+int64(i))
	}

	last := start.Add(29 * time.Minute)
	for _, sample := range detector.history["BTC"] {
		assert.LessOrEqual(t, last.Sub(sample.At), testRetention)
	}
}

func TestVolatilityDetectorCooldown(t *testing.T) {
	detector := newTestDetector()
	t0 := time.Now()
	t1 := t0.Add(testLookback)

	record(detector, t0, "BTC", 100)
	record(detector, t1, "BTC", 106)

	_, ok := detector.Check(t1, 42, "BTC")
	require.True(t, ok)

	// A second qualifying move inside the cooldown is suppressed.
	t2 := t1.Add(time.Minute)
	record(detector, t2, "BTC", 107)
	_, ok = detector.Check(t2, 42, "BTC")
	assert.False(t, ok)

	// Another user is throttled independently.
	_, ok = detector.Check(t2, 43, "BTC")
	assert.True(t, ok)

	// After the cooldown expires the same user is notified again.
	t3 := t1.Add(testCooldown)
	record(detector, t3.Add(-testLookback), "BTC", 100)
	record(detector, t3, "BTC", 106)
	_, ok = detector.Check(t3, 42, "BTC")
	assert.True(t, ok)
}
