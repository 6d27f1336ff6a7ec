package usecase

import (
	"testing"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(pairs map[string]int64) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(pairs))
	for ticker, price := range pairs {
		prices[ticker] = decimal.NewFromInt(price)
	}
	return prices
}

func TestThresholdEvaluatorFiresOncePerEpisode(t *testing.T) {
	evaluator := NewThresholdEvaluator()
	alert := domain.Alert{
		ID:        1,
		Ticker:    "BTC",
		Kind:      domain.ThresholdAbove,
		Threshold: decimal.NewFromInt(50000),
	}

	outcome, _ := evaluator.Evaluate(alert, snapshot(map[string]int64{"BTC": 49000}))
	assert.Equal(t, TriggerNoop, outcome)

	outcome, price := evaluator.Evaluate(alert, snapshot(map[string]int64{"BTC": 51000}))
	assert.Equal(t, TriggerFire, outcome)
	assert.True(t, price.Equal(decimal.NewFromInt(51000)))

	// Still breached: suppressed for the ongoing episode.
	outcome, _ = evaluator.Evaluate(alert, snapshot(map[string]int64{"BTC": 51500}))
	assert.Equal(t, TriggerNoop, outcome)

	// Back under the threshold: re-armed, no message.
	outcome, _ = evaluator.Evaluate(alert, snapshot(map[string]int64{"BTC": 49500}))
	assert.Equal(t, TriggerClear, outcome)

	// Second breach fires again.
	outcome, _ = evaluator.Evaluate(alert, snapshot(map[string]int64{"BTC": 52000}))
	assert.Equal(t, TriggerFire, outcome)
}

func TestThresholdEvaluatorBelowKind(t *testing.T) {
	evaluator := NewThresholdEvaluator()
	alert := domain.Alert{
		ID:        7,
		Ticker:    "ETH",
		Kind:      domain.ThresholdBelow,
		Threshold: decimal.NewFromInt(3000),
	}

	outcome, _ := evaluator.Evaluate(alert, snapshot(map[string]int64{"ETH": 3100}))
	assert.Equal(t, TriggerNoop, outcome)

	// Exactly on the threshold counts as breached.
	outcome, _ = evaluator.Evaluate(alert, snapshot(map[string]int64{"ETH": 3000}))
	assert.Equal(t, TriggerFire, outcome)

	outcome, _ = evaluator.Evaluate(alert, snapshot(map[string]int64{"ETH": 3001}))
	assert.Equal(t, TriggerClear, outcome)
}

func TestThresholdEvaluatorMissingPriceIsNoop(t *testing.T) {
	evaluator := NewThresholdEvaluator()
	alert := domain.Alert{
		ID:        3,
		Ticker:    "BTC",
		Kind:      domain.ThresholdAbove,
		Threshold: decimal.NewFromInt(50000),
	}

	outcome, _ := evaluator.Evaluate(alert, snapshot(map[string]int64{"BTC": 51000}))
	require.Equal(t, TriggerFire, outcome)

	// A failed lookup must not clear the episode.
	outcome, _ = evaluator.Evaluate(alert, snapshot(map[string]int64{"ETH": 3000}))
	assert.Equal(t, TriggerNoop, outcome)

	// Price returns, still breached: no duplicate.
	outcome, _ = evaluator.Evaluate(alert, snapshot(map[string]int64{"BTC": 51000}))
	assert.Equal(t, TriggerNoop, outcome)
}

func TestThresholdEvaluatorKeysAlertsIndependently(t *testing.T) {
	evaluator := NewThresholdEvaluator()
	first := domain.Alert{ID: 1, Ticker: "BTC", Kind: domain.ThresholdAbove, Threshold: decimal.NewFromInt(50000)}
	second := domain.Alert{ID: 2, Ticker: "BTC", Kind: domain.ThresholdAbove, Threshold: decimal.NewFromInt(60000)}

	prices := snapshot(map[string]int64{"BTC": 55000})
	outcome, _ := evaluator.Evaluate(first, prices)
	assert.Equal(t, TriggerFire, outcome)
	outcome, _ = evaluator.Evaluate(second, prices)
	assert.Equal(t, TriggerNoop, outcome)
}
