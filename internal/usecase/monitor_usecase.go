package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NasaVasa/shadowprice/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(telegramUserID int64, text string) error
}

const monitorStopTimeout = 30 * time.Second

// Monitor drives the periodic evaluation cycle: one batched price fetch, a
// threshold pass over every alert, a volatility pass over every enabled
// subscription, then a sleep. Cycles never overlap, so the evaluator and
// detector state is touched only from the monitor goroutine.
type Monitor struct {
	alerts     domain.AlertRepository
	autoAlerts domain.AutoAlertRepository
	source     domain.PriceSource
	notifier   Notifier
	evaluator  *ThresholdEvaluator
	detector   *VolatilityDetector
	logger     *zap.Logger

	interval time.Duration
	backoff  time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func NewMonitor(
	alerts domain.AlertRepository,
	autoAlerts domain.AutoAlertRepository,
	source domain.PriceSource,
	notifier Notifier,
	evaluator *ThresholdEvaluator,
	detector *VolatilityDetector,
	interval time.Duration,
	backoff time.Duration,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		alerts:     alerts,
		autoAlerts: autoAlerts,
		source:     source,
		notifier:   notifier,
		evaluator:  evaluator,
		detector:   detector,
		interval:   interval,
		backoff:    backoff,
		logger:     logger,
	}
}

// Start launches the monitoring loop. Calling it while the loop is already
// running is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.logger.Debug("monitor already running")
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go m.run(ctx, m.stop, m.done)
	m.logger.Info("monitor started", zap.Duration("interval", m.interval))
}

// Stop requests termination and waits for the loop to wind down. An
// in-flight cycle is never interrupted; the post-cycle sleep is skipped.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	select {
	case <-done:
		m.logger.Info("monitor stopped")
	case <-time.After(monitorStopTimeout):
		m.logger.Warn("timeout stopping monitor")
	}
}

func (m *Monitor) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	for {
		wait := m.interval
		if err := m.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error("monitor cycle failed", zap.Error(err))
			wait = m.backoff
		}

		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-time.After(wait):
		}
	}
}

func (m *Monitor) runCycle(ctx context.Context) error {
	started := time.Now()

	alerts, err := m.alerts.ListAllWithOwners(ctx)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}
	watch, err := m.autoAlerts.ListEnabledWatch(ctx)
	if err != nil {
		return fmt.Errorf("list auto-alert subscriptions: %w", err)
	}

	tickers := cycleTickers(alerts, watch)
	if len(tickers) == 0 {
		return nil
	}

	prices := m.source.GetPrices(ctx, tickers)
	m.logger.Debug("cycle snapshot fetched", zap.Int("requested", len(tickers)), zap.Int("fetched", len(prices)))

	m.checkThresholds(alerts, prices)
	m.checkVolatility(watch, prices)

	m.logger.Debug("cycle complete", zap.Duration("took", time.Since(started)))
	return nil
}

// cycleTickers is the union of tickers referenced by any alert or enabled
// subscription, in first-seen order.
func cycleTickers(alerts []domain.OwnedAlert, watch []domain.WatchEntry) []string {
	seen := make(map[string]struct{}, len(alerts)+len(watch))
	tickers := make([]string, 0, len(alerts)+len(watch))
	for _, alert := range alerts {
		if _, ok := seen[alert.Ticker]; !ok {
			seen[alert.Ticker] = struct{}{}
			tickers = append(tickers, alert.Ticker)
		}
	}
	for _, entry := range watch {
		if _, ok := seen[entry.Ticker]; !ok {
			seen[entry.Ticker] = struct{}{}
			tickers = append(tickers, entry.Ticker)
		}
	}
	return tickers
}

func (m *Monitor) checkThresholds(alerts []domain.OwnedAlert, prices map[string]decimal.Decimal) {
	for _, alert := range alerts {
		outcome, price := m.evaluator.Evaluate(alert.Alert, prices)
		switch outcome {
		case TriggerFire:
			m.logger.Info(
				"threshold alert fired",
				zap.Uint("alert_id", alert.ID),
				zap.String("ticker", alert.Ticker),
				zap.String("kind", string(alert.Kind)),
				zap.String("price", price.String()),
			)
			if err := m.notifier.Notify(alert.TelegramUserID, formatThresholdAlert(alert.Alert, price)); err != nil {
				m.logger.Warn("failed to send threshold alert", zap.Uint("alert_id", alert.ID), zap.Int64("telegram_user_id", alert.TelegramUserID), zap.Error(err))
			}
		case TriggerClear:
			m.logger.Debug("threshold alert re-armed", zap.Uint("alert_id", alert.ID), zap.String("ticker", alert.Ticker))
		}
	}
}

func (m *Monitor) checkVolatility(watch []domain.WatchEntry, prices map[string]decimal.Decimal) {
	now := time.Now()
	m.detector.Record(now, prices)

	for _, entry := range watch {
		if _, ok := prices[entry.Ticker]; !ok {
			continue
		}
		event, ok := m.detector.Check(now, entry.TelegramUserID, entry.Ticker)
		if !ok {
			continue
		}
		m.logger.Info(
			"volatility alert fired",
			zap.Int64("telegram_user_id", entry.TelegramUserID),
			zap.String("ticker", event.Ticker),
			zap.String("direction", string(event.Direction)),
			zap.String("change_pct", event.ChangePct.StringFixed(2)),
		)
		if err := m.notifier.Notify(entry.TelegramUserID, formatVolatilityAlert(event, m.detector.lookback)); err != nil {
			m.logger.Warn("failed to send volatility alert", zap.String("ticker", entry.Ticker), zap.Int64("telegram_user_id", entry.TelegramUserID), zap.Error(err))
		}
	}
}

func formatThresholdAlert(alert domain.Alert, price decimal.Decimal) string {
	if alert.Kind == domain.ThresholdBelow {
		return fmt.Sprintf(
			"%s fell below %s$!\nNow: %s$\nThe price has fallen below the threshold.",
			alert.Ticker, alert.Threshold.String(), price.StringFixed(2),
		)
	}
	return fmt.Sprintf(
		"%s pierced %s$!\nNow: %s$\nThe price has risen above the threshold.",
		alert.Ticker, alert.Threshold.String(), price.StringFixed(2),
	)
}

func formatVolatilityAlert(event VolatilityEvent, lookback time.Duration) string {
	headline := "Shot up!"
	if event.Direction == DirectionDump {
		headline = "Dump!"
	}
	change := event.ChangePct.StringFixed(2)
	if !event.ChangePct.IsNegative() {
		change = "+" + change
	}
	minutes := int(lookback.Minutes())
	return fmt.Sprintf(
		"%s %s\nChange in %d minutes: %s%%\nCurrent price: $%s\n%d min ago: $%s",
		event.Ticker, headline, minutes, change, event.Current.StringFixed(2), minutes, event.Baseline.StringFixed(2),
	)
}
