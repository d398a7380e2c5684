// Package performance maintains the rolling trading statistics behind
// adaptive risk throttling: win rate, realized PnL, equity high
// watermark and drawdown. Crossing the drawdown threshold engages the
// shared emergency stop.
package performance

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/eventbus"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/risk"
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/internal/version"
)

const dateLayout = "2006-01-02"

// Tracker accumulates per-day and cumulative statistics. All counters
// are mutated under one mutex so every per-symbol loop sees a
// consistent snapshot.
type Tracker struct {
	config        config.RiskConfig
	emergencyStop *risk.EmergencyStop
	publisher     eventbus.Publisher
	logger        *logger.Logger
	metrics       *Metrics
	snapshotPath  string
	now           func() time.Time

	mu             sync.Mutex
	sessionStart   time.Time
	daily          types.PerformanceStats
	cumulative     types.PerformanceStats
	recent         []bool
	submittedToday int
}

// NewTracker creates a tracker. When snapshotPath names an existing
// snapshot file, the tracker resumes from it; metrics may be nil.
func NewTracker(cfg config.RiskConfig, stop *risk.EmergencyStop, publisher eventbus.Publisher, metrics *Metrics, snapshotPath string, log *logger.Logger) *Tracker {
	t := &Tracker{
		config:        cfg,
		emergencyStop: stop,
		publisher:     publisher,
		logger:        log,
		metrics:       metrics,
		snapshotPath:  snapshotPath,
		now:           time.Now,
	}

	t.sessionStart = t.now()
	t.daily.Date = t.sessionStart.UTC().Format(dateLayout)
	t.cumulative.Date = t.daily.Date

	if snapshotPath != "" {
		if snapshot, err := types.ReadPerformanceSnapshot(snapshotPath); err == nil {
			t.restore(snapshot)
		}
	}

	return t
}

// SetClock overrides the time source, for deterministic tests. When no
// trades have been recorded yet the trading day re-anchors to the new
// clock.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.now = now

	if t.daily.TradesToday == 0 && t.submittedToday == 0 {
		t.sessionStart = now()
		t.daily.Date = now().UTC().Format(dateLayout)
	}
}

// restore resumes from a persisted snapshot. The daily stats only carry
// over when the snapshot is from the current trading day.
func (t *Tracker) restore(snapshot types.PerformanceSnapshot) {
	if snapshot.SchemaVersion != "" {
		if err := version.CheckSnapshotCompatibility(version.GetVersion(), snapshot.SchemaVersion); err != nil {
			t.logger.Warn("ignoring incompatible performance snapshot",
				zap.String("snapshot", t.snapshotPath),
				zap.Error(err),
			)

			return
		}
	}

	t.sessionStart = snapshot.SessionStart
	t.cumulative = snapshot.Cumulative

	if snapshot.Daily.Date == t.now().UTC().Format(dateLayout) {
		t.daily = snapshot.Daily
		t.submittedToday = snapshot.SubmittedToday
	}

	t.logger.Info("performance state restored",
		zap.String("snapshot", t.snapshotPath),
		zap.String("day", t.daily.Date),
	)
}

// TryReserveSubmission claims one slot against the daily trade cap, or
// reports the cap reached. The claim happens under the tracker mutex so
// concurrent symbol loops cannot both take the last slot, and the count
// is persisted immediately so a same-day restart keeps honoring it.
func (t *Tracker) TryReserveSubmission() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollDayLocked()

	if t.submittedToday >= t.config.MaxDailyTrades {
		return false
	}

	t.submittedToday++
	t.persistLocked()

	return true
}

// ReleaseSubmission returns a reserved slot that never reached the
// broker (a later risk gate or order validation rejected it locally).
func (t *Tracker) ReleaseSubmission() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollDayLocked()

	if t.submittedToday > 0 {
		t.submittedToday--
		t.persistLocked()
	}
}

// OnOrderSubmitted records that a reserved submission reached the
// broker. The cap slot itself was claimed by TryReserveSubmission.
func (t *Tracker) OnOrderSubmitted() {
	if t.metrics != nil {
		t.metrics.OrdersSubmitted.Inc()
	}
}

// OnOrderClosed records a closed trade and the resulting equity. It
// implements the lifecycle close feedback: win/loss counters, rolling
// win rate, drawdown from the high watermark, and the emergency stop
// when drawdown crosses the halt threshold.
func (t *Tracker) OnOrderClosed(order types.Order, pnl, equity float64) {
	t.mu.Lock()

	t.rollDayLocked()

	now := t.now()
	win := pnl > 0
	loss := pnl < 0

	for _, stats := range []*types.PerformanceStats{&t.daily, &t.cumulative} {
		stats.TradesToday++

		// A break-even close counts as a trade but is neither a win nor
		// a loss: it leaves the win rate and the loss streak untouched.
		if win {
			stats.Wins++
			stats.ConsecutiveLosses = 0
		} else if loss {
			stats.Losses++
			stats.ConsecutiveLosses++
		}

		if total := stats.Wins + stats.Losses; total > 0 {
			stats.WinRate = float64(stats.Wins) / float64(total)
		}

		stats.RealizedPnL += pnl
		stats.LastUpdated = now
	}

	if win || loss {
		t.recent = append(t.recent, win)
		if len(t.recent) > t.config.WinRateWindow {
			t.recent = t.recent[len(t.recent)-t.config.WinRateWindow:]
		}
	}

	t.updateEquityLocked(equity)

	drawdown := t.cumulative.CurrentDrawdownPct
	halted := drawdown > t.config.DrawdownHaltPct && !t.emergencyStop.IsEngaged()

	t.updateMetricsLocked(order, win, loss, equity)
	t.persistLocked()
	t.mu.Unlock()

	if halted {
		reason := fmt.Sprintf("drawdown %.2f%% over halt threshold %.2f%%", drawdown, t.config.DrawdownHaltPct)
		t.emergencyStop.Engage(reason, t.now())

		if t.metrics != nil {
			t.metrics.EmergencyStop.Set(1)
		}

		t.publisher.Publish(types.Event{
			Type:   types.EventTypeEmergencyStop,
			Symbol: order.Symbol,
			Details: map[string]string{
				"drawdown_pct":  strconv.FormatFloat(drawdown, 'f', 2, 64),
				"threshold_pct": strconv.FormatFloat(t.config.DrawdownHaltPct, 'f', 2, 64),
				"reason":        reason,
			},
			Timestamp: t.now(),
		})

		t.logger.Error("emergency stop engaged", zap.String("reason", reason))
	}
}

// OnEquityUpdate refreshes the high watermark and drawdown between
// closes, so a floating loss is visible before it is realized.
func (t *Tracker) OnEquityUpdate(equity float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.updateEquityLocked(equity)

	if t.metrics != nil {
		t.metrics.Equity.Set(equity)
		t.metrics.DrawdownPct.Set(t.cumulative.CurrentDrawdownPct)
	}
}

// ClearEmergencyStop releases the halt and announces the clearance.
func (t *Tracker) ClearEmergencyStop() {
	t.emergencyStop.Clear()

	if t.metrics != nil {
		t.metrics.EmergencyStop.Set(0)
	}

	t.publisher.Publish(types.Event{
		Type:      types.EventTypeEmergencyCleared,
		Timestamp: t.now(),
	})

	t.logger.Info("emergency stop cleared")
}

// CurrentStats returns a copy of the live statistics.
func (t *Tracker) CurrentStats() types.PerformanceSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return types.PerformanceSnapshot{
		SessionStart:   t.sessionStart,
		SubmittedToday: t.submittedToday,
		Daily:          t.daily,
		Cumulative:     t.cumulative,
	}
}

// TradesToday implements the risk manager's stats feed with the count
// of orders submitted since the day boundary.
func (t *Tracker) TradesToday() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollDayLocked()

	return t.submittedToday
}

// RollingWinRate implements the risk manager's stats feed over the
// last WinRateWindow closed trades.
func (t *Tracker) RollingWinRate() (float64, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.rollingWinRateLocked()
}

// ConsecutiveLosses implements the risk manager's stats feed.
func (t *Tracker) ConsecutiveLosses() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cumulative.ConsecutiveLosses
}

// CurrentDrawdownPct implements the risk manager's stats feed.
func (t *Tracker) CurrentDrawdownPct() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cumulative.CurrentDrawdownPct
}

// updateEquityLocked advances the high watermark and recomputes
// drawdown. Callers hold the mutex.
func (t *Tracker) updateEquityLocked(equity float64) {
	if equity <= 0 {
		return
	}

	for _, stats := range []*types.PerformanceStats{&t.daily, &t.cumulative} {
		if equity > stats.EquityHighWatermark {
			stats.EquityHighWatermark = equity
		}

		stats.CurrentDrawdownPct = 0
		if stats.EquityHighWatermark > 0 {
			stats.CurrentDrawdownPct = (stats.EquityHighWatermark - equity) / stats.EquityHighWatermark * 100
		}

		if stats.CurrentDrawdownPct > stats.MaxDrawdownPct {
			stats.MaxDrawdownPct = stats.CurrentDrawdownPct
		}
	}
}

// rollDayLocked resets the daily counters at the UTC date boundary and
// publishes the previous day's summary. Callers hold the mutex.
func (t *Tracker) rollDayLocked() {
	today := t.now().UTC().Format(dateLayout)
	if t.daily.Date == today {
		return
	}

	summary := t.daily

	t.daily = types.PerformanceStats{
		Date: today,
		// The watermark survives the boundary; drawdown is an
		// account-level measure, not a daily one.
		EquityHighWatermark: t.daily.EquityHighWatermark,
	}
	t.submittedToday = 0

	t.publisher.Publish(types.Event{
		Type: types.EventTypeDailySummary,
		Details: map[string]string{
			"date":     summary.Date,
			"trades":   strconv.Itoa(summary.TradesToday),
			"wins":     strconv.Itoa(summary.Wins),
			"losses":   strconv.Itoa(summary.Losses),
			"win_rate": strconv.FormatFloat(summary.WinRate, 'f', 4, 64),
			"pnl":      strconv.FormatFloat(summary.RealizedPnL, 'f', 2, 64),
		},
		Timestamp: t.now(),
	})

	t.logger.Info("daily statistics reset",
		zap.String("closed_day", summary.Date),
		zap.Int("trades", summary.TradesToday),
		zap.Float64("pnl", summary.RealizedPnL),
	)
}

// updateMetricsLocked refreshes the exported gauges after a close.
// Callers hold the mutex.
func (t *Tracker) updateMetricsLocked(order types.Order, win, loss bool, equity float64) {
	if t.metrics == nil {
		return
	}

	result := "flat"
	if win {
		result = "win"
	} else if loss {
		result = "loss"
	}

	t.metrics.TradesClosed.WithLabelValues(result).Inc()
	t.metrics.RealizedPnL.Set(t.cumulative.RealizedPnL)
	t.metrics.Equity.Set(equity)
	t.metrics.DrawdownPct.Set(t.cumulative.CurrentDrawdownPct)
	t.metrics.ConsecLosses.Set(float64(t.cumulative.ConsecutiveLosses))

	if rate, samples := t.rollingWinRateLocked(); samples > 0 {
		t.metrics.WinRate.Set(rate)
	}
}

func (t *Tracker) rollingWinRateLocked() (float64, int) {
	if len(t.recent) == 0 {
		return 0, 0
	}

	wins := 0

	for _, win := range t.recent {
		if win {
			wins++
		}
	}

	return float64(wins) / float64(len(t.recent)), len(t.recent)
}

// persistLocked writes the snapshot file when persistence is
// configured. Callers hold the mutex.
func (t *Tracker) persistLocked() {
	if t.snapshotPath == "" {
		return
	}

	snapshot := types.PerformanceSnapshot{
		SchemaVersion:  version.GetVersion(),
		SessionStart:   t.sessionStart,
		SubmittedToday: t.submittedToday,
		Daily:          t.daily,
		Cumulative:     t.cumulative,
	}

	if err := types.WritePerformanceSnapshot(t.snapshotPath, snapshot); err != nil {
		t.logger.Error("performance snapshot write failed",
			zap.String("path", t.snapshotPath),
			zap.Error(err),
		)
	}
}
