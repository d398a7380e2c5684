package performance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/eventbus"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/risk"
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/internal/version"
)

type TrackerTestSuite struct {
	suite.Suite
	tracker *Tracker
	stop    *risk.EmergencyStop
	bus     *eventbus.Bus
	events  <-chan types.Event
	clock   time.Time
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (suite *TrackerTestSuite) SetupTest() {
	suite.stop = risk.NewEmergencyStop()
	suite.bus = eventbus.NewBus(16, logger.NewNopLogger())
	suite.events = suite.bus.Subscribe()
	suite.clock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cfg := config.RiskConfig{
		RiskPercent:     0.01,
		MaxDailyTrades:  20,
		DrawdownHaltPct: 5.0,
		WinRateFloor:    0.4,
		WinRateWindow:   5,
		MinRiskScale:    0.25,
	}

	suite.tracker = NewTracker(cfg, suite.stop, suite.bus, nil, "", logger.NewNopLogger())
	suite.tracker.SetClock(func() time.Time { return suite.clock })
}

func (suite *TrackerTestSuite) order(symbol string) types.Order {
	return types.Order{
		ID:     "order-1",
		Symbol: symbol,
		State:  types.OrderStateClosed,
	}
}

func (suite *TrackerTestSuite) TestWinLossCounters() {
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), 120, 10120)
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), -40, 10080)
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), 60, 10140)

	stats := suite.tracker.CurrentStats()
	suite.Equal(3, stats.Daily.TradesToday)
	suite.Equal(2, stats.Daily.Wins)
	suite.Equal(1, stats.Daily.Losses)
	suite.InDelta(2.0/3.0, stats.Daily.WinRate, 1e-9)
	suite.InDelta(140, stats.Daily.RealizedPnL, 1e-9)
	suite.Zero(stats.Cumulative.ConsecutiveLosses)
}

func (suite *TrackerTestSuite) TestBreakEvenCloseIsNeutral() {
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), -10, 9990)
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), 0, 9990)

	stats := suite.tracker.CurrentStats()
	suite.Equal(2, stats.Daily.TradesToday)
	suite.Zero(stats.Daily.Wins)
	suite.Equal(1, stats.Daily.Losses)
	// The flat close neither extends nor breaks the loss streak.
	suite.Equal(1, suite.tracker.ConsecutiveLosses())

	_, samples := suite.tracker.RollingWinRate()
	suite.Equal(1, samples)
}

func (suite *TrackerTestSuite) TestRollingWinRateWindow() {
	// Three losses, then five wins; the window of 5 only sees the wins.
	for i := 0; i < 3; i++ {
		suite.tracker.OnOrderClosed(suite.order("EURUSD"), -10, 10000)
	}

	for i := 0; i < 5; i++ {
		suite.tracker.OnOrderClosed(suite.order("EURUSD"), 10, 10000)
	}

	rate, samples := suite.tracker.RollingWinRate()
	suite.Equal(5, samples)
	suite.InDelta(1.0, rate, 1e-9)
}

func (suite *TrackerTestSuite) TestConsecutiveLossStreak() {
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), -10, 9990)
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), -10, 9980)
	suite.Equal(2, suite.tracker.ConsecutiveLosses())

	suite.tracker.OnOrderClosed(suite.order("EURUSD"), 30, 10010)
	suite.Zero(suite.tracker.ConsecutiveLosses())
}

func (suite *TrackerTestSuite) TestDrawdownEngagesEmergencyStop() {
	// Establish a 10000 high watermark, then lose past 5%.
	suite.tracker.OnEquityUpdate(10000)
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), -300, 9700)
	suite.False(suite.stop.IsEngaged())

	suite.tracker.OnOrderClosed(suite.order("EURUSD"), -250, 9450)
	suite.True(suite.stop.IsEngaged())
	suite.InDelta(5.5, suite.tracker.CurrentDrawdownPct(), 1e-9)

	// The halt is announced on the bus.
	found := false

	for len(suite.events) > 0 {
		event := <-suite.events
		if event.Type == types.EventTypeEmergencyStop {
			found = true

			suite.Equal("EURUSD", event.Symbol)
			suite.Contains(event.Details, "drawdown_pct")
		}
	}

	suite.True(found, "expected an emergency stop event")

	// Cleared explicitly, trading may resume.
	suite.tracker.ClearEmergencyStop()
	suite.False(suite.stop.IsEngaged())
}

func (suite *TrackerTestSuite) TestDrawdownRecovery() {
	suite.tracker.OnEquityUpdate(10000)
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), -200, 9800)
	suite.InDelta(2.0, suite.tracker.CurrentDrawdownPct(), 1e-9)

	suite.tracker.OnOrderClosed(suite.order("EURUSD"), 400, 10200)
	suite.Zero(suite.tracker.CurrentDrawdownPct())

	stats := suite.tracker.CurrentStats()
	suite.InDelta(10200, stats.Cumulative.EquityHighWatermark, 1e-9)
	suite.InDelta(2.0, stats.Cumulative.MaxDrawdownPct, 1e-9)
}

func (suite *TrackerTestSuite) TestDailyReset() {
	suite.True(suite.tracker.TryReserveSubmission())
	suite.tracker.OnOrderClosed(suite.order("EURUSD"), 50, 10050)
	suite.Equal(1, suite.tracker.TradesToday())

	// Cross the UTC date boundary.
	suite.clock = suite.clock.Add(24 * time.Hour)

	suite.Zero(suite.tracker.TradesToday())

	stats := suite.tracker.CurrentStats()
	suite.Equal("2024-03-02", stats.Daily.Date)
	suite.Zero(stats.Daily.TradesToday)
	// Cumulative survives the boundary.
	suite.Equal(1, stats.Cumulative.TradesToday)

	summarized := false

	for len(suite.events) > 0 {
		if event := <-suite.events; event.Type == types.EventTypeDailySummary {
			summarized = true

			suite.Equal("2024-03-01", event.Details["date"])
		}
	}

	suite.True(summarized, "expected a daily summary event")
}

func (suite *TrackerTestSuite) TestSubmissionReservationEnforcesCap() {
	cfg := config.RiskConfig{DrawdownHaltPct: 5, WinRateWindow: 5, MaxDailyTrades: 2}
	tracker := NewTracker(cfg, suite.stop, eventbus.NopPublisher{}, nil, "", logger.NewNopLogger())
	tracker.SetClock(func() time.Time { return suite.clock })

	suite.True(tracker.TryReserveSubmission())
	suite.True(tracker.TryReserveSubmission())
	suite.False(tracker.TryReserveSubmission())

	// Handing a slot back makes room for exactly one more claim.
	tracker.ReleaseSubmission()
	suite.True(tracker.TryReserveSubmission())
	suite.False(tracker.TryReserveSubmission())
}

func (suite *TrackerTestSuite) TestSubmittedCountSurvivesRestart() {
	path := filepath.Join(suite.T().TempDir(), "performance.yaml")

	// Both trackers run on the wall clock so the restore sees the same
	// UTC day the snapshot was written on.
	cfg := config.RiskConfig{DrawdownHaltPct: 5, WinRateWindow: 5, MaxDailyTrades: 5}
	tracker := NewTracker(cfg, suite.stop, eventbus.NopPublisher{}, nil, path, logger.NewNopLogger())

	for i := 0; i < 5; i++ {
		suite.True(tracker.TryReserveSubmission())
	}

	tracker.OnOrderClosed(suite.order("EURUSD"), 25, 10025)

	restarted := NewTracker(cfg, suite.stop, eventbus.NopPublisher{}, nil, path, logger.NewNopLogger())

	// The same-day restart keeps the cap state: open and rejected
	// submissions count, not just the one closed trade.
	suite.Equal(5, restarted.TradesToday())
	suite.False(restarted.TryReserveSubmission())
}

func (suite *TrackerTestSuite) TestSnapshotPersistenceRoundTrip() {
	path := filepath.Join(suite.T().TempDir(), "performance.yaml")

	cfg := config.RiskConfig{DrawdownHaltPct: 5, WinRateWindow: 5, MaxDailyTrades: 20}
	tracker := NewTracker(cfg, suite.stop, eventbus.NopPublisher{}, nil, path, logger.NewNopLogger())
	tracker.SetClock(func() time.Time { return suite.clock })

	tracker.OnOrderClosed(suite.order("EURUSD"), 75, 10075)
	tracker.OnOrderClosed(suite.order("EURUSD"), -25, 10050)

	restored := NewTracker(cfg, suite.stop, eventbus.NopPublisher{}, nil, path, logger.NewNopLogger())
	restored.SetClock(func() time.Time { return suite.clock })

	stats := restored.CurrentStats()
	suite.Equal(2, stats.Cumulative.TradesToday)
	suite.InDelta(50, stats.Cumulative.RealizedPnL, 1e-9)
	suite.InDelta(10075, stats.Cumulative.EquityHighWatermark, 1e-9)
}

func (suite *TrackerTestSuite) TestIncompatibleSnapshotIgnored() {
	previous := version.Version
	version.Version = "1.0.0"
	defer func() { version.Version = previous }()

	path := filepath.Join(suite.T().TempDir(), "performance.yaml")
	suite.Require().NoError(types.WritePerformanceSnapshot(path, types.PerformanceSnapshot{
		SchemaVersion: "2.0.0",
		SessionStart:  suite.clock,
		Cumulative:    types.PerformanceStats{TradesToday: 9, RealizedPnL: 999},
	}))

	cfg := config.RiskConfig{DrawdownHaltPct: 5, WinRateWindow: 5, MaxDailyTrades: 20}
	tracker := NewTracker(cfg, suite.stop, eventbus.NopPublisher{}, nil, path, logger.NewNopLogger())

	stats := tracker.CurrentStats()
	suite.Zero(stats.Cumulative.TradesToday)
	suite.Zero(stats.Cumulative.RealizedPnL)
}
