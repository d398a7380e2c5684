// Package risk converts confirmed signals into sized, bounded order
// decisions. Every decision passes the exposure gates in a fixed order
// and the computed loss at the stop never exceeds the configured
// fraction of equity.
package risk

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// StatsProvider is the performance feedback the manager throttles on.
type StatsProvider interface {
	// TryReserveSubmission atomically claims one slot against the daily
	// trade cap, reporting false when the cap is reached. Claiming
	// inside the gate keeps concurrent evaluations from both passing on
	// the last slot.
	TryReserveSubmission() bool
	// ReleaseSubmission returns a claimed slot after a later gate
	// rejected the decision locally.
	ReleaseSubmission()
	// RollingWinRate returns the win rate over the rolling window and
	// the number of closed trades observed in it.
	RollingWinRate() (rate float64, samples int)
	// ConsecutiveLosses returns the current losing streak length.
	ConsecutiveLosses() int
	// CurrentDrawdownPct returns the live drawdown from the equity
	// high-watermark, in percent.
	CurrentDrawdownPct() float64
}

// PositionView exposes the open-position book the exposure gates read.
type PositionView interface {
	// OpenPositionCount returns the open positions for one symbol.
	OpenPositionCount(symbol string) int
	// AggregateExposureLots returns total open size across all symbols.
	AggregateExposureLots() float64
}

// MarketContext carries the per-evaluation market readings the sizing
// arithmetic needs.
type MarketContext struct {
	// Price is the current price used as the entry reference.
	Price float64
	// ATR is the current average true range in price units, or zero
	// when the indicator is not ready.
	ATR float64
}

// Manager sizes signals and enforces the risk gates.
type Manager struct {
	config        config.RiskConfig
	specs         func(symbol string) config.SymbolSpec
	stats         StatsProvider
	positions     PositionView
	emergencyStop *EmergencyStop
	logger        *logger.Logger
}

// NewManager creates a risk manager. The spec lookup, stats provider and
// position view are required collaborators.
func NewManager(cfg config.RiskConfig, specs func(symbol string) config.SymbolSpec, stats StatsProvider, positions PositionView, stop *EmergencyStop, log *logger.Logger) *Manager {
	return &Manager{
		config:        cfg,
		specs:         specs,
		stats:         stats,
		positions:     positions,
		emergencyStop: stop,
		logger:        log,
	}
}

// EmergencyStop returns the shared halt flag.
func (m *Manager) EmergencyStop() *EmergencyStop {
	return m.emergencyStop
}

// Evaluate turns a signal into a sized decision or a typed rejection.
// Gate order: emergency stop, sizing (zero size rejects), per-symbol
// position cap, daily trade cap, aggregate exposure, drawdown halt.
func (m *Manager) Evaluate(signal types.Signal, account types.AccountState, market MarketContext) (types.RiskDecision, error) {
	if m.emergencyStop.IsEngaged() {
		_, reason, _ := m.emergencyStop.Status()

		return types.RiskDecision{}, errors.Newf(errors.ErrCodeEmergencyStop, "emergency stop engaged: %s", reason)
	}

	if signal.Direction != types.DirectionLong && signal.Direction != types.DirectionShort {
		return types.RiskDecision{}, errors.Newf(errors.ErrCodeRiskRejected, "signal for %s has no direction", signal.Symbol)
	}

	if market.Price <= 0 {
		return types.RiskDecision{}, errors.Newf(errors.ErrCodeRiskRejected, "no price for %s", signal.Symbol)
	}

	spec := m.specs(signal.Symbol)
	stopPips := m.stopDistancePips(spec, market)
	effectiveRisk := m.effectiveRiskPercent()

	size, maxLoss := m.size(account.Equity, effectiveRisk, stopPips, spec)
	if size <= 0 {
		return types.RiskDecision{}, errors.Newf(errors.ErrCodeZeroPositionSize,
			"%s: %.2f%% of %.2f equity over %.1f pips rounds below the %.2f minimum lot",
			signal.Symbol, effectiveRisk*100, account.Equity, stopPips, spec.MinLot)
	}

	if open := m.positions.OpenPositionCount(signal.Symbol); open >= m.config.MaxConcurrentPositions {
		return types.RiskDecision{}, errors.Newf(errors.ErrCodeMaxPositionsReached,
			"%s already has %d of %d open positions", signal.Symbol, open, m.config.MaxConcurrentPositions)
	}

	// The cap slot is claimed here, not merely read, so two symbols
	// evaluating concurrently cannot both pass on the last slot.
	if !m.stats.TryReserveSubmission() {
		return types.RiskDecision{}, errors.Newf(errors.ErrCodeDailyCapReached,
			"daily cap of %d submissions reached", m.config.MaxDailyTrades)
	}

	if exposure := m.positions.AggregateExposureLots(); exposure+size > m.config.MaxExposureLots {
		m.stats.ReleaseSubmission()

		return types.RiskDecision{}, errors.Newf(errors.ErrCodeExposureExceeded,
			"aggregate exposure %.2f + %.2f lots exceeds cap %.2f", exposure, size, m.config.MaxExposureLots)
	}

	if drawdown := m.stats.CurrentDrawdownPct(); drawdown >= m.config.DrawdownHaltPct {
		m.stats.ReleaseSubmission()

		return types.RiskDecision{}, errors.Newf(errors.ErrCodeDrawdownHalt,
			"drawdown %.2f%% at or over halt threshold %.2f%%", drawdown, m.config.DrawdownHaltPct)
	}

	stopDistance := stopPips * spec.PipSize
	targetDistance := stopDistance * m.config.TakeProfitRatio

	decision := types.RiskDecision{
		Signal:        signal,
		Size:          size,
		EntryPrice:    market.Price,
		MaxLossAmount: maxLoss,
		RiskPercent:   effectiveRisk,
	}

	if signal.Direction == types.DirectionLong {
		decision.StopLoss = market.Price - stopDistance
		decision.TakeProfit = market.Price + targetDistance
	} else {
		decision.StopLoss = market.Price + stopDistance
		decision.TakeProfit = market.Price - targetDistance
	}

	m.logger.Info("risk decision",
		zap.String("symbol", signal.Symbol),
		zap.String("direction", string(signal.Direction)),
		zap.Float64("size", decision.Size),
		zap.Float64("stop_loss", decision.StopLoss),
		zap.Float64("take_profit", decision.TakeProfit),
		zap.Float64("max_loss", decision.MaxLossAmount),
		zap.Float64("risk_percent", effectiveRisk),
	)

	return decision, nil
}

// stopDistancePips derives the stop distance from the current ATR when
// one is available, otherwise the configured fixed distance.
func (m *Manager) stopDistancePips(spec config.SymbolSpec, market MarketContext) float64 {
	if market.ATR > 0 && spec.PipSize > 0 {
		return market.ATR / spec.PipSize * m.config.AtrStopMultiplier
	}

	return m.config.StopLossPips
}

// effectiveRiskPercent applies adaptive scaling from the rolling win
// rate and the current losing streak. Scaling only ever reduces risk;
// the configured percentage is the ceiling.
func (m *Manager) effectiveRiskPercent() float64 {
	scale := 1.0

	if rate, samples := m.stats.RollingWinRate(); samples >= m.config.WinRateWindow && rate < m.config.WinRateFloor {
		if m.config.WinRateFloor > 0 {
			scale = rate / m.config.WinRateFloor
		}
	}

	if m.stats.ConsecutiveLosses() >= m.config.ConsecutiveLossLimit {
		scale *= m.config.ConsecutiveLossScale
	}

	if scale < m.config.MinRiskScale {
		scale = m.config.MinRiskScale
	}

	if scale > 1 {
		scale = 1
	}

	return m.config.RiskPercent * scale
}

// size computes lots from the risk budget and floors the result to the
// broker lot step with decimal arithmetic, so binary float noise never
// rounds a boundary size the wrong way. Returns zero when the floored
// size falls under the minimum lot.
func (m *Manager) size(equity, riskPercent, stopPips float64, spec config.SymbolSpec) (lots, maxLoss float64) {
	if stopPips <= 0 || spec.PipValue <= 0 || spec.LotStep <= 0 || equity <= 0 {
		return 0, 0
	}

	budget := decimal.NewFromFloat(equity).Mul(decimal.NewFromFloat(riskPercent))
	perLot := decimal.NewFromFloat(stopPips).Mul(decimal.NewFromFloat(spec.PipValue))
	step := decimal.NewFromFloat(spec.LotStep)

	raw := budget.Div(perLot)
	floored := raw.Div(step).Floor().Mul(step)

	if floored.LessThan(decimal.NewFromFloat(spec.MinLot)) {
		return 0, 0
	}

	if maxLot := decimal.NewFromFloat(spec.MaxLot); floored.GreaterThan(maxLot) {
		floored = maxLot
	}

	loss := floored.Mul(perLot)

	lots, _ = floored.Float64()
	maxLoss, _ = loss.Float64()

	return lots, maxLoss
}
