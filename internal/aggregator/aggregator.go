// Package aggregator turns per-timeframe strategy votes into confirmed
// trade signals. A signal is only emitted when enough timeframes agree
// on the same direction inside the trading session, outside the
// per-symbol cooldown, and without flip-flopping against the previous
// emission.
package aggregator

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/strategy"
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// emission records the last signal per symbol for cooldown and
// flip-flop enforcement.
type emission struct {
	direction types.Direction
	at        time.Time
}

// Aggregator collects votes from the enabled strategies across all
// timeframes of a snapshot set and decides whether they amount to a
// tradeable signal. Safe for concurrent use across symbols.
type Aggregator struct {
	strategies []strategy.Strategy
	config     config.AggregatorConfig
	logger     *logger.Logger

	mu   sync.Mutex
	last map[string]emission
}

// NewAggregator creates an aggregator over the given strategies.
func NewAggregator(strategies []strategy.Strategy, cfg config.AggregatorConfig, log *logger.Logger) *Aggregator {
	return &Aggregator{
		strategies: strategies,
		config:     cfg,
		logger:     log,
		last:       make(map[string]emission),
	}
}

// OnSnapshotUpdate evaluates every strategy on every timeframe of the
// snapshot set and returns a confirmed signal when the votes clear all
// gates. When no signal is emitted the returned reason explains the
// rejection; an empty reason with emitted=false means there was simply
// nothing to act on.
func (a *Aggregator) OnSnapshotUpdate(set types.SnapshotSet, windows map[types.Timeframe][]types.Candle, now time.Time) (types.Signal, string, bool) {
	if !a.config.Session.Contains(now) {
		return types.Signal{}, "outside session window", false
	}

	a.mu.Lock()
	prev, hasPrev := a.last[set.Symbol]
	a.mu.Unlock()

	if hasPrev && now.Sub(prev.at) < a.config.Cooldown {
		return types.Signal{}, fmt.Sprintf("cooldown active for %s", set.Symbol), false
	}

	votes := a.collectVotes(set, windows)
	if len(votes) == 0 {
		return types.Signal{}, "", false
	}

	direction, agreed := a.resolveDirection(votes)
	if !agreed {
		// Opposing strategies cancel out. Doing nothing is the
		// cheapest trade there is.
		return types.Signal{}, "strategies disagree, abstaining", false
	}

	if direction == types.DirectionNone {
		return types.Signal{}, "", false
	}

	confirmations, strength, topStrategy := a.confirmations(votes, direction)
	if len(confirmations) < a.config.ConfirmationThreshold {
		return types.Signal{}, fmt.Sprintf("%d of %d required confirmations", len(confirmations), a.config.ConfirmationThreshold), false
	}

	if hasPrev && direction == prev.direction.Opposite() && now.Sub(prev.at) < a.config.FlipFlopGuard {
		return types.Signal{}, "flip-flop guard active", false
	}

	a.mu.Lock()
	a.last[set.Symbol] = emission{direction: direction, at: now}
	a.mu.Unlock()

	signal := types.Signal{
		Symbol:        set.Symbol,
		Direction:     direction,
		Strength:      strength,
		Confirmations: confirmations,
		Strategy:      topStrategy,
		GeneratedAt:   now,
	}

	a.logger.Info("signal confirmed",
		zap.String("symbol", signal.Symbol),
		zap.String("direction", string(signal.Direction)),
		zap.Float64("strength", signal.Strength),
		zap.Int("confirmations", len(signal.Confirmations)),
		zap.String("strategy", signal.Strategy),
	)

	return signal, "", true
}

// Reset clears the per-symbol emission history, typically at the daily
// boundary so yesterday's signals do not gate today's.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.last = make(map[string]emission)
}

// collectVotes runs every strategy against every available timeframe
// snapshot, dropping abstentions.
func (a *Aggregator) collectVotes(set types.SnapshotSet, windows map[types.Timeframe][]types.Candle) []types.Vote {
	var votes []types.Vote

	for tf, snapshot := range set.Snapshots {
		ctx := strategy.Context{
			Snapshot: snapshot,
			Window:   windows[tf],
		}

		for _, s := range a.strategies {
			vote := s.Evaluate(ctx)
			if vote.Direction == types.DirectionNone {
				continue
			}

			votes = append(votes, vote)
		}
	}

	return votes
}

// resolveDirection nets each strategy's votes and requires all
// opinionated strategies to agree. Any head-to-head disagreement
// between strategies resolves to no trade.
func (a *Aggregator) resolveDirection(votes []types.Vote) (types.Direction, bool) {
	net := make(map[string]int)

	for _, vote := range votes {
		switch vote.Direction {
		case types.DirectionLong:
			net[vote.Strategy]++
		case types.DirectionShort:
			net[vote.Strategy]--
		}
	}

	direction := types.DirectionNone

	for _, balance := range net {
		var side types.Direction

		switch {
		case balance > 0:
			side = types.DirectionLong
		case balance < 0:
			side = types.DirectionShort
		default:
			continue
		}

		if direction == types.DirectionNone {
			direction = side

			continue
		}

		if direction != side {
			return types.DirectionNone, false
		}
	}

	return direction, true
}

// confirmations returns the distinct timeframes agreeing with the
// candidate direction, the mean confidence across agreeing votes, and
// the strategy behind the single strongest vote.
func (a *Aggregator) confirmations(votes []types.Vote, direction types.Direction) ([]types.Timeframe, float64, string) {
	seen := make(map[types.Timeframe]bool)

	var (
		confirmations []types.Timeframe
		total         float64
		count         int
		topConfidence float64
		topStrategy   string
	)

	for _, vote := range votes {
		if vote.Direction != direction {
			continue
		}

		total += vote.Confidence
		count++

		if vote.Confidence > topConfidence {
			topConfidence = vote.Confidence
			topStrategy = vote.Strategy
		}

		if !seen[vote.Timeframe] {
			seen[vote.Timeframe] = true

			confirmations = append(confirmations, vote.Timeframe)
		}
	}

	strength := 0.0
	if count > 0 {
		strength = total / float64(count)
	}

	if strength > 1 {
		strength = 1
	}

	return confirmations, strength, topStrategy
}
