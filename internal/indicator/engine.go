package indicator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

type windowKey struct {
	symbol    string
	timeframe types.Timeframe
}

// Engine maintains bounded rolling candle windows per (symbol, timeframe)
// and recomputes indicator snapshots on each closed candle. Snapshots are
// replaced atomically and never mutated in place.
type Engine struct {
	registry   Registry
	windowSize int
	log        *logger.Logger

	mu        sync.RWMutex
	windows   map[windowKey][]types.Candle
	snapshots map[windowKey]types.IndicatorSnapshot
}

// NewEngine creates a new indicator engine. windowSize bounds every rolling
// window; candles beyond it are dropped oldest first.
func NewEngine(registry Registry, windowSize int, log *logger.Logger) *Engine {
	return &Engine{
		registry:   registry,
		windowSize: windowSize,
		log:        log,
		mu:         sync.RWMutex{},
		windows:    make(map[windowKey][]types.Candle),
		snapshots:  make(map[windowKey]types.IndicatorSnapshot),
	}
}

// OnCandleClose appends a closed candle to its window and recomputes the
// snapshot for that (symbol, timeframe). Candles at or before the last seen
// open time are rejected as stale; closed candles are immutable and windows
// only move forward.
func (e *Engine) OnCandleClose(candle types.Candle) (types.IndicatorSnapshot, error) {
	if !candle.Timeframe.IsValid() {
		return types.IndicatorSnapshot{}, errors.Newf(errors.ErrCodeUnknownTimeframe,
			"unknown timeframe %q for symbol %s", candle.Timeframe, candle.Symbol)
	}

	key := windowKey{symbol: candle.Symbol, timeframe: candle.Timeframe}

	e.mu.Lock()
	defer e.mu.Unlock()

	window := e.windows[key]
	if n := len(window); n > 0 && !candle.OpenTime.After(window[n-1].OpenTime) {
		return types.IndicatorSnapshot{}, errors.Newf(errors.ErrCodeStaleSnapshot,
			"stale candle for %s %s: open %s not after last %s",
			candle.Symbol, candle.Timeframe, candle.OpenTime, window[n-1].OpenTime)
	}

	window = append(window, candle)
	if len(window) > e.windowSize {
		window = window[len(window)-e.windowSize:]
	}

	e.windows[key] = window

	snapshot := types.IndicatorSnapshot{
		Symbol:    candle.Symbol,
		Timeframe: candle.Timeframe,
		AsOf:      candle.CloseTime(),
		Values:    make(map[types.IndicatorType]float64),
	}

	for _, ind := range e.registry.List() {
		values, err := ind.Compute(window)
		if err != nil {
			if errors.IsInsufficientDataError(err) {
				// Not ready yet: absent from the snapshot, never zero.
				continue
			}

			e.log.Warn("indicator computation failed",
				zap.String("symbol", candle.Symbol),
				zap.String("timeframe", string(candle.Timeframe)),
				zap.String("indicator", string(ind.Name())),
				zap.Error(err),
			)

			continue
		}

		for name, value := range values {
			snapshot.Values[name] = value
		}
	}

	e.snapshots[key] = snapshot

	return snapshot, nil
}

// Snapshot returns the latest snapshot for a (symbol, timeframe) pair.
func (e *Engine) Snapshot(symbol string, tf types.Timeframe) (types.IndicatorSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot, ok := e.snapshots[windowKey{symbol: symbol, timeframe: tf}]

	return snapshot, ok
}

// SnapshotSet collects the latest snapshots for a symbol across the given
// timeframes. Timeframes without a snapshot yet are absent from the set.
func (e *Engine) SnapshotSet(symbol string, timeframes []types.Timeframe) types.SnapshotSet {
	e.mu.RLock()
	defer e.mu.RUnlock()

	set := types.SnapshotSet{
		Symbol:    symbol,
		Snapshots: make(map[types.Timeframe]types.IndicatorSnapshot, len(timeframes)),
	}

	for _, tf := range timeframes {
		if snapshot, ok := e.snapshots[windowKey{symbol: symbol, timeframe: tf}]; ok {
			set.Snapshots[tf] = snapshot

			if snapshot.AsOf.After(set.AsOf) {
				set.AsOf = snapshot.AsOf
			}
		}
	}

	return set
}

// Window returns a copy of the current candle window for inspection by
// pattern strategies. The copy keeps callers from aliasing engine state.
func (e *Engine) Window(symbol string, tf types.Timeframe) []types.Candle {
	e.mu.RLock()
	defer e.mu.RUnlock()

	window := e.windows[windowKey{symbol: symbol, timeframe: tf}]

	out := make([]types.Candle, len(window))
	copy(out, window)

	return out
}
