package indicator

import (
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// Indicator defines methods that any technical indicator must implement.
// Compute receives the rolling candle window for one (symbol, timeframe),
// oldest candle first, containing only data up to and including the closed
// candle. Implementations must not look ahead.
type Indicator interface {
	// Name returns the primary indicator type this indicator produces.
	Name() types.IndicatorType
	// MinPeriod returns the minimum number of candles required before the
	// indicator is ready.
	MinPeriod() int
	// Compute calculates the indicator values from the window. Multi-output
	// indicators (MACD, Bollinger Bands, stochastic) return several keys.
	// Returns an InsufficientDataError when the window is shorter than
	// MinPeriod; callers report the indicator as not ready rather than zero.
	Compute(candles []types.Candle) (map[types.IndicatorType]float64, error)
}

// notReady builds the standard not-ready error for an indicator window.
func notReady(required int, candles []types.Candle, name types.IndicatorType) error {
	symbol := ""
	if len(candles) > 0 {
		symbol = candles[0].Symbol
	}

	return errors.NewInsufficientDataErrorf(required, len(candles), symbol,
		"%s requires %d candles, have %d", name, required, len(candles))
}
