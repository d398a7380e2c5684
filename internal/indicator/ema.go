package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// EMA represents a fast/slow exponential moving average pair. Both averages
// use the standard smoothing constant 2/(period+1) seeded with the SMA of
// the first period closes.
type EMA struct {
	fastPeriod int
	slowPeriod int
}

// NewEMA creates a new EMA pair indicator.
func NewEMA(fastPeriod, slowPeriod int) Indicator {
	return &EMA{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMAFast
}

// MinPeriod returns the minimum window length; the slow leg dominates.
func (e *EMA) MinPeriod() int {
	return e.slowPeriod
}

// Compute calculates both EMA legs over the window closes.
func (e *EMA) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	if len(candles) < e.slowPeriod {
		return nil, notReady(e.slowPeriod, candles, e.Name())
	}

	prices := closes(candles)

	fast := emaSeries(prices, e.fastPeriod)
	slow := emaSeries(prices, e.slowPeriod)

	fastValue := fast[len(fast)-1]
	slowValue := slow[len(slow)-1]

	if math.IsNaN(fastValue) || math.IsNaN(slowValue) {
		return nil, notReady(e.slowPeriod, candles, e.Name())
	}

	return map[types.IndicatorType]float64{
		types.IndicatorTypeEMAFast: fastValue,
		types.IndicatorTypeEMASlow: slowValue,
	}, nil
}
