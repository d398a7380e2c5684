package indicator

import (
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// WilliamsR represents the Williams %R oscillator, the inverse of the fast
// stochastic scaled to [-100, 0].
type WilliamsR struct {
	period int
}

// NewWilliamsR creates a new Williams %R indicator with the given period.
func NewWilliamsR(period int) Indicator {
	return &WilliamsR{period: period}
}

// Name returns the name of the indicator.
func (w *WilliamsR) Name() types.IndicatorType {
	return types.IndicatorTypeWilliamsR
}

// MinPeriod returns the minimum window length.
func (w *WilliamsR) MinPeriod() int {
	return w.period
}

// Compute calculates Williams %R over the last period candles.
func (w *WilliamsR) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	if len(candles) < w.period {
		return nil, notReady(w.period, candles, w.Name())
	}

	window := candles[len(candles)-w.period:]

	highest := highestHigh(window)
	lowest := lowestLow(window)

	value := -50.0
	if highest > lowest {
		value = -100 * (highest - window[len(window)-1].Close) / (highest - lowest)
	}

	return map[types.IndicatorType]float64{
		types.IndicatorTypeWilliamsR: value,
	}, nil
}
