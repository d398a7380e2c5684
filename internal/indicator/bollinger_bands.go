package indicator

import (
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// BollingerBands represents the Bollinger Bands indicator: an SMA middle
// band with upper/lower bands offset by a standard-deviation multiple.
type BollingerBands struct {
	period     int
	stdDevMult float64
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, stdDevMult float64) Indicator {
	return &BollingerBands{
		period:     period,
		stdDevMult: stdDevMult,
	}
}

// Name returns the name of the indicator.
func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerMid
}

// MinPeriod returns the minimum window length.
func (b *BollingerBands) MinPeriod() int {
	return b.period
}

// Compute calculates the three bands over the last period closes.
func (b *BollingerBands) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	if len(candles) < b.period {
		return nil, notReady(b.period, candles, b.Name())
	}

	window := closes(candles[len(candles)-b.period:])

	middle := mean(window)
	deviation := stdDev(window) * b.stdDevMult

	return map[types.IndicatorType]float64{
		types.IndicatorTypeBollingerUp:  middle + deviation,
		types.IndicatorTypeBollingerMid: middle,
		types.IndicatorTypeBollingerLow: middle - deviation,
	}, nil
}
