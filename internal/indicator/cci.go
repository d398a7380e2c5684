package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// CCI represents the Commodity Channel Index indicator.
type CCI struct {
	period int
}

// NewCCI creates a new CCI indicator with the given period.
func NewCCI(period int) Indicator {
	return &CCI{period: period}
}

// Name returns the name of the indicator.
func (c *CCI) Name() types.IndicatorType {
	return types.IndicatorTypeCCI
}

// MinPeriod returns the minimum window length.
func (c *CCI) MinPeriod() int {
	return c.period
}

// Compute calculates the CCI over the last period candles.
func (c *CCI) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	if len(candles) < c.period {
		return nil, notReady(c.period, candles, c.Name())
	}

	window := candles[len(candles)-c.period:]

	typical := make([]float64, len(window))
	for i, candle := range window {
		typical[i] = (candle.High + candle.Low + candle.Close) / 3
	}

	m := mean(typical)

	meanDeviation := 0.0
	for _, tp := range typical {
		meanDeviation += math.Abs(tp - m)
	}

	meanDeviation /= float64(len(typical))

	value := 0.0
	if meanDeviation > 0 {
		value = (typical[len(typical)-1] - m) / (0.015 * meanDeviation)
	}

	return map[types.IndicatorType]float64{
		types.IndicatorTypeCCI: value,
	}, nil
}
