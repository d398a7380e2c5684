package indicator

import (
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// ATR represents the Average True Range indicator using Wilder's smoothing.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with the given period.
func NewATR(period int) Indicator {
	return &ATR{period: period}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// MinPeriod returns the minimum window length. One extra candle is needed
// for the first true range against a previous close.
func (a *ATR) MinPeriod() int {
	return a.period + 1
}

// Compute calculates the ATR over the window.
func (a *ATR) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	if len(candles) < a.period+1 {
		return nil, notReady(a.period+1, candles, a.Name())
	}

	ranges := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		ranges = append(ranges, trueRange(candles, i))
	}

	// Seed with the mean of the first period true ranges, then apply
	// Wilder's smoothing for the remainder.
	atr := mean(ranges[:a.period])
	for i := a.period; i < len(ranges); i++ {
		atr = (atr*float64(a.period-1) + ranges[i]) / float64(a.period)
	}

	return map[types.IndicatorType]float64{
		types.IndicatorTypeATR: atr,
	}, nil
}
