package indicator

import (
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// SMA represents the simple moving average indicator.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) Indicator {
	return &SMA{period: period}
}

// Name returns the name of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// MinPeriod returns the minimum window length.
func (s *SMA) MinPeriod() int {
	return s.period
}

// Compute calculates the SMA of the last period closes.
func (s *SMA) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	if len(candles) < s.period {
		return nil, notReady(s.period, candles, s.Name())
	}

	window := closes(candles[len(candles)-s.period:])

	return map[types.IndicatorType]float64{
		types.IndicatorTypeSMA: mean(window),
	}, nil
}

// WMA represents the linearly weighted moving average indicator. The most
// recent close carries weight period, the oldest weight 1.
type WMA struct {
	period int
}

// NewWMA creates a new WMA indicator with the given period.
func NewWMA(period int) Indicator {
	return &WMA{period: period}
}

// Name returns the name of the indicator.
func (w *WMA) Name() types.IndicatorType {
	return types.IndicatorTypeWMA
}

// MinPeriod returns the minimum window length.
func (w *WMA) MinPeriod() int {
	return w.period
}

// Compute calculates the WMA of the last period closes.
func (w *WMA) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	if len(candles) < w.period {
		return nil, notReady(w.period, candles, w.Name())
	}

	window := closes(candles[len(candles)-w.period:])

	weightedSum := 0.0
	weightTotal := 0.0

	for i, v := range window {
		weight := float64(i + 1)
		weightedSum += v * weight
		weightTotal += weight
	}

	return map[types.IndicatorType]float64{
		types.IndicatorTypeWMA: weightedSum / weightTotal,
	}, nil
}
