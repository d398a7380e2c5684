package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with the standard 12/26/9 setup.
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) Indicator {
	return &MACD{
		fastPeriod:   fastPeriod,
		slowPeriod:   slowPeriod,
		signalPeriod: signalPeriod,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// MinPeriod returns the minimum window length: the slow EMA must exist
// long enough to seed the signal EMA.
func (m *MACD) MinPeriod() int {
	return m.slowPeriod + m.signalPeriod - 1
}

// Compute calculates MACD line, signal line, and histogram.
func (m *MACD) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	required := m.MinPeriod()
	if len(candles) < required {
		return nil, notReady(required, candles, m.Name())
	}

	prices := closes(candles)

	fast := emaSeries(prices, m.fastPeriod)
	slow := emaSeries(prices, m.slowPeriod)

	// MACD line exists from the first index where both EMAs are defined.
	macdLine := make([]float64, 0, len(prices)-m.slowPeriod+1)
	for i := m.slowPeriod - 1; i < len(prices); i++ {
		macdLine = append(macdLine, fast[i]-slow[i])
	}

	signalSeries := emaSeries(macdLine, m.signalPeriod)

	macdValue := macdLine[len(macdLine)-1]
	signalValue := signalSeries[len(signalSeries)-1]

	if math.IsNaN(signalValue) {
		return nil, notReady(required, candles, m.Name())
	}

	return map[types.IndicatorType]float64{
		types.IndicatorTypeMACD:          macdValue,
		types.IndicatorTypeMACDSignal:    signalValue,
		types.IndicatorTypeMACDHistogram: macdValue - signalValue,
	}, nil
}
