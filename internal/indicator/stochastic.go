package indicator

import (
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// Stochastic represents the stochastic oscillator: %K measures the close
// relative to the high-low range, %D is the SMA of %K.
type Stochastic struct {
	kPeriod int
	dPeriod int
}

// NewStochastic creates a new stochastic oscillator indicator.
func NewStochastic(kPeriod, dPeriod int) Indicator {
	return &Stochastic{
		kPeriod: kPeriod,
		dPeriod: dPeriod,
	}
}

// Name returns the name of the indicator.
func (s *Stochastic) Name() types.IndicatorType {
	return types.IndicatorTypeStochasticK
}

// MinPeriod returns the minimum window length needed for a full %D.
func (s *Stochastic) MinPeriod() int {
	return s.kPeriod + s.dPeriod - 1
}

// Compute calculates %K and %D over the window.
func (s *Stochastic) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	required := s.MinPeriod()
	if len(candles) < required {
		return nil, notReady(required, candles, s.Name())
	}

	// %K for each of the last dPeriod candles.
	kValues := make([]float64, 0, s.dPeriod)

	for i := len(candles) - s.dPeriod; i < len(candles); i++ {
		window := candles[i-s.kPeriod+1 : i+1]

		highest := highestHigh(window)
		lowest := lowestLow(window)

		k := 50.0 // flat market convention when the range is zero
		if highest > lowest {
			k = 100 * (candles[i].Close - lowest) / (highest - lowest)
		}

		kValues = append(kValues, k)
	}

	return map[types.IndicatorType]float64{
		types.IndicatorTypeStochasticK: kValues[len(kValues)-1],
		types.IndicatorTypeStochasticD: mean(kValues),
	}, nil
}
