package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// closes extracts the close prices of a candle window, oldest first.
func closes(candles []types.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}

	return out
}

// mean returns the arithmetic mean of values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// stdDev returns the population standard deviation of values.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	m := mean(values)
	sumSq := 0.0

	for _, v := range values {
		d := v - m
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(len(values)))
}

// emaSeries computes the exponential moving average over values using the
// standard smoothing constant 2/(period+1), seeded with the SMA of the
// first period values. The returned series is aligned to values, with the
// first period-1 entries equal to NaN (no EMA defined there).
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}

	if period <= 0 || len(values) < period {
		return out
	}

	// Seed with the SMA of the first period values.
	out[period-1] = mean(values[:period])

	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1.0-k)
	}

	return out
}

// trueRange computes the true range of candle i against its predecessor.
// For i == 0 the high-low range is used.
func trueRange(candles []types.Candle, i int) float64 {
	if i == 0 {
		return candles[0].High - candles[0].Low
	}

	prevClose := candles[i-1].Close

	return math.Max(
		candles[i].High-candles[i].Low,
		math.Max(
			math.Abs(candles[i].High-prevClose),
			math.Abs(candles[i].Low-prevClose),
		),
	)
}

// highestHigh returns the maximum high over the window slice.
func highestHigh(candles []types.Candle) float64 {
	highest := math.Inf(-1)
	for _, c := range candles {
		if c.High > highest {
			highest = c.High
		}
	}

	return highest
}

// lowestLow returns the minimum low over the window slice.
func lowestLow(candles []types.Candle) float64 {
	lowest := math.Inf(1)
	for _, c := range candles {
		if c.Low < lowest {
			lowest = c.Low
		}
	}

	return lowest
}
