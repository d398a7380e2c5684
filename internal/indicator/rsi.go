package indicator

import (
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// RSI represents the Relative Strength Index indicator using Wilder's
// smoothing method.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with the given period.
func NewRSI(period int) Indicator {
	return &RSI{period: period}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// MinPeriod returns the minimum window length. One extra candle is needed
// for the first price change.
func (r *RSI) MinPeriod() int {
	return r.period + 1
}

// Compute calculates the RSI over the window closes.
func (r *RSI) Compute(candles []types.Candle) (map[types.IndicatorType]float64, error) {
	if len(candles) < r.period+1 {
		return nil, notReady(r.period+1, candles, r.Name())
	}

	prices := closes(candles)

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)

	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	// First average over the initial period.
	avgGain := mean(gains[:r.period])
	avgLoss := mean(losses[:r.period])

	// Subsequent averages using Wilder's smoothing method.
	for i := r.period; i < len(gains); i++ {
		avgGain = (avgGain*float64(r.period-1) + gains[i]) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + losses[i]) / float64(r.period)
	}

	rsi := 100.0
	if avgLoss > 0 {
		rs := avgGain / avgLoss
		rsi = 100 - (100 / (1 + rs))
	}

	return map[types.IndicatorType]float64{
		types.IndicatorTypeRSI: rsi,
	}, nil
}
