package indicator

import (
	"time"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

var testStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// candlesFromCloses builds a flat-bodied candle series from close prices,
// one minute apart, oldest first.
func candlesFromCloses(symbol string, prices ...float64) []types.Candle {
	candles := make([]types.Candle, len(prices))

	for i, price := range prices {
		open := price
		if i > 0 {
			open = prices[i-1]
		}

		high := open
		low := open

		if price > high {
			high = price
		}

		if price < low {
			low = price
		}

		candles[i] = types.Candle{
			Symbol:    symbol,
			Timeframe: types.TimeframeM1,
			OpenTime:  testStart.Add(time.Duration(i) * time.Minute),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    100,
		}
	}

	return candles
}

// candle builds a single fully specified candle.
func candle(symbol string, i int, open, high, low, closePrice float64) types.Candle {
	return types.Candle{
		Symbol:    symbol,
		Timeframe: types.TimeframeM1,
		OpenTime:  testStart.Add(time.Duration(i) * time.Minute),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    100,
	}
}
