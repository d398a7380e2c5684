package types

import "time"

// Timeframe identifies a candle aggregation interval.
type Timeframe string

const (
	TimeframeM1  Timeframe = "M1"
	TimeframeM5  Timeframe = "M5"
	TimeframeM15 Timeframe = "M15"
	TimeframeM30 Timeframe = "M30"
	TimeframeH1  Timeframe = "H1"
	TimeframeH4  Timeframe = "H4"
	TimeframeD1  Timeframe = "D1"
)

var timeframeDurations = map[Timeframe]time.Duration{
	TimeframeM1:  time.Minute,
	TimeframeM5:  5 * time.Minute,
	TimeframeM15: 15 * time.Minute,
	TimeframeM30: 30 * time.Minute,
	TimeframeH1:  time.Hour,
	TimeframeH4:  4 * time.Hour,
	TimeframeD1:  24 * time.Hour,
}

// Duration returns the length of one candle at this timeframe.
// Returns 0 for unknown timeframes.
func (t Timeframe) Duration() time.Duration {
	return timeframeDurations[t]
}

// IsValid reports whether the timeframe is one of the supported intervals.
func (t Timeframe) IsValid() bool {
	_, ok := timeframeDurations[t]

	return ok
}

// Candle represents a single closed OHLCV candle. Candles are immutable
// once closed; the indicator engine appends them to bounded rolling windows.
type Candle struct {
	Symbol    string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Timeframe Timeframe `yaml:"timeframe" json:"timeframe" csv:"timeframe" validate:"required"`
	OpenTime  time.Time `yaml:"open_time" json:"open_time" csv:"open_time" validate:"required"`
	Open      float64   `yaml:"open" json:"open" csv:"open" validate:"gt=0"`
	High      float64   `yaml:"high" json:"high" csv:"high" validate:"gt=0"`
	Low       float64   `yaml:"low" json:"low" csv:"low" validate:"gt=0"`
	Close     float64   `yaml:"close" json:"close" csv:"close" validate:"gt=0"`
	Volume    float64   `yaml:"volume" json:"volume" csv:"volume" validate:"gte=0"`
}

// CloseTime returns the time at which the candle closed.
func (c Candle) CloseTime() time.Time {
	return c.OpenTime.Add(c.Timeframe.Duration())
}

// Range returns the high-low spread of the candle.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Body returns the absolute size of the candle body.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}

	return c.Open - c.Close
}

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish reports whether the candle closed below its open.
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}
