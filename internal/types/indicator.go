package types

import "time"

// IndicatorType identifies a technical indicator.
type IndicatorType string

const (
	IndicatorTypeSMA           IndicatorType = "sma"
	IndicatorTypeEMAFast       IndicatorType = "ema_fast"
	IndicatorTypeEMASlow       IndicatorType = "ema_slow"
	IndicatorTypeWMA           IndicatorType = "wma"
	IndicatorTypeRSI           IndicatorType = "rsi"
	IndicatorTypeMACD          IndicatorType = "macd"
	IndicatorTypeMACDSignal    IndicatorType = "macd_signal"
	IndicatorTypeMACDHistogram IndicatorType = "macd_histogram"
	IndicatorTypeBollingerUp   IndicatorType = "bollinger_upper"
	IndicatorTypeBollingerMid  IndicatorType = "bollinger_middle"
	IndicatorTypeBollingerLow  IndicatorType = "bollinger_lower"
	IndicatorTypeATR           IndicatorType = "atr"
	IndicatorTypeStochasticK   IndicatorType = "stochastic_k"
	IndicatorTypeStochasticD   IndicatorType = "stochastic_d"
	IndicatorTypeWilliamsR     IndicatorType = "williams_r"
	IndicatorTypeCCI           IndicatorType = "cci"
)

// IndicatorSnapshot holds the indicator values computed for one
// (symbol, timeframe) pair as of a closed candle. A snapshot is never
// mutated in place; the engine replaces it atomically on each close.
// Indicators that are not ready (insufficient candles) are absent from
// Values, so consumers must use Value and treat a miss as a
// non-confirmation, never as a zero reading.
type IndicatorSnapshot struct {
	Symbol    string                    `yaml:"symbol" json:"symbol"`
	Timeframe Timeframe                 `yaml:"timeframe" json:"timeframe"`
	AsOf      time.Time                 `yaml:"as_of" json:"as_of"`
	Values    map[IndicatorType]float64 `yaml:"values" json:"values"`
}

// Value returns the value of an indicator and whether it was ready.
func (s IndicatorSnapshot) Value(indicator IndicatorType) (float64, bool) {
	v, ok := s.Values[indicator]

	return v, ok
}

// Ready reports whether all the given indicators have values.
func (s IndicatorSnapshot) Ready(indicators ...IndicatorType) bool {
	for _, ind := range indicators {
		if _, ok := s.Values[ind]; !ok {
			return false
		}
	}

	return true
}

// SnapshotSet is the collection of latest snapshots across the configured
// timeframe hierarchy for one symbol, keyed by timeframe.
type SnapshotSet struct {
	Symbol    string
	AsOf      time.Time
	Snapshots map[Timeframe]IndicatorSnapshot
}

// Get returns the snapshot for a timeframe and whether it exists.
func (s SnapshotSet) Get(tf Timeframe) (IndicatorSnapshot, bool) {
	snap, ok := s.Snapshots[tf]

	return snap, ok
}
