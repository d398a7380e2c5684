package types

import "time"

// Direction is the side of a candidate trade.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionNone  Direction = "NONE"
)

// Opposite returns the opposing trade direction. DirectionNone maps to itself.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionLong:
		return DirectionShort
	case DirectionShort:
		return DirectionLong
	default:
		return DirectionNone
	}
}

// Vote is a single strategy's opinion for one timeframe.
type Vote struct {
	// Strategy is the name of the strategy that produced the vote.
	Strategy string
	// Timeframe the vote was evaluated on.
	Timeframe Timeframe
	// Direction is the voted trade side, or DirectionNone for no opinion.
	// A not-ready indicator always yields DirectionNone, never a counter-vote.
	Direction Direction
	// Confidence is the vote weight in [0, 1].
	Confidence float64
	// Reason is a human-readable explanation of the vote.
	Reason string
}

// Signal is a confirmed trade candidate emitted by the aggregator.
// It is consumed exactly once by the risk manager or discarded.
type Signal struct {
	// Symbol is the traded instrument.
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	// Direction is the confirmed trade side.
	Direction Direction `yaml:"direction" json:"direction" validate:"required,oneof=LONG SHORT"`
	// Strength is the aggregate confidence score across confirmations.
	Strength float64 `yaml:"strength" json:"strength" validate:"gte=0,lte=1"`
	// Confirmations is the set of timeframes that agreed on Direction.
	Confirmations []Timeframe `yaml:"confirmations" json:"confirmations" validate:"required,min=1"`
	// Strategy is the name of the highest-confidence contributing strategy.
	Strategy string `yaml:"strategy" json:"strategy" validate:"required"`
	// GeneratedAt is the time the signal was emitted.
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at" validate:"required"`
}

// HasConfirmation reports whether the given timeframe contributed to the signal.
func (s Signal) HasConfirmation(tf Timeframe) bool {
	for _, c := range s.Confirmations {
		if c == tf {
			return true
		}
	}

	return false
}
