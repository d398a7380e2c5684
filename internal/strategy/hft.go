package strategy

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// HFT is the fast momentum strategy: it follows the EMA cross direction,
// filtered by RSI to avoid chasing exhausted moves, and takes MACD
// histogram agreement as extra conviction.
type HFT struct {
	rsiOverbought float64
	rsiOversold   float64
}

// NewHFT creates the momentum strategy with default thresholds.
func NewHFT() Strategy {
	return &HFT{
		rsiOverbought: 70,
		rsiOversold:   30,
	}
}

// Name returns the strategy's configuration name.
func (h *HFT) Name() string {
	return NameHFT
}

// Evaluate votes with the EMA cross while RSI leaves room to run.
func (h *HFT) Evaluate(ctx Context) types.Vote {
	tf := ctx.Snapshot.Timeframe

	emaFast, fastOK := ctx.Snapshot.Value(types.IndicatorTypeEMAFast)
	emaSlow, slowOK := ctx.Snapshot.Value(types.IndicatorTypeEMASlow)
	rsi, rsiOK := ctx.Snapshot.Value(types.IndicatorTypeRSI)

	if !fastOK || !slowOK || !rsiOK {
		return abstain(h.Name(), tf, "ema/rsi not ready")
	}

	spread := emaFast - emaSlow
	if spread == 0 {
		return abstain(h.Name(), tf, "ema legs flat")
	}

	direction := types.DirectionLong
	if spread < 0 {
		direction = types.DirectionShort
	}

	// An exhausted RSI in the trade direction is a skip, not a reversal.
	if direction == types.DirectionLong && rsi >= h.rsiOverbought {
		return abstain(h.Name(), tf, fmt.Sprintf("rsi overbought (%.1f)", rsi))
	}

	if direction == types.DirectionShort && rsi <= h.rsiOversold {
		return abstain(h.Name(), tf, fmt.Sprintf("rsi oversold (%.1f)", rsi))
	}

	confidence := 0.5

	// Normalize the spread against the slow leg for scale independence.
	if emaSlow != 0 {
		confidence = math.Min(1.0, 0.5+math.Abs(spread/emaSlow)*100)
	}

	if histogram, ok := ctx.Snapshot.Value(types.IndicatorTypeMACDHistogram); ok {
		agrees := (direction == types.DirectionLong && histogram > 0) ||
			(direction == types.DirectionShort && histogram < 0)
		if !agrees {
			confidence *= 0.6
		}
	}

	return types.Vote{
		Strategy:   h.Name(),
		Timeframe:  tf,
		Direction:  direction,
		Confidence: confidence,
		Reason:     fmt.Sprintf("ema spread %.6f, rsi %.1f", spread, rsi),
	}
}
