package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// Scalping is the mean-reversion strategy: it fades pushes outside the
// Bollinger Bands when the stochastic oscillator confirms the extreme.
type Scalping struct {
	stochOversold   float64
	stochOverbought float64
}

// NewScalping creates the mean-reversion strategy with default thresholds.
func NewScalping() Strategy {
	return &Scalping{
		stochOversold:   20,
		stochOverbought: 80,
	}
}

// Name returns the strategy's configuration name.
func (s *Scalping) Name() string {
	return NameScalping
}

// Evaluate votes against band breaches confirmed by the stochastic.
func (s *Scalping) Evaluate(ctx Context) types.Vote {
	tf := ctx.Snapshot.Timeframe

	upper, upperOK := ctx.Snapshot.Value(types.IndicatorTypeBollingerUp)
	lower, lowerOK := ctx.Snapshot.Value(types.IndicatorTypeBollingerLow)
	stochK, stochOK := ctx.Snapshot.Value(types.IndicatorTypeStochasticK)

	if !upperOK || !lowerOK || !stochOK || len(ctx.Window) == 0 {
		return abstain(s.Name(), tf, "bands/stochastic not ready")
	}

	lastClose := ctx.Window[len(ctx.Window)-1].Close

	switch {
	case lastClose <= lower && stochK <= s.stochOversold:
		confidence := 0.6 + 0.4*(s.stochOversold-stochK)/s.stochOversold

		return types.Vote{
			Strategy:   s.Name(),
			Timeframe:  tf,
			Direction:  types.DirectionLong,
			Confidence: confidence,
			Reason:     fmt.Sprintf("close %.5f under lower band %.5f, stoch %.1f", lastClose, lower, stochK),
		}
	case lastClose >= upper && stochK >= s.stochOverbought:
		confidence := 0.6 + 0.4*(stochK-s.stochOverbought)/(100-s.stochOverbought)

		return types.Vote{
			Strategy:   s.Name(),
			Timeframe:  tf,
			Direction:  types.DirectionShort,
			Confidence: confidence,
			Reason:     fmt.Sprintf("close %.5f over upper band %.5f, stoch %.1f", lastClose, upper, stochK),
		}
	default:
		return abstain(s.Name(), tf, "price inside bands")
	}
}
