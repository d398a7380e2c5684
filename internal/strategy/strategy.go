// Package strategy defines the voting interface evaluated by the
// confirmation aggregator and the built-in strategy implementations.
// Any signal source, including an external ML model, plugs in by
// implementing Strategy; the aggregator treats all of them uniformly.
package strategy

import (
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// Context carries everything a strategy may inspect for one evaluation:
// the indicator snapshot for a (symbol, timeframe) and the recent candle
// window behind it, oldest first.
type Context struct {
	Snapshot types.IndicatorSnapshot
	Window   []types.Candle
}

// Strategy is a single vote source. Evaluate must return DirectionNone
// when its inputs are not ready; a missing indicator is never a
// counter-vote.
type Strategy interface {
	// Name returns the strategy's configuration name.
	Name() string
	// Evaluate produces a vote for the snapshot's timeframe.
	Evaluate(ctx Context) types.Vote
}

const (
	NameHFT      = "hft"
	NameScalping = "scalping"
	NamePattern  = "pattern"
	NameSwing    = "swing"
)

// ForNames instantiates the enabled strategies with default tuning.
// Unknown names are rejected so configuration typos fail at startup.
func ForNames(names []string) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(names))

	for _, name := range names {
		switch name {
		case NameHFT:
			strategies = append(strategies, NewHFT())
		case NameScalping:
			strategies = append(strategies, NewScalping())
		case NamePattern:
			strategies = append(strategies, NewPattern())
		case NameSwing:
			strategies = append(strategies, NewSwing())
		default:
			return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "unknown strategy %q", name)
		}
	}

	return strategies, nil
}

// abstain builds the no-opinion vote shared by all strategies.
func abstain(name string, tf types.Timeframe, reason string) types.Vote {
	return types.Vote{
		Strategy:   name,
		Timeframe:  tf,
		Direction:  types.DirectionNone,
		Confidence: 0,
		Reason:     reason,
	}
}
