package strategy

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// Swing is the trend-following strategy: it trades with the direction
// both trend readings agree on, scored over a checklist of momentum
// conditions. It only votes when the EMA legs have meaningfully
// separated, so it stays quiet in ranging markets.
type Swing struct {
	minTrendStrength float64
	scoreThreshold   float64
	rsiOverbought    float64
	rsiOversold      float64
}

// NewSwing creates the trend-following strategy with default tuning.
func NewSwing() Strategy {
	return &Swing{
		minTrendStrength: 0.0005,
		scoreThreshold:   0.7,
		rsiOverbought:    70,
		rsiOversold:      30,
	}
}

// Name returns the strategy's configuration name.
func (w *Swing) Name() string {
	return NameSwing
}

// Evaluate votes with the aligned trend when enough of the momentum
// checklist agrees.
func (w *Swing) Evaluate(ctx Context) types.Vote {
	tf := ctx.Snapshot.Timeframe

	emaFast, fastOK := ctx.Snapshot.Value(types.IndicatorTypeEMAFast)
	emaSlow, slowOK := ctx.Snapshot.Value(types.IndicatorTypeEMASlow)
	sma, smaOK := ctx.Snapshot.Value(types.IndicatorTypeSMA)
	rsi, rsiOK := ctx.Snapshot.Value(types.IndicatorTypeRSI)
	macd, macdOK := ctx.Snapshot.Value(types.IndicatorTypeMACD)
	macdSignal, signalOK := ctx.Snapshot.Value(types.IndicatorTypeMACDSignal)
	histogram, histOK := ctx.Snapshot.Value(types.IndicatorTypeMACDHistogram)

	if !fastOK || !slowOK || !smaOK || !rsiOK || !macdOK || !signalOK || !histOK || len(ctx.Window) == 0 {
		return abstain(w.Name(), tf, "trend indicators not ready")
	}

	price := ctx.Window[len(ctx.Window)-1].Close

	shortUp := emaFast > emaSlow
	longUp := price > sma

	if shortUp != longUp {
		return abstain(w.Name(), tf, "short and long trend disagree")
	}

	// Trend strength is the EMA separation relative to the slow leg.
	if emaSlow == 0 || math.Abs(emaFast-emaSlow)/emaSlow < w.minTrendStrength {
		return abstain(w.Name(), tf, "trend too weak")
	}

	var conditions []bool
	if shortUp {
		conditions = []bool{
			rsi < w.rsiOverbought,
			macd > macdSignal,
			histogram > 0,
			price > emaFast,
		}
	} else {
		conditions = []bool{
			rsi > w.rsiOversold,
			macd < macdSignal,
			histogram < 0,
			price < emaFast,
		}
	}

	agreed := 0

	for _, ok := range conditions {
		if ok {
			agreed++
		}
	}

	score := float64(agreed) / float64(len(conditions))
	if score < w.scoreThreshold {
		return abstain(w.Name(), tf, fmt.Sprintf("momentum checklist %d/%d", agreed, len(conditions)))
	}

	direction := types.DirectionLong
	if !shortUp {
		direction = types.DirectionShort
	}

	return types.Vote{
		Strategy:   w.Name(),
		Timeframe:  tf,
		Direction:  direction,
		Confidence: score,
		Reason:     fmt.Sprintf("trend aligned, checklist %d/%d, rsi %.1f", agreed, len(conditions), rsi),
	}
}
