package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// Pattern is the candlestick pattern-recognition strategy. It inspects the
// last two closed candles for reversal patterns and abstains on dojis,
// where the market has no conviction to read.
type Pattern struct {
	dojiBodyRatio float64
}

// NewPattern creates the pattern strategy with default thresholds.
func NewPattern() Strategy {
	return &Pattern{
		dojiBodyRatio: 0.1,
	}
}

// Name returns the strategy's configuration name.
func (p *Pattern) Name() string {
	return NamePattern
}

// Evaluate votes on the most recent candlestick pattern.
func (p *Pattern) Evaluate(ctx Context) types.Vote {
	tf := ctx.Snapshot.Timeframe

	if len(ctx.Window) < 2 {
		return abstain(p.Name(), tf, "need two closed candles")
	}

	current := ctx.Window[len(ctx.Window)-1]
	previous := ctx.Window[len(ctx.Window)-2]

	if p.isDoji(current) {
		return abstain(p.Name(), tf, "doji, no conviction")
	}

	if direction, ok := p.engulfing(previous, current); ok {
		return types.Vote{
			Strategy:   p.Name(),
			Timeframe:  tf,
			Direction:  direction,
			Confidence: 0.8,
			Reason:     "engulfing pattern",
		}
	}

	if p.isHammer(current) {
		return types.Vote{
			Strategy:   p.Name(),
			Timeframe:  tf,
			Direction:  types.DirectionLong,
			Confidence: 0.65,
			Reason:     "hammer",
		}
	}

	if p.isShootingStar(current) {
		return types.Vote{
			Strategy:   p.Name(),
			Timeframe:  tf,
			Direction:  types.DirectionShort,
			Confidence: 0.65,
			Reason:     "shooting star",
		}
	}

	return abstain(p.Name(), tf, "no pattern")
}

// isDoji reports a body smaller than dojiBodyRatio of the full range.
func (p *Pattern) isDoji(c types.Candle) bool {
	r := c.Range()

	return r > 0 && c.Body()/r < p.dojiBodyRatio
}

// isHammer reports a long lower shadow with a small body near the high.
func (p *Pattern) isHammer(c types.Candle) bool {
	body := c.Body()
	upperShadow := c.High - math.Max(c.Open, c.Close)
	lowerShadow := math.Min(c.Open, c.Close) - c.Low

	return body > 0 && lowerShadow > 2*body && upperShadow < body
}

// isShootingStar is the hammer mirrored: long upper shadow, body near lows.
func (p *Pattern) isShootingStar(c types.Candle) bool {
	body := c.Body()
	upperShadow := c.High - math.Max(c.Open, c.Close)
	lowerShadow := math.Min(c.Open, c.Close) - c.Low

	return body > 0 && upperShadow > 2*body && lowerShadow < body
}

// engulfing reports whether current fully engulfs the previous body in the
// opposite direction.
func (p *Pattern) engulfing(previous, current types.Candle) (types.Direction, bool) {
	if current.Body() <= previous.Body() {
		return types.DirectionNone, false
	}

	bullish := previous.IsBearish() && current.IsBullish() &&
		current.Open <= previous.Close && current.Close >= previous.Open
	if bullish {
		return types.DirectionLong, true
	}

	bearish := previous.IsBullish() && current.IsBearish() &&
		current.Open >= previous.Close && current.Close <= previous.Open
	if bearish {
		return types.DirectionShort, true
	}

	return types.DirectionNone, false
}
