package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/strategy"
	"github.com/rxtech-lab/argo-fx/internal/types"
)

// stubStrategy votes a fixed direction per timeframe so the suite can
// script exact confirmation scenarios.
type stubStrategy struct {
	name  string
	votes map[types.Timeframe]types.Vote
}

func (s *stubStrategy) Name() string {
	return s.name
}

func (s *stubStrategy) Evaluate(ctx strategy.Context) types.Vote {
	vote, ok := s.votes[ctx.Snapshot.Timeframe]
	if !ok {
		return types.Vote{
			Strategy:  s.name,
			Timeframe: ctx.Snapshot.Timeframe,
			Direction: types.DirectionNone,
		}
	}

	return vote
}

func stub(name string, directions map[types.Timeframe]types.Direction, confidence float64) *stubStrategy {
	votes := make(map[types.Timeframe]types.Vote)

	for tf, dir := range directions {
		votes[tf] = types.Vote{
			Strategy:   name,
			Timeframe:  tf,
			Direction:  dir,
			Confidence: confidence,
		}
	}

	return &stubStrategy{name: name, votes: votes}
}

type AggregatorTestSuite struct {
	suite.Suite
	timeframes []types.Timeframe
	now        time.Time
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorTestSuite))
}

func (suite *AggregatorTestSuite) SetupTest() {
	suite.timeframes = []types.Timeframe{
		types.TimeframeM5, types.TimeframeM15, types.TimeframeH1, types.TimeframeH4,
	}
	suite.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *AggregatorTestSuite) newAggregator(strategies ...strategy.Strategy) *Aggregator {
	cfg := config.AggregatorConfig{
		ConfirmationThreshold: 3,
		Cooldown:              5 * time.Minute,
		FlipFlopGuard:         15 * time.Minute,
		Session:               config.SessionWindow{Start: "00:00", End: "23:59"},
	}

	return NewAggregator(strategies, cfg, logger.NewNopLogger())
}

func (suite *AggregatorTestSuite) snapshotSet(symbol string) types.SnapshotSet {
	snapshots := make(map[types.Timeframe]types.IndicatorSnapshot)

	for _, tf := range suite.timeframes {
		snapshots[tf] = types.IndicatorSnapshot{
			Symbol:    symbol,
			Timeframe: tf,
			AsOf:      suite.now,
			Values:    map[types.IndicatorType]float64{},
		}
	}

	return types.SnapshotSet{Symbol: symbol, AsOf: suite.now, Snapshots: snapshots}
}

func (suite *AggregatorTestSuite) TestEmitsWithThreeOfFourConfirmations() {
	// Three timeframes vote long, the fourth has no opinion.
	agg := suite.newAggregator(stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
		types.TimeframeH1:  types.DirectionLong,
	}, 0.7))

	signal, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.True(emitted, reason)
	suite.Equal("EURUSD", signal.Symbol)
	suite.Equal(types.DirectionLong, signal.Direction)
	suite.Len(signal.Confirmations, 3)
	suite.Equal("hft", signal.Strategy)
	suite.InDelta(0.7, signal.Strength, 1e-9)
}

func (suite *AggregatorTestSuite) TestRejectsBelowThreshold() {
	agg := suite.newAggregator(stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
	}, 0.7))

	_, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.False(emitted)
	suite.Contains(reason, "confirmations")
}

func (suite *AggregatorTestSuite) TestAbstentionIsNotACounterVote() {
	// One strategy votes long on three timeframes, another abstains
	// everywhere. The abstainer must not block the signal.
	voter := stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
		types.TimeframeH1:  types.DirectionLong,
	}, 0.7)
	abstainer := stub("pattern", nil, 0)

	agg := suite.newAggregator(voter, abstainer)

	_, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.True(emitted, reason)
}

func (suite *AggregatorTestSuite) TestStrategyDisagreementAbstains() {
	long := stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
		types.TimeframeH1:  types.DirectionLong,
	}, 0.9)
	short := stub("scalping", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionShort,
		types.TimeframeM15: types.DirectionShort,
		types.TimeframeH1:  types.DirectionShort,
	}, 0.9)

	agg := suite.newAggregator(long, short)

	_, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.False(emitted)
	suite.Contains(reason, "disagree")
}

func (suite *AggregatorTestSuite) TestCooldownSuppressesSecondSignal() {
	agg := suite.newAggregator(stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
		types.TimeframeH1:  types.DirectionLong,
	}, 0.7))

	_, _, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.True(emitted)

	_, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now.Add(time.Minute))
	suite.False(emitted)
	suite.Contains(reason, "cooldown")

	// A different symbol has its own cooldown.
	_, _, emitted = agg.OnSnapshotUpdate(suite.snapshotSet("GBPUSD"), nil, suite.now.Add(time.Minute))
	suite.True(emitted)
}

func (suite *AggregatorTestSuite) TestFlipFlopGuard() {
	long := stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
		types.TimeframeH1:  types.DirectionLong,
	}, 0.7)

	agg := suite.newAggregator(long)

	_, _, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.True(emitted)

	// Flip the votes short after the cooldown but inside the guard.
	long.votes = stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionShort,
		types.TimeframeM15: types.DirectionShort,
		types.TimeframeH1:  types.DirectionShort,
	}, 0.7).votes

	later := suite.now.Add(10 * time.Minute)

	_, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, later)
	suite.False(emitted)
	suite.Contains(reason, "flip-flop")

	// Outside the guard window the reversal is allowed.
	signal, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now.Add(20*time.Minute))
	suite.True(emitted, reason)
	suite.Equal(types.DirectionShort, signal.Direction)
}

func (suite *AggregatorTestSuite) TestSameDirectionRepeatIsNotGuarded() {
	agg := suite.newAggregator(stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
		types.TimeframeH1:  types.DirectionLong,
	}, 0.7))

	_, _, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.True(emitted)

	// Same direction after the cooldown passes the flip-flop guard.
	signal, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now.Add(6*time.Minute))
	suite.True(emitted, reason)
	suite.Equal(types.DirectionLong, signal.Direction)
}

func (suite *AggregatorTestSuite) TestOutsideSessionWindow() {
	cfg := config.AggregatorConfig{
		ConfirmationThreshold: 3,
		Session:               config.SessionWindow{Start: "08:00", End: "17:00"},
	}
	agg := NewAggregator([]strategy.Strategy{stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
		types.TimeframeH1:  types.DirectionLong,
	}, 0.7)}, cfg, logger.NewNopLogger())

	night := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

	_, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, night)
	suite.False(emitted)
	suite.Contains(reason, "session")
}

func (suite *AggregatorTestSuite) TestNoVotesNoSignal() {
	agg := suite.newAggregator(stub("hft", nil, 0))

	_, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.False(emitted)
	suite.Empty(reason)
}

func (suite *AggregatorTestSuite) TestResetClearsCooldown() {
	agg := suite.newAggregator(stub("hft", map[types.Timeframe]types.Direction{
		types.TimeframeM5:  types.DirectionLong,
		types.TimeframeM15: types.DirectionLong,
		types.TimeframeH1:  types.DirectionLong,
	}, 0.7))

	_, _, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now)
	suite.True(emitted)

	agg.Reset()

	_, reason, emitted := agg.OnSnapshotUpdate(suite.snapshotSet("EURUSD"), nil, suite.now.Add(time.Minute))
	suite.True(emitted, reason)
}
