package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

type StochasticTestSuite struct {
	suite.Suite
}

func TestStochasticSuite(t *testing.T) {
	suite.Run(t, new(StochasticTestSuite))
}

func (suite *StochasticTestSuite) TestCloseAtHigh() {
	stoch := NewStochastic(3, 1)

	candles := []types.Candle{
		candle("EURUSD", 0, 10, 11, 9, 10),
		candle("EURUSD", 1, 10, 11, 9, 10),
		candle("EURUSD", 2, 10, 11, 9, 11),
	}

	values, err := stoch.Compute(candles)
	suite.NoError(err)
	suite.InDelta(100.0, values[types.IndicatorTypeStochasticK], 1e-9)
}

func (suite *StochasticTestSuite) TestCloseAtLow() {
	stoch := NewStochastic(3, 1)

	candles := []types.Candle{
		candle("EURUSD", 0, 10, 11, 9, 10),
		candle("EURUSD", 1, 10, 11, 9, 10),
		candle("EURUSD", 2, 10, 11, 9, 9),
	}

	values, err := stoch.Compute(candles)
	suite.NoError(err)
	suite.InDelta(0.0, values[types.IndicatorTypeStochasticK], 1e-9)
}

func (suite *StochasticTestSuite) TestDIsMeanOfK() {
	stoch := NewStochastic(2, 2)

	candles := []types.Candle{
		candle("EURUSD", 0, 10, 12, 8, 10), // range 8-12
		candle("EURUSD", 1, 10, 12, 8, 12), // %K = 100
		candle("EURUSD", 2, 12, 12, 8, 8),  // %K = 0
	}

	values, err := stoch.Compute(candles)
	suite.NoError(err)
	suite.InDelta(0.0, values[types.IndicatorTypeStochasticK], 1e-9)
	suite.InDelta(50.0, values[types.IndicatorTypeStochasticD], 1e-9)
}

func (suite *StochasticTestSuite) TestNotReady() {
	stoch := NewStochastic(14, 3)

	_, err := stoch.Compute(candlesFromCloses("EURUSD", 1, 2, 3, 4))
	suite.True(errors.IsInsufficientDataError(err))
}
