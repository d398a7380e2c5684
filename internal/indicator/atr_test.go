package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

type ATRTestSuite struct {
	suite.Suite
}

func TestATRSuite(t *testing.T) {
	suite.Run(t, new(ATRTestSuite))
}

func (suite *ATRTestSuite) TestConstantRange() {
	atr := NewATR(3)

	// Contiguous candles with a constant 1.0 high-low range and no gaps.
	candles := []types.Candle{
		candle("EURUSD", 0, 10, 10.5, 9.5, 10),
		candle("EURUSD", 1, 10, 10.5, 9.5, 10),
		candle("EURUSD", 2, 10, 10.5, 9.5, 10),
		candle("EURUSD", 3, 10, 10.5, 9.5, 10),
	}

	values, err := atr.Compute(candles)
	suite.NoError(err)
	suite.InDelta(1.0, values[types.IndicatorTypeATR], 1e-9)
}

func (suite *ATRTestSuite) TestGapExpandsTrueRange() {
	atr := NewATR(2)

	// The third candle gaps up: TR uses distance from the previous close.
	candles := []types.Candle{
		candle("EURUSD", 0, 10, 10.5, 9.5, 10),
		candle("EURUSD", 1, 10, 10.5, 9.5, 10),
		candle("EURUSD", 2, 12, 12.5, 11.5, 12),
	}

	values, err := atr.Compute(candles)
	suite.NoError(err)
	// TRs: (10.5-9.5)=1, (12.5-10)=2.5; seed = 1.75.
	suite.InDelta(1.75, values[types.IndicatorTypeATR], 1e-9)
}

func (suite *ATRTestSuite) TestWilderSmoothing() {
	atr := NewATR(2)

	candles := []types.Candle{
		candle("EURUSD", 0, 10, 11, 9, 10),
		candle("EURUSD", 1, 10, 11, 9, 10),
		candle("EURUSD", 2, 10, 11, 9, 10),
		candle("EURUSD", 3, 10, 14, 10, 12),
	}

	values, err := atr.Compute(candles)
	suite.NoError(err)
	// TRs: 2, 2, 4. Seed = mean(2,2) = 2; next = (2*1 + 4)/2 = 3.
	suite.InDelta(3.0, values[types.IndicatorTypeATR], 1e-9)
}

func (suite *ATRTestSuite) TestNotReady() {
	atr := NewATR(14)

	_, err := atr.Compute(candlesFromCloses("EURUSD", 1, 2, 3))
	suite.True(errors.IsInsufficientDataError(err))
}
