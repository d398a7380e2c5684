package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestRSIPureUptrend() {
	rsi := NewRSI(5)

	values, err := rsi.Compute(candlesFromCloses("EURUSD", 1, 2, 3, 4, 5, 6))
	suite.NoError(err)
	suite.InDelta(100.0, values[types.IndicatorTypeRSI], 1e-9)
}

func (suite *RSITestSuite) TestRSIPureDowntrend() {
	rsi := NewRSI(5)

	values, err := rsi.Compute(candlesFromCloses("EURUSD", 6, 5, 4, 3, 2, 1))
	suite.NoError(err)
	suite.InDelta(0.0, values[types.IndicatorTypeRSI], 1e-9)
}

func (suite *RSITestSuite) TestRSIBalancedMoves() {
	rsi := NewRSI(4)

	// Alternating +1/-1 changes: average gain equals average loss.
	values, err := rsi.Compute(candlesFromCloses("EURUSD", 10, 11, 10, 11, 10))
	suite.NoError(err)
	suite.InDelta(50.0, values[types.IndicatorTypeRSI], 1.0)
}

func (suite *RSITestSuite) TestRSIRange() {
	rsi := NewRSI(5)

	values, err := rsi.Compute(candlesFromCloses("EURUSD", 10, 12, 11, 13, 12, 14, 13, 15))
	suite.NoError(err)
	suite.GreaterOrEqual(values[types.IndicatorTypeRSI], 0.0)
	suite.LessOrEqual(values[types.IndicatorTypeRSI], 100.0)
}

func (suite *RSITestSuite) TestRSINotReady() {
	rsi := NewRSI(14)

	_, err := rsi.Compute(candlesFromCloses("EURUSD", 1, 2, 3, 4, 5))
	suite.True(errors.IsInsufficientDataError(err))

	var insufficient *errors.InsufficientDataError
	suite.True(errors.As(err, &insufficient))
	suite.Equal(15, insufficient.Required)
	suite.Equal(5, insufficient.Actual)
}
