package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

type BollingerBandsTestSuite struct {
	suite.Suite
}

func TestBollingerBandsSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsTestSuite))
}

func (suite *BollingerBandsTestSuite) TestFlatPricesCollapseBands() {
	bb := NewBollingerBands(5, 2.0)

	values, err := bb.Compute(candlesFromCloses("EURUSD", 10, 10, 10, 10, 10))
	suite.NoError(err)
	suite.InDelta(10.0, values[types.IndicatorTypeBollingerMid], 1e-9)
	suite.InDelta(10.0, values[types.IndicatorTypeBollingerUp], 1e-9)
	suite.InDelta(10.0, values[types.IndicatorTypeBollingerLow], 1e-9)
}

func (suite *BollingerBandsTestSuite) TestBandOrdering() {
	bb := NewBollingerBands(5, 2.0)

	values, err := bb.Compute(candlesFromCloses("EURUSD", 10, 12, 9, 13, 11))
	suite.NoError(err)
	suite.Greater(values[types.IndicatorTypeBollingerUp], values[types.IndicatorTypeBollingerMid])
	suite.Less(values[types.IndicatorTypeBollingerLow], values[types.IndicatorTypeBollingerMid])
}

func (suite *BollingerBandsTestSuite) TestSymmetry() {
	bb := NewBollingerBands(4, 2.0)

	values, err := bb.Compute(candlesFromCloses("EURUSD", 8, 12, 8, 12))
	suite.NoError(err)

	mid := values[types.IndicatorTypeBollingerMid]
	suite.InDelta(mid-values[types.IndicatorTypeBollingerLow],
		values[types.IndicatorTypeBollingerUp]-mid, 1e-9)
}

func (suite *BollingerBandsTestSuite) TestNotReady() {
	bb := NewBollingerBands(20, 2.0)

	_, err := bb.Compute(candlesFromCloses("EURUSD", 1, 2, 3))
	suite.True(errors.IsInsufficientDataError(err))
}
