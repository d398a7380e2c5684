package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestCalculatePnLLongWin() {
	// 20 pips favorable on 0.5 lots at $10/pip/lot = $100
	pnl := CalculatePnL(DirectionLong, 0.5, 1.1000, 1.1020, 0.0001, 10)
	suite.InDelta(100, pnl, 1e-9)
}

func (suite *TradeTestSuite) TestCalculatePnLLongLoss() {
	pnl := CalculatePnL(DirectionLong, 1.0, 1.1000, 1.0980, 0.0001, 10)
	suite.InDelta(-200, pnl, 1e-9)
}

func (suite *TradeTestSuite) TestCalculatePnLShortWin() {
	pnl := CalculatePnL(DirectionShort, 0.1, 1.2500, 1.2450, 0.0001, 10)
	suite.InDelta(50, pnl, 1e-9)
}

func (suite *TradeTestSuite) TestCalculatePnLShortLoss() {
	pnl := CalculatePnL(DirectionShort, 0.1, 1.2500, 1.2530, 0.0001, 10)
	suite.InDelta(-30, pnl, 1e-9)
}

func (suite *TradeTestSuite) TestCalculatePnLJpyPipSize() {
	// JPY pairs quote pips at 0.01
	pnl := CalculatePnL(DirectionLong, 0.2, 150.00, 150.30, 0.01, 10)
	suite.InDelta(60, pnl, 1e-9)
}

func (suite *TradeTestSuite) TestCalculatePnLZeroPipSize() {
	suite.Zero(CalculatePnL(DirectionLong, 1, 1.1, 1.2, 0, 10))
}
