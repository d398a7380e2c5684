package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CandleTestSuite struct {
	suite.Suite
}

func TestCandleSuite(t *testing.T) {
	suite.Run(t, new(CandleTestSuite))
}

func (suite *CandleTestSuite) TestTimeframeDuration() {
	suite.Equal(time.Minute, TimeframeM1.Duration())
	suite.Equal(5*time.Minute, TimeframeM5.Duration())
	suite.Equal(15*time.Minute, TimeframeM15.Duration())
	suite.Equal(time.Hour, TimeframeH1.Duration())
	suite.Equal(4*time.Hour, TimeframeH4.Duration())
	suite.Equal(time.Duration(0), Timeframe("M7").Duration())
}

func (suite *CandleTestSuite) TestTimeframeIsValid() {
	suite.True(TimeframeM5.IsValid())
	suite.True(TimeframeD1.IsValid())
	suite.False(Timeframe("W1").IsValid())
	suite.False(Timeframe("").IsValid())
}

func (suite *CandleTestSuite) TestCloseTime() {
	open := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	candle := Candle{
		Symbol:    "EURUSD",
		Timeframe: TimeframeM15,
		OpenTime:  open,
		Open:      1.1,
		High:      1.2,
		Low:       1.0,
		Close:     1.15,
		Volume:    100,
	}

	suite.Equal(open.Add(15*time.Minute), candle.CloseTime())
}

func (suite *CandleTestSuite) TestBodyAndRange() {
	bullish := Candle{Open: 1.10, High: 1.16, Low: 1.09, Close: 1.15}
	suite.InDelta(0.05, bullish.Body(), 1e-9)
	suite.InDelta(0.07, bullish.Range(), 1e-9)
	suite.True(bullish.IsBullish())
	suite.False(bullish.IsBearish())

	bearish := Candle{Open: 1.15, High: 1.16, Low: 1.09, Close: 1.10}
	suite.InDelta(0.05, bearish.Body(), 1e-9)
	suite.True(bearish.IsBearish())
	suite.False(bearish.IsBullish())
}
