package tradelog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

type TradeLogTestSuite struct {
	suite.Suite
	path string
}

func TestTradeLogSuite(t *testing.T) {
	suite.Run(t, new(TradeLogTestSuite))
}

func (suite *TradeLogTestSuite) SetupTest() {
	suite.path = filepath.Join(suite.T().TempDir(), "logs", "trades.csv")
}

func (suite *TradeLogTestSuite) record(id string, pnl float64) types.TradeRecord {
	opened := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	return types.TradeRecord{
		OrderID:     id,
		Symbol:      "EURUSD",
		Direction:   types.DirectionLong,
		Size:        0.5,
		EntryPrice:  1.1000,
		ExitPrice:   1.1020,
		PnL:         pnl,
		CloseReason: types.OrderReasonTakeProfit,
		OpenedAt:    opened,
		ClosedAt:    opened.Add(30 * time.Minute),
	}
}

func (suite *TradeLogTestSuite) TestAppendAndRead() {
	writer, err := NewWriter(suite.path)
	suite.Require().NoError(err)

	suite.NoError(writer.Append(suite.record("a", 100)))
	suite.NoError(writer.Append(suite.record("b", -40)))
	suite.NoError(writer.Close())

	records, err := Read(suite.path)
	suite.Require().NoError(err)
	suite.Require().Len(records, 2)

	suite.Equal("a", records[0].OrderID)
	suite.Equal("EURUSD", records[0].Symbol)
	suite.Equal(types.DirectionLong, records[0].Direction)
	suite.InDelta(100, records[0].PnL, 1e-9)
	suite.Equal(types.OrderReasonTakeProfit, records[0].CloseReason)
	suite.InDelta(-40, records[1].PnL, 1e-9)
}

func (suite *TradeLogTestSuite) TestReopenAppendsWithoutDuplicateHeader() {
	writer, err := NewWriter(suite.path)
	suite.Require().NoError(err)
	suite.NoError(writer.Append(suite.record("a", 100)))
	suite.NoError(writer.Close())

	// A restarted process appends to the same file.
	writer, err = NewWriter(suite.path)
	suite.Require().NoError(err)
	suite.NoError(writer.Append(suite.record("b", 50)))
	suite.NoError(writer.Close())

	records, err := Read(suite.path)
	suite.Require().NoError(err)
	suite.Len(records, 2)
}

func (suite *TradeLogTestSuite) TestReadMissingFileCarriesTradeLogCode() {
	_, err := Read(filepath.Join(suite.T().TempDir(), "missing.csv"))
	suite.Error(err)
	suite.Equal(errors.ErrCodeTradeLogWrite, errors.GetCode(err))
}
