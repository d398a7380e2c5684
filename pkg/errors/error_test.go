package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeCandleNotFound, "no candles for symbol: %s", "EURUSD")
	suite.NotNil(err)
	suite.Equal(ErrCodeCandleNotFound, err.Code)
	suite.Equal("no candles for symbol: EURUSD", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeConnectionFailed, "broker unreachable", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeConnectionFailed, err.Code)
	suite.Equal("broker unreachable", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeOrderFailed, cause, "submission failed for symbol: %s", "GBPUSD")
	suite.NotNil(err)
	suite.Equal(ErrCodeOrderFailed, err.Code)
	suite.Equal("submission failed for symbol: GBPUSD", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeCandleNotFound, "candle not found", cause)
	suite.Equal("[200] candle not found: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeConnectionTimeout, "request timed out", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestUnwrapNil() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeRiskRejected, "risk rejected")
	suite.Equal(ErrCodeRiskRejected, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeDrawdownHalt, "drawdown halt active")
	err := fmt.Errorf("evaluate: %w", cause)
	suite.Equal(ErrCodeDrawdownHalt, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeUnknown() {
	err := errors.New("plain error")
	suite.Equal(ErrCodeUnknown, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeEmergencyStop, "emergency stop engaged")
	suite.True(HasCode(err, ErrCodeEmergencyStop))
	suite.False(HasCode(err, ErrCodeRiskRejected))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataError(14, 5, "EURUSD", "RSI requires 14 candles, have 5")
	suite.Equal(14, err.Required)
	suite.Equal(5, err.Actual)
	suite.Equal("EURUSD", err.Symbol)
	suite.Equal("RSI requires 14 candles, have 5", err.Error())
}

func (suite *ErrorTestSuite) TestIsInsufficientDataError() {
	err := NewInsufficientDataErrorf(26, 10, "USDJPY", "MACD requires %d candles, have %d", 26, 10)
	wrapped := fmt.Errorf("snapshot: %w", err)
	suite.True(IsInsufficientDataError(wrapped))
	suite.False(IsInsufficientDataError(errors.New("other")))
}
