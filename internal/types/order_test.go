package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

type OrderTestSuite struct {
	suite.Suite
}

func TestOrderSuite(t *testing.T) {
	suite.Run(t, new(OrderTestSuite))
}

func (suite *OrderTestSuite) TestLegalTransitions() {
	cases := []struct {
		from OrderState
		to   OrderState
	}{
		{OrderStatePending, OrderStateSubmitted},
		{OrderStatePending, OrderStateFailed},
		{OrderStateSubmitted, OrderStateFilled},
		{OrderStateSubmitted, OrderStatePartiallyFilled},
		{OrderStateSubmitted, OrderStateRejected},
		{OrderStateSubmitted, OrderStateFailed},
		{OrderStateFilled, OrderStateClosed},
		{OrderStateFilled, OrderStateFailed},
		{OrderStatePartiallyFilled, OrderStateFilled},
		{OrderStatePartiallyFilled, OrderStateClosed},
	}

	for _, c := range cases {
		suite.True(c.from.CanTransition(c.to), "%s -> %s should be legal", c.from, c.to)
	}
}

func (suite *OrderTestSuite) TestIllegalTransitions() {
	cases := []struct {
		from OrderState
		to   OrderState
	}{
		{OrderStatePending, OrderStateFilled},
		{OrderStatePending, OrderStateClosed},
		{OrderStateSubmitted, OrderStateClosed},
		{OrderStateRejected, OrderStateSubmitted},
		{OrderStateClosed, OrderStateFilled},
		{OrderStateFailed, OrderStateSubmitted},
		{OrderStateFilled, OrderStateRejected},
	}

	for _, c := range cases {
		suite.False(c.from.CanTransition(c.to), "%s -> %s should be illegal", c.from, c.to)
	}
}

func (suite *OrderTestSuite) TestTerminalStates() {
	suite.True(OrderStateRejected.IsTerminal())
	suite.True(OrderStateClosed.IsTerminal())
	suite.True(OrderStateFailed.IsTerminal())
	suite.False(OrderStatePending.IsTerminal())
	suite.False(OrderStateSubmitted.IsTerminal())
	suite.False(OrderStateFilled.IsTerminal())
	suite.False(OrderStatePartiallyFilled.IsTerminal())
}

func (suite *OrderTestSuite) validRequest() OrderRequest {
	return OrderRequest{
		ID:         uuid.New().String(),
		Symbol:     "EURUSD",
		Direction:  DirectionLong,
		Size:       0.1,
		EntryPrice: 1.1000,
		StopLoss:   1.0980,
		TakeProfit: optional.Some(1.1040),
		Reason:     Reason{Reason: OrderReasonSignal, Message: "confirmed long"},
		Strategy:   "scalping",
	}
}

func (suite *OrderTestSuite) TestValidateValidRequest() {
	req := suite.validRequest()
	suite.NoError(req.Validate())
}

func (suite *OrderTestSuite) TestValidateRejectsZeroSize() {
	req := suite.validRequest()
	req.Size = 0

	err := req.Validate()
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidOrderRequest, errors.GetCode(err))
}

func (suite *OrderTestSuite) TestValidateRejectsLongStopAboveEntry() {
	req := suite.validRequest()
	req.StopLoss = 1.1020

	err := req.Validate()
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidStopLoss, errors.GetCode(err))
}

func (suite *OrderTestSuite) TestValidateRejectsShortStopBelowEntry() {
	req := suite.validRequest()
	req.Direction = DirectionShort
	req.StopLoss = 1.0980
	req.TakeProfit = optional.Some(1.0960)

	err := req.Validate()
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidStopLoss, errors.GetCode(err))
}

func (suite *OrderTestSuite) TestValidateRejectsLongTargetBelowEntry() {
	req := suite.validRequest()
	req.TakeProfit = optional.Some(1.0990)

	err := req.Validate()
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidTakeProfit, errors.GetCode(err))
}

func (suite *OrderTestSuite) TestValidateAllowsMissingTakeProfit() {
	req := suite.validRequest()
	req.TakeProfit = optional.None[float64]()
	suite.NoError(req.Validate())
}

func (suite *OrderTestSuite) TestOrderFields() {
	now := time.Now()
	order := Order{
		ID:         uuid.New().String(),
		Symbol:     "GBPUSD",
		Direction:  DirectionShort,
		Size:       0.2,
		EntryPrice: 1.2500,
		Stop:       1.2530,
		Target:     1.2440,
		State:      OrderStatePending,
		RetryCount: 0,
		Reason:     Reason{Reason: OrderReasonSignal, Message: ""},
		Strategy:   "hft",
		CreatedAt:  now,
	}

	suite.Equal(OrderStatePending, order.State)
	suite.True(order.State.CanTransition(OrderStateSubmitted))
}
