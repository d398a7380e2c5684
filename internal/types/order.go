package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// OrderState is the lifecycle state of an order.
type OrderState string

const (
	OrderStatePending         OrderState = "PENDING"
	OrderStateSubmitted       OrderState = "SUBMITTED"
	OrderStateFilled          OrderState = "FILLED"
	OrderStatePartiallyFilled OrderState = "PARTIALLY_FILLED"
	OrderStateRejected        OrderState = "REJECTED"
	OrderStateClosed          OrderState = "CLOSED"
	OrderStateFailed          OrderState = "FAILED"
)

// orderTransitions encodes the legal state machine:
// Pending -> Submitted -> {Filled | PartiallyFilled | Rejected};
// Filled -> {Closed | Failed}; PartiallyFilled -> {Filled | Closed}.
// Any non-terminal state may additionally move to Failed on transport error.
var orderTransitions = map[OrderState][]OrderState{
	OrderStatePending:         {OrderStateSubmitted, OrderStateFailed},
	OrderStateSubmitted:       {OrderStateFilled, OrderStatePartiallyFilled, OrderStateRejected, OrderStateFailed},
	OrderStateFilled:          {OrderStateClosed, OrderStateFailed},
	OrderStatePartiallyFilled: {OrderStateFilled, OrderStateClosed, OrderStateFailed},
	OrderStateRejected:        nil,
	OrderStateClosed:          nil,
	OrderStateFailed:          nil,
}

// CanTransition reports whether moving to next is legal from the current state.
func (s OrderState) CanTransition(next OrderState) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// IsTerminal reports whether the state admits no further transitions.
func (s OrderState) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Reason records why an order exists or why it changed state.
type Reason struct {
	Reason  string `yaml:"reason" json:"reason" csv:"reason" validate:"required"`
	Message string `yaml:"message" json:"message" csv:"message"`
}

const (
	OrderReasonSignal        string = "signal"
	OrderReasonStopLoss      string = "stop_loss"
	OrderReasonTakeProfit    string = "take_profit"
	OrderReasonTrailingStop  string = "trailing_stop"
	OrderReasonManualClose   string = "manual_close"
	OrderReasonEmergencyStop string = "emergency_stop"
	OrderReasonBrokerReject  string = "broker_reject"
	OrderReasonTransport     string = "transport_error"
)

// OrderRequest is the submission payload sent to the broker connector.
type OrderRequest struct {
	ID        string    `yaml:"id" json:"id" validate:"required,uuid"`
	Symbol    string    `yaml:"symbol" json:"symbol" validate:"required"`
	Direction Direction `yaml:"direction" json:"direction" validate:"required,oneof=LONG SHORT"`
	// Size is the position size in lots.
	Size float64 `yaml:"size" json:"size" validate:"required,gt=0"`
	// EntryPrice is the intended entry; market orders fill at or near it.
	EntryPrice float64 `yaml:"entry_price" json:"entry_price" validate:"required,gt=0"`
	// StopLoss is mandatory; every order carries a protective stop.
	StopLoss float64 `yaml:"stop_loss" json:"stop_loss" validate:"required,gt=0"`
	// TakeProfit is the optional profit target.
	TakeProfit optional.Option[float64] `yaml:"take_profit" json:"take_profit"`
	Reason     Reason                   `yaml:"reason" json:"reason" validate:"required"`
	Strategy   string                   `yaml:"strategy" json:"strategy" validate:"required"`
}

// Validate validates the OrderRequest struct.
func (r *OrderRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrderRequest, "invalid order request", err)
	}

	// The stop must sit on the losing side of the entry.
	switch r.Direction {
	case DirectionLong:
		if r.StopLoss >= r.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidStopLoss,
				"long stop %.5f must be below entry %.5f", r.StopLoss, r.EntryPrice)
		}
	case DirectionShort:
		if r.StopLoss <= r.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidStopLoss,
				"short stop %.5f must be above entry %.5f", r.StopLoss, r.EntryPrice)
		}
	case DirectionNone:
	}

	if r.TakeProfit.IsSome() {
		tp := r.TakeProfit.Unwrap()
		if r.Direction == DirectionLong && tp <= r.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidTakeProfit,
				"long target %.5f must be above entry %.5f", tp, r.EntryPrice)
		}

		if r.Direction == DirectionShort && tp >= r.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidTakeProfit,
				"short target %.5f must be below entry %.5f", tp, r.EntryPrice)
		}
	}

	return nil
}

// Order is the lifecycle manager's record of a submitted trade. It is owned
// exclusively by the lifecycle manager until it reaches a terminal state.
type Order struct {
	ID        string    `yaml:"id" json:"id" csv:"id"`
	Symbol    string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Direction Direction `yaml:"direction" json:"direction" csv:"direction" validate:"required,oneof=LONG SHORT"`
	Size      float64   `yaml:"size" json:"size" csv:"size" validate:"required,gt=0"`
	// EntryPrice is the fill price once filled, the requested price before.
	EntryPrice float64 `yaml:"entry_price" json:"entry_price" csv:"entry_price" validate:"required,gt=0"`
	Stop       float64 `yaml:"stop" json:"stop" csv:"stop" validate:"required,gt=0"`
	// Target is 0 when the order has no take-profit.
	Target     float64    `yaml:"target" json:"target" csv:"target"`
	State      OrderState `yaml:"state" json:"state" csv:"state"`
	RetryCount int        `yaml:"retry_count" json:"retry_count" csv:"retry_count"`
	Reason     Reason     `yaml:"reason" json:"reason" csv:"reason"`
	Strategy   string     `yaml:"strategy" json:"strategy" csv:"strategy"`
	CreatedAt  time.Time  `yaml:"created_at" json:"created_at" csv:"created_at"`
}
