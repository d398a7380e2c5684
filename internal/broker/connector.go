// Package broker defines the connector contract the trading core
// depends on, the supervised retry policy around it, and a simulated
// connector for paper trading and tests.
package broker

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-fx/internal/types"
)

// ResultStatus is the broker's verdict on a submission.
type ResultStatus string

const (
	ResultStatusFilled          ResultStatus = "FILLED"
	ResultStatusPartiallyFilled ResultStatus = "PARTIALLY_FILLED"
	ResultStatusRejected        ResultStatus = "REJECTED"
)

// OrderResult is the broker's response to a submitted order.
type OrderResult struct {
	OrderID string
	Status  ResultStatus
	// FillPrice is the execution price when filled or partially filled.
	FillPrice float64
	// FilledSize is the executed size in lots; less than the requested
	// size on a partial fill.
	FilledSize float64
	// RejectReason is set when Status is REJECTED.
	RejectReason string
	ExecutedAt   time.Time
}

// CloseResult is the broker's response to closing a position.
type CloseResult struct {
	OrderID   string
	ExitPrice float64
	ClosedAt  time.Time
}

// Connector is the transport to the broker terminal. Implementations
// must return an error carrying a connection error code (700 range)
// when the terminal is unreachable, so callers can tell transport
// failures from broker-side rejections.
type Connector interface {
	// Connect establishes the terminal session.
	Connect(ctx context.Context) error
	// IsConnected reports whether the session is currently usable.
	IsConnected() bool
	// GetCandles returns up to count most recent closed candles,
	// oldest first.
	GetCandles(ctx context.Context, symbol string, timeframe types.Timeframe, count int) ([]types.Candle, error)
	// SubmitOrder sends an order. A broker-side rejection is reported
	// in the result, not as an error.
	SubmitOrder(ctx context.Context, request types.OrderRequest) (OrderResult, error)
	// ModifyStop moves the protective stop of an open position.
	ModifyStop(ctx context.Context, orderID string, newStop float64) error
	// ClosePosition closes an open position at market.
	ClosePosition(ctx context.Context, orderID string) (CloseResult, error)
	// GetAccountState returns the current account snapshot.
	GetAccountState(ctx context.Context) (types.AccountState, error)
}
