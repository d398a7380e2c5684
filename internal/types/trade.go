package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one append-only trade-log row describing a closed order.
type TradeRecord struct {
	OrderID    string    `csv:"order_id"`
	Symbol     string    `csv:"symbol"`
	Direction  Direction `csv:"direction"`
	Size       float64   `csv:"size"`
	EntryPrice float64   `csv:"entry_price"`
	ExitPrice  float64   `csv:"exit_price"`
	PnL        float64   `csv:"pnl"`
	// CloseReason is why the position closed (stop_loss, take_profit, ...).
	CloseReason string    `csv:"close_reason"`
	OpenedAt    time.Time `csv:"opened_at"`
	ClosedAt    time.Time `csv:"closed_at"`
}

// CalculatePnL computes the realized profit/loss for a closed position.
// pipSize is the price increment of one pip, pipValue the account-currency
// value of one pip per lot. Decimal arithmetic keeps the pip division exact
// for five-decimal quotes.
func CalculatePnL(direction Direction, size, entry, exit, pipSize, pipValue float64) float64 {
	if pipSize <= 0 {
		return 0
	}

	entryDec := decimal.NewFromFloat(entry)
	exitDec := decimal.NewFromFloat(exit)

	move := exitDec.Sub(entryDec)
	if direction == DirectionShort {
		move = entryDec.Sub(exitDec)
	}

	pips := move.Div(decimal.NewFromFloat(pipSize))
	pnl := pips.Mul(decimal.NewFromFloat(pipValue)).Mul(decimal.NewFromFloat(size))

	result, _ := pnl.Float64()

	return result
}
