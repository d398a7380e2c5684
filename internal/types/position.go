package types

import "time"

// Position is the open holding materialized from a filled order. It is
// mutated only by the lifecycle manager (trailing-stop advances) until closed.
type Position struct {
	OrderID   string    `yaml:"order_id" json:"order_id" csv:"order_id"`
	Symbol    string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Direction Direction `yaml:"direction" json:"direction" csv:"direction"`
	Size      float64   `yaml:"size" json:"size" csv:"size"`
	// EntryPrice is the actual fill price.
	EntryPrice float64 `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	// StopLoss only ever advances in the favorable direction once trailing.
	StopLoss   float64   `yaml:"stop_loss" json:"stop_loss" csv:"stop_loss"`
	TakeProfit float64   `yaml:"take_profit" json:"take_profit" csv:"take_profit"`
	OpenedAt   time.Time `yaml:"opened_at" json:"opened_at" csv:"opened_at"`
}

// UnrealizedPnL returns the floating profit/loss at the given price,
// expressed in quote-currency per unit times size.
func (p Position) UnrealizedPnL(price, pipSize, pipValue float64) float64 {
	if pipSize <= 0 {
		return 0
	}

	pips := (price - p.EntryPrice) / pipSize
	if p.Direction == DirectionShort {
		pips = -pips
	}

	return pips * pipValue * p.Size
}

// FavorableMove returns how far price has moved in the position's favor,
// in price units. Negative when the position is under water.
func (p Position) FavorableMove(price float64) float64 {
	if p.Direction == DirectionShort {
		return p.EntryPrice - price
	}

	return price - p.EntryPrice
}
