package types

// RiskDecision is the sized, bounded order request derived from a signal.
// Invariant: MaxLossAmount never exceeds risk_percent * equity at the time
// of evaluation, accounting for rounding the size down to the lot step.
type RiskDecision struct {
	// Signal is the confirmed signal this decision was derived from.
	Signal Signal `yaml:"signal" json:"signal"`
	// Size is the position size in lots, rounded down to the lot step.
	Size float64 `yaml:"size" json:"size"`
	// EntryPrice is the market price the decision was sized against.
	EntryPrice float64 `yaml:"entry_price" json:"entry_price"`
	// StopLoss is the protective stop price.
	StopLoss float64 `yaml:"stop_loss" json:"stop_loss"`
	// TakeProfit is the profit target price.
	TakeProfit float64 `yaml:"take_profit" json:"take_profit"`
	// MaxLossAmount is the account-currency loss if the stop is hit.
	MaxLossAmount float64 `yaml:"max_loss_amount" json:"max_loss_amount"`
	// RiskPercent is the effective risk percentage after adaptive scaling.
	RiskPercent float64 `yaml:"risk_percent" json:"risk_percent"`
}
