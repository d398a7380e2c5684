package types

// AccountState represents the broker account snapshot consumed by the
// risk manager.
type AccountState struct {
	// Equity is the total account value including floating P&L.
	Equity float64 `json:"equity" yaml:"equity"`
	// Balance is the cash balance excluding floating P&L.
	Balance float64 `json:"balance" yaml:"balance"`
	// Margin is the margin currently in use.
	Margin float64 `json:"margin" yaml:"margin"`
	// FreeMargin is the margin available for new positions.
	FreeMargin float64 `json:"free_margin" yaml:"free_margin"`
	// OpenPositions is the count of currently open positions.
	OpenPositions int `json:"open_positions" yaml:"open_positions"`
}
