package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrderRequest  ErrorCode = 102
	ErrCodeInvalidStopLoss      ErrorCode = 103
	ErrCodeInvalidTakeProfit    ErrorCode = 104
	ErrCodeStaleSnapshot        ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeCandleNotFound   ErrorCode = 200
	ErrCodeTradeLogWrite    ErrorCode = 202
	ErrCodeSnapshotWrite    ErrorCode = 203
	ErrCodeSnapshotRead     ErrorCode = 204
	ErrCodeUnknownTimeframe ErrorCode = 205

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound ErrorCode = 400

	// Risk errors (500-599)
	ErrCodeRiskRejected        ErrorCode = 500
	ErrCodeZeroPositionSize    ErrorCode = 501
	ErrCodeMaxPositionsReached ErrorCode = 502
	ErrCodeDailyCapReached     ErrorCode = 503
	ErrCodeExposureExceeded    ErrorCode = 504
	ErrCodeDrawdownHalt        ErrorCode = 505
	ErrCodeEmergencyStop       ErrorCode = 506

	// Order lifecycle errors (600-699)
	ErrCodeOrderRejected     ErrorCode = 600
	ErrCodeOrderFailed       ErrorCode = 601
	ErrCodeInvalidTransition ErrorCode = 602
	ErrCodeOrderNotFound     ErrorCode = 603
	ErrCodeRetriesExhausted  ErrorCode = 606

	// Connection errors (700-799)
	ErrCodeConnectionFailed   ErrorCode = 700
	ErrCodeConnectionTimeout  ErrorCode = 701
	ErrCodeNotConnected       ErrorCode = 702
	ErrCodeReconnectExhausted ErrorCode = 703
)
