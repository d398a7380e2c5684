package types

import "time"

// EventType identifies a pipeline lifecycle event published on the event bus.
type EventType string

const (
	EventTypeSignalEmitted    EventType = "signal_emitted"
	EventTypeSignalRejected   EventType = "signal_rejected"
	EventTypeOrderSubmitted   EventType = "order_submitted"
	EventTypeOrderFilled      EventType = "order_filled"
	EventTypeOrderRejected    EventType = "order_rejected"
	EventTypeOrderFailed      EventType = "order_failed"
	EventTypeOrderClosed      EventType = "order_closed"
	EventTypeTrailingStop     EventType = "trailing_stop_advanced"
	EventTypeEmergencyStop    EventType = "emergency_stop"
	EventTypeEmergencyCleared EventType = "emergency_stop_cleared"
	EventTypeDailySummary     EventType = "daily_summary"
	EventTypeConnectorStatus  EventType = "connector_status"
)

// Event is the typed message delivered to notification subscribers.
// Details carries enough numeric context (thresholds, sizes, prices) to
// diagnose a rejection or halt without reading logs.
type Event struct {
	Type      EventType         `yaml:"type" json:"type"`
	Symbol    string            `yaml:"symbol" json:"symbol"`
	Details   map[string]string `yaml:"details" json:"details"`
	Timestamp time.Time         `yaml:"timestamp" json:"timestamp"`
}
