package types

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// PerformanceStats is the rolling performance state maintained by the
// performance tracker. Counters are mutated only on order-close events and
// the daily counters reset at the session day boundary.
type PerformanceStats struct {
	// Date is the trading day in YYYY-MM-DD format.
	Date string `yaml:"date" json:"date"`
	// TradesToday counts closed trades since the day boundary.
	TradesToday int `yaml:"trades_today" json:"trades_today"`
	// Wins counts closed trades with positive PnL.
	Wins int `yaml:"wins" json:"wins"`
	// Losses counts closed trades with negative PnL.
	Losses int `yaml:"losses" json:"losses"`
	// WinRate is Wins over closed trades, 0 when no trades yet.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// RealizedPnL is the cumulative realized profit/loss for the session.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// EquityHighWatermark is the highest equity observed.
	EquityHighWatermark float64 `yaml:"equity_high_watermark" json:"equity_high_watermark"`
	// CurrentDrawdownPct is the percentage decline from the high watermark.
	CurrentDrawdownPct float64 `yaml:"current_drawdown_pct" json:"current_drawdown_pct"`
	// MaxDrawdownPct is the deepest drawdown observed this session.
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	// ConsecutiveLosses counts losing closes since the last winning close.
	ConsecutiveLosses int `yaml:"consecutive_losses" json:"consecutive_losses"`
	// LastUpdated is when the stats were last mutated.
	LastUpdated time.Time `yaml:"last_updated" json:"last_updated"`
}

// PerformanceSnapshot is the persisted form of tracker state, written
// after every submission and close so a restarted process resumes with
// continuity.
type PerformanceSnapshot struct {
	// SchemaVersion is the agent version that wrote the snapshot.
	SchemaVersion string    `yaml:"schema_version" json:"schema_version"`
	SessionStart  time.Time `yaml:"session_start" json:"session_start"`
	// SubmittedToday counts orders submitted against the daily cap,
	// including still-open and broker-rejected submissions; distinct
	// from Daily.TradesToday which counts closes.
	SubmittedToday int              `yaml:"submitted_today" json:"submitted_today"`
	Daily          PerformanceStats `yaml:"daily" json:"daily"`
	Cumulative     PerformanceStats `yaml:"cumulative" json:"cumulative"`
}

// WritePerformanceSnapshot writes the snapshot to path as YAML.
func WritePerformanceSnapshot(path string, snapshot PerformanceSnapshot) error {
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWrite, "marshaling performance snapshot", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeSnapshotWrite, err, "writing performance snapshot to %s", path)
	}

	return nil
}

// ReadPerformanceSnapshot loads a previously written snapshot from path.
func ReadPerformanceSnapshot(path string) (PerformanceSnapshot, error) {
	var snapshot PerformanceSnapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot, errors.Wrapf(errors.ErrCodeSnapshotRead, err, "reading performance snapshot from %s", path)
	}

	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return snapshot, errors.Wrap(errors.ErrCodeSnapshotRead, "unmarshaling performance snapshot", err)
	}

	return snapshot, nil
}
