// Package config defines the immutable configuration object passed into
// every pipeline component at construction. There are no process-wide
// mutable singletons; load once, share by value.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// SymbolSpec carries the broker-defined contract parameters for one symbol.
type SymbolSpec struct {
	// PipSize is the price increment of one pip (0.0001 for most pairs,
	// 0.01 for JPY quotes).
	PipSize float64 `yaml:"pip_size" default:"0.0001" validate:"gt=0"`
	// PipValue is the account-currency value of one pip per lot.
	PipValue float64 `yaml:"pip_value" default:"10" validate:"gt=0"`
	// LotStep is the broker's minimum lot increment.
	LotStep float64 `yaml:"lot_step" default:"0.01" validate:"gt=0"`
	// MinLot is the smallest order size the broker accepts.
	MinLot float64 `yaml:"min_lot" default:"0.01" validate:"gt=0"`
	// MaxLot caps a single order's size.
	MaxLot float64 `yaml:"max_lot" default:"100" validate:"gt=0"`
}

// SessionWindow is the daily trading window in UTC. Start == End means
// trading around the clock.
type SessionWindow struct {
	// Start is the window opening time in HH:MM format.
	Start string `yaml:"start" default:"00:00" validate:"required"`
	// End is the window closing time in HH:MM format.
	End string `yaml:"end" default:"23:59" validate:"required"`
}

// Contains reports whether t (converted to UTC) falls within the window.
func (w SessionWindow) Contains(t time.Time) bool {
	start, err := time.Parse("15:04", w.Start)
	if err != nil {
		return false
	}

	end, err := time.Parse("15:04", w.End)
	if err != nil {
		return false
	}

	utc := t.UTC()
	minutes := utc.Hour()*60 + utc.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin == endMin {
		return true
	}

	// Window may wrap midnight (e.g. 22:00-06:00).
	if startMin < endMin {
		return minutes >= startMin && minutes <= endMin
	}

	return minutes >= startMin || minutes <= endMin
}

// RiskConfig bounds position sizing and exposure.
type RiskConfig struct {
	// RiskPercent is the fraction of equity risked per trade (0.01 = 1%).
	RiskPercent float64 `yaml:"risk_percent" default:"0.01" validate:"gt=0,lte=0.1"`
	// MaxDailyTrades caps submitted orders per day across all symbols.
	MaxDailyTrades int `yaml:"max_daily_trades" default:"20" validate:"gt=0"`
	// MaxConcurrentPositions caps simultaneously open positions per symbol.
	MaxConcurrentPositions int `yaml:"max_concurrent_positions" default:"1" validate:"gt=0"`
	// MaxExposureLots caps aggregate open size across all symbols.
	MaxExposureLots float64 `yaml:"max_exposure_lots" default:"2.0" validate:"gt=0"`
	// DrawdownHaltPct is the drawdown percentage that forces the halt state.
	DrawdownHaltPct float64 `yaml:"drawdown_halt_pct" default:"5.0" validate:"gt=0"`
	// WinRateFloor is the rolling win rate below which risk is scaled down.
	WinRateFloor float64 `yaml:"win_rate_floor" default:"0.4" validate:"gte=0,lte=1"`
	// WinRateWindow is the rolling trade count the win rate is measured over.
	WinRateWindow int `yaml:"win_rate_window" default:"10" validate:"gt=0"`
	// MinRiskScale floors the adaptive reduction so sizing never hits zero
	// purely from scaling.
	MinRiskScale float64 `yaml:"min_risk_scale" default:"0.25" validate:"gt=0,lte=1"`
	// StopLossPips is the protective stop distance when no volatility
	// reading is available.
	StopLossPips float64 `yaml:"stop_loss_pips" default:"20" validate:"gt=0"`
	// AtrStopMultiplier sizes the stop from the current ATR when one is
	// available, overriding StopLossPips.
	AtrStopMultiplier float64 `yaml:"atr_stop_multiplier" default:"2.0" validate:"gt=0"`
	// TakeProfitRatio is the reward-to-risk multiple for the target price.
	TakeProfitRatio float64 `yaml:"take_profit_ratio" default:"2.0" validate:"gt=0"`
	// ConsecutiveLossLimit is the loss streak length that halves risk.
	ConsecutiveLossLimit int `yaml:"consecutive_loss_limit" default:"3" validate:"gt=0"`
	// ConsecutiveLossScale is the extra reduction applied past the streak limit.
	ConsecutiveLossScale float64 `yaml:"consecutive_loss_scale" default:"0.5" validate:"gt=0,lte=1"`
}

// LifecycleConfig tunes order submission retries and trailing stops.
type LifecycleConfig struct {
	// MaxRetries is the transport retry cap before an order fails terminally.
	MaxRetries int `yaml:"max_retries" default:"3" validate:"gte=0"`
	// RetryInitialInterval seeds the exponential backoff between retries.
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval" default:"500ms" validate:"gt=0"`
	// RetryMaxInterval caps the backoff interval.
	RetryMaxInterval time.Duration `yaml:"retry_max_interval" default:"10s" validate:"gt=0"`
	// SubmitTimeout bounds every blocking call to the broker connector.
	SubmitTimeout time.Duration `yaml:"submit_timeout" default:"5s" validate:"gt=0"`
	// TrailingStopIncrementPips is the favorable move required before the
	// stop advances.
	TrailingStopIncrementPips float64 `yaml:"trailing_stop_increment_pips" default:"10" validate:"gt=0"`
	// TrailingInterval is the trailing-stop evaluation period.
	TrailingInterval time.Duration `yaml:"trailing_interval" default:"5s" validate:"gt=0"`
}

// AggregatorConfig tunes signal confirmation.
type AggregatorConfig struct {
	// ConfirmationThreshold is the minimum count of agreeing timeframe
	// confirmations before a signal is emitted.
	ConfirmationThreshold int `yaml:"confirmation_threshold" default:"3" validate:"gte=1"`
	// Cooldown is the minimum gap between emitted signals per symbol.
	Cooldown time.Duration `yaml:"cooldown" default:"5m" validate:"gte=0"`
	// FlipFlopGuard suppresses an opposite-direction signal within this
	// window of the last emission.
	FlipFlopGuard time.Duration `yaml:"flip_flop_guard" default:"15m" validate:"gte=0"`
	// Session is the trading session window.
	Session SessionWindow `yaml:"session"`
}

// UnmarshalYAML implements custom unmarshaling for AggregatorConfig so
// durations can be written as Go duration strings ("5m", "90s").
func (c *AggregatorConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw struct {
		ConfirmationThreshold int           `yaml:"confirmation_threshold"`
		Cooldown              string        `yaml:"cooldown"`
		FlipFlopGuard         string        `yaml:"flip_flop_guard"`
		Session               SessionWindow `yaml:"session"`
	}

	var r raw
	if err := unmarshal(&r); err != nil {
		return err
	}

	c.ConfirmationThreshold = r.ConfirmationThreshold
	c.Session = r.Session

	var err error
	if c.Cooldown, err = parseDuration(r.Cooldown); err != nil {
		return err
	}

	if c.FlipFlopGuard, err = parseDuration(r.FlipFlopGuard); err != nil {
		return err
	}

	return nil
}

// UnmarshalYAML implements custom unmarshaling for LifecycleConfig.
func (c *LifecycleConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw struct {
		MaxRetries                int     `yaml:"max_retries"`
		RetryInitialInterval      string  `yaml:"retry_initial_interval"`
		RetryMaxInterval          string  `yaml:"retry_max_interval"`
		SubmitTimeout             string  `yaml:"submit_timeout"`
		TrailingStopIncrementPips float64 `yaml:"trailing_stop_increment_pips"`
		TrailingInterval          string  `yaml:"trailing_interval"`
	}

	var r raw
	if err := unmarshal(&r); err != nil {
		return err
	}

	c.MaxRetries = r.MaxRetries
	c.TrailingStopIncrementPips = r.TrailingStopIncrementPips

	var err error
	if c.RetryInitialInterval, err = parseDuration(r.RetryInitialInterval); err != nil {
		return err
	}

	if c.RetryMaxInterval, err = parseDuration(r.RetryMaxInterval); err != nil {
		return err
	}

	if c.SubmitTimeout, err = parseDuration(r.SubmitTimeout); err != nil {
		return err
	}

	if c.TrailingInterval, err = parseDuration(r.TrailingInterval); err != nil {
		return err
	}

	return nil
}

// ConnectorConfig tunes broker reconnection.
type ConnectorConfig struct {
	// MaxReconnectAttempts bounds the supervised reconnect loop.
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts" default:"5" validate:"gt=0"`
	// ReconnectInitialInterval seeds the reconnect backoff.
	ReconnectInitialInterval time.Duration `yaml:"reconnect_initial_interval" default:"1s" validate:"gt=0"`
	// ReconnectMaxInterval caps the reconnect backoff.
	ReconnectMaxInterval time.Duration `yaml:"reconnect_max_interval" default:"30s" validate:"gt=0"`
	// CallTimeout bounds individual connector calls.
	CallTimeout time.Duration `yaml:"call_timeout" default:"5s" validate:"gt=0"`
}

// UnmarshalYAML implements custom unmarshaling for ConnectorConfig.
func (c *ConnectorConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw struct {
		MaxReconnectAttempts     int    `yaml:"max_reconnect_attempts"`
		ReconnectInitialInterval string `yaml:"reconnect_initial_interval"`
		ReconnectMaxInterval     string `yaml:"reconnect_max_interval"`
		CallTimeout              string `yaml:"call_timeout"`
	}

	var r raw
	if err := unmarshal(&r); err != nil {
		return err
	}

	c.MaxReconnectAttempts = r.MaxReconnectAttempts

	var err error
	if c.ReconnectInitialInterval, err = parseDuration(r.ReconnectInitialInterval); err != nil {
		return err
	}

	if c.ReconnectMaxInterval, err = parseDuration(r.ReconnectMaxInterval); err != nil {
		return err
	}

	if c.CallTimeout, err = parseDuration(r.CallTimeout); err != nil {
		return err
	}

	return nil
}

// EngineConfig tunes the evaluation loops.
type EngineConfig struct {
	// MaxConcurrentSymbols bounds the worker pool evaluating symbols.
	MaxConcurrentSymbols int `yaml:"max_concurrent_symbols" default:"4" validate:"gt=0"`
	// PollInterval is how often each symbol's loop polls for new candles.
	PollInterval time.Duration `yaml:"poll_interval" default:"1s" validate:"gt=0"`
	// CandleWindowSize is the rolling window capacity per (symbol, timeframe).
	CandleWindowSize int `yaml:"candle_window_size" default:"200" validate:"gte=50"`
}

// UnmarshalYAML implements custom unmarshaling for EngineConfig.
func (c *EngineConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw struct {
		MaxConcurrentSymbols int    `yaml:"max_concurrent_symbols"`
		PollInterval         string `yaml:"poll_interval"`
		CandleWindowSize     int    `yaml:"candle_window_size"`
	}

	var r raw
	if err := unmarshal(&r); err != nil {
		return err
	}

	c.MaxConcurrentSymbols = r.MaxConcurrentSymbols
	c.CandleWindowSize = r.CandleWindowSize

	var err error
	if c.PollInterval, err = parseDuration(r.PollInterval); err != nil {
		return err
	}

	return nil
}

// parseDuration parses a Go duration string, mapping empty to zero so the
// defaults pass can fill it.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid duration %q", s)
	}

	return d, nil
}

// Config is the full pipeline configuration.
type Config struct {
	// Symbols is the set of traded instruments.
	Symbols []string `yaml:"symbols" validate:"required,min=1"`
	// Timeframes is the confirmation hierarchy, ordered slowest first
	// (e.g. H4, H1, M15, M5).
	Timeframes []types.Timeframe `yaml:"timeframes" validate:"required,min=1"`
	// EnabledStrategies names the strategies participating in voting.
	EnabledStrategies []string `yaml:"enabled_strategies" validate:"required,min=1"`
	// SymbolSpecs carries per-symbol contract parameters; symbols without
	// an entry use the SymbolSpec defaults.
	SymbolSpecs map[string]SymbolSpec `yaml:"symbol_specs"`

	Risk       RiskConfig       `yaml:"risk"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Connector  ConnectorConfig  `yaml:"connector"`
	Engine     EngineConfig     `yaml:"engine"`

	// DataDir is where the trade log and performance snapshot are written.
	DataDir string `yaml:"data_dir" default:"./data"`
	// MetricsAddr is the Prometheus listen address; empty disables metrics.
	MetricsAddr string `yaml:"metrics_addr" default:""`
}

// Spec returns the contract parameters for symbol, falling back to defaults
// when no explicit entry exists.
func (c Config) Spec(symbol string) SymbolSpec {
	if spec, ok := c.SymbolSpecs[symbol]; ok {
		return spec
	}

	var spec SymbolSpec
	_ = defaults.Set(&spec)

	return spec
}

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// Parse unmarshals, defaults, and validates raw YAML configuration.
func Parse(data []byte) (Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config YAML", err)
	}

	if err := defaults.Set(&cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to apply config defaults", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks structural constraints and cross-field consistency.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	for _, tf := range c.Timeframes {
		if !tf.IsValid() {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown timeframe %q", tf)
		}
	}

	if c.Aggregator.ConfirmationThreshold > len(c.Timeframes) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"confirmation threshold %d exceeds configured timeframe count %d",
			c.Aggregator.ConfirmationThreshold, len(c.Timeframes))
	}

	if _, err := time.Parse("15:04", c.Aggregator.Session.Start); err != nil {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid session start %q", c.Aggregator.Session.Start)
	}

	if _, err := time.Parse("15:04", c.Aggregator.Session.End); err != nil {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid session end %q", c.Aggregator.Session.End)
	}

	for symbol, spec := range c.SymbolSpecs {
		if spec.MinLot < spec.LotStep {
			return errors.Newf(errors.ErrCodeInvalidConfiguration,
				"symbol %s: min lot %v below lot step %v", symbol, spec.MinLot, spec.LotStep)
		}
	}

	return nil
}

// String renders a compact identifier for logging.
func (c Config) String() string {
	return fmt.Sprintf("config(symbols=%d timeframes=%d strategies=%d)",
		len(c.Symbols), len(c.Timeframes), len(c.EnabledStrategies))
}
