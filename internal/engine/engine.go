// Package engine runs the trading loop: it polls candles per symbol,
// feeds the indicator pipeline, and drives signals through risk checks
// into order execution. Symbols evaluate concurrently under a bounded
// worker pool; everything within one symbol is strictly sequential.
package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/rxtech-lab/argo-fx/internal/aggregator"
	"github.com/rxtech-lab/argo-fx/internal/broker"
	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/eventbus"
	"github.com/rxtech-lab/argo-fx/internal/indicator"
	"github.com/rxtech-lab/argo-fx/internal/lifecycle"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/performance"
	"github.com/rxtech-lab/argo-fx/internal/risk"
	"github.com/rxtech-lab/argo-fx/internal/tradelog"
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// Engine orchestrates the decision pipeline across all configured
// symbols.
type Engine struct {
	config     config.Config
	supervisor *broker.Supervisor
	indicators *indicator.Engine
	aggregator *aggregator.Aggregator
	risk       *risk.Manager
	lifecycle  *lifecycle.Manager
	tracker    *performance.Tracker
	bus        *eventbus.Bus
	tradeLog   *tradelog.Writer
	logger     *logger.Logger
	now        func() time.Time

	workers *semaphore.Weighted

	mu               sync.Mutex
	lastAccount      types.AccountState
	hasAccount       bool
	lastPrices       map[string]float64
	emergencyFlatten bool
}

// Options bundles the engine's collaborators.
type Options struct {
	Config     config.Config
	Supervisor *broker.Supervisor
	Indicators *indicator.Engine
	Aggregator *aggregator.Aggregator
	Risk       *risk.Manager
	Lifecycle  *lifecycle.Manager
	Tracker    *performance.Tracker
	Bus        *eventbus.Bus
	// TradeLog may be nil to disable trade persistence.
	TradeLog *tradelog.Writer
	Logger   *logger.Logger
}

// NewEngine wires the pipeline together. Closed positions flow into the
// performance tracker and the trade log automatically.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		config:     opts.Config,
		supervisor: opts.Supervisor,
		indicators: opts.Indicators,
		aggregator: opts.Aggregator,
		risk:       opts.Risk,
		lifecycle:  opts.Lifecycle,
		tracker:    opts.Tracker,
		bus:        opts.Bus,
		tradeLog:   opts.TradeLog,
		logger:     opts.Logger,
		now:        time.Now,
		workers:    semaphore.NewWeighted(int64(opts.Config.Engine.MaxConcurrentSymbols)),
		lastPrices: map[string]float64{},
	}

	e.lifecycle.RegisterCloseHandler(e.onPositionClosed)

	return e
}

// SetClock overrides the time source, for deterministic tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Run drives the evaluation loop until the context ends. The trailing
// stop runs on its own ticker alongside.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.supervisor.EnsureConnected(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.lifecycle.RunTrailing(ctx, e.snapshotPrices)
	}()

	ticker := time.NewTicker(e.config.Engine.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()

			return ctx.Err()
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick runs one evaluation pass over every symbol. Exported so tests
// and tools can step the engine deterministically.
func (e *Engine) Tick(ctx context.Context) {
	if err := e.supervisor.EnsureConnected(ctx); err != nil {
		// The affected loops pause; cached account state stays readable.
		e.bus.Publish(types.Event{
			Type: types.EventTypeConnectorStatus,
			Details: map[string]string{
				"connected": "false",
				"error":     err.Error(),
			},
			Timestamp: e.now(),
		})
		e.logger.Error("connector unavailable, pausing evaluation", zap.Error(err))

		return
	}

	e.refreshAccount(ctx)

	var wg sync.WaitGroup

	for _, symbol := range e.config.Symbols {
		if err := e.workers.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer e.workers.Release(1)

			e.evaluateSymbol(ctx, symbol)
		}(symbol)
	}

	wg.Wait()
}

// evaluateSymbol runs one full pipeline pass for a symbol: ingest
// candles, manage open positions, and potentially emit one new order.
func (e *Engine) evaluateSymbol(ctx context.Context, symbol string) {
	price, ok := e.ingestCandles(ctx, symbol)
	if !ok {
		return
	}

	e.mu.Lock()
	e.lastPrices[symbol] = price
	e.mu.Unlock()

	// Open positions are managed even while halted; the stop only
	// blocks new exposure.
	e.lifecycle.EvaluateExits(ctx, map[string]float64{symbol: price})

	if e.risk.EmergencyStop().IsEngaged() {
		e.flattenOnce(ctx)

		return
	}

	e.armFlatten()

	set := e.indicators.SnapshotSet(symbol, e.config.Timeframes)
	if len(set.Snapshots) == 0 {
		return
	}

	windows := make(map[types.Timeframe][]types.Candle, len(e.config.Timeframes))

	for _, tf := range e.config.Timeframes {
		windows[tf] = e.indicators.Window(symbol, tf)
	}

	signal, reason, emitted := e.aggregator.OnSnapshotUpdate(set, windows, e.now())
	if !emitted {
		if reason != "" {
			e.bus.Publish(types.Event{
				Type:      types.EventTypeSignalRejected,
				Symbol:    symbol,
				Details:   map[string]string{"reason": reason},
				Timestamp: e.now(),
			})
		}

		return
	}

	e.bus.Publish(types.Event{
		Type:   types.EventTypeSignalEmitted,
		Symbol: symbol,
		Details: map[string]string{
			"direction":     string(signal.Direction),
			"strength":      strconv.FormatFloat(signal.Strength, 'f', 4, 64),
			"confirmations": strconv.Itoa(len(signal.Confirmations)),
			"strategy":      signal.Strategy,
		},
		Timestamp: e.now(),
	})

	e.submit(ctx, signal, price)
}

// submit runs the signal through risk evaluation and order execution.
func (e *Engine) submit(ctx context.Context, signal types.Signal, price float64) {
	account, ok := e.accountState()
	if !ok {
		e.logger.Warn("no account state yet, skipping signal", zap.String("symbol", signal.Symbol))

		return
	}

	market := risk.MarketContext{Price: price}

	fastest := e.config.Timeframes[len(e.config.Timeframes)-1]
	if snapshot, ok := e.indicators.Snapshot(signal.Symbol, fastest); ok {
		if atr, ready := snapshot.Value(types.IndicatorTypeATR); ready {
			market.ATR = atr
		}
	}

	decision, err := e.risk.Evaluate(signal, account, market)
	if err != nil {
		e.bus.Publish(types.Event{
			Type:   types.EventTypeSignalRejected,
			Symbol: signal.Symbol,
			Details: map[string]string{
				"reason": err.Error(),
				"code":   strconv.Itoa(int(errors.GetCode(err))),
			},
			Timestamp: e.now(),
		})
		e.logger.Info("signal rejected by risk",
			zap.String("symbol", signal.Symbol),
			zap.Error(err),
		)

		return
	}

	order, err := e.lifecycle.Execute(ctx, decision)
	if err == nil || (order.State.IsTerminal() && order.State != types.OrderStateFailed) {
		// The order reached the broker; the cap slot reserved during risk
		// evaluation stays consumed even when the broker rejected it.
		e.tracker.OnOrderSubmitted()
	} else {
		// Never reached the broker (validation failure or transport
		// retries exhausted); free the reserved cap slot.
		e.tracker.ReleaseSubmission()
	}

	if err != nil {
		e.logger.Error("order execution failed",
			zap.String("symbol", signal.Symbol),
			zap.String("state", string(order.State)),
			zap.Error(err),
		)
	}
}

// ingestCandles pulls the latest closed candles for every timeframe and
// feeds them to the indicator engine. Returns the latest close price.
func (e *Engine) ingestCandles(ctx context.Context, symbol string) (float64, bool) {
	connector := e.supervisor.Connector()
	price := 0.0
	any := false

	for _, tf := range e.config.Timeframes {
		callCtx, cancel := context.WithTimeout(ctx, e.config.Connector.CallTimeout)
		candles, err := connector.GetCandles(callCtx, symbol, tf, e.config.Engine.CandleWindowSize)
		cancel()

		if err != nil {
			e.logger.Warn("candle fetch failed",
				zap.String("symbol", symbol),
				zap.String("timeframe", string(tf)),
				zap.Error(err),
			)

			continue
		}

		for _, candle := range candles {
			if _, err := e.indicators.OnCandleClose(candle); err != nil {
				// Already-seen candles are expected on every poll.
				if errors.GetCode(err) != errors.ErrCodeStaleSnapshot {
					e.logger.Warn("candle rejected",
						zap.String("symbol", symbol),
						zap.String("timeframe", string(tf)),
						zap.Error(err),
					)
				}
			}
		}

		if len(candles) > 0 {
			price = candles[len(candles)-1].Close
			any = true
		}
	}

	return price, any
}

// refreshAccount queries the broker for account state, falling back to
// the last cached snapshot while disconnected.
func (e *Engine) refreshAccount(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, e.config.Connector.CallTimeout)
	defer cancel()

	account, err := e.supervisor.Connector().GetAccountState(callCtx)
	if err != nil {
		e.logger.Warn("account refresh failed, using cached state", zap.Error(err))

		return
	}

	e.mu.Lock()
	e.lastAccount = account
	e.hasAccount = true
	e.mu.Unlock()

	e.tracker.OnEquityUpdate(account.Equity)
}

func (e *Engine) accountState() (types.AccountState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastAccount, e.hasAccount
}

func (e *Engine) snapshotPrices() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	prices := make(map[string]float64, len(e.lastPrices))

	for symbol, price := range e.lastPrices {
		prices[symbol] = price
	}

	return prices
}

// flattenOnce closes all open positions the first time the emergency
// stop is observed engaged. Subsequent iterations skip evaluation but
// do not re-close.
func (e *Engine) flattenOnce(ctx context.Context) {
	e.mu.Lock()
	if e.emergencyFlatten {
		e.mu.Unlock()

		return
	}

	e.emergencyFlatten = true
	e.mu.Unlock()

	e.logger.Error("emergency stop engaged, flattening all positions")
	e.lifecycle.EmergencyCloseAll(ctx)
}

// armFlatten re-arms the one-shot flatten after the stop clears.
func (e *Engine) armFlatten() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.emergencyFlatten = false
}

// onPositionClosed feeds closed trades into the performance tracker and
// the trade log.
func (e *Engine) onPositionClosed(order types.Order, exitPrice, pnl float64, reason string) {
	account, _ := e.accountState()

	equity := account.Equity + pnl
	e.mu.Lock()
	e.lastAccount.Equity = equity
	e.lastAccount.Balance += pnl
	e.mu.Unlock()

	e.tracker.OnOrderClosed(order, pnl, equity)

	if e.tradeLog != nil {
		record := types.TradeRecord{
			OrderID:     order.ID,
			Symbol:      order.Symbol,
			Direction:   order.Direction,
			Size:        order.Size,
			EntryPrice:  order.EntryPrice,
			ExitPrice:   exitPrice,
			PnL:         pnl,
			CloseReason: reason,
			OpenedAt:    order.CreatedAt,
			ClosedAt:    e.now(),
		}

		if err := e.tradeLog.Append(record); err != nil {
			e.logger.Error("trade log append failed",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}
}
