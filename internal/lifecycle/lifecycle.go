// Package lifecycle owns every order from creation to its terminal
// state. It enforces the legal state machine, retries transport
// failures with bounded exponential backoff, keeps submissions strictly
// sequential per symbol, and runs the advance-only trailing stop over
// open positions.
package lifecycle

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-fx/internal/broker"
	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/eventbus"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// CloseHandler observes closed positions. Handlers run synchronously
// after the close is recorded; they must not block.
type CloseHandler func(order types.Order, exitPrice, pnl float64, reason string)

// Manager is the order lifecycle state machine. All mutations of an
// order after creation go through transition, so an illegal move is a
// bug surfaced immediately rather than silent state corruption.
type Manager struct {
	connector broker.Connector
	retry     broker.RetryPolicy
	config    config.LifecycleConfig
	specs     func(symbol string) config.SymbolSpec
	publisher eventbus.Publisher
	logger    *logger.Logger
	now       func() time.Time

	mu            sync.Mutex
	orders        map[string]*types.Order
	positions     map[string]*types.Position
	symbolLocks   map[string]*sync.Mutex
	closeHandlers []CloseHandler
}

// NewManager creates a lifecycle manager over the given connector.
func NewManager(connector broker.Connector, cfg config.LifecycleConfig, specs func(symbol string) config.SymbolSpec, publisher eventbus.Publisher, log *logger.Logger) *Manager {
	return &Manager{
		connector:   connector,
		retry:       broker.NewRetryPolicy(cfg.RetryInitialInterval, cfg.RetryMaxInterval, cfg.MaxRetries+1),
		config:      cfg,
		specs:       specs,
		publisher:   publisher,
		logger:      log,
		now:         time.Now,
		orders:      map[string]*types.Order{},
		positions:   map[string]*types.Position{},
		symbolLocks: map[string]*sync.Mutex{},
	}
}

// SetClock overrides the time source, for deterministic tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// RegisterCloseHandler adds an observer for closed positions.
func (m *Manager) RegisterCloseHandler(handler CloseHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeHandlers = append(m.closeHandlers, handler)
}

// Execute turns a risk decision into a broker order and drives it to a
// post-submission state. Transport failures are retried with backoff up
// to the configured cap, then the order fails terminally. A broker
// rejection is terminal immediately and never retried.
func (m *Manager) Execute(ctx context.Context, decision types.RiskDecision) (types.Order, error) {
	request := types.OrderRequest{
		ID:         uuid.NewString(),
		Symbol:     decision.Signal.Symbol,
		Direction:  decision.Signal.Direction,
		Size:       decision.Size,
		EntryPrice: decision.EntryPrice,
		StopLoss:   decision.StopLoss,
		TakeProfit: optional.Some(decision.TakeProfit),
		Reason:     types.Reason{Reason: types.OrderReasonSignal},
		Strategy:   decision.Signal.Strategy,
	}

	if err := request.Validate(); err != nil {
		return types.Order{}, err
	}

	// One in-flight submission per symbol.
	lock := m.symbolLock(request.Symbol)
	lock.Lock()
	defer lock.Unlock()

	order := &types.Order{
		ID:         request.ID,
		Symbol:     request.Symbol,
		Direction:  request.Direction,
		Size:       request.Size,
		EntryPrice: request.EntryPrice,
		Stop:       request.StopLoss,
		Target:     decision.TakeProfit,
		State:      types.OrderStatePending,
		Reason:     request.Reason,
		Strategy:   request.Strategy,
		CreatedAt:  m.now(),
	}

	m.mu.Lock()
	m.orders[order.ID] = order
	m.mu.Unlock()

	result, err := m.submit(ctx, order, request)
	if err != nil {
		if transitionErr := m.transition(order, types.OrderStateFailed); transitionErr != nil {
			return m.copyOf(order), transitionErr
		}

		failed := m.setReason(order, types.Reason{Reason: types.OrderReasonTransport, Message: err.Error()})

		m.publish(types.EventTypeOrderFailed, failed.Symbol, map[string]string{
			"order_id": failed.ID,
			"error":    err.Error(),
			"retries":  strconv.Itoa(failed.RetryCount),
		})

		return failed, errors.Wrapf(errors.ErrCodeRetriesExhausted, err,
			"order %s failed after %d retries", failed.ID, failed.RetryCount)
	}

	if err := m.transition(order, types.OrderStateSubmitted); err != nil {
		return m.copyOf(order), err
	}

	m.publish(types.EventTypeOrderSubmitted, order.Symbol, map[string]string{
		"order_id": order.ID,
		"size":     strconv.FormatFloat(order.Size, 'f', -1, 64),
	})

	return m.resolve(order, result)
}

// submit sends the order under the retry policy, counting attempts on
// the order itself.
func (m *Manager) submit(ctx context.Context, order *types.Order, request types.OrderRequest) (broker.OrderResult, error) {
	var result broker.OrderResult

	attempts := 0
	err := m.retry.Run(ctx, func() error {
		attempts++

		callCtx, cancel := context.WithTimeout(ctx, m.config.SubmitTimeout)
		defer cancel()

		var submitErr error

		result, submitErr = m.connector.SubmitOrder(callCtx, request)
		if submitErr != nil {
			m.logger.Warn("order submission attempt failed",
				zap.String("order_id", order.ID),
				zap.Int("attempt", attempts),
				zap.Error(submitErr),
			)
		}

		return submitErr
	})

	m.mu.Lock()
	order.RetryCount = attempts - 1
	m.mu.Unlock()

	return result, err
}

// resolve applies the broker's verdict to a Submitted order.
func (m *Manager) resolve(order *types.Order, result broker.OrderResult) (types.Order, error) {
	switch result.Status {
	case broker.ResultStatusRejected:
		if err := m.transition(order, types.OrderStateRejected); err != nil {
			return m.copyOf(order), err
		}

		rejected := m.setReason(order, types.Reason{Reason: types.OrderReasonBrokerReject, Message: result.RejectReason})

		m.publish(types.EventTypeOrderRejected, rejected.Symbol, map[string]string{
			"order_id": rejected.ID,
			"reason":   result.RejectReason,
		})

		return rejected, errors.Newf(errors.ErrCodeOrderRejected,
			"order %s rejected by broker: %s", rejected.ID, result.RejectReason)

	case broker.ResultStatusPartiallyFilled:
		if err := m.transition(order, types.OrderStatePartiallyFilled); err != nil {
			return m.copyOf(order), err
		}

		m.openPosition(order, result)

		return m.copyOf(order), nil

	case broker.ResultStatusFilled:
		if err := m.transition(order, types.OrderStateFilled); err != nil {
			return m.copyOf(order), err
		}

		m.openPosition(order, result)

		return m.copyOf(order), nil

	default:
		return m.copyOf(order), errors.Newf(errors.ErrCodeOrderFailed,
			"order %s: unknown broker result %q", order.ID, result.Status)
	}
}

// CompleteFill moves a partially filled order to Filled when the broker
// reports the remainder executed.
func (m *Manager) CompleteFill(orderID string, totalSize float64) error {
	m.mu.Lock()
	order, ok := m.orders[orderID]
	position := m.positions[orderID]
	m.mu.Unlock()

	if !ok {
		return errors.Newf(errors.ErrCodeOrderNotFound, "order %s not found", orderID)
	}

	if err := m.transition(order, types.OrderStateFilled); err != nil {
		return err
	}

	if position != nil {
		m.mu.Lock()
		position.Size = totalSize
		m.mu.Unlock()
	}

	return nil
}

// openPosition materializes the position behind a fill and announces it.
func (m *Manager) openPosition(order *types.Order, result broker.OrderResult) {
	m.mu.Lock()
	order.EntryPrice = result.FillPrice
	m.positions[order.ID] = &types.Position{
		OrderID:    order.ID,
		Symbol:     order.Symbol,
		Direction:  order.Direction,
		Size:       result.FilledSize,
		EntryPrice: result.FillPrice,
		StopLoss:   order.Stop,
		TakeProfit: order.Target,
		OpenedAt:   result.ExecutedAt,
	}
	m.mu.Unlock()

	m.publish(types.EventTypeOrderFilled, order.Symbol, map[string]string{
		"order_id":   order.ID,
		"fill_price": strconv.FormatFloat(result.FillPrice, 'f', -1, 64),
		"size":       strconv.FormatFloat(result.FilledSize, 'f', -1, 64),
	})

	m.logger.Info("position opened",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("direction", string(order.Direction)),
		zap.Float64("size", result.FilledSize),
		zap.Float64("fill_price", result.FillPrice),
	)
}

// ClosePosition closes an open position at market and reports the
// realized profit or loss to the registered handlers.
func (m *Manager) ClosePosition(ctx context.Context, orderID, reason string) (types.Order, float64, error) {
	m.mu.Lock()
	order, ok := m.orders[orderID]
	position, hasPosition := m.positions[orderID]
	m.mu.Unlock()

	if !ok || !hasPosition {
		return types.Order{}, 0, errors.Newf(errors.ErrCodeOrderNotFound, "no open position for order %s", orderID)
	}

	callCtx, cancel := context.WithTimeout(ctx, m.config.SubmitTimeout)
	defer cancel()

	result, err := m.connector.ClosePosition(callCtx, orderID)
	if err != nil {
		return m.copyOf(order), 0, errors.Wrapf(errors.ErrCodeOrderFailed, err, "closing order %s", orderID)
	}

	if err := m.transition(order, types.OrderStateClosed); err != nil {
		return m.copyOf(order), 0, err
	}

	spec := m.specs(position.Symbol)
	pnl := types.CalculatePnL(position.Direction, position.Size,
		position.EntryPrice, result.ExitPrice, spec.PipSize, spec.PipValue)

	m.mu.Lock()
	order.Reason = types.Reason{Reason: reason}
	closed := *order
	delete(m.positions, orderID)
	handlers := make([]CloseHandler, len(m.closeHandlers))
	copy(handlers, m.closeHandlers)
	m.mu.Unlock()

	m.publish(types.EventTypeOrderClosed, closed.Symbol, map[string]string{
		"order_id":   closed.ID,
		"exit_price": strconv.FormatFloat(result.ExitPrice, 'f', -1, 64),
		"pnl":        strconv.FormatFloat(pnl, 'f', 2, 64),
		"reason":     reason,
	})

	m.logger.Info("position closed",
		zap.String("order_id", closed.ID),
		zap.String("symbol", closed.Symbol),
		zap.Float64("exit_price", result.ExitPrice),
		zap.Float64("pnl", pnl),
		zap.String("reason", reason),
	)

	for _, handler := range handlers {
		handler(closed, result.ExitPrice, pnl, reason)
	}

	return closed, pnl, nil
}

// EvaluateExits closes positions whose stop or target the given prices
// have crossed. The simulated connector does not trigger server-side
// stops, so the evaluation loop drives them here.
func (m *Manager) EvaluateExits(ctx context.Context, prices map[string]float64) {
	for _, position := range m.openPositions() {
		price, ok := prices[position.Symbol]
		if !ok {
			continue
		}

		if reason, hit := exitReason(position, price); hit {
			if _, _, err := m.ClosePosition(ctx, position.OrderID, reason); err != nil {
				m.logger.Error("exit close failed",
					zap.String("order_id", position.OrderID),
					zap.String("reason", reason),
					zap.Error(err),
				)
			}
		}
	}
}

// EvaluateTrailingStops advances stops that price has left behind by at
// least the configured increment. Stops only ever move in the favorable
// direction; a failed broker update keeps the old stop and is retried
// on the next tick.
func (m *Manager) EvaluateTrailingStops(ctx context.Context, prices map[string]float64) {
	for _, position := range m.openPositions() {
		price, ok := prices[position.Symbol]
		if !ok {
			continue
		}

		spec := m.specs(position.Symbol)
		distance := m.config.TrailingStopIncrementPips * spec.PipSize

		var candidate float64
		if position.Direction == types.DirectionLong {
			candidate = price - distance
			if candidate <= position.StopLoss {
				continue
			}
		} else {
			candidate = price + distance
			if candidate >= position.StopLoss {
				continue
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, m.config.SubmitTimeout)
		err := m.connector.ModifyStop(callCtx, position.OrderID, candidate)
		cancel()

		if err != nil {
			// Keep the previous stop; next tick tries again.
			m.logger.Warn("trailing stop update failed, will retry",
				zap.String("order_id", position.OrderID),
				zap.Float64("candidate", candidate),
				zap.Error(err),
			)

			continue
		}

		m.mu.Lock()
		if live, ok := m.positions[position.OrderID]; ok {
			live.StopLoss = candidate
		}

		if order, ok := m.orders[position.OrderID]; ok {
			order.Stop = candidate
		}
		m.mu.Unlock()

		m.publish(types.EventTypeTrailingStop, position.Symbol, map[string]string{
			"order_id": position.OrderID,
			"stop":     strconv.FormatFloat(candidate, 'f', -1, 64),
		})
	}
}

// RunTrailing runs the trailing-stop evaluation on its ticker until the
// context ends. Prices are read through the supplied snapshot func.
func (m *Manager) RunTrailing(ctx context.Context, prices func() map[string]float64) {
	ticker := time.NewTicker(m.config.TrailingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvaluateTrailingStops(ctx, prices())
		}
	}
}

// EmergencyCloseAll flattens every open position, best effort. Errors
// are logged and the remaining positions still get their close attempt.
func (m *Manager) EmergencyCloseAll(ctx context.Context) {
	for _, position := range m.openPositions() {
		if _, _, err := m.ClosePosition(ctx, position.OrderID, types.OrderReasonEmergencyStop); err != nil {
			m.logger.Error("emergency close failed",
				zap.String("order_id", position.OrderID),
				zap.Error(err),
			)
		}
	}
}

// OpenPositionCount implements the risk manager's position view.
func (m *Manager) OpenPositionCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0

	for _, position := range m.positions {
		if position.Symbol == symbol {
			count++
		}
	}

	return count
}

// AggregateExposureLots implements the risk manager's position view.
func (m *Manager) AggregateExposureLots() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0.0

	for _, position := range m.positions {
		total += position.Size
	}

	return total
}

// Order returns a copy of the tracked order.
func (m *Manager) Order(orderID string) (types.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return types.Order{}, false
	}

	return *order, true
}

// Positions returns a copy of every open position.
func (m *Manager) Positions() []types.Position {
	return m.openPositions()
}

func (m *Manager) openPositions() []types.Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	positions := make([]types.Position, 0, len(m.positions))

	for _, position := range m.positions {
		positions = append(positions, *position)
	}

	return positions
}

// transition moves the order to next under the state machine, or
// reports the illegal move.
func (m *Manager) transition(order *types.Order, next types.OrderState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !order.State.CanTransition(next) {
		return errors.Newf(errors.ErrCodeInvalidTransition,
			"order %s: illegal transition %s -> %s", order.ID, order.State, next)
	}

	m.logger.Debug("order transition",
		zap.String("order_id", order.ID),
		zap.String("from", string(order.State)),
		zap.String("to", string(next)),
	)

	order.State = next

	return nil
}

// setReason records why the order landed in its current state and
// returns a copy taken under the same lock, so concurrent readers
// through Order never see the write half-applied.
func (m *Manager) setReason(order *types.Order, reason types.Reason) types.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	order.Reason = reason

	return *order
}

func (m *Manager) copyOf(order *types.Order) types.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	return *order
}

func (m *Manager) symbolLock(symbol string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.symbolLocks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		m.symbolLocks[symbol] = lock
	}

	return lock
}

func (m *Manager) publish(eventType types.EventType, symbol string, details map[string]string) {
	m.publisher.Publish(types.Event{
		Type:      eventType,
		Symbol:    symbol,
		Details:   details,
		Timestamp: m.now(),
	})
}

// exitReason reports whether price has crossed the position's stop or
// target.
func exitReason(position types.Position, price float64) (string, bool) {
	if position.Direction == types.DirectionLong {
		if price <= position.StopLoss {
			return types.OrderReasonStopLoss, true
		}

		if position.TakeProfit > 0 && price >= position.TakeProfit {
			return types.OrderReasonTakeProfit, true
		}

		return "", false
	}

	if price >= position.StopLoss {
		return types.OrderReasonStopLoss, true
	}

	if position.TakeProfit > 0 && price <= position.TakeProfit {
		return types.OrderReasonTakeProfit, true
	}

	return "", false
}
