package broker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// simPosition is an open paper position.
type simPosition struct {
	request   types.OrderRequest
	fillPrice float64
	stop      float64
	openedAt  time.Time
}

// Simulated is a paper-trading connector. Orders fill instantly at the
// current price, positions close at market, and the account is marked
// to market on every close. Tests inject transport failures and
// broker rejections through the Fail*/Reject* knobs.
type Simulated struct {
	mu        sync.Mutex
	connected bool
	now       func() time.Time

	specs   func(symbol string) config.SymbolSpec
	prices  map[string]float64
	account types.AccountState

	positions map[string]*simPosition

	failCalls     int
	failErr       error
	rejectReason  string
	partialRatio  float64
	failStopCalls int
}

// NewSimulated creates a paper connector seeded with the given equity.
func NewSimulated(initialEquity float64, specs func(symbol string) config.SymbolSpec) *Simulated {
	return &Simulated{
		now:    time.Now,
		specs:  specs,
		prices: map[string]float64{},
		account: types.AccountState{
			Equity:     initialEquity,
			Balance:    initialEquity,
			FreeMargin: initialEquity,
		},
		positions: map[string]*simPosition{},
	}
}

// SetClock overrides the time source, for deterministic tests.
func (s *Simulated) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}

// SetPrice sets the current market price for a symbol.
func (s *Simulated) SetPrice(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[symbol] = price
}

// FailNextCalls makes the next n transport calls fail with err.
func (s *Simulated) FailNextCalls(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failCalls = n
	s.failErr = err
}

// RejectNextSubmit makes the next submission come back broker-rejected.
func (s *Simulated) RejectNextSubmit(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rejectReason = reason
}

// PartialFillNextSubmit fills only ratio of the next submission's size.
func (s *Simulated) PartialFillNextSubmit(ratio float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.partialRatio = ratio
}

// FailNextStopModifies makes the next n ModifyStop calls fail.
func (s *Simulated) FailNextStopModifies(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failStopCalls = n
}

// Disconnect drops the session, as a terminal crash would.
func (s *Simulated) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
}

// Connect implements Connector.
func (s *Simulated) Connect(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.consumeFailure(); err != nil {
		return err
	}

	s.connected = true

	return nil
}

// IsConnected implements Connector.
func (s *Simulated) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connected
}

// GetCandles implements Connector with a deterministic random walk per
// symbol, so repeated runs see the same series.
func (s *Simulated) GetCandles(_ context.Context, symbol string, timeframe types.Timeframe, count int) ([]types.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return nil, err
	}

	if !timeframe.IsValid() {
		return nil, errors.Newf(errors.ErrCodeUnknownTimeframe, "unknown timeframe %q", timeframe)
	}

	base := s.prices[symbol]
	if base == 0 {
		base = 1.0
	}

	spec := s.specs(symbol)
	step := timeframe.Duration()
	end := s.now().Truncate(step)
	rng := rand.New(rand.NewSource(seedFor(symbol, timeframe)))

	candles := make([]types.Candle, 0, count)
	price := base

	for i := count; i > 0; i-- {
		drift := (rng.Float64() - 0.5) * 10 * spec.PipSize
		open := price
		closePrice := price + drift
		high := open
		if closePrice > high {
			high = closePrice
		}
		high += rng.Float64() * 2 * spec.PipSize
		low := open
		if closePrice < low {
			low = closePrice
		}
		low -= rng.Float64() * 2 * spec.PipSize

		candles = append(candles, types.Candle{
			Symbol:    symbol,
			Timeframe: timeframe,
			OpenTime:  end.Add(-time.Duration(i) * step),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    float64(100 + rng.Intn(900)),
		})

		price = closePrice
	}

	return candles, nil
}

// SubmitOrder implements Connector.
func (s *Simulated) SubmitOrder(_ context.Context, request types.OrderRequest) (OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return OrderResult{}, err
	}

	if reason := s.rejectReason; reason != "" {
		s.rejectReason = ""

		return OrderResult{
			OrderID:      request.ID,
			Status:       ResultStatusRejected,
			RejectReason: reason,
			ExecutedAt:   s.now(),
		}, nil
	}

	fillPrice := s.prices[request.Symbol]
	if fillPrice == 0 {
		fillPrice = request.EntryPrice
	}

	status := ResultStatusFilled
	filled := request.Size

	if s.partialRatio > 0 && s.partialRatio < 1 {
		status = ResultStatusPartiallyFilled
		filled = request.Size * s.partialRatio
		s.partialRatio = 0
	}

	s.positions[request.ID] = &simPosition{
		request:   request,
		fillPrice: fillPrice,
		stop:      request.StopLoss,
		openedAt:  s.now(),
	}
	s.account.OpenPositions = len(s.positions)

	return OrderResult{
		OrderID:    request.ID,
		Status:     status,
		FillPrice:  fillPrice,
		FilledSize: filled,
		ExecutedAt: s.now(),
	}, nil
}

// ModifyStop implements Connector.
func (s *Simulated) ModifyStop(_ context.Context, orderID string, newStop float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return err
	}

	if s.failStopCalls > 0 {
		s.failStopCalls--

		return errors.New(errors.ErrCodeConnectionTimeout, "stop modify timed out")
	}

	position, ok := s.positions[orderID]
	if !ok {
		return errors.Newf(errors.ErrCodeOrderNotFound, "no open position for order %s", orderID)
	}

	position.stop = newStop

	return nil
}

// ClosePosition implements Connector.
func (s *Simulated) ClosePosition(_ context.Context, orderID string) (CloseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return CloseResult{}, err
	}

	position, ok := s.positions[orderID]
	if !ok {
		return CloseResult{}, errors.Newf(errors.ErrCodeOrderNotFound, "no open position for order %s", orderID)
	}

	exit := s.prices[position.request.Symbol]
	if exit == 0 {
		exit = position.fillPrice
	}

	spec := s.specs(position.request.Symbol)
	pnl := types.CalculatePnL(position.request.Direction, position.request.Size,
		position.fillPrice, exit, spec.PipSize, spec.PipValue)

	delete(s.positions, orderID)

	s.account.Balance += pnl
	s.account.Equity = s.account.Balance
	s.account.FreeMargin = s.account.Equity
	s.account.OpenPositions = len(s.positions)

	return CloseResult{
		OrderID:   orderID,
		ExitPrice: exit,
		ClosedAt:  s.now(),
	}, nil
}

// GetAccountState implements Connector.
func (s *Simulated) GetAccountState(_ context.Context) (types.AccountState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return types.AccountState{}, err
	}

	return s.account, nil
}

// StopFor returns the current broker-side stop of an open position,
// for assertions in tests.
func (s *Simulated) StopFor(orderID string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position, ok := s.positions[orderID]
	if !ok {
		return 0, false
	}

	return position.stop, true
}

// OpenPositionCount returns the count of open paper positions.
func (s *Simulated) OpenPositionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.positions)
}

// guard enforces connectivity and pending failure injections. Callers
// hold the mutex.
func (s *Simulated) guard() error {
	if err := s.consumeFailure(); err != nil {
		return err
	}

	if !s.connected {
		return errors.New(errors.ErrCodeNotConnected, "terminal not connected")
	}

	return nil
}

func (s *Simulated) consumeFailure() error {
	if s.failCalls > 0 {
		s.failCalls--

		return s.failErr
	}

	return nil
}

func seedFor(symbol string, timeframe types.Timeframe) int64 {
	seed := int64(0)

	for _, r := range symbol + string(timeframe) {
		seed = seed*31 + int64(r)
	}

	return seed
}
