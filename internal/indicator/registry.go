package indicator

import (
	"sync"

	"github.com/rxtech-lab/argo-fx/internal/types"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// Registry manages all available indicators.
type Registry interface {
	Register(indicator Indicator) error
	Get(name types.IndicatorType) (Indicator, error)
	List() []Indicator
	Remove(name types.IndicatorType) error
}

// RegistryV1 is the default map-backed registry.
type RegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
	order      []types.IndicatorType
	mu         sync.RWMutex
}

// NewRegistry creates a new empty indicator registry.
func NewRegistry() Registry {
	return &RegistryV1{
		indicators: make(map[types.IndicatorType]Indicator),
		order:      nil,
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry loaded with the standard indicator
// set at conventional periods.
func NewDefaultRegistry() Registry {
	registry := NewRegistry()

	for _, ind := range []Indicator{
		NewSMA(20),
		NewWMA(20),
		NewEMA(9, 21),
		NewRSI(14),
		NewMACD(12, 26, 9),
		NewBollingerBands(20, 2.0),
		NewATR(14),
		NewStochastic(14, 3),
		NewWilliamsR(14),
		NewCCI(20),
	} {
		// Registration of a fresh registry with distinct names cannot fail.
		_ = registry.Register(ind)
	}

	return registry
}

// Register adds an indicator to the registry.
func (r *RegistryV1) Register(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s already registered", name)
	}

	r.indicators[name] = indicator
	r.order = append(r.order, name)

	return nil
}

// Get retrieves an indicator by its primary name.
func (r *RegistryV1) Get(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	return indicator, nil
}

// List returns all registered indicators in registration order.
func (r *RegistryV1) List() []Indicator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Indicator, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.indicators[name])
	}

	return out
}

// Remove removes an indicator from the registry.
func (r *RegistryV1) Remove(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	delete(r.indicators, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}
