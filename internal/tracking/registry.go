package tracking

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Registry maps a delivery method to its tracking number strategy, with one
// mandatory default. Construction validates the whole set up front; a missing
// default is a startup failure, not something discovered on the first request.
type Registry struct {
	byMethod map[enums.DeliveryMethod]Strategy
	fallback Strategy
}

// NewRegistry builds a registry from the provided strategies. Exactly one
// strategy must declare no method; it becomes the default. All construction
// problems are collected and reported together.
func NewRegistry(strategies ...Strategy) (*Registry, error) {
	byMethod := make(map[enums.DeliveryMethod]Strategy, len(strategies))
	var fallback Strategy
	var errs error

	for _, strategy := range strategies {
		if strategy == nil {
			errs = multierr.Append(errs, fmt.Errorf("nil strategy provided"))
			continue
		}
		method, ok := strategy.Method()
		if !ok {
			if fallback != nil {
				errs = multierr.Append(errs, fmt.Errorf("duplicate default strategy"))
				continue
			}
			fallback = strategy
			continue
		}
		if !method.IsValid() {
			errs = multierr.Append(errs, fmt.Errorf("strategy declares unknown delivery method %q", method))
			continue
		}
		if _, exists := byMethod[method]; exists {
			errs = multierr.Append(errs, fmt.Errorf("duplicate strategy for delivery method %q", method))
			continue
		}
		byMethod[method] = strategy
	}

	if fallback == nil {
		errs = multierr.Append(errs, fmt.Errorf("default tracking strategy is required"))
	}
	if errs != nil {
		return nil, errs
	}
	return &Registry{byMethod: byMethod, fallback: fallback}, nil
}

// NewDefaultRegistry wires the built-in strategies.
func NewDefaultRegistry() (*Registry, error) {
	return NewRegistry(StandardStrategy{}, ExpressStrategy{}, DefaultStrategy{})
}

// Assign returns a tracking number for the method, falling back to the
// default when no method-specific strategy is registered.
func (r *Registry) Assign(method enums.DeliveryMethod) (string, error) {
	strategy, ok := r.byMethod[method]
	if !ok {
		strategy = r.fallback
	}
	return strategy.Generate()
}
