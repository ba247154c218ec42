package strategies

import (
	"fmt"

	"EquityScout/internal/domain/models"
	domsvc "EquityScout/internal/domain/service"
)

// Strategy identifiers accepted in a screening filter set.
const (
	StrategyCloudTrend  = "cloud_trend"
	StrategySqueeze     = "squeeze"
	StrategyMAAlignment = "ma_alignment"
	StrategyCupHandle   = "cup_handle"
)

// MetThreshold is the uniform per-strategy score at or above which a
// strategy counts as "met" for combination purposes.
const MetThreshold = 40

// Registry holds the fixed set of strategy implementations keyed by name.
type Registry struct {
	byName map[string]domsvc.Strategy
	order  []string
}

// NewRegistry builds the registry with all four analyzers.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]domsvc.Strategy)}
	for _, s := range []domsvc.Strategy{
		NewCloudTrend(),
		NewSqueeze(),
		NewMAAlignment(),
		NewCupHandle(),
	} {
		r.byName[s.Name()] = s
		r.order = append(r.order, s.Name())
	}
	return r
}

// Get returns the named strategy or nil.
func (r *Registry) Get(name string) domsvc.Strategy { return r.byName[name] }

// Names returns all registered strategy names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Select resolves a filter set to strategy implementations, failing fast on
// an empty set or unknown names.
func (r *Registry) Select(filters []string) ([]domsvc.Strategy, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("%w: empty filter set", models.ErrInvalidFilter)
	}
	out := make([]domsvc.Strategy, 0, len(filters))
	seen := make(map[string]bool, len(filters))
	for _, f := range filters {
		if seen[f] {
			continue
		}
		seen[f] = true
		s := r.byName[f]
		if s == nil {
			return nil, fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidFilter, f)
		}
		out = append(out, s)
	}
	return out, nil
}
