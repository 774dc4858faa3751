// Package router keeps the audio graph's effect routing in line with the
// user's effect configuration.
package router

import (
	"fmt"

	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/pattern"
)

// Target is the part of the audio graph the router rewires.
type Target interface {
	RouteAll(roles []pattern.Role, units ...*effects.Unit)
}

// Router owns one effect unit per kind for its whole lifetime.
type Router struct {
	target Target
	units  map[effects.Kind]*effects.Unit
}

func New(sampleRate int, target Target) (*Router, error) {
	r := &Router{target: target, units: make(map[effects.Kind]*effects.Unit, len(effects.Kinds))}
	for _, k := range effects.Kinds {
		u, err := effects.NewUnit(k, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("router: %w", err)
		}
		r.units[k] = u
	}
	return r, nil
}

// Unit returns the unit for kind.
func (r *Router) Unit(kind effects.Kind) (*effects.Unit, bool) {
	u, ok := r.units[kind]
	return u, ok
}

// Apply publishes every intensity in cfg and routes each role through the
// enabled effects in chain order, or straight to the output when none are
// enabled. Applying the same configuration twice is a no-op.
func (r *Router) Apply(cfg effects.Config, roles []pattern.Role) {
	for kind, s := range cfg {
		if u, ok := r.units[kind]; ok {
			u.SetIntensity(s.Intensity)
		}
	}
	var chain []*effects.Unit
	for _, kind := range cfg.Enabled() {
		if u, ok := r.units[kind]; ok {
			chain = append(chain, u)
		}
	}
	r.target.RouteAll(roles, chain...)
}

// Dispose releases every unit. Later calls are no-ops.
func (r *Router) Dispose() {
	for _, u := range r.units {
		u.Dispose()
	}
}
