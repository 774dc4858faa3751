// Package graph is the audio graph: instrument handles routed through effect
// chains into a master bus. Process is the audio callback.
package graph

import (
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/instrument"
	"github.com/cbegin/loopify-go/internal/pattern"
)

// Clock is advanced once per rendered frame before the instruments render.
type Clock interface {
	Advance()
}

type trigger struct {
	role   pattern.Role
	note   int
	frames int
}

// route is a group of instruments that share one effect chain.
type route struct {
	key     string
	units   []*effects.Unit
	members []*instrument.Handle
}

// Graph is safe for concurrent use. Handles are only touched while holding
// mu; triggers from any goroutine are queued and applied on the audio thread.
type Graph struct {
	mu      sync.Mutex
	clock   Clock
	handles []*instrument.Handle
	byRole  map[pattern.Role]*instrument.Handle
	routing map[pattern.Role][]*effects.Unit
	routes  []*route
	eq      *effects.EQ5Band
	limiter *effects.Compressor
	tap     func([]float32)

	volume atomic.Uint64

	qmu     sync.Mutex
	pending []trigger
	drain   []trigger
}

// New builds a graph over handles with every instrument routed straight to
// the master bus. clock may be nil.
func New(sampleRate int, clock Clock, handles []*instrument.Handle) *Graph {
	g := &Graph{
		clock:   clock,
		handles: handles,
		byRole:  make(map[pattern.Role]*instrument.Handle, len(handles)),
		routing: make(map[pattern.Role][]*effects.Unit, len(handles)),
		eq:      effects.NewEQ5Band(sampleRate),
		limiter: effects.NewCompressor(sampleRate, -6, 8, 2, 120, 0),
	}
	for _, h := range handles {
		g.byRole[h.Role()] = h
	}
	g.volume.Store(math.Float64bits(1))
	g.rebuild()
	return g
}

// SetTap installs a callback that receives every rendered buffer.
func (g *Graph) SetTap(tap func([]float32)) {
	g.mu.Lock()
	g.tap = tap
	g.mu.Unlock()
}

// Route sends role through units in order. No units means direct to master.
// A unit must not appear in two different routes.
func (g *Graph) Route(role pattern.Role, units ...*effects.Unit) {
	g.RouteAll([]pattern.Role{role}, units...)
}

// RouteAll sends every role through the same units under one lock. The audio
// thread sees either the old topology or the new one.
func (g *Graph) RouteAll(roles []pattern.Role, units ...*effects.Unit) {
	g.mu.Lock()
	defer g.mu.Unlock()
	changed := false
	for _, role := range roles {
		if _, ok := g.byRole[role]; !ok {
			continue
		}
		g.routing[role] = append([]*effects.Unit(nil), units...)
		changed = true
	}
	if changed {
		g.rebuild()
	}
}

// Routing returns the effect kinds role currently passes through.
func (g *Graph) Routing(role pattern.Role) []effects.Kind {
	g.mu.Lock()
	defer g.mu.Unlock()
	units := g.routing[role]
	out := make([]effects.Kind, 0, len(units))
	for _, u := range units {
		out = append(out, u.Kind())
	}
	return out
}

func (g *Graph) rebuild() {
	index := map[string]*route{}
	g.routes = g.routes[:0]
	for _, h := range g.handles {
		units := g.routing[h.Role()]
		key := routeKey(units)
		rt, ok := index[key]
		if !ok {
			rt = &route{key: key, units: units}
			index[key] = rt
			g.routes = append(g.routes, rt)
		}
		rt.members = append(rt.members, h)
	}
}

func routeKey(units []*effects.Unit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = string(u.Kind())
	}
	return strings.Join(parts, ">")
}

// Trigger queues a bounded note for role. It never blocks on the audio
// thread and may be called from clock callbacks.
func (g *Graph) Trigger(role pattern.Role, note int, frames int) {
	g.qmu.Lock()
	g.pending = append(g.pending, trigger{role: role, note: note, frames: frames})
	g.qmu.Unlock()
}

// TriggersWithPitch reports the capability of role's handle.
func (g *Graph) TriggersWithPitch(role pattern.Role) (bool, bool) {
	h, ok := g.byRole[role]
	if !ok {
		return false, false
	}
	return h.TriggersWithPitch(), true
}

func (g *Graph) applyTriggers() {
	g.qmu.Lock()
	g.drain, g.pending = g.pending, g.drain[:0]
	g.qmu.Unlock()
	for _, tr := range g.drain {
		if h, ok := g.byRole[tr.role]; ok {
			h.TriggerAttackRelease(tr.note, tr.frames)
		}
	}
	g.drain = g.drain[:0]
}

// Process renders interleaved stereo into dst.
func (g *Graph) Process(dst []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	vol := float32(math.Float64frombits(g.volume.Load()))
	for i := 0; i+1 < len(dst); i += 2 {
		if g.clock != nil {
			g.clock.Advance()
		}
		g.applyTriggers()
		var outL, outR float32
		for _, rt := range g.routes {
			var l, r float32
			for _, h := range rt.members {
				hl, hr := h.RenderFrame()
				l += hl
				r += hr
			}
			for _, u := range rt.units {
				l, r = u.Process(l, r)
			}
			outL += l
			outR += r
		}
		outL, outR = g.eq.Process(outL, outR)
		outL, outR = g.limiter.Process(outL, outR)
		dst[i] = clamp(outL * vol)
		dst[i+1] = clamp(outR * vol)
	}
	if g.tap != nil {
		g.tap(dst)
	}
}

// Silence cuts every sounding voice and drops queued triggers.
func (g *Graph) Silence() {
	g.qmu.Lock()
	g.pending = g.pending[:0]
	g.qmu.Unlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, h := range g.handles {
		if !h.Disposed() {
			h.Reset()
		}
	}
	for _, rt := range g.routes {
		for _, u := range rt.units {
			u.Reset()
		}
	}
	g.eq.Reset()
	g.limiter.Reset()
}

func (g *Graph) SetMasterVolume(v float64) {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	g.volume.Store(math.Float64bits(v))
}

func (g *Graph) MasterVolume() float64 {
	return math.Float64frombits(g.volume.Load())
}

func (g *Graph) SetEQBand(band int, gain float32) { g.eq.SetGain(band, gain) }

func (g *Graph) EQBand(band int) float32 { return g.eq.Gain(band) }

// Do runs fn while holding the graph lock.
func (g *Graph) Do(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

func clamp(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
