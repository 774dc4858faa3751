package graph

import (
	"reflect"
	"testing"

	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/instrument"
	"github.com/cbegin/loopify-go/internal/pattern"
)

type countingClock struct{ n int }

func (c *countingClock) Advance() { c.n++ }

func newTestGraph(clock Clock) (*Graph, *instrument.Registry) {
	reg := instrument.CreateAll(48000)
	return New(48000, clock, reg.Handles()), reg
}

func peak(buf []float32) float32 {
	var p float32
	for _, v := range buf {
		if v < 0 {
			v = -v
		}
		if v > p {
			p = v
		}
	}
	return p
}

func TestProcessSilentWithoutTriggers(t *testing.T) {
	g, _ := newTestGraph(nil)
	buf := make([]float32, 1024)
	g.Process(buf)
	if p := peak(buf); p != 0 {
		t.Fatalf("peak = %f, want 0", p)
	}
}

func TestClockAdvancesOncePerFrame(t *testing.T) {
	clock := &countingClock{}
	g, _ := newTestGraph(clock)
	g.Process(make([]float32, 512))
	if clock.n != 256 {
		t.Fatalf("clock advanced %d times, want 256", clock.n)
	}
}

func TestTriggerIsRendered(t *testing.T) {
	g, _ := newTestGraph(nil)
	g.Trigger(pattern.RoleSynth, 60, 4800)
	buf := make([]float32, 4800*2)
	g.Process(buf)
	if p := peak(buf); p < 0.01 {
		t.Fatalf("peak = %f, want audible output", p)
	}
}

func TestTriggerUnknownRoleIgnored(t *testing.T) {
	g, _ := newTestGraph(nil)
	g.Trigger(pattern.Role("kazoo"), 60, 4800)
	buf := make([]float32, 1024)
	g.Process(buf)
	if p := peak(buf); p != 0 {
		t.Fatalf("peak = %f, want 0", p)
	}
}

func TestRouteAndRouting(t *testing.T) {
	g, _ := newTestGraph(nil)
	dist, _ := effects.NewUnit(effects.KindDistortion, 48000)
	rev, _ := effects.NewUnit(effects.KindReverb, 48000)
	g.Route(pattern.RoleBass, dist, rev)
	want := []effects.Kind{effects.KindDistortion, effects.KindReverb}
	if got := g.Routing(pattern.RoleBass); !reflect.DeepEqual(got, want) {
		t.Fatalf("Routing = %v, want %v", got, want)
	}
	if got := g.Routing(pattern.RoleLead); len(got) != 0 {
		t.Fatalf("lead should be direct, got %v", got)
	}
	g.Route(pattern.RoleBass)
	if got := g.Routing(pattern.RoleBass); len(got) != 0 {
		t.Fatalf("bass should be direct after reroute, got %v", got)
	}
}

func TestRouteAllKeepsEachUnitInOneRoute(t *testing.T) {
	g, _ := newTestGraph(nil)
	delay, _ := effects.NewUnit(effects.KindDelay, 48000)
	rev, _ := effects.NewUnit(effects.KindReverb, 48000)
	g.RouteAll(pattern.Roles, rev)
	g.RouteAll(pattern.Roles, delay, rev)

	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(g.routes))
	}
	if key := g.routes[0].key; key != "delay>reverb" {
		t.Fatalf("route key = %q, want delay>reverb", key)
	}
	if n := len(g.routes[0].members); n != len(pattern.Roles) {
		t.Fatalf("route has %d members, want %d", n, len(pattern.Roles))
	}
}

func TestMasterVolumeZeroMutes(t *testing.T) {
	g, _ := newTestGraph(nil)
	g.SetMasterVolume(0)
	g.Trigger(pattern.RoleLead, 72, 4800)
	buf := make([]float32, 4800)
	g.Process(buf)
	if p := peak(buf); p != 0 {
		t.Fatalf("peak = %f, want 0", p)
	}
	g.SetMasterVolume(-1)
	if g.MasterVolume() != 0 {
		t.Fatalf("negative volume should clamp to 0, got %f", g.MasterVolume())
	}
}

func TestTapSeesEveryBuffer(t *testing.T) {
	g, _ := newTestGraph(nil)
	calls := 0
	g.SetTap(func(buf []float32) { calls++ })
	g.Process(make([]float32, 64))
	g.Process(make([]float32, 64))
	if calls != 2 {
		t.Fatalf("tap calls = %d, want 2", calls)
	}
}

func TestSilenceCutsSound(t *testing.T) {
	g, _ := newTestGraph(nil)
	g.Trigger(pattern.RolePad, 60, 48000)
	g.Process(make([]float32, 2048))
	g.Silence()
	buf := make([]float32, 2048)
	g.Process(buf)
	if p := peak(buf); p > 0.001 {
		t.Fatalf("peak after Silence = %f", p)
	}
}
