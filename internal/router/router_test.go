package router

import (
	"reflect"
	"testing"

	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/pattern"
)

type fakeTarget struct {
	routes map[pattern.Role][]effects.Kind
	calls  int
}

func (f *fakeTarget) RouteAll(roles []pattern.Role, units ...*effects.Unit) {
	if f.routes == nil {
		f.routes = map[pattern.Role][]effects.Kind{}
	}
	f.calls++
	kinds := []effects.Kind{}
	for _, u := range units {
		kinds = append(kinds, u.Kind())
	}
	for _, role := range roles {
		f.routes[role] = kinds
	}
}

func TestApplyRoutesEveryRole(t *testing.T) {
	target := &fakeTarget{}
	r, err := New(48000, target)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := effects.DefaultConfig()
	cfg[effects.KindReverb] = effects.Settings{Enabled: true, Intensity: 0.7}
	cfg[effects.KindDistortion] = effects.Settings{Enabled: true, Intensity: 0.2}
	r.Apply(cfg, pattern.Roles)

	want := []effects.Kind{effects.KindDistortion, effects.KindReverb}
	for _, role := range pattern.Roles {
		if got := target.routes[role]; !reflect.DeepEqual(got, want) {
			t.Errorf("%s routed through %v, want %v", role, got, want)
		}
	}
	rev, _ := r.Unit(effects.KindReverb)
	if rev.Intensity() != 0.7 {
		t.Errorf("reverb intensity = %v, want 0.7", rev.Intensity())
	}
}

func TestToggleRoundTripReturnsToDirect(t *testing.T) {
	target := &fakeTarget{}
	r, _ := New(48000, target)
	cfg := effects.DefaultConfig()
	r.Apply(cfg, pattern.Roles)

	cfg[effects.KindDelay] = effects.Settings{Enabled: true, Intensity: 0.5}
	r.Apply(cfg, pattern.Roles)
	if got := target.routes[pattern.RoleSynth]; len(got) != 1 || got[0] != effects.KindDelay {
		t.Fatalf("synth routed through %v, want [delay]", got)
	}

	cfg[effects.KindDelay] = effects.Settings{Enabled: false, Intensity: 0.5}
	r.Apply(cfg, pattern.Roles)
	for _, role := range pattern.Roles {
		if got := target.routes[role]; len(got) != 0 {
			t.Errorf("%s should be direct, got %v", role, got)
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	target := &fakeTarget{}
	r, _ := New(48000, target)
	cfg := effects.DefaultConfig()
	cfg[effects.KindFilter] = effects.Settings{Enabled: true, Intensity: 0.3}
	r.Apply(cfg, pattern.Roles)
	first := map[pattern.Role][]effects.Kind{}
	for k, v := range target.routes {
		first[k] = v
	}
	r.Apply(cfg, pattern.Roles)
	if !reflect.DeepEqual(first, target.routes) {
		t.Fatalf("second Apply changed routing: %v -> %v", first, target.routes)
	}
}

func TestApplyRewiresAllRolesAtOnce(t *testing.T) {
	target := &fakeTarget{}
	r, _ := New(48000, target)
	cfg := effects.DefaultConfig()
	cfg[effects.KindReverb] = effects.Settings{Enabled: true, Intensity: 0.5}
	r.Apply(cfg, pattern.Roles)
	cfg[effects.KindDelay] = effects.Settings{Enabled: true, Intensity: 0.5}
	r.Apply(cfg, pattern.Roles)
	if target.calls != 2 {
		t.Fatalf("target rewired %d times, want once per Apply", target.calls)
	}
}

func TestDisposeMakesUnitsPassThrough(t *testing.T) {
	r, _ := New(48000, &fakeTarget{})
	r.Dispose()
	r.Dispose()
	for _, k := range effects.Kinds {
		u, ok := r.Unit(k)
		if !ok || !u.Disposed() {
			t.Errorf("%s not disposed", k)
		}
	}
}
