package effects

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Kind names a user-facing effect.
type Kind string

const (
	KindReverb     Kind = "reverb"
	KindDelay      Kind = "delay"
	KindDistortion Kind = "distortion"
	KindFilter     Kind = "filter"
)

// Kinds lists every effect in display order.
var Kinds = []Kind{KindReverb, KindDelay, KindDistortion, KindFilter}

// ChainOrder is the serial order in which enabled effects are applied.
var ChainOrder = []Kind{KindDistortion, KindFilter, KindDelay, KindReverb}

const (
	filterMinHz = 20.0
	filterSpan  = 1000.0 // filterMinHz * filterSpan = 20 kHz
)

// Settings is the user configuration of one effect.
type Settings struct {
	Enabled   bool
	Intensity float64
}

// Config maps every kind to its settings.
type Config map[Kind]Settings

// DefaultConfig has every effect disabled at half intensity.
func DefaultConfig() Config {
	cfg := make(Config, len(Kinds))
	for _, k := range Kinds {
		cfg[k] = Settings{Intensity: 0.5}
	}
	return cfg
}

func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Enabled returns the enabled kinds in ChainOrder.
func (c Config) Enabled() []Kind {
	var out []Kind
	for _, k := range ChainOrder {
		if c[k].Enabled {
			out = append(out, k)
		}
	}
	return out
}

func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown effect %q", name)
}

func (k Kind) Label() string {
	switch k {
	case KindReverb:
		return "Reverb"
	case KindDelay:
		return "Delay"
	case KindDistortion:
		return "Distortion"
	case KindFilter:
		return "Filter"
	}
	return string(k)
}

// ParamName is the name of the control parameter intensity drives.
func (k Kind) ParamName() string {
	switch k {
	case KindDistortion:
		return "amount"
	case KindFilter:
		return "frequency"
	default:
		return "wet"
	}
}

// ParamValue maps an intensity in [0,1] to the kind's control parameter.
// The filter maps exponentially onto 20 Hz..20 kHz; the rest pass through.
func (k Kind) ParamValue(intensity float64) float64 {
	intensity = clamp01(intensity)
	if k == KindFilter {
		return filterMinHz * math.Pow(filterSpan, intensity)
	}
	return intensity
}

// Intensity inverts ParamValue.
func (k Kind) Intensity(param float64) float64 {
	if k == KindFilter {
		if param <= filterMinHz {
			return 0
		}
		return clamp01(math.Log(param/filterMinHz) / math.Log(filterSpan))
	}
	return clamp01(param)
}

// Unit is the long-lived handle for one effect kind. Intensity is published
// atomically and picked up by the audio thread on its next frame.
type Unit struct {
	kind      Kind
	fx        Effector
	apply     func(float64)
	intensity atomic.Uint64
	applied   float64
	disposed  atomic.Bool
}

// NewUnit builds the processor for kind at intensity 0.5.
func NewUnit(kind Kind, sampleRate int) (*Unit, error) {
	u := &Unit{kind: kind}
	switch kind {
	case KindReverb:
		rv := NewReverb(sampleRate, 0.6, 0.75, 0.5)
		u.fx, u.apply = rv, func(v float64) { rv.SetWet(float32(v)) }
	case KindDelay:
		d := NewDelay(sampleRate, 250, 0.5, 0.2, 0.5)
		u.fx, u.apply = d, func(v float64) { d.SetWet(float32(v)) }
	case KindDistortion:
		d := NewDistortion(sampleRate, 0.5, 8000)
		u.fx, u.apply = d, func(v float64) { d.SetAmount(float32(v)) }
	case KindFilter:
		f := NewFilter(sampleRate, KindFilter.ParamValue(0.5), 1)
		u.fx, u.apply = f, func(v float64) { f.SetCutoff(KindFilter.ParamValue(v)) }
	default:
		return nil, fmt.Errorf("unknown effect %q", kind)
	}
	u.applied = 0.5
	u.intensity.Store(math.Float64bits(0.5))
	return u, nil
}

func (u *Unit) Kind() Kind { return u.kind }

func (u *Unit) SetIntensity(v float64) {
	u.intensity.Store(math.Float64bits(clamp01(v)))
}

func (u *Unit) Intensity() float64 {
	return math.Float64frombits(u.intensity.Load())
}

func (u *Unit) Process(l, r float32) (float32, float32) {
	if u.disposed.Load() {
		return l, r
	}
	if v := u.Intensity(); v != u.applied {
		u.apply(v)
		u.applied = v
	}
	return u.fx.Process(l, r)
}

func (u *Unit) Reset() { u.fx.Reset() }

// Dispose turns the unit into a pass-through and frees its buffers' state.
func (u *Unit) Dispose() {
	if u.disposed.Swap(true) {
		return
	}
	u.fx.Reset()
}

func (u *Unit) Disposed() bool { return u.disposed.Load() }

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
