package lfo

import "math"

type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Saw
)

// LFO is a low-frequency oscillator stepped once per sample. The output
// lies in [-depth, +depth]; its unit is set by the caller (semitones for
// vibrato, samples for a modulated delay).
type LFO struct {
	shape Shape
	depth float64
	step  float64 // phase increment per sample, in cycles
	phase float64 // [0, 1)
}

// New returns an LFO at rateHz for the given sample rate. A zero rate or
// depth yields an LFO that always returns 0.
func New(sampleRate int, rateHz, depth float64, shape Shape) *LFO {
	l := &LFO{shape: shape, depth: depth}
	if sampleRate > 0 && rateHz > 0 {
		l.step = rateHz / float64(sampleRate)
	}
	return l
}

// Next returns the current value and advances one sample.
func (l *LFO) Next() float64 {
	if !l.Active() {
		return 0
	}
	var v float64
	switch l.shape {
	case Triangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case Square:
		v = -1
		if l.phase < 0.5 {
			v = 1
		}
	case Saw:
		v = 1 - 2*l.phase
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.step
	for l.phase >= 1 {
		l.phase -= 1
	}
	return v * l.depth
}

func (l *LFO) Active() bool { return l.depth != 0 && l.step != 0 }

func (l *LFO) Reset() { l.phase = 0 }
