package effects

import "math"

// Filter is a resonant biquad lowpass (RBJ cookbook form).
type Filter struct {
	sampleRate float64
	cutoff     float64
	q          float64
	b0, b1, b2 float64
	a1, a2     float64
	state      [2]biquadState
}

type biquadState struct {
	x1, x2, y1, y2 float64
}

// NewFilter creates a lowpass at cutoff Hz with resonance q.
func NewFilter(sampleRate int, cutoff, q float64) *Filter {
	f := &Filter{sampleRate: float64(sampleRate), q: q}
	if f.q <= 0 {
		f.q = math.Sqrt2 / 2
	}
	f.SetCutoff(cutoff)
	return f
}

// SetCutoff recomputes the coefficients. The cutoff is kept inside
// [10 Hz, 0.45*sampleRate].
func (f *Filter) SetCutoff(cutoff float64) {
	hi := f.sampleRate * 0.45
	if cutoff > hi {
		cutoff = hi
	}
	if cutoff < 10 {
		cutoff = 10
	}
	f.cutoff = cutoff
	w0 := 2 * math.Pi * cutoff / f.sampleRate
	alpha := math.Sin(w0) / (2 * f.q)
	cosW := math.Cos(w0)
	a0 := 1 + alpha
	f.b0 = (1 - cosW) / 2 / a0
	f.b1 = (1 - cosW) / a0
	f.b2 = f.b0
	f.a1 = -2 * cosW / a0
	f.a2 = (1 - alpha) / a0
}

func (f *Filter) Cutoff() float64 { return f.cutoff }

func (f *Filter) Process(l, r float32) (float32, float32) {
	return float32(f.step(&f.state[0], float64(l))), float32(f.step(&f.state[1], float64(r)))
}

func (f *Filter) step(s *biquadState, x float64) float64 {
	y := f.b0*x + f.b1*s.x1 + f.b2*s.x2 - f.a1*s.y1 - f.a2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}

func (f *Filter) Reset() {
	f.state = [2]biquadState{}
}
