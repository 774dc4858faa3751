package effects

// Reverb is a Schroeder reverb: four parallel combs into two allpasses.
type Reverb struct {
	combs   [4]delayLine
	allpass [2]delayLine
	combFB  float32
	wet     float32
}

// delayLine is a circular buffer shared by the comb and allpass stages.
type delayLine struct {
	buf []float32
	pos int
}

func newDelayLine(n int) delayLine {
	if n < 1 {
		n = 1
	}
	return delayLine{buf: make([]float32, n)}
}

func (d *delayLine) read() float32 { return d.buf[d.pos] }

func (d *delayLine) write(v float32) {
	d.buf[d.pos] = v
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) clear() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}

// NewReverb creates a reverb.
// roomSize: 0..1 scales the delay lengths
// feedback: 0..0.95 controls the decay time
// wet: wet/dry mix 0..1
func NewReverb(sampleRate int, roomSize, feedback, wet float32) *Reverb {
	base := int(float32(sampleRate) * roomSize * 0.05)
	if base < 10 {
		base = 10
	}
	rv := &Reverb{combFB: clamp(feedback, 0, 0.95), wet: clamp(wet, 0, 1)}
	// Mutually prime-ish ratios keep the comb resonances from stacking.
	for i, ratio := range [4]int{1000, 1117, 1271, 1437} {
		rv.combs[i] = newDelayLine(base * ratio / 1000)
	}
	for i, ratio := range [2]int{347, 213} {
		rv.allpass[i] = newDelayLine(base * ratio / 1000)
	}
	return rv
}

func (rv *Reverb) SetWet(wet float32) { rv.wet = clamp(wet, 0, 1) }

func (rv *Reverb) Wet() float32 { return rv.wet }

func (rv *Reverb) Process(l, r float32) (float32, float32) {
	in := (l + r) * 0.5
	var out float32
	for i := range rv.combs {
		c := &rv.combs[i]
		y := c.read()
		c.write(in + y*rv.combFB)
		out += y
	}
	out *= 0.25
	for i := range rv.allpass {
		a := &rv.allpass[i]
		y := a.read()
		a.write(out + y*0.5)
		out = y - out
	}
	return mix(l, out, rv.wet), mix(r, out, rv.wet)
}

func (rv *Reverb) Reset() {
	for i := range rv.combs {
		rv.combs[i].clear()
	}
	for i := range rv.allpass {
		rv.allpass[i].clear()
	}
}
