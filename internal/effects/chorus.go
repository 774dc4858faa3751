package effects

import "github.com/cbegin/loopify-go/internal/lfo"

// Chorus is a sine-modulated short delay mixed against the dry signal.
type Chorus struct {
	bufL, bufR []float32
	pos        int
	center     float32 // base delay in samples
	mod        *lfo.LFO
	wet        float32
}

// NewChorus creates a chorus.
// delayMs: base delay (5-30 ms is typical)
// depthMs: modulation depth
// rateHz: modulation rate
// wet: wet/dry mix 0..1
func NewChorus(sampleRate int, delayMs, depthMs, rateHz, wet float32) *Chorus {
	center := float32(delayMs) * float32(sampleRate) / 1000
	depth := float32(depthMs) * float32(sampleRate) / 1000
	size := int(center+depth) + 2
	if size < 4 {
		size = 4
	}
	return &Chorus{
		bufL:   make([]float32, size),
		bufR:   make([]float32, size),
		center: center,
		mod:    lfo.New(sampleRate, float64(rateHz), float64(depth), lfo.Sine),
		wet:    clamp(wet, 0, 1),
	}
}

func (c *Chorus) Process(l, r float32) (float32, float32) {
	c.bufL[c.pos] = l
	c.bufR[c.pos] = r

	delay := c.center + float32(c.mod.Next())
	size := len(c.bufL)
	read := float32(c.pos) - delay
	for read < 0 {
		read += float32(size)
	}
	i0 := int(read) % size
	i1 := (i0 + 1) % size
	frac := read - float32(int(read))
	dl := c.bufL[i0]*(1-frac) + c.bufL[i1]*frac
	dr := c.bufR[i0]*(1-frac) + c.bufR[i1]*frac

	c.pos++
	if c.pos >= size {
		c.pos = 0
	}
	return mix(l, dl, c.wet), mix(r, dr, c.wet)
}

func (c *Chorus) Reset() {
	for i := range c.bufL {
		c.bufL[i] = 0
		c.bufR[i] = 0
	}
	c.pos = 0
	c.mod.Reset()
}
