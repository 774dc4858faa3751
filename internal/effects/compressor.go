package effects

import "math"

// Compressor is a peak compressor with a linked stereo envelope. The master
// bus uses it as a soft limiter so five summed instruments do not clip.
type Compressor struct {
	threshold float32
	ratio     float32
	attack    float32
	release   float32
	makeup    float32
	env       float32
}

// NewCompressor creates a compressor.
// thresholdDB: threshold in dBFS
// ratio: e.g. 4 for 4:1
// attackMs, releaseMs: envelope follower times
// makeupDB: output gain
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Compressor {
	if ratio < 1 {
		ratio = 1
	}
	return &Compressor{
		threshold: dbToGain(thresholdDB),
		ratio:     ratio,
		attack:    coeff(attackMs, sampleRate),
		release:   coeff(releaseMs, sampleRate),
		makeup:    dbToGain(makeupDB),
	}
}

func (c *Compressor) Process(l, r float32) (float32, float32) {
	level := float32(math.Max(math.Abs(float64(l)), math.Abs(float64(r))))
	if level > c.env {
		c.env += c.attack * (level - c.env)
	} else {
		c.env += c.release * (level - c.env)
	}
	g := c.gain() * c.makeup
	return l * g, r * g
}

func (c *Compressor) gain() float32 {
	if c.env <= c.threshold || c.threshold <= 0 {
		return 1
	}
	over := float64(c.env / c.threshold)
	return float32(math.Pow(over, float64(1/c.ratio-1)))
}

func (c *Compressor) Reset() {
	c.env = 0
}

func dbToGain(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

func coeff(ms float32, sampleRate int) float32 {
	if ms <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(float64(ms)*float64(sampleRate)/1000)))
}
