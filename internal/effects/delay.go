package effects

// Delay is a stereo feedback delay with cross-channel feedback.
type Delay struct {
	left, right delayLine
	feedback    float32
	cross       float32
	wet         float32
}

// NewDelay creates a delay.
// delayMs: delay time in milliseconds
// feedback: 0..0.95
// cross: share of the feedback sent to the opposite channel, 0..1
// wet: wet/dry mix 0..1
func NewDelay(sampleRate int, delayMs float64, feedback, cross, wet float32) *Delay {
	n := int(delayMs * float64(sampleRate) / 1000.0)
	return &Delay{
		left:     newDelayLine(n),
		right:    newDelayLine(n),
		feedback: clamp(feedback, 0, 0.95),
		cross:    clamp(cross, 0, 1),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) SetWet(wet float32) { d.wet = clamp(wet, 0, 1) }

func (d *Delay) Wet() float32 { return d.wet }

func (d *Delay) Process(l, r float32) (float32, float32) {
	dl, dr := d.left.read(), d.right.read()
	straight, crossed := d.feedback*(1-d.cross), d.feedback*d.cross
	d.left.write(l + dl*straight + dr*crossed)
	d.right.write(r + dr*straight + dl*crossed)
	return mix(l, dl, d.wet), mix(r, dr, d.wet)
}

func (d *Delay) Reset() {
	d.left.clear()
	d.right.clear()
}
