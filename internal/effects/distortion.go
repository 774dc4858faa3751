package effects

import "math"

// Distortion is a tanh waveshaper whose drive follows Amount, followed by a
// gentle lowpass to tame the added harmonics.
type Distortion struct {
	amount   float32
	preGain  float32
	postGain float32
	lpfAlpha float32
	lpfL     float32
	lpfR     float32
}

// NewDistortion creates a distortion.
// amount: 0..1 drive
// lpfCutoff: lowpass cutoff in Hz (0 = no filter)
func NewDistortion(sampleRate int, amount, lpfCutoff float32) *Distortion {
	d := &Distortion{}
	d.SetAmount(amount)
	if lpfCutoff > 0 && lpfCutoff < float32(sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(lpfCutoff))
		dt := 1.0 / float64(sampleRate)
		d.lpfAlpha = float32(dt / (rc + dt))
	}
	return d
}

// SetAmount sets the drive. Output level is normalized so a full-scale input
// stays near full scale at any drive.
func (d *Distortion) SetAmount(amount float32) {
	d.amount = clamp(amount, 0, 1)
	d.preGain = 1 + 20*d.amount
	d.postGain = float32(1 / math.Tanh(float64(d.preGain)))
}

func (d *Distortion) Amount() float32 { return d.amount }

func (d *Distortion) Process(l, r float32) (float32, float32) {
	l = float32(math.Tanh(float64(l*d.preGain))) * d.postGain
	r = float32(math.Tanh(float64(r*d.preGain))) * d.postGain
	if d.lpfAlpha > 0 {
		d.lpfL += d.lpfAlpha * (l - d.lpfL)
		d.lpfR += d.lpfAlpha * (r - d.lpfR)
		l, r = d.lpfL, d.lpfR
	}
	return l, r
}

func (d *Distortion) Reset() {
	d.lpfL = 0
	d.lpfR = 0
}
