package effects

import (
	"math"
	"sync/atomic"
)

// EQBands is the number of master EQ bands.
const EQBands = 5

var eqCrossovers = [EQBands - 1]float64{200, 800, 2500, 8000}

// EQ5Band splits the signal with cascaded one-pole crossovers at 200 Hz,
// 800 Hz, 2.5 kHz and 8 kHz. Gains are float32 bit patterns so the UI can set
// them while the audio thread reads.
type EQ5Band struct {
	gains  [EQBands]atomic.Uint32
	alphas [EQBands - 1]float32
	lpL    [EQBands - 1]float32
	lpR    [EQBands - 1]float32
}

// NewEQ5Band creates an EQ with every band at unity.
func NewEQ5Band(sampleRate int) *EQ5Band {
	eq := &EQ5Band{}
	dt := 1.0 / float64(sampleRate)
	for i, freq := range eqCrossovers {
		rc := 1.0 / (2.0 * math.Pi * freq)
		eq.alphas[i] = float32(dt / (rc + dt))
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float32bits(1))
	}
	return eq
}

// SetGain sets band (0-4) to gain; 1 is unity. Out-of-range bands are ignored.
func (eq *EQ5Band) SetGain(band int, gain float32) {
	if band < 0 || band >= EQBands {
		return
	}
	if gain < 0 {
		gain = 0
	}
	eq.gains[band].Store(math.Float32bits(gain))
}

func (eq *EQ5Band) Gain(band int) float32 {
	if band < 0 || band >= EQBands {
		return 1
	}
	return math.Float32frombits(eq.gains[band].Load())
}

func (eq *EQ5Band) Process(l, r float32) (float32, float32) {
	var outL, outR float32
	for i := range eq.alphas {
		eq.lpL[i] += eq.alphas[i] * (l - eq.lpL[i])
		eq.lpR[i] += eq.alphas[i] * (r - eq.lpR[i])
		g := eq.Gain(i)
		outL += eq.lpL[i] * g
		outR += eq.lpR[i] * g
		l -= eq.lpL[i]
		r -= eq.lpR[i]
	}
	g := eq.Gain(EQBands - 1)
	return outL + l*g, outR + r*g
}

func (eq *EQ5Band) Reset() {
	eq.lpL = [EQBands - 1]float32{}
	eq.lpR = [EQBands - 1]float32{}
}
