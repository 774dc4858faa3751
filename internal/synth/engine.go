package synth

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/loopify-go/internal/lfo"
)

const twoPi = math.Pi * 2

type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSawtooth
	WaveNoise
)

// Params fixes the voice character of an engine. They are read once by New.
type Params struct {
	Voices       int
	Waveform     Waveform
	MasterGain   float64
	AttackSec    float64
	DecaySec     float64
	SustainLvl   float64
	ReleaseSec   float64
	LPFCutoff    float64 // one-pole lowpass cutoff in Hz (0 = disabled)
	VibratoHz    float64
	VibratoDepth float64 // semitones
}

func DefaultParams() Params {
	return Params{
		Voices:     1,
		Waveform:   WaveTriangle,
		MasterGain: 0.3,
		AttackSec:  0.005,
		DecaySec:   0.1,
		SustainLvl: 0.3,
		ReleaseSec: 1.0,
	}
}

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

type voice struct {
	active   bool
	id       int
	age      int
	freq     float64
	phase    float64
	velocity float64
	env      float64
	envState envState
	lfsr     uint16
}

type pendingRelease struct {
	id     int
	frames int
}

// Engine is a small subtractive voice engine. It is not safe for concurrent
// use; callers serialize NoteOn/RenderFrame.
type Engine struct {
	sampleRate float64
	params     Params
	voices     []voice
	nextID     int
	masterGain uint64
	releases   []pendingRelease
	lpfAlpha   float64
	lpf        float64
	dcPrevIn   float64
	dcPrevOut  float64
	vibrato    *lfo.LFO
}

func New(sampleRate int, params Params) *Engine {
	if params.Voices <= 0 {
		params.Voices = 1
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		voices:     make([]voice, params.Voices),
		masterGain: math.Float64bits(params.MasterGain),
		vibrato:    lfo.New(sampleRate, params.VibratoHz, params.VibratoDepth, lfo.Sine),
	}
	for i := range e.voices {
		e.voices[i].lfsr = uint16(0xACE1 + i*97)
	}
	if params.LPFCutoff > 0 && params.LPFCutoff < float64(sampleRate)/2 {
		rc := 1.0 / (twoPi * params.LPFCutoff)
		dt := 1.0 / float64(sampleRate)
		e.lpfAlpha = dt / (rc + dt)
	}
	return e
}

// NoteOn starts a voice and returns its id. A monophonic engine retriggers
// its single voice.
func (e *Engine) NoteOn(note int, velocity int) int {
	slot := e.stealVoice()
	id := e.nextID
	e.nextID++
	v := &e.voices[slot]
	retrigger := v.active
	v.active = true
	v.id = id
	v.age = 0
	v.freq = MIDIToFreq(note)
	if !retrigger {
		v.phase = 0
		v.env = 0
	}
	v.velocity = clamp(float64(velocity)/127.0, 0, 1)
	v.envState = envAttack
	if v.lfsr == 0 {
		v.lfsr = 0xACE1
	}
	return id
}

func (e *Engine) NoteOff(id int) {
	for i := range e.voices {
		v := &e.voices[i]
		if v.active && v.id == id && v.envState != envRelease {
			v.envState = envRelease
		}
	}
}

// TriggerAttackRelease plays note for frames samples, then releases it.
func (e *Engine) TriggerAttackRelease(note int, velocity int, frames int) int {
	id := e.NoteOn(note, velocity)
	if frames < 1 {
		frames = 1
	}
	e.releases = append(e.releases, pendingRelease{id: id, frames: frames})
	return id
}

// Silence cuts every voice and drops pending releases.
func (e *Engine) Silence() {
	for i := range e.voices {
		e.voices[i].active = false
		e.voices[i].env = 0
		e.voices[i].envState = envOff
	}
	e.releases = e.releases[:0]
	e.lpf = 0
	e.dcPrevIn, e.dcPrevOut = 0, 0
}

func (e *Engine) RenderFrame() (float32, float32) {
	e.advanceReleases()

	freqMul := 1.0
	if e.vibrato.Active() {
		freqMul = math.Pow(2, e.vibrato.Next()/12.0)
	}

	var out float64
	gain := e.masterGainValue()
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active {
			continue
		}
		v.age++
		env := e.advanceEnv(v)
		if !v.active {
			continue
		}
		out += e.renderWave(v, freqMul) * env * (0.2 + 0.8*v.velocity) * gain
	}
	if e.params.Waveform != WaveNoise {
		out = e.dcBlock(out)
	}
	if e.lpfAlpha > 0 {
		e.lpf += e.lpfAlpha * (out - e.lpf)
		out = e.lpf
	}
	s := float32(clamp(out, -1, 1))
	return s, s
}

func (e *Engine) advanceReleases() {
	n := 0
	for _, pr := range e.releases {
		pr.frames--
		if pr.frames <= 0 {
			e.NoteOff(pr.id)
			continue
		}
		e.releases[n] = pr
		n++
	}
	e.releases = e.releases[:n]
}

func (e *Engine) dcBlock(x float64) float64 {
	const r = 0.995
	y := x - e.dcPrevIn + r*e.dcPrevOut
	e.dcPrevIn = x
	e.dcPrevOut = y
	return y
}

// polyBLEP reduces aliasing at waveform discontinuities.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

func (e *Engine) renderWave(v *voice, freqMul float64) float64 {
	dt := v.freq * freqMul / e.sampleRate
	v.phase += dt
	if v.phase >= 1 {
		v.phase -= 1
	}
	switch e.params.Waveform {
	case WaveSine:
		return math.Sin(twoPi * v.phase)
	case WaveTriangle:
		return 2*math.Abs(2*v.phase-1) - 1
	case WaveSquare:
		out := -1.0
		if v.phase < 0.5 {
			out = 1
		}
		out += polyBLEP(v.phase, dt)
		out -= polyBLEP(math.Mod(v.phase+0.5, 1), dt)
		return out
	case WaveSawtooth:
		return 2*v.phase - 1 - polyBLEP(v.phase, dt)
	case WaveNoise:
		// White noise: clock the LFSR every sample regardless of pitch.
		bit := (v.lfsr ^ (v.lfsr >> 2) ^ (v.lfsr >> 3) ^ (v.lfsr >> 5)) & 1
		v.lfsr = (v.lfsr >> 1) | (bit << 15)
		return float64(v.lfsr)/32767.5 - 1
	default:
		return 0
	}
}

func (e *Engine) stealVoice() int {
	if len(e.voices) == 1 {
		return 0
	}
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
	}
	// Steal the oldest releasing voice, or failing that the oldest voice.
	oldestRelease, oldestReleaseAge := -1, -1
	oldest, oldestAge := 0, -1
	for i := range e.voices {
		v := &e.voices[i]
		if v.envState == envRelease && v.age > oldestReleaseAge {
			oldestRelease, oldestReleaseAge = i, v.age
		}
		if v.age > oldestAge {
			oldest, oldestAge = i, v.age
		}
	}
	if oldestRelease >= 0 {
		return oldestRelease
	}
	return oldest
}

func (e *Engine) advanceEnv(v *voice) float64 {
	switch v.envState {
	case envAttack:
		v.env += rate(1, e.params.AttackSec, e.sampleRate)
		if v.env >= 1 {
			v.env = 1
			v.envState = envDecay
		}
	case envDecay:
		v.env -= rate(1-e.params.SustainLvl, e.params.DecaySec, e.sampleRate)
		if v.env <= e.params.SustainLvl {
			v.env = e.params.SustainLvl
			v.envState = envSustain
		}
	case envSustain:
		if v.env <= 0 {
			v.envState = envOff
			v.active = false
		}
	case envRelease:
		v.env -= rate(1, e.params.ReleaseSec, e.sampleRate)
		if v.env <= 0.0001 {
			v.env = 0
			v.envState = envOff
			v.active = false
		}
	case envOff:
		v.active = false
		v.env = 0
	}
	return v.env
}

// rate is the per-sample step to cover span in sec seconds.
func rate(span, sec, sampleRate float64) float64 {
	if sec <= 0 {
		return 1
	}
	step := span / (sec * sampleRate)
	if step <= 0 {
		return 1
	}
	return step
}

func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

func (e *Engine) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}

func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}

func MIDIToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
