package loopify

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/instrument"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/cbegin/loopify-go/internal/playback"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MaxRenderSeconds bounds a single RenderLoop call.
const MaxRenderSeconds = 3600

// ErrRenderLength is returned for a non-positive, non-finite or too long
// render duration.
var ErrRenderLength = errors.New("render length out of range")

// RenderLoop renders seconds of the session's loop offline, as interleaved
// stereo. Only the active instruments, mood, tempo and effects of st are used.
func RenderLoop(st State, sampleRate int, seconds float64) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if math.IsNaN(seconds) || seconds <= 0 || seconds > MaxRenderSeconds {
		return nil, fmt.Errorf("%w: %v seconds (expected 0-%d)", ErrRenderLength, seconds, MaxRenderSeconds)
	}
	if len(st.ActiveInstruments) == 0 {
		return nil, ErrNoInstruments
	}
	r, err := newRig(sampleRate, nil)
	if err != nil {
		return nil, err
	}
	defer r.dispose()
	cfg := st.Effects
	if cfg == nil {
		cfg = effects.DefaultConfig()
	}
	r.applyEffects(cfg)
	if err := r.controller.Start(st.ActiveInstruments, st.Mood, st.Tempo); err != nil {
		return nil, err
	}
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	r.graph.Process(out)
	return out, nil
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

const (
	ticksPerQuarter = 960
	// DrumNote is the General MIDI kick written for every percussion hit.
	DrumNote    = 36
	drumChannel = 9
)

// noteTicks is the sounding length of one step, matching live playback.
func noteTicks(pitched bool) uint32 {
	sub := playback.PercussionValue
	if pitched {
		sub = playback.PitchedValue
	}
	return uint32(ticksPerQuarter * 4 / int(sub))
}

func buildSMF(st State, loops int) (*smf.SMF, error) {
	if len(st.ActiveInstruments) == 0 {
		return nil, ErrNoInstruments
	}
	if loops < 1 {
		loops = 1
	}
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(float64(st.Tempo)))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return nil, fmt.Errorf("adding tempo track: %w", err)
	}

	ch := uint8(0)
	for _, role := range st.ActiveInstruments {
		pitched := instrument.PresetFor(role).TriggersWithPitch
		channel := uint8(drumChannel)
		if pitched {
			channel = ch
			ch++
		}
		entry := pattern.Lookup(st.Mood, role)
		dur := noteTicks(pitched)

		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(role.Label()))
		var last, abs uint32
		for k := 0; k < loops*len(entry); k++ {
			abs = uint32(k) * ticksPerQuarter
			note := entry[k%len(entry)].Note()
			if note < 0 {
				continue
			}
			if !pitched {
				note = DrumNote
			}
			track.Add(abs-last, gomidi.NoteOn(channel, uint8(note), instrument.DefaultVelocity))
			track.Add(dur, gomidi.NoteOff(channel, uint8(note)))
			last = abs + dur
		}
		end := uint32(loops*len(entry)) * ticksPerQuarter
		var tail uint32
		if end > last {
			tail = end - last
		}
		track.Close(tail)
		if err := sm.Add(track); err != nil {
			return nil, fmt.Errorf("adding %s track: %w", role, err)
		}
	}
	return sm, nil
}

// WriteMIDI writes loops repetitions of the session's loop as a standard MIDI
// file: a tempo track, then one track per active instrument.
func WriteMIDI(w io.Writer, st State, loops int) error {
	sm, err := buildSMF(st, loops)
	if err != nil {
		return err
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("writing MIDI: %w", err)
	}
	return nil
}

func WriteMIDIFile(path string, st State, loops int) error {
	sm, err := buildSMF(st, loops)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("writing MIDI file: %w", err)
	}
	return nil
}
