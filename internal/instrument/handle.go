package instrument

import (
	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/cbegin/loopify-go/internal/synth"
)

// DefaultVelocity is used for pattern and MIDI triggers alike.
const DefaultVelocity = 100

// Handle owns the synthesizer for one role. Handles are not safe for
// concurrent use; the audio graph serializes access.
type Handle struct {
	role              pattern.Role
	triggersWithPitch bool
	engine            *synth.Engine
	insert            effects.Effector
	disposed          bool
}

func newHandle(role pattern.Role, sampleRate int) *Handle {
	p := PresetFor(role)
	return &Handle{
		role:              role,
		triggersWithPitch: p.TriggersWithPitch,
		engine:            synth.New(sampleRate, p.Params),
		insert:            newInsert(p, sampleRate),
	}
}

func (h *Handle) Role() pattern.Role { return h.role }

// TriggersWithPitch reports whether triggers use the note value. Percussion
// handles ignore it.
func (h *Handle) TriggersWithPitch() bool { return h.triggersWithPitch }

// TriggerAttackRelease sounds note for frames samples. Disposed handles
// ignore triggers.
func (h *Handle) TriggerAttackRelease(note int, frames int) {
	if h.disposed {
		return
	}
	if !h.triggersWithPitch {
		note = 60
	}
	h.engine.TriggerAttackRelease(note, DefaultVelocity, frames)
}

func (h *Handle) RenderFrame() (float32, float32) {
	if h.disposed {
		return 0, 0
	}
	l, r := h.engine.RenderFrame()
	if h.insert != nil {
		l, r = h.insert.Process(l, r)
	}
	return l, r
}

// Sounding reports whether any voice is still producing output.
func (h *Handle) Sounding() bool {
	return !h.disposed && h.engine.ActiveVoiceCount() > 0
}

// Reset cuts any sounding note and clears the insert effect.
func (h *Handle) Reset() {
	h.engine.Silence()
	if h.insert != nil {
		h.insert.Reset()
	}
}

func (h *Handle) Dispose() {
	if h.disposed {
		return
	}
	h.Reset()
	h.disposed = true
}

func (h *Handle) Disposed() bool { return h.disposed }
