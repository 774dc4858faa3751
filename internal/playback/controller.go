// Package playback turns the session's active roles and mood into scheduled
// step sequences on a transport.
package playback

import (
	"errors"
	"fmt"

	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/cbegin/loopify-go/internal/transport"
)

// ErrNoVoice is returned when an active role has no voice to play it.
var ErrNoVoice = errors.New("no voice for role")

// Voice sounds bounded notes for one role.
type Voice interface {
	TriggersWithPitch() bool
	TriggerAttackRelease(note int, frames int)
}

// StepFunc observes every step as it fires, rests included.
type StepFunc func(role pattern.Role, index int, step pattern.Step)

const (
	// StepValue is the note value of one pattern step.
	StepValue = transport.Quarter
	// PercussionValue is the sounding length of an unpitched hit.
	PercussionValue = transport.Sixteenth
	// PitchedValue is the sounding length of a pitched note.
	PitchedValue = transport.Eighth
)

type Controller struct {
	transport *transport.Transport
	voices    func(pattern.Role) (Voice, bool)
	onStep    StepFunc
}

// New builds a controller. voices resolves a role to its voice.
func New(tr *transport.Transport, voices func(pattern.Role) (Voice, bool), onStep StepFunc) *Controller {
	return &Controller{transport: tr, voices: voices, onStep: onStep}
}

// Start schedules one looping sequence per active role, sets the tempo and
// starts the transport. Nothing is scheduled if any role lacks a voice.
func (c *Controller) Start(active []pattern.Role, mood pattern.Mood, bpm int) error {
	bound := make([]Voice, len(active))
	for i, role := range active {
		v, ok := c.voices(role)
		if !ok {
			return fmt.Errorf("playback: %s: %w", role, ErrNoVoice)
		}
		bound[i] = v
	}
	c.transport.Stop()
	c.transport.Cancel()
	c.transport.SetBPM(float64(bpm))
	for i, role := range active {
		c.transport.Schedule(pattern.Lookup(mood, role), StepValue, c.stepper(role, bound[i]))
	}
	c.transport.Start()
	return nil
}

func (c *Controller) stepper(role pattern.Role, v Voice) transport.Callback {
	return func(_ int64, index int, step pattern.Step) {
		if c.onStep != nil {
			c.onStep(role, index, step)
		}
		Play(c.transport, v, step.Note())
	}
}

// Play sounds note on v using the trigger policy: percussion gets a short
// hit regardless of pitch, pitched voices an eighth at the given note.
// Negative notes are rests.
func Play(tr *transport.Transport, v Voice, note int) {
	if note < 0 {
		return
	}
	if !v.TriggersWithPitch() {
		v.TriggerAttackRelease(0, tr.Frames(PercussionValue))
		return
	}
	v.TriggerAttackRelease(note, tr.Frames(PitchedValue))
}

// Stop halts the transport and drops every sequence. It is always safe.
func (c *Controller) Stop() {
	c.transport.Stop()
	c.transport.Cancel()
}
