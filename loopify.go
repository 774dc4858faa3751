// Package loopify is a loop-music toy: pick instruments, a mood and a tempo
// and it plays a generated pattern through small built-in synthesizers, with
// optional effects, MIDI triggering and shareable links.
package loopify

import (
	"context"
	"time"

	intaudio "github.com/cbegin/loopify-go/internal/audio"
	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/midi"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/cbegin/loopify-go/internal/share"
	"github.com/sirupsen/logrus"
)

type (
	Role           = pattern.Role
	Mood           = pattern.Mood
	Step           = pattern.Step
	EffectKind     = effects.Kind
	EffectSettings = effects.Settings
	EffectConfig   = effects.Config
	MIDIDevice     = midi.Device
	MIDIDriver     = midi.Driver
	Sharer         = share.Sharer
	SampleSource   = intaudio.SampleSource
)

const (
	RoleSynth = pattern.RoleSynth
	RoleBass  = pattern.RoleBass
	RoleDrums = pattern.RoleDrums
	RolePad   = pattern.RolePad
	RoleLead  = pattern.RoleLead

	MoodHappy       = pattern.MoodHappy
	MoodMelancholic = pattern.MoodMelancholic
	MoodEnergetic   = pattern.MoodEnergetic
	MoodChill       = pattern.MoodChill
	MoodIntense     = pattern.MoodIntense

	Reverb     = effects.KindReverb
	Delay      = effects.KindDelay
	Distortion = effects.KindDistortion
	Filter     = effects.KindFilter
)

const (
	MinTempo     = share.MinTempo
	MaxTempo     = share.MaxTempo
	DefaultTempo = 120
	DefaultMood  = pattern.MoodHappy

	// StartFailedMessage is shown when the audio device cannot be activated.
	StartFailedMessage = "Failed to start playback. Please try again."
)

// Roles, Moods and EffectKinds list the fixed choices in display order.
var (
	Roles       = pattern.Roles
	Moods       = pattern.Moods
	EffectKinds = effects.Kinds
)

// Event carries step and MIDI notifications from Watch().
type Event struct {
	Kind   int // EventStep or EventMIDINote
	Role   Role
	Index  int  // step index within the pattern entry
	Step   Step // rest for silent steps
	Note   int
	Device string
}

const (
	EventStep int = iota
	EventMIDINote
)

// State is a snapshot of the session.
type State struct {
	ActiveInstruments  []Role // role order
	Mood               Mood
	Tempo              int
	IsPlaying          bool
	Effects            EffectConfig
	SelectedMIDIDevice string
	LastError          string
}

// Output is the audio sink the app activates on first play.
type Output interface {
	Activate(ctx context.Context, src SampleSource) error
	Close() error
}

type Option func(*appConfig)

type appConfig struct {
	output          Output
	midiDriver      MIDIDriver
	midiPollRate    time.Duration
	sharer          Sharer
	notify          func(string)
	log             logrus.FieldLogger
	shareOrigin     string
	sampleTap       func([]float32)
	activateTimeout time.Duration
}

func defaultAppConfig() appConfig {
	return appConfig{
		log:             logrus.StandardLogger(),
		shareOrigin:     "https://loopify.app/",
		activateTimeout: 5 * time.Second,
	}
}

// WithOutput replaces the default ebiten audio output.
func WithOutput(out Output) Option {
	return func(cfg *appConfig) {
		cfg.output = out
	}
}

// WithMIDIDriver enables MIDI input through drv.
func WithMIDIDriver(drv MIDIDriver) Option {
	return func(cfg *appConfig) {
		cfg.midiDriver = drv
	}
}

// WithMIDIPollRate sets how often RunMIDI rescans the MIDI inputs.
func WithMIDIPollRate(d time.Duration) Option {
	return func(cfg *appConfig) {
		cfg.midiPollRate = d
	}
}

// WithSharer sets the native share mechanism. The clipboard is used when it
// is absent or unsupported.
func WithSharer(s Sharer) Option {
	return func(cfg *appConfig) {
		cfg.sharer = s
	}
}

// WithNotifier sets the blocking notification shown after a clipboard share.
func WithNotifier(notify func(msg string)) Option {
	return func(cfg *appConfig) {
		cfg.notify = notify
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(cfg *appConfig) {
		if log != nil {
			cfg.log = log
		}
	}
}

func WithShareOrigin(origin string) Option {
	return func(cfg *appConfig) {
		cfg.shareOrigin = origin
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *appConfig) {
		cfg.sampleTap = tap
	}
}

// WithActivationTimeout bounds how long StartPlayback waits for the audio
// device.
func WithActivationTimeout(d time.Duration) Option {
	return func(cfg *appConfig) {
		if d > 0 {
			cfg.activateTimeout = d
		}
	}
}
