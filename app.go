package loopify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	intaudio "github.com/cbegin/loopify-go/internal/audio"
	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/midi"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/cbegin/loopify-go/internal/playback"
	"github.com/cbegin/loopify-go/internal/share"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoInstruments is returned by StartPlayback with nothing selected.
	ErrNoInstruments = errors.New("no instruments selected")
	// ErrAudioActivation wraps failures to bring up the audio output.
	ErrAudioActivation = errors.New("audio activation failed")
	// ErrNoVoice is returned when an active role has no instrument.
	ErrNoVoice = playback.ErrNoVoice
)

// App is one session. Its methods are safe for concurrent use, though the
// session is meant to be driven from a single UI goroutine.
type App struct {
	mu         sync.Mutex
	active     map[Role]bool
	mood       Mood
	tempo      int
	playing    bool
	effects    EffectConfig
	lastError  string

	startMu sync.Mutex

	sampleRate      int
	log             logrus.FieldLogger
	rig             *rig
	output          Output
	bridge          *midi.Bridge
	sharer          Sharer
	shareOrigin     string
	activateTimeout time.Duration
	eventCh         chan Event
	eventChMu       sync.Mutex
	closeOnce       sync.Once
}

// New builds a session with every instrument and effect allocated and no
// instrument active.
func New(sampleRate int, opts ...Option) (*App, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	a := &App{
		active:          map[Role]bool{},
		mood:            DefaultMood,
		tempo:           DefaultTempo,
		effects:         effects.DefaultConfig(),
		sampleRate:      sampleRate,
		log:             cfg.log,
		output:          cfg.output,
		shareOrigin:     cfg.shareOrigin,
		activateTimeout: cfg.activateTimeout,
	}
	r, err := newRig(sampleRate, a.onStep)
	if err != nil {
		return nil, err
	}
	a.rig = r
	r.graph.SetTap(cfg.sampleTap)
	r.applyEffects(a.effects)
	if a.output == nil {
		a.output = intaudio.NewOutput(sampleRate)
	}
	a.sharer = share.Fallback(cfg.sharer, share.NewClipboard(cfg.notify))
	a.bridge = midi.NewBridge(cfg.midiDriver, a.onMIDINote, cfg.log)
	a.bridge.SetPollRate(cfg.midiPollRate)
	a.bridge.Init()
	return a, nil
}

// State returns a snapshot of the session.
// SelectedMIDIDevice comes from the bridge, so a device dropped by hot-plug
// polling shows as deselected.
func (a *App) State() State {
	// Read before a.mu: MIDI callbacks take a.mu while the bridge waits on them.
	device := a.bridge.Selected()
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{
		ActiveInstruments:  a.activeLocked(),
		Mood:               a.mood,
		Tempo:              a.tempo,
		IsPlaying:          a.playing,
		Effects:            a.effects.Clone(),
		SelectedMIDIDevice: device,
		LastError:          a.lastError,
	}
}

func (a *App) activeLocked() []Role {
	out := make([]Role, 0, len(a.active))
	for _, r := range pattern.Roles {
		if a.active[r] {
			out = append(out, r)
		}
	}
	return out
}

// ToggleInstrument adds role to the active set, or removes it if present.
// Playback picks up the change on its next start.
func (a *App) ToggleInstrument(role Role) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active[role] {
		delete(a.active, role)
	} else {
		a.active[role] = true
	}
	a.rig.applyEffects(a.effects)
}

func (a *App) SetMood(mood Mood) {
	a.mu.Lock()
	a.mood = mood
	a.mu.Unlock()
}

// SetTempo replaces the tempo. Range checks are left to the caller's control.
func (a *App) SetTempo(bpm int) {
	a.mu.Lock()
	a.tempo = bpm
	a.mu.Unlock()
}

func (a *App) SetEffectEnabled(kind EffectKind, enabled bool) {
	a.updateEffect(kind, func(s *EffectSettings) { s.Enabled = enabled })
}

// SetEffectIntensity sets kind's intensity, clamped to [0,1].
func (a *App) SetEffectIntensity(kind EffectKind, intensity float64) {
	a.updateEffect(kind, func(s *EffectSettings) { s.Intensity = clamp01(intensity) })
}

func (a *App) updateEffect(kind EffectKind, fn func(*EffectSettings)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.effects[kind]
	if !ok {
		a.log.WithField("effect", kind).Debug("unknown effect ignored")
		return
	}
	fn(&s)
	a.effects[kind] = s
	a.rig.applyEffects(a.effects)
}

// CanPlay reports whether the Play control is enabled.
func (a *App) CanPlay() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.active) > 0
}

// StartPlayback activates the audio output if needed and starts looping the
// current mood's patterns for every active instrument. It is a no-op while
// playing. Activation failures set LastError and leave the session stopped.
func (a *App) StartPlayback(ctx context.Context) error {
	a.startMu.Lock()
	defer a.startMu.Unlock()

	a.mu.Lock()
	if a.playing {
		a.mu.Unlock()
		return nil
	}
	active := a.activeLocked()
	mood, tempo := a.mood, a.tempo
	a.mu.Unlock()
	if len(active) == 0 {
		return ErrNoInstruments
	}

	actx, cancel := context.WithTimeout(ctx, a.activateTimeout)
	err := a.output.Activate(actx, a.rig.graph)
	cancel()
	if err != nil {
		a.log.WithError(err).Error("failed to start playback")
		a.setLastError(StartFailedMessage)
		return fmt.Errorf("%w: %v", ErrAudioActivation, err)
	}
	if err := a.rig.controller.Start(active, mood, tempo); err != nil {
		a.log.WithError(err).Error("failed to start playback")
		a.setLastError(StartFailedMessage)
		return err
	}

	a.mu.Lock()
	a.playing = true
	a.lastError = ""
	a.mu.Unlock()
	a.log.WithFields(logrus.Fields{"mood": mood, "tempo": tempo, "instruments": len(active)}).Info("playback started")
	return nil
}

func (a *App) setLastError(msg string) {
	a.mu.Lock()
	a.lastError = msg
	a.mu.Unlock()
}

// StopPlayback halts the transport and drops every scheduled sequence.
// Sounding notes finish their release. It is safe to call at any time.
func (a *App) StopPlayback() {
	a.rig.controller.Stop()
	a.mu.Lock()
	wasPlaying := a.playing
	a.playing = false
	a.mu.Unlock()
	if wasPlaying {
		a.log.Info("playback stopped")
	}
}

// Transport reports the running tempo and position in frames.
func (a *App) Transport() (bpm float64, position int64) {
	return a.rig.transport.BPM(), a.rig.transport.Position()
}

func (a *App) SetMasterVolume(volume float64) { a.rig.graph.SetMasterVolume(volume) }

func (a *App) MasterVolume() float64 { return a.rig.graph.MasterVolume() }

// SetEQBand sets the master EQ band (0-4) gain; 1 is unity.
func (a *App) SetEQBand(band int, gain float32) { a.rig.graph.SetEQBand(band, gain) }

func (a *App) EQBand(band int) float32 { return a.rig.graph.EQBand(band) }

// Routing returns the effect chain role currently passes through.
func (a *App) Routing(role Role) []EffectKind { return a.rig.graph.Routing(role) }

// Watch returns a channel that receives step and MIDI events.
// The channel is buffered (cap 32) and events are dropped when it is full.
// Only the most recent Watch() channel receives events.
func (a *App) Watch() <-chan Event {
	ch := make(chan Event, 32)
	a.eventChMu.Lock()
	a.eventCh = ch
	a.eventChMu.Unlock()
	return ch
}

func (a *App) sendEvent(ev Event) {
	a.eventChMu.Lock()
	ch := a.eventCh
	a.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
		}
	}
}

// onStep runs on the audio thread and must not take a.mu.
func (a *App) onStep(role pattern.Role, index int, step pattern.Step) {
	a.sendEvent(Event{Kind: EventStep, Role: role, Index: index, Step: step, Note: step.Note()})
}

func (a *App) onMIDINote(ev midi.NoteEvent) {
	a.mu.Lock()
	active := a.activeLocked()
	a.mu.Unlock()
	a.rig.play(active, ev.Note)
	a.sendEvent(Event{Kind: EventMIDINote, Note: ev.Note, Device: ev.Device})
}

// MIDIDevices lists the known MIDI inputs.
func (a *App) MIDIDevices() []MIDIDevice { return a.bridge.Devices() }

// SelectMIDIDevice listens to the device with id, or to nothing when id is
// empty.
func (a *App) SelectMIDIDevice(id string) { a.bridge.Select(id) }

// RunMIDI watches for MIDI devices coming and going until ctx is done.
func (a *App) RunMIDI(ctx context.Context) { a.bridge.Run(ctx) }

// ShareURL encodes the session into a link.
func (a *App) ShareURL() (string, error) {
	st := a.State()
	return share.Encode(a.shareOrigin, share.Payload{
		Tempo:             st.Tempo,
		Mood:              st.Mood,
		ActiveInstruments: st.ActiveInstruments,
		Effects:           st.Effects,
	})
}

// Share hands the session link to the platform. Failures are logged and
// leave the session untouched.
func (a *App) Share(ctx context.Context) (string, error) {
	link, err := a.ShareURL()
	if err != nil {
		a.log.WithError(err).Warn("share failed")
		return "", err
	}
	if err := a.sharer.Share(ctx, link); err != nil {
		a.log.WithError(err).Warn("share failed")
		return link, err
	}
	return link, nil
}

// Restore applies a shared link. Malformed links are ignored and the
// session keeps its current values.
func (a *App) Restore(raw string) bool {
	p, err := share.Decode(raw)
	if err != nil {
		a.log.WithError(err).Info("ignoring shared link")
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = make(map[Role]bool, len(p.ActiveInstruments))
	for _, r := range p.ActiveInstruments {
		a.active[r] = true
	}
	a.mood = p.Mood
	a.tempo = p.Tempo
	a.effects = p.Effects
	a.rig.applyEffects(a.effects)
	return true
}

// Close stops playback and releases the audio output, MIDI and every
// instrument and effect. Later calls are no-ops.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.StopPlayback()
		if cerr := a.bridge.Close(); cerr != nil {
			a.log.WithError(cerr).Warn("closing MIDI failed")
		}
		err = a.output.Close()
		a.rig.dispose()
	})
	return err
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
