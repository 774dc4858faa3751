package loopify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cbegin/loopify-go/internal/midi"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type fakeMIDI struct {
	mu        sync.Mutex
	devices   []midi.Device
	listeners map[string]func(gomidi.Message)
}

func newFakeMIDI() *fakeMIDI {
	return &fakeMIDI{
		devices:   []midi.Device{{ID: "0:Keys", Name: "Keys"}, {ID: "1:Pads", Name: "Pads"}},
		listeners: map[string]func(gomidi.Message){},
	}
}

func (f *fakeMIDI) Inputs() ([]midi.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]midi.Device(nil), f.devices...), nil
}

func (f *fakeMIDI) Listen(id string, fn func(gomidi.Message)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}, nil
}

func (f *fakeMIDI) Close() error { return nil }

func (f *fakeMIDI) send(id string, msg gomidi.Message) {
	f.mu.Lock()
	fn := f.listeners[id]
	f.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func (f *fakeMIDI) unplug(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.devices[:0]
	for _, d := range f.devices {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	f.devices = kept
}

// renderFrames runs the graph as the audio callback would.
func renderFrames(app *App, frames int) {
	app.rig.graph.Process(make([]float32, frames*2))
}

func sounding(t *testing.T, app *App, role Role) bool {
	t.Helper()
	h, ok := app.rig.registry.Handle(role)
	if !ok {
		t.Fatalf("no handle for %s", role)
	}
	return h.Sounding()
}

func TestMIDINoteTriggersEveryActiveInstrument(t *testing.T) {
	drv := newFakeMIDI()
	app, _, _ := newTestApp(t, WithMIDIDriver(drv))
	ch := app.Watch()
	app.ToggleInstrument(RoleDrums)
	app.ToggleInstrument(RoleLead)
	app.SelectMIDIDevice("0:Keys")

	drv.send("0:Keys", gomidi.NoteOn(0, 64, 100))
	renderFrames(app, 256)
	if !sounding(t, app, RoleDrums) || !sounding(t, app, RoleLead) {
		t.Fatal("drums and lead should both sound after a note-on")
	}
	if sounding(t, app, RoleSynth) {
		t.Fatal("inactive synth should stay silent")
	}
	select {
	case ev := <-ch:
		if ev.Kind != EventMIDINote || ev.Note != 64 || ev.Device != "0:Keys" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected a MIDI event on Watch")
	}

	// At 120 BPM drums play a sixteenth (6000 frames) and decay away; the
	// lead holds its pitch for an eighth (12000 frames).
	renderFrames(app, 10000-256)
	if sounding(t, app, RoleDrums) {
		t.Fatal("drum hit should have ended")
	}
	if !sounding(t, app, RoleLead) {
		t.Fatal("lead should still be held")
	}
}

func TestMIDINoteFromOtherDeviceIgnored(t *testing.T) {
	drv := newFakeMIDI()
	app, _, _ := newTestApp(t, WithMIDIDriver(drv))
	app.ToggleInstrument(RoleDrums)
	app.ToggleInstrument(RoleLead)
	app.SelectMIDIDevice("0:Keys")

	drv.send("1:Pads", gomidi.NoteOn(0, 64, 100))
	drv.send("0:Keys", gomidi.NoteOn(0, 64, 0))
	renderFrames(app, 256)
	for _, role := range Roles {
		if sounding(t, app, role) {
			t.Fatalf("%s sounded for an ignored note", role)
		}
	}
}

func TestStateTracksUnpluggedMIDIDevice(t *testing.T) {
	drv := newFakeMIDI()
	app, _, _ := newTestApp(t, WithMIDIDriver(drv), WithMIDIPollRate(time.Millisecond))
	app.SelectMIDIDevice("0:Keys")
	if got := app.State().SelectedMIDIDevice; got != "0:Keys" {
		t.Fatalf("SelectedMIDIDevice = %q, want 0:Keys", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.RunMIDI(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	drv.unplug("0:Keys")
	deadline := time.Now().Add(time.Second)
	for app.State().SelectedMIDIDevice != "" {
		if time.Now().After(deadline) {
			t.Fatalf("SelectedMIDIDevice still %q after unplug", app.State().SelectedMIDIDevice)
		}
		time.Sleep(2 * time.Millisecond)
	}
	if devs := app.MIDIDevices(); len(devs) != 1 || devs[0].ID != "1:Pads" {
		t.Fatalf("MIDIDevices = %+v", devs)
	}
}
