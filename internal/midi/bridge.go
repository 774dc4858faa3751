package midi

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// NoteEvent is a note-on from the selected device.
type NoteEvent struct {
	Device   string
	Note     int
	Velocity int
}

// Bridge tracks the available inputs and forwards note-ons from the selected
// one. A nil driver yields an empty device list.
type Bridge struct {
	driver   Driver
	onNote   func(NoteEvent)
	log      logrus.FieldLogger
	pollRate time.Duration

	mu       sync.Mutex
	devices  []Device
	selected string
	stop     func()

	// listening mirrors selected for the driver's callback goroutine.
	listening atomic.Value
}

func NewBridge(driver Driver, onNote func(NoteEvent), log logrus.FieldLogger) *Bridge {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &Bridge{
		driver:   driver,
		onNote:   onNote,
		log:      log.WithField("component", "midi"),
		pollRate: time.Second,
	}
	b.listening.Store("")
	return b
}

// SetPollRate changes the rescan interval used by Run. Non-positive values
// are ignored. Call it before Run.
func (b *Bridge) SetPollRate(d time.Duration) {
	if d > 0 {
		b.pollRate = d
	}
}

// Init enumerates the inputs once. Failure is logged and leaves the list
// empty.
func (b *Bridge) Init() {
	if b.driver == nil {
		b.log.Warn("MIDI not available: no driver")
		return
	}
	devs, err := b.driver.Inputs()
	if err != nil {
		b.log.WithError(err).Warn("MIDI not available")
		b.setDevices(nil)
		return
	}
	b.setDevices(devs)
}

// Run re-enumerates inputs until ctx is done. The selection is dropped when
// its device disappears.
func (b *Bridge) Run(ctx context.Context) {
	if b.driver == nil {
		return
	}
	ticker := time.NewTicker(b.pollRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			devs, err := b.driver.Inputs()
			if err != nil {
				b.log.WithError(err).Debug("MIDI scan failed")
				continue
			}
			b.setDevices(devs)
		}
	}
}

func (b *Bridge) setDevices(devs []Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices = devs
	if b.selected == "" {
		return
	}
	for _, d := range devs {
		if d.ID == b.selected {
			return
		}
	}
	b.log.WithField("device", b.selected).Info("MIDI device disconnected")
	b.stopLocked()
}

// Devices returns a snapshot of the known inputs.
func (b *Bridge) Devices() []Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Device(nil), b.devices...)
}

func (b *Bridge) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// Select listens to device id only. An empty id deselects. Listening
// failures are logged and leave nothing selected.
func (b *Bridge) Select(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	if id == "" || b.driver == nil {
		return
	}
	b.selected = id
	b.listening.Store(id)
	stop, err := b.driver.Listen(id, func(msg gomidi.Message) { b.dispatch(id, msg) })
	if err != nil {
		b.log.WithError(err).WithField("device", id).Warn("MIDI listen failed")
		b.selected = ""
		b.listening.Store("")
		return
	}
	b.stop = stop
	b.log.WithField("device", id).Info("MIDI device selected")
}

func (b *Bridge) stopLocked() {
	b.selected = ""
	b.listening.Store("")
	if b.stop != nil {
		b.stop()
		b.stop = nil
	}
}

func (b *Bridge) dispatch(id string, msg gomidi.Message) {
	var ch, key, vel uint8
	if !msg.GetNoteOn(&ch, &key, &vel) || vel == 0 {
		return
	}
	if b.listening.Load().(string) != id {
		return
	}
	if b.onNote != nil {
		b.onNote(NoteEvent{Device: id, Note: int(key), Velocity: int(vel)})
	}
}

// Close stops listening and releases the driver.
func (b *Bridge) Close() error {
	b.mu.Lock()
	b.stopLocked()
	b.mu.Unlock()
	if b.driver == nil {
		return nil
	}
	return b.driver.Close()
}
