package midi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type fakeDriver struct {
	mu        sync.Mutex
	devices   []Device
	err       error
	listeners map[string]func(gomidi.Message)
	closed    bool
}

func (f *fakeDriver) Inputs() ([]Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]Device(nil), f.devices...), nil
}

func (f *fakeDriver) Listen(id string, fn func(gomidi.Message)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners == nil {
		f.listeners = map[string]func(gomidi.Message){}
	}
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}, nil
}

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDriver) send(id string, msg gomidi.Message) {
	f.mu.Lock()
	fn := f.listeners[id]
	f.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func twoDevices() *fakeDriver {
	return &fakeDriver{devices: []Device{{ID: "0:Keys", Name: "Keys"}, {ID: "1:Pads", Name: "Pads"}}}
}

func TestInitListsDevices(t *testing.T) {
	logger, _ := test.NewNullLogger()
	b := NewBridge(twoDevices(), nil, logger)
	b.Init()
	if got := b.Devices(); len(got) != 2 || got[1].Name != "Pads" {
		t.Fatalf("Devices = %+v", got)
	}
}

func TestInitFailureIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	b := NewBridge(&fakeDriver{err: errors.New("access denied")}, nil, logger)
	b.Init()
	if len(b.Devices()) != 0 {
		t.Fatal("device list should stay empty")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %+v", entry)
	}
}

func TestOnlySelectedDeviceIsForwarded(t *testing.T) {
	logger, _ := test.NewNullLogger()
	drv := twoDevices()
	var got []NoteEvent
	b := NewBridge(drv, func(ev NoteEvent) { got = append(got, ev) }, logger)
	b.Init()
	b.Select("0:Keys")
	b.Select("1:Pads")

	drv.send("0:Keys", gomidi.NoteOn(0, 60, 100))
	drv.send("1:Pads", gomidi.NoteOn(0, 64, 90))
	drv.send("1:Pads", gomidi.NoteOn(0, 65, 0))
	drv.send("1:Pads", gomidi.NoteOff(0, 64))

	if len(got) != 1 {
		t.Fatalf("events = %+v, want one", got)
	}
	want := NoteEvent{Device: "1:Pads", Note: 64, Velocity: 90}
	if got[0] != want {
		t.Fatalf("event = %+v, want %+v", got[0], want)
	}
}

func TestDeselectStopsForwarding(t *testing.T) {
	logger, _ := test.NewNullLogger()
	drv := twoDevices()
	n := 0
	b := NewBridge(drv, func(NoteEvent) { n++ }, logger)
	b.Select("0:Keys")
	b.Select("")
	drv.send("0:Keys", gomidi.NoteOn(0, 60, 100))
	if n != 0 || b.Selected() != "" {
		t.Fatalf("deselected bridge forwarded %d events", n)
	}
}

func TestRunDropsVanishedSelection(t *testing.T) {
	logger, _ := test.NewNullLogger()
	drv := twoDevices()
	b := NewBridge(drv, nil, logger)
	b.pollRate = time.Millisecond
	b.Init()
	b.Select("1:Pads")

	drv.mu.Lock()
	drv.devices = drv.devices[:1]
	drv.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for b.Selected() != "" && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done
	if b.Selected() != "" {
		t.Fatal("selection should be dropped when the device disappears")
	}
	if len(b.Devices()) != 1 {
		t.Fatalf("devices = %+v", b.Devices())
	}
}

func TestNilDriverIsEmpty(t *testing.T) {
	logger, _ := test.NewNullLogger()
	b := NewBridge(nil, nil, logger)
	b.Init()
	b.Select("0:Keys")
	b.Run(context.Background())
	if len(b.Devices()) != 0 {
		t.Fatal("nil driver should list nothing")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCloseReleasesDriver(t *testing.T) {
	logger, _ := test.NewNullLogger()
	drv := twoDevices()
	b := NewBridge(drv, nil, logger)
	b.Select("0:Keys")
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !drv.closed || len(drv.listeners) != 0 {
		t.Fatal("Close should stop listening and close the driver")
	}
}
