// Package midi bridges hardware MIDI inputs into note events.
package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrNoDriver is returned when no MIDI driver is available.
var ErrNoDriver = errors.New("midi: no driver available")

// Device identifies one MIDI input port.
type Device struct {
	ID   string
	Name string
}

// Driver enumerates inputs and listens to one of them.
type Driver interface {
	Inputs() ([]Device, error)
	// Listen delivers every message from device id to fn until the returned
	// stop function is called.
	Listen(id string, fn func(gomidi.Message)) (func(), error)
	Close() error
}

// PortDriver is a Driver over a gomidi driver such as rtmididrv.
type PortDriver struct {
	drv drivers.Driver
}

// NewPortDriver wraps drv. A nil drv falls back to the registered driver.
func NewPortDriver(drv drivers.Driver) (*PortDriver, error) {
	if drv == nil {
		drv = drivers.Get()
	}
	if drv == nil {
		return nil, ErrNoDriver
	}
	return &PortDriver{drv: drv}, nil
}

func deviceID(in drivers.In) string {
	return fmt.Sprintf("%d:%s", in.Number(), in.String())
}

func (d *PortDriver) Inputs() ([]Device, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("midi: list inputs: %w", err)
	}
	out := make([]Device, 0, len(ins))
	for _, in := range ins {
		out = append(out, Device{ID: deviceID(in), Name: in.String()})
	}
	return out, nil
}

func (d *PortDriver) Listen(id string, fn func(gomidi.Message)) (func(), error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("midi: list inputs: %w", err)
	}
	var found drivers.In
	for _, in := range ins {
		if deviceID(in) == id {
			found = in
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("midi: input %q not found", id)
	}
	stop, err := gomidi.ListenTo(found, func(msg gomidi.Message, _ int32) {
		fn(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("midi: listen %q: %w", id, err)
	}
	return func() {
		stop()
		_ = found.Close()
	}, nil
}

func (d *PortDriver) Close() error {
	return d.drv.Close()
}
