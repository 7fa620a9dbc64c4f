package midi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go-apcmini/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrScanTimeout is returned when the driver does not answer a port scan.
var ErrScanTimeout = errors.New("midi port scan timed out")

// System is the Transport backed by the registered gomidi driver. Import a
// driver (for example gitlab.com/gomidi/midi/v2/drivers/rtmididrv) in main.
type System struct {
	ScanTimeout time.Duration
}

func NewSystem() *System {
	return &System{ScanTimeout: 3 * time.Second}
}

func (s *System) Ports() (Ports, error) {
	// CoreMIDI can hang; never block the caller longer than ScanTimeout
	ch := make(chan Ports, 1)
	go func() {
		var p Ports
		for _, in := range gomidi.GetInPorts() {
			p.In = append(p.In, in.String())
		}
		for _, out := range gomidi.GetOutPorts() {
			p.Out = append(p.Out, out.String())
		}
		ch <- p
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(s.ScanTimeout):
		debug.Log("transport", "port scan timed out after %s", s.ScanTimeout)
		return Ports{}, ErrScanTimeout
	}
}

func (s *System) OpenIn(name string) (In, error) {
	for _, port := range gomidi.GetInPorts() {
		if port.String() == name {
			if err := port.Open(); err != nil {
				return nil, fmt.Errorf("open input %q: %w", name, err)
			}
			return &systemIn{name: name, port: port}, nil
		}
	}
	return nil, fmt.Errorf("input %q: %w", name, ErrPortNotFound)
}

func (s *System) OpenOut(name string) (Out, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == name {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fmt.Errorf("open output %q: %w", name, err)
			}
			return &systemOut{name: name, port: port, send: send}, nil
		}
	}
	return nil, fmt.Errorf("output %q: %w", name, ErrPortNotFound)
}

type systemIn struct {
	name string
	port drivers.In

	mu     sync.Mutex
	stop   func()
	closed bool
}

func (i *systemIn) Name() string { return i.name }

func (i *systemIn) Listen(fn func(gomidi.Message)) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return ErrPortClosed
	}
	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
	stop, err := gomidi.ListenTo(i.port, func(msg gomidi.Message, _ int32) {
		fn(msg)
	}, gomidi.UseSysEx(), gomidi.SysExBufferSize(1024))
	if err != nil {
		return fmt.Errorf("listen %q: %w", i.name, err)
	}
	i.stop = stop
	return nil
}

func (i *systemIn) StopListening() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
}

func (i *systemIn) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
	i.closed = true
	return i.port.Close()
}

type systemOut struct {
	name string
	port drivers.Out
	send func(gomidi.Message) error

	mu     sync.Mutex
	closed bool
}

func (o *systemOut) Name() string { return o.name }

func (o *systemOut) Send(msg gomidi.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrPortClosed
	}
	return o.send(msg)
}

func (o *systemOut) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	return o.port.Close()
}
