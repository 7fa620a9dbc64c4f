package midi

import (
	"fmt"
	"slices"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MemoryTransport is an in-process Transport. Plugged devices appear as both
// an input and an output port; everything sent to them is recorded.
type MemoryTransport struct {
	mu      sync.Mutex
	order   []string
	devices map[string]*memoryDevice
}

type memoryDevice struct {
	plugged  bool
	failOpen error
	listener func(gomidi.Message)
	owner    *memoryIn
	sent     []gomidi.Message
	openIns  int
	openOuts int
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{devices: make(map[string]*memoryDevice)}
}

func (t *MemoryTransport) device(name string) *memoryDevice {
	d, ok := t.devices[name]
	if !ok {
		d = &memoryDevice{}
		t.devices[name] = d
	}
	return d
}

// Plug makes names visible to Ports.
func (t *MemoryTransport) Plug(names ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range names {
		d := t.device(name)
		if !d.plugged {
			d.plugged = true
			t.order = append(t.order, name)
		}
	}
}

// Unplug removes names from Ports. Open handles stay open but stop
// delivering and accepting messages.
func (t *MemoryTransport) Unplug(names ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range names {
		if d, ok := t.devices[name]; ok && d.plugged {
			d.plugged = false
			d.listener, d.owner = nil, nil
			t.order = slices.DeleteFunc(t.order, func(n string) bool { return n == name })
		}
	}
}

// FailOpen makes the next opens of name fail with err until cleared with nil.
func (t *MemoryTransport) FailOpen(name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.device(name).failOpen = err
}

// Inject delivers msg to the listener on name. It reports false when nothing
// is listening.
func (t *MemoryTransport) Inject(name string, msg gomidi.Message) bool {
	t.mu.Lock()
	d, ok := t.devices[name]
	var fn func(gomidi.Message)
	if ok && d.plugged {
		fn = d.listener
	}
	t.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(msg)
	return true
}

// Sent returns a copy of everything sent to name.
func (t *MemoryTransport) Sent(name string) []gomidi.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.devices[name]
	if !ok {
		return nil
	}
	return slices.Clone(d.sent)
}

// ResetSent clears the sent log of name.
func (t *MemoryTransport) ResetSent(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.devices[name]; ok {
		d.sent = nil
	}
}

// Listening reports whether an input on name has a listener attached.
func (t *MemoryTransport) Listening(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.devices[name]
	return ok && d.listener != nil
}

// OpenHandles returns how many inputs and outputs on name are still open.
func (t *MemoryTransport) OpenHandles(name string) (ins, outs int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.devices[name]; ok {
		return d.openIns, d.openOuts
	}
	return 0, 0
}

func (t *MemoryTransport) Ports() (Ports, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Ports{In: slices.Clone(t.order), Out: slices.Clone(t.order)}, nil
}

func (t *MemoryTransport) open(name string) (*memoryDevice, error) {
	d, ok := t.devices[name]
	if !ok || !d.plugged {
		return nil, fmt.Errorf("%q: %w", name, ErrPortNotFound)
	}
	if d.failOpen != nil {
		return nil, d.failOpen
	}
	return d, nil
}

func (t *MemoryTransport) OpenIn(name string) (In, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, err := t.open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	d.openIns++
	return &memoryIn{t: t, name: name}, nil
}

func (t *MemoryTransport) OpenOut(name string) (Out, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, err := t.open(name)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	d.openOuts++
	return &memoryOut{t: t, name: name}, nil
}

type memoryIn struct {
	t      *MemoryTransport
	name   string
	closed bool
}

func (i *memoryIn) Name() string { return i.name }

func (i *memoryIn) Listen(fn func(gomidi.Message)) error {
	i.t.mu.Lock()
	defer i.t.mu.Unlock()
	if i.closed {
		return ErrPortClosed
	}
	d := i.t.device(i.name)
	d.listener, d.owner = fn, i
	return nil
}

func (i *memoryIn) StopListening() {
	i.t.mu.Lock()
	defer i.t.mu.Unlock()
	i.stopLocked()
}

func (i *memoryIn) stopLocked() {
	if d := i.t.device(i.name); d.owner == i {
		d.listener, d.owner = nil, nil
	}
}

func (i *memoryIn) Close() error {
	i.t.mu.Lock()
	defer i.t.mu.Unlock()
	if i.closed {
		return nil
	}
	i.stopLocked()
	i.closed = true
	i.t.device(i.name).openIns--
	return nil
}

type memoryOut struct {
	t      *MemoryTransport
	name   string
	closed bool
}

func (o *memoryOut) Name() string { return o.name }

func (o *memoryOut) Send(msg gomidi.Message) error {
	o.t.mu.Lock()
	defer o.t.mu.Unlock()
	if o.closed {
		return ErrPortClosed
	}
	d := o.t.device(o.name)
	if !d.plugged {
		return fmt.Errorf("send %q: %w", o.name, ErrPortNotFound)
	}
	d.sent = append(d.sent, slices.Clone(msg))
	return nil
}

func (o *memoryOut) Close() error {
	o.t.mu.Lock()
	defer o.t.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	o.t.device(o.name).openOuts--
	return nil
}
