package apc

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"go-apcmini/debug"
	"go-apcmini/grid"
)

// Event is anything published on the Bus.
type Event interface {
	String() string
}

// ConnectEvent is published when a controller is assigned an id.
type ConnectEvent struct {
	ID      int
	Name    string
	Session uuid.UUID
}

func (e ConnectEvent) String() string {
	return fmt.Sprintf("controller %d connected (%s)", e.ID, e.Name)
}

// DisconnectEvent is published when a connected controller goes away.
type DisconnectEvent struct {
	ID      int
	Name    string
	Session uuid.UUID
}

func (e DisconnectEvent) String() string {
	return fmt.Sprintf("controller %d disconnected (%s)", e.ID, e.Name)
}

type ErrorEvent struct {
	Err error
}

func (e ErrorEvent) String() string {
	return "error: " + e.Err.Error()
}

func pressedString(pressed bool) string {
	if pressed {
		return "pressed"
	}
	return "released"
}

// PadButtonEvent reports a pad press or release. Pad is the physical index;
// Coord is the same pad in the configured orientation.
type PadButtonEvent struct {
	ID      int
	Pad     int
	Coord   grid.Coord
	Pressed bool
	Shift   bool
}

func (e PadButtonEvent) String() string {
	return fmt.Sprintf("controller %d pad %d %s %s", e.ID, e.Pad, e.Coord, pressedString(e.Pressed))
}

type HorizontalButtonEvent struct {
	ID      int
	Index   int
	Pressed bool
	Shift   bool
}

func (e HorizontalButtonEvent) String() string {
	return fmt.Sprintf("controller %d horizontal %d %s", e.ID, e.Index, pressedString(e.Pressed))
}

type VerticalButtonEvent struct {
	ID      int
	Index   int
	Pressed bool
	Shift   bool
}

func (e VerticalButtonEvent) String() string {
	return fmt.Sprintf("controller %d vertical %d %s", e.ID, e.Index, pressedString(e.Pressed))
}

// ShiftEvent reports the shift button. Shift state is shared by all controllers.
type ShiftEvent struct {
	ID      int
	Pressed bool
}

func (e ShiftEvent) String() string {
	return fmt.Sprintf("controller %d shift %s", e.ID, pressedString(e.Pressed))
}

type SliderEvent struct {
	ID     int
	Slider int
	Value  int
}

func (e SliderEvent) String() string {
	return fmt.Sprintf("controller %d slider %d = %d", e.ID, e.Slider, e.Value)
}

type listener struct {
	id int
	fn func(Event)
}

// Bus delivers events synchronously to listeners in registration order.
// Events published while a delivery is running are queued behind it.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener
	queue     []Event
	draining  bool
}

// Subscribe registers fn for events of type E and returns a function that
// removes it.
func Subscribe[E Event](b *Bus, fn func(E)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners = append(b.listeners, listener{
		id: id,
		fn: func(ev Event) {
			if e, ok := ev.(E); ok {
				fn(e)
			}
		},
	})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish queues ev and delivers everything queued. When another goroutine
// is already delivering, Publish returns at once and ev is delivered there.
func (b *Bus) Publish(ev Event) {
	b.enqueue(ev)
	b.drain()
}

func (b *Bus) enqueue(ev Event) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()
}

func (b *Bus) drain() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	for len(b.queue) > 0 {
		ev := b.queue[0]
		b.queue = b.queue[1:]
		listeners := append([]listener(nil), b.listeners...)
		b.mu.Unlock()

		for _, l := range listeners {
			b.deliver(l, ev)
		}

		b.mu.Lock()
	}
	b.draining = false
	b.mu.Unlock()
}

func (b *Bus) deliver(l listener, ev Event) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, isErr := ev.(ErrorEvent); isErr {
			debug.Warn("bus", "error listener panicked: %v", r)
			return
		}
		debug.Log("bus", "listener panicked on %T: %v", ev, r)
		b.enqueue(ErrorEvent{Err: fmt.Errorf("%w: %v", ErrListenerPanic, r)})
	}()
	l.fn(ev)
}
