package apc

import (
	"sync"
	"testing"
	"time"

	"go-apcmini/colors"
	"go-apcmini/midi"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type harness struct {
	c     *Controller
	tr    *midi.MemoryTransport
	clock *fakeClock
	rec   *recorder
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	tr := midi.NewMemoryTransport()
	clock := newFakeClock()
	opts.Transport = tr
	opts.Now = clock.Now
	if opts.PortPrefix == "" {
		opts.PortPrefix = "apc mini mk2"
	}
	c := New(opts)
	t.Cleanup(func() { c.Close() })
	rec := &recorder{}
	c.OnEvent(rec.add)
	return &harness{c: c, tr: tr, clock: clock, rec: rec}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func eventsOf[E Event](r *recorder) []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []E
	for _, e := range r.events {
		if ev, ok := e.(E); ok {
			out = append(out, ev)
		}
	}
	return out
}

// sentPads decodes every bulk RGB message sent to name; later frames win.
func sentPads(tr *midi.MemoryTransport, name string) map[int]colors.RGB {
	pads := make(map[int]colors.RGB)
	for _, msg := range tr.Sent(name) {
		b := []byte(msg)
		if len(b) < 8 || b[0] != 0xF0 || b[4] != 0x24 {
			continue
		}
		body := b[7 : len(b)-1]
		for i := 0; i+8 <= len(body); i += 8 {
			p := body[i : i+8]
			pads[int(p[0])] = colors.RGB{R: p[2]<<7 | p[3], G: p[4]<<7 | p[5], B: p[6]<<7 | p[7]}
		}
	}
	return pads
}

// sentNotes returns the last note-on velocity sent to name per note.
func sentNotes(tr *midi.MemoryTransport, name string) map[uint8]uint8 {
	notes := make(map[uint8]uint8)
	for _, msg := range tr.Sent(name) {
		ev := midi.Decode(msg)
		switch ev.Type {
		case midi.EventNoteOn:
			notes[ev.Note] = ev.Velocity
		case midi.EventNoteOff:
			notes[ev.Note] = 0
		}
	}
	return notes
}

func countSysEx(tr *midi.MemoryTransport, name string, match func([]byte) bool) int {
	n := 0
	for _, msg := range tr.Sent(name) {
		if match(msg) {
			n++
		}
	}
	return n
}
