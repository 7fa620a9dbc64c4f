package apc

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-apcmini/grid"
	"go-apcmini/protocol"
)

func TestDefaultStates(t *testing.T) {
	h := newHarness(t, Options{MaxControllers: 4})

	for _, id := range []int{0, 3, 42} {
		if got := h.c.PadStates(id); got != [grid.Pads]bool{} {
			t.Errorf("PadStates(%d) not all false", id)
		}
		if got := h.c.SliderValues(id); got != [protocol.Sliders]int{} {
			t.Errorf("SliderValues(%d) = %v", id, got)
		}
		if got := h.c.HorizontalStates(id); got != [protocol.Buttons]bool{} {
			t.Errorf("HorizontalStates(%d) = %v", id, got)
		}
		if got := h.c.VerticalStates(id); got != [protocol.Buttons]bool{} {
			t.Errorf("VerticalStates(%d) = %v", id, got)
		}
	}
	if h.c.Shift() {
		t.Error("shift pressed by default")
	}
}

func TestInputDispatch(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)
	h.c.Connect(apc1)

	var pressed, released []PadButtonEvent
	h.c.OnPadButtonPressed(func(e PadButtonEvent) { pressed = append(pressed, e) })
	h.c.OnPadButtonReleased(func(e PadButtonEvent) { released = append(released, e) })

	h.tr.Inject(apc1, gomidi.NoteOn(0, protocol.ShiftNote, 127))
	h.tr.Inject(apc1, gomidi.NoteOn(0, 7, 127))

	if !h.c.Shift() {
		t.Error("shift not pressed")
	}
	if states := h.c.PadStates(0); !states[7] {
		t.Error("pad 7 not pressed")
	}
	if len(pressed) != 1 {
		t.Fatalf("got %d pressed events", len(pressed))
	}
	// pad 7 is bottom-right; in the default orientation that is (7,7)
	want := PadButtonEvent{ID: 0, Pad: 7, Coord: grid.Coord{X: 7, Y: 7}, Pressed: true, Shift: true}
	if pressed[0] != want {
		t.Errorf("pressed = %+v, want %+v", pressed[0], want)
	}

	h.tr.Inject(apc1, gomidi.NoteOff(0, protocol.ShiftNote))
	h.tr.Inject(apc1, gomidi.NoteOn(0, 7, 0))
	if h.c.Shift() {
		t.Error("shift still pressed")
	}
	if len(released) != 1 || released[0].Shift {
		t.Errorf("released = %+v", released)
	}

	h.tr.Inject(apc1, gomidi.NoteOn(0, protocol.HorizontalNote(3), 127))
	h.tr.Inject(apc1, gomidi.NoteOn(0, protocol.VerticalNote(6), 127))
	if !h.c.HorizontalStates(0)[3] || !h.c.VerticalStates(0)[6] {
		t.Error("side buttons not recorded")
	}
	if n := len(eventsOf[HorizontalButtonEvent](h.rec)); n != 1 {
		t.Errorf("got %d horizontal events", n)
	}
	if n := len(eventsOf[VerticalButtonEvent](h.rec)); n != 1 {
		t.Errorf("got %d vertical events", n)
	}
	if n := len(eventsOf[ShiftEvent](h.rec)); n != 2 {
		t.Errorf("got %d shift events", n)
	}

	h.tr.Inject(apc1, gomidi.ControlChange(0, 50, 99))
	h.tr.Inject(apc1, gomidi.ControlChange(0, 20, 1)) // not a slider
	if got := h.c.SliderValues(0)[2]; got != 99 {
		t.Errorf("slider 2 = %d", got)
	}
	sliders := eventsOf[SliderEvent](h.rec)
	if len(sliders) != 1 || sliders[0] != (SliderEvent{ID: 0, Slider: 2, Value: 99}) {
		t.Errorf("slider events = %+v", sliders)
	}
}

func TestSliderSnapshotIsSilent(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)
	h.c.Connect(apc1)
	h.tr.ResetSent(apc1)

	resp := gomidi.Message{0xF0, 0x47, 0x7F, 0x4F, 0x61, 0x00, 0x09, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0xF7}
	h.tr.Inject(apc1, resp)

	want := [protocol.Sliders]int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if got := h.c.SliderValues(0); got != want {
		t.Errorf("SliderValues(0) = %v", got)
	}
	if n := len(eventsOf[SliderEvent](h.rec)); n != 0 {
		t.Errorf("snapshot published %d slider events", n)
	}
	if len(h.tr.Sent(apc1)) != 0 {
		t.Error("snapshot triggered a mode reset")
	}
}

func TestForeignSysExResetsMode(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)
	h.c.Connect(apc1)
	h.tr.ResetSent(apc1)

	h.tr.Inject(apc1, gomidi.Message(protocol.ModeReset()))
	if n := countSysEx(h.tr, apc1, protocol.IsModeReset); n != 0 {
		t.Errorf("mode reset echo answered %d times", n)
	}

	h.tr.Inject(apc1, gomidi.Message{0xF0, 0x47, 0x7F, 0x4F, 0x62, 0x00, 0x01, 0x02, 0xF7})
	if n := countSysEx(h.tr, apc1, protocol.IsModeReset); n != 1 {
		t.Errorf("mode reset sent %d times, want 1", n)
	}
}

func TestInputAfterDisconnectIsDropped(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)
	h.c.Connect(apc1)

	h.c.mu.Lock()
	conn := h.c.conns[apc1]
	h.c.mu.Unlock()
	h.c.DisconnectName(apc1)

	h.c.handleInput(conn, gomidi.NoteOn(0, 1, 127))
	if h.c.PadStates(0)[1] {
		t.Error("stale connection updated state")
	}
}
