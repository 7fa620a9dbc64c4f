package apc

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-apcmini/debug"
	"go-apcmini/grid"
	"go-apcmini/midi"
	"go-apcmini/protocol"
)

// buttonState is the last known input of one controller id.
type buttonState struct {
	pads       [grid.Pads]bool
	horizontal [protocol.Buttons]bool
	vertical   [protocol.Buttons]bool
	sliders    [protocol.Sliders]int
}

func (c *Controller) buttonsLocked(id int) *buttonState {
	s, ok := c.buttons[id]
	if !ok {
		s = &buttonState{}
		c.buttons[id] = s
	}
	return s
}

// handleInput translates a message from a connected controller into state
// and events.
func (c *Controller) handleInput(conn *connection, msg gomidi.Message) {
	ev := midi.Decode(msg)

	c.mu.Lock()
	defer c.unlock()
	if c.conns[conn.name] != conn {
		return
	}

	switch ev.Type {
	case midi.EventNoteOn:
		c.handleButtonLocked(conn.id, ev.Note, true)
	case midi.EventNoteOff:
		c.handleButtonLocked(conn.id, ev.Note, false)
	case midi.EventControlChange:
		slider, ok := protocol.SliderIndex(ev.Note)
		if !ok {
			return
		}
		value := int(ev.Velocity)
		c.buttonsLocked(conn.id).sliders[slider] = value
		c.emit(SliderEvent{ID: conn.id, Slider: slider, Value: value})
	case midi.EventSysEx:
		c.handleSysExLocked(conn, ev.Data)
	}
}

func (c *Controller) handleButtonLocked(id int, note uint8, pressed bool) {
	kind, index := protocol.ClassifyNote(note)
	switch kind {
	case protocol.KindPad:
		c.buttonsLocked(id).pads[index] = pressed
		c.emit(PadButtonEvent{
			ID:      id,
			Pad:     index,
			Coord:   c.opts.Orientation.Coord(index),
			Pressed: pressed,
			Shift:   c.shift,
		})
	case protocol.KindHorizontal:
		c.buttonsLocked(id).horizontal[index] = pressed
		c.emit(HorizontalButtonEvent{ID: id, Index: index, Pressed: pressed, Shift: c.shift})
	case protocol.KindVertical:
		c.buttonsLocked(id).vertical[index] = pressed
		c.emit(VerticalButtonEvent{ID: id, Index: index, Pressed: pressed, Shift: c.shift})
	case protocol.KindShift:
		c.shift = pressed
		c.emit(ShiftEvent{ID: id, Pressed: pressed})
	default:
		debug.Log("input", "unmapped note %d from controller %d", note, id)
	}
}

// handleSysExLocked applies a slider snapshot and forces the device back into
// its default mode after anything else it echoes.
func (c *Controller) handleSysExLocked(conn *connection, data []byte) {
	if values, ok := protocol.ParseSliderResponse(data); ok {
		s := c.buttonsLocked(conn.id)
		for i, v := range values {
			s.sliders[i] = int(v)
		}
		debug.Log("sysex", "slider snapshot from %d: %v", conn.id, values)
		// we asked for this reply, so it does not trigger a mode reset
		return
	}
	if !protocol.IsModeReset(data) {
		debug.Log("sysex", "unexpected sysex from %d (% X), resetting mode", conn.id, data)
		sendSysEx(conn.out, protocol.ModeReset())
	}
}

// Shift reports whether shift is held on any controller.
func (c *Controller) Shift() bool {
	c.mu.Lock()
	defer c.unlock()
	return c.shift
}

// PadStates returns the pressed state of every pad by physical index.
func (c *Controller) PadStates(id int) [grid.Pads]bool {
	c.mu.Lock()
	defer c.unlock()
	if s := c.buttons[id]; s != nil {
		return s.pads
	}
	return [grid.Pads]bool{}
}

func (c *Controller) HorizontalStates(id int) [protocol.Buttons]bool {
	c.mu.Lock()
	defer c.unlock()
	if s := c.buttons[id]; s != nil {
		return s.horizontal
	}
	return [protocol.Buttons]bool{}
}

func (c *Controller) VerticalStates(id int) [protocol.Buttons]bool {
	c.mu.Lock()
	defer c.unlock()
	if s := c.buttons[id]; s != nil {
		return s.vertical
	}
	return [protocol.Buttons]bool{}
}

// SliderValues returns the last value (0-127) of each of the nine sliders.
func (c *Controller) SliderValues(id int) [protocol.Sliders]int {
	c.mu.Lock()
	defer c.unlock()
	if s := c.buttons[id]; s != nil {
		return s.sliders
	}
	return [protocol.Sliders]int{}
}
