package apc

import (
	"fmt"

	"github.com/google/uuid"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-apcmini/debug"
	"go-apcmini/grid"
	"go-apcmini/midi"
	"go-apcmini/protocol"
)

// connection is a controller with an assigned id.
type connection struct {
	id      int
	name    string
	session uuid.UUID
	in      midi.In
	out     midi.Out
}

func send(out midi.Out, msg gomidi.Message) {
	if err := out.Send(msg); err != nil {
		debug.LogEvery(20, "transport", "send to %s failed: %v", out.Name(), err)
	}
}

func sendSysEx(out midi.Out, frames ...[]byte) {
	for _, frame := range frames {
		send(out, gomidi.Message(frame))
	}
}

func sendPads(out midi.Out, pads []protocol.PadColor) {
	sendSysEx(out, protocol.EncodePadColors(pads)...)
}

func sendLinear(out midi.Out, note, velocity uint8) {
	send(out, gomidi.NoteOn(0, note, velocity))
}

// blank turns off every light on the device without touching the cache.
func blank(out midi.Out) {
	pads := make([]protocol.PadColor, grid.Pads)
	for i := range pads {
		pads[i].Pad = uint8(i)
	}
	sendPads(out, pads)
	for i := 0; i < protocol.Buttons; i++ {
		sendLinear(out, protocol.HorizontalNote(i), protocol.LinearOff)
		sendLinear(out, protocol.VerticalNote(i), protocol.LinearOff)
	}
}

// openPorts opens both directions of name. On failure nothing is left open.
func openPorts(t midi.Transport, name string) (midi.In, midi.Out, error) {
	in, err := t.OpenIn(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}
	out, err := t.OpenOut(name)
	if err != nil {
		in.Close()
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}
	return in, out, nil
}

func closePorts(name string, in midi.In, out midi.Out) {
	in.StopListening()
	if err := in.Close(); err != nil {
		debug.Warn("transport", "close input %s: %v", name, err)
	}
	if err := out.Close(); err != nil {
		debug.Warn("transport", "close output %s: %v", name, err)
	}
}
