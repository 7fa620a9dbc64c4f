package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// EventType classifies a decoded message.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventNoteOn
	EventNoteOff
	EventControlChange
	EventSysEx
)

// Event is a decoded incoming message.
type Event struct {
	Type     EventType
	Channel  uint8
	Note     uint8 // note or controller number
	Velocity uint8 // velocity or controller value
	Data     []byte
}

// Decode classifies msg. A note-on with velocity 0 decodes as a note-off.
func Decode(msg gomidi.Message) Event {
	var ev Event
	var inner []byte
	switch {
	case msg.GetNoteStart(&ev.Channel, &ev.Note, &ev.Velocity):
		ev.Type = EventNoteOn
	case msg.GetNoteEnd(&ev.Channel, &ev.Note):
		ev.Type = EventNoteOff
	case msg.GetControlChange(&ev.Channel, &ev.Note, &ev.Velocity):
		ev.Type = EventControlChange
	case len(msg) > 0 && msg[0] == 0xF0:
		ev.Type = EventSysEx
		ev.Data = append([]byte(nil), msg...)
	case msg.GetSysEx(&inner):
		ev.Type = EventSysEx
		ev.Data = append(append([]byte{0xF0}, inner...), 0xF7)
	}
	return ev
}
