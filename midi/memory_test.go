package midi

import (
	"errors"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestPortsShared(t *testing.T) {
	p := Ports{
		In:  []string{"APC mini mk2", "Keyboard", "APC mini mk2 #2"},
		Out: []string{"APC mini mk2 #2", "Synth", "APC mini mk2"},
	}
	got := p.Shared()
	if len(got) != 2 || got[0] != "APC mini mk2" || got[1] != "APC mini mk2 #2" {
		t.Errorf("Shared() = %v", got)
	}
}

func TestMemoryTransportPlugUnplug(t *testing.T) {
	tr := NewMemoryTransport()
	tr.Plug("a", "b", "a")

	p, err := tr.Ports()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Shared()) != 2 {
		t.Fatalf("ports = %v", p)
	}

	tr.Unplug("a")
	p, _ = tr.Ports()
	if got := p.Shared(); len(got) != 1 || got[0] != "b" {
		t.Errorf("after unplug: %v", got)
	}
	if _, err := tr.OpenIn("a"); !errors.Is(err, ErrPortNotFound) {
		t.Errorf("OpenIn unplugged: %v", err)
	}
}

func TestMemoryTransportSendAndInject(t *testing.T) {
	tr := NewMemoryTransport()
	tr.Plug("apc")

	in, err := tr.OpenIn("apc")
	if err != nil {
		t.Fatal(err)
	}
	out, err := tr.OpenOut("apc")
	if err != nil {
		t.Fatal(err)
	}

	var got []Event
	if err := in.Listen(func(msg gomidi.Message) {
		got = append(got, Decode(msg))
	}); err != nil {
		t.Fatal(err)
	}
	if !tr.Listening("apc") {
		t.Error("not listening")
	}

	tr.Inject("apc", gomidi.NoteOn(0, 10, 127))
	tr.Inject("apc", gomidi.NoteOn(0, 10, 0))
	tr.Inject("apc", gomidi.ControlChange(0, 48, 64))
	tr.Inject("apc", gomidi.Message{0xF0, 0x47, 0x7F, 0xF7})

	want := []EventType{EventNoteOn, EventNoteOff, EventControlChange, EventSysEx}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i, ev := range got {
		if ev.Type != want[i] {
			t.Errorf("event %d type = %v, want %v", i, ev.Type, want[i])
		}
	}
	if got[2].Note != 48 || got[2].Velocity != 64 {
		t.Errorf("cc = %+v", got[2])
	}
	if len(got[3].Data) != 4 || got[3].Data[0] != 0xF0 {
		t.Errorf("sysex = % X", got[3].Data)
	}

	if err := out.Send(gomidi.NoteOn(0, 100, 1)); err != nil {
		t.Fatal(err)
	}
	if sent := tr.Sent("apc"); len(sent) != 1 {
		t.Errorf("sent = %v", sent)
	}

	in.Close()
	out.Close()
	if tr.Listening("apc") {
		t.Error("listener survived close")
	}
	if ins, outs := tr.OpenHandles("apc"); ins != 0 || outs != 0 {
		t.Errorf("open handles = %d,%d", ins, outs)
	}
	if err := out.Send(gomidi.NoteOn(0, 100, 1)); !errors.Is(err, ErrPortClosed) {
		t.Errorf("send after close: %v", err)
	}
	if tr.Inject("apc", gomidi.NoteOn(0, 1, 1)) {
		t.Error("inject delivered after close")
	}
}

func TestMemoryTransportFailOpen(t *testing.T) {
	tr := NewMemoryTransport()
	tr.Plug("apc")
	boom := errors.New("boom")
	tr.FailOpen("apc", boom)
	if _, err := tr.OpenOut("apc"); !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
	tr.FailOpen("apc", nil)
	if _, err := tr.OpenOut("apc"); err != nil {
		t.Errorf("got %v", err)
	}
}

func TestStaleListenerDoesNotClearNewOne(t *testing.T) {
	tr := NewMemoryTransport()
	tr.Plug("apc")
	first, _ := tr.OpenIn("apc")
	first.Listen(func(gomidi.Message) {})
	second, _ := tr.OpenIn("apc")
	second.Listen(func(gomidi.Message) {})

	first.Close()
	if !tr.Listening("apc") {
		t.Error("closing the first handle removed the second listener")
	}
}
