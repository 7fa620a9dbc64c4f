package apc

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"go-apcmini/midi"
	"go-apcmini/protocol"
)

const (
	apc1 = "APC mini mk2 #1"
	apc2 = "APC mini mk2 #2"
	apc3 = "APC mini mk2 #3"
)

func TestDiscoveryFiltersByPrefix(t *testing.T) {
	h := newHarness(t, Options{MaxControllers: 2})
	h.tr.Plug(apc1, "Launchpad X", "apc MINI mk2 lower")

	got, err := h.c.AvailableControllers()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{apc1, "apc MINI mk2 lower"}
	if !slices.Equal(got, want) {
		t.Errorf("AvailableControllers() = %v, want %v", got, want)
	}
}

func TestAutoConnectRespectsCapacity(t *testing.T) {
	h := newHarness(t, Options{MaxControllers: 2})
	h.tr.Plug(apc1, apc2, apc3)

	h.c.autoConnectTick()
	h.c.autoConnectTick()

	if n := h.c.ConnectedCount(); n != 2 {
		t.Fatalf("ConnectedCount() = %d, want 2", n)
	}
	if ids := h.c.UsedIDs(); !slices.Equal(ids, []int{0, 1}) {
		t.Errorf("UsedIDs() = %v", ids)
	}
	if got := h.c.ConnectedControllers(); !slices.Equal(got, []string{apc1, apc2}) {
		t.Errorf("ConnectedControllers() = %v", got)
	}
	available, _ := h.c.AvailableControllers()
	if !slices.Equal(available, []string{apc3}) {
		t.Errorf("AvailableControllers() = %v", available)
	}
	if n := len(eventsOf[ConnectEvent](h.rec)); n != 2 {
		t.Errorf("got %d connect events, want 2", n)
	}
	// auto-connect failures are not published
	if n := len(eventsOf[ErrorEvent](h.rec)); n != 0 {
		t.Errorf("got %d error events", n)
	}
}

func TestConnectHandshake(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)

	if err := h.c.Connect(apc1); err != nil {
		t.Fatal(err)
	}
	sent := h.tr.Sent(apc1)
	if len(sent) < 2 {
		t.Fatalf("sent %d messages", len(sent))
	}
	if !bytes.Equal(sent[0], protocol.ModeReset()) {
		t.Errorf("first message = % X, want mode reset", sent[0])
	}
	if !bytes.Equal(sent[1], protocol.SliderRequest()) {
		t.Errorf("second message = % X, want slider request", sent[1])
	}
	if !h.tr.Listening(apc1) {
		t.Error("input not attached")
	}

	events := eventsOf[ConnectEvent](h.rec)
	if len(events) != 1 || events[0].ID != 0 || events[0].Name != apc1 {
		t.Fatalf("connect events = %+v", events)
	}
	if events[0].Session.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("session id not set")
	}
}

func TestConnectErrors(t *testing.T) {
	h := newHarness(t, Options{MaxControllers: 2})
	h.tr.Plug(apc1, apc2, apc3)

	if err := h.c.ConnectWithID(apc1, 1); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		fn   func() error
		want error
	}{
		{"id in use", func() error { return h.c.ConnectWithID(apc2, 1) }, ErrIDInUse},
		{"id out of range", func() error { return h.c.ConnectWithID(apc2, 2) }, ErrInvalidID},
		{"negative id", func() error { return h.c.ConnectWithID(apc2, -1) }, ErrInvalidID},
		{"already connected", func() error { return h.c.Connect(apc1) }, ErrAlreadyConnected},
		{"unknown port", func() error { return h.c.Connect("APC mini mk2 #9") }, ErrConnectFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.rec.reset()
			err := tt.fn()
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			errs := eventsOf[ErrorEvent](h.rec)
			if len(errs) != 1 || !errors.Is(errs[0].Err, tt.want) {
				t.Errorf("error events = %v", errs)
			}
		})
	}

	// lowest free id is 0 even though 1 was taken first
	if err := h.c.Connect(apc2); err != nil {
		t.Fatal(err)
	}
	if ids := h.c.UsedIDs(); !slices.Equal(ids, []int{0, 1}) {
		t.Errorf("UsedIDs() = %v", ids)
	}
	if err := h.c.Connect(apc3); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("third connect: %v", err)
	}
}

func TestConnectOpenFailure(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)
	h.tr.FailOpen(apc1, errors.New("device busy"))

	if err := h.c.Connect(apc1); !errors.Is(err, ErrConnectFailed) {
		t.Fatalf("got %v", err)
	}
	if ins, outs := h.tr.OpenHandles(apc1); ins != 0 || outs != 0 {
		t.Errorf("leaked handles: %d in, %d out", ins, outs)
	}
	if h.c.ConnectedCount() != 0 {
		t.Error("connection registered")
	}
}

func TestDisconnectBlanksAndReleases(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)
	h.c.Connect(apc1)
	h.c.SetRGBLights(0, []int{3}, Brightness100, Static, "#ff0000")
	h.c.SetVerticalLights(0, []int{2}, LinearOn)
	h.tr.ResetSent(apc1)

	if err := h.c.DisconnectName(apc1); err != nil {
		t.Fatal(err)
	}

	pads := sentPads(h.tr, apc1)
	if len(pads) != 64 {
		t.Fatalf("blanked %d pads, want 64", len(pads))
	}
	for i, c := range pads {
		if !c.IsBlack() {
			t.Errorf("pad %d = %v after disconnect", i, c)
		}
	}
	notes := sentNotes(h.tr, apc1)
	if v, ok := notes[protocol.VerticalNote(2)]; !ok || v != 0 {
		t.Errorf("vertical 2 velocity = %d (sent %v)", v, ok)
	}
	if ins, outs := h.tr.OpenHandles(apc1); ins != 0 || outs != 0 {
		t.Errorf("open handles: %d in, %d out", ins, outs)
	}
	if h.tr.Listening(apc1) {
		t.Error("listener still attached")
	}

	events := eventsOf[DisconnectEvent](h.rec)
	if len(events) != 1 || events[0].ID != 0 || events[0].Name != apc1 {
		t.Errorf("disconnect events = %+v", events)
	}
	if err := h.c.DisconnectName(apc1); !errors.Is(err, ErrNotConnected) {
		t.Errorf("second disconnect: %v", err)
	}
	if err := h.c.DisconnectID(4); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnect unknown id: %v", err)
	}
}

func TestDisconnectByID(t *testing.T) {
	h := newHarness(t, Options{MaxControllers: 2})
	h.tr.Plug(apc1, apc2)
	h.c.autoConnectTick()

	if err := h.c.DisconnectID(1); err != nil {
		t.Fatal(err)
	}
	if got := h.c.ConnectedControllers(); !slices.Equal(got, []string{apc1}) {
		t.Errorf("ConnectedControllers() = %v", got)
	}
}

func TestSweepDisconnectsUnplugged(t *testing.T) {
	h := newHarness(t, Options{MaxControllers: 2})
	h.tr.Plug(apc1, apc2)
	h.c.autoConnectTick()

	h.tr.Unplug(apc2)
	h.c.sweepTick()

	if got := h.c.ConnectedControllers(); !slices.Equal(got, []string{apc1}) {
		t.Errorf("ConnectedControllers() = %v", got)
	}
	events := eventsOf[DisconnectEvent](h.rec)
	if len(events) != 1 || events[0].Name != apc2 || events[0].ID != 1 {
		t.Errorf("disconnect events = %+v", events)
	}
}

type failingPorts struct {
	*midi.MemoryTransport
	fail bool
}

func (f *failingPorts) Ports() (midi.Ports, error) {
	if f.fail {
		return midi.Ports{}, midi.ErrScanTimeout
	}
	return f.MemoryTransport.Ports()
}

func TestSweepSkipsFailedScan(t *testing.T) {
	tr := &failingPorts{MemoryTransport: midi.NewMemoryTransport()}
	c := New(Options{Transport: tr, PortPrefix: "apc mini mk2"})
	t.Cleanup(func() { c.Close() })
	tr.Plug(apc1)
	c.autoConnectTick()

	tr.fail = true
	c.sweepTick()
	if c.ConnectedCount() != 1 {
		t.Error("failed scan disconnected the controller")
	}
	if _, err := c.AvailableControllers(); !errors.Is(err, midi.ErrScanTimeout) {
		t.Errorf("AvailableControllers() error = %v", err)
	}
}

func TestCacheSurvivesReconnect(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)
	h.c.autoConnectTick()

	if err := h.c.SetRGBLights(0, []int{12}, Brightness100, Static, "#123456"); err != nil {
		t.Fatal(err)
	}
	h.c.SetHorizontalLights(0, []int{1}, LinearBlink)

	h.tr.Unplug(apc1)
	h.c.sweepTick()
	if h.c.ConnectedCount() != 0 {
		t.Fatal("still connected")
	}

	h.tr.Plug(apc1)
	h.c.autoConnectTick()
	h.tr.ResetSent(apc1)
	h.c.renderTick()

	if got := sentPads(h.tr, apc1)[12]; got.Hex() != "#123456" {
		t.Errorf("pad 12 after reconnect = %s", got.Hex())
	}
	if v := sentNotes(h.tr, apc1)[protocol.HorizontalNote(1)]; v != protocol.LinearBlink {
		t.Errorf("horizontal 1 velocity = %d", v)
	}
}

func TestCloseTearsDownEverything(t *testing.T) {
	h := newHarness(t, Options{MaxControllers: 2})
	h.tr.Plug(apc1, apc2)
	h.c.autoConnectTick()
	if err := h.c.Start(); err != nil {
		t.Fatal(err)
	}
	h.c.StartAutoConnect()

	if err := h.c.Close(); err != nil {
		t.Fatal(err)
	}
	if h.c.ConnectedCount() != 0 {
		t.Error("connections survived Close")
	}
	if n := len(eventsOf[DisconnectEvent](h.rec)); n != 2 {
		t.Errorf("got %d disconnect events, want 2", n)
	}
	for _, name := range []string{apc1, apc2} {
		if ins, outs := h.tr.OpenHandles(name); ins != 0 || outs != 0 {
			t.Errorf("%s: %d in, %d out still open", name, ins, outs)
		}
	}
	if err := h.c.Connect(apc1); !errors.Is(err, ErrClosed) {
		t.Errorf("Connect after Close: %v", err)
	}
	if err := h.c.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close: %v", err)
	}
	if err := h.c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t, Options{})
	h.tr.Plug(apc1)
	h.c.autoConnectTick()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.c.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if h.c.ConnectedCount() != 0 {
		t.Error("Run did not close the controller")
	}
}

func TestListenerMayCallController(t *testing.T) {
	h := newHarness(t, Options{MaxControllers: 2})
	h.tr.Plug(apc1, apc2)

	h.c.OnConnect(func(e ConnectEvent) {
		if err := h.c.SetRGBLights(e.ID, []int{0}, Brightness100, Static, "#ffffff"); err != nil {
			t.Error(err)
		}
		if e.ID == 0 {
			h.c.StopAutoConnect()
		}
	})
	h.c.autoConnectTick()

	if n := h.c.ConnectedCount(); n != 2 {
		t.Errorf("ConnectedCount() = %d", n)
	}
}

func TestStartAutoConnectPolls(t *testing.T) {
	h := newHarness(t, Options{AutoConnectInterval: 5 * time.Millisecond})
	h.c.StartAutoConnect()
	defer h.c.StopAutoConnect()

	h.tr.Plug(apc1)
	deadline := time.Now().Add(2 * time.Second)
	for h.c.ConnectedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("auto-connect never picked up the device")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.c.StopAutoConnect()
	h.tr.Unplug(apc1)
	h.c.DisconnectName(apc1)
	time.Sleep(30 * time.Millisecond)
	h.tr.Plug(apc1)
	time.Sleep(30 * time.Millisecond)
	if n := h.c.ConnectedCount(); n != 0 {
		t.Errorf("connected %d after StopAutoConnect", n)
	}
}
