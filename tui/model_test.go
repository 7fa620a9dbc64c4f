package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-apcmini/apc"
	"go-apcmini/midi"
	"go-apcmini/theme"
)

func newTestModel(t *testing.T) (Model, *apc.Controller) {
	t.Helper()
	c := apc.New(apc.Options{Transport: midi.NewMemoryTransport(), MaxControllers: 2})
	t.Cleanup(func() { c.Close() })
	events, off := Forward(c, 16)
	t.Cleanup(off)
	m := NewModel(c, events, theme.New(theme.Default()))
	m.SnapshotDir = t.TempDir()
	return m, c
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectController(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(key("2"))
	m = next.(Model)
	if m.selected != 1 {
		t.Errorf("selected = %d, want 1", m.selected)
	}

	next, _ = m.Update(key("5"))
	m = next.(Model)
	if m.selected != 1 {
		t.Errorf("selected %d beyond max", m.selected)
	}
}

func TestEventsAreLogged(t *testing.T) {
	m, c := newTestModel(t)
	c.Bus().Publish(apc.SliderEvent{ID: 0, Slider: 3, Value: 64})

	e := <-m.events
	next, cmd := m.Update(EventMsg{Event: e})
	m = next.(Model)
	if cmd == nil {
		t.Error("model stopped listening for events")
	}
	if len(m.log) != 1 || !strings.Contains(m.log[0], e.String()) {
		t.Errorf("log = %q", m.log)
	}
	if !strings.Contains(m.View(), e.String()) {
		t.Error("view does not show the event")
	}
}

func TestSnapshotKey(t *testing.T) {
	m, c := newTestModel(t)
	if err := c.SetRGBLights(0, []int{0}, apc.Brightness100, apc.Static, "#ff0000"); err != nil {
		t.Fatal(err)
	}

	next, _ := m.Update(key("s"))
	m = next.(Model)

	files, _ := filepath.Glob(filepath.Join(m.SnapshotDir, "*.png"))
	if len(files) != 1 {
		t.Fatalf("got %d snapshots (status %q)", len(files), m.status)
	}
	if info, err := os.Stat(files[0]); err != nil || info.Size() == 0 {
		t.Errorf("snapshot %s empty: %v", files[0], err)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || next.(Model).View() != "" {
		t.Error("ctrl+c did not quit")
	}
}
