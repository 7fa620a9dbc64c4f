package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-apcmini/apc"
	"go-apcmini/debug"
	"go-apcmini/theme"
	"go-apcmini/widgets"
)

const (
	logLines     = 12
	refreshEvery = 100 * time.Millisecond
	snapshotSize = 32
)

type Model struct {
	Controller  *apc.Controller
	Theme       *theme.Theme
	SnapshotDir string

	events   <-chan apc.Event
	log      []string
	selected int
	status   string
	quitting bool
}

type EventMsg struct {
	Event apc.Event
}

type TickMsg time.Time

// Forward subscribes to every controller event and returns a channel the
// model reads from. Events are dropped when the UI falls behind.
func Forward(c *apc.Controller, buffer int) (<-chan apc.Event, func()) {
	ch := make(chan apc.Event, buffer)
	off := c.OnEvent(func(e apc.Event) {
		select {
		case ch <- e:
		default:
			debug.LogEvery(50, "tui", "event channel full, dropping %T", e)
		}
	})
	return ch, off
}

func NewModel(c *apc.Controller, events <-chan apc.Event, th *theme.Theme) Model {
	return Model{
		Controller:  c,
		Theme:       th,
		SnapshotDir: ".",
		events:      events,
	}
}

func ListenForEvents(events <-chan apc.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(ListenForEvents(m.events), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "1", "2", "3", "4", "5", "6", "7", "8":
			id := int(msg.String()[0] - '1')
			if id < m.Controller.Options().MaxControllers {
				m.selected = id
				m.status = ""
			}

		case "r":
			if err := m.Controller.ResetLights(m.selected); err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("reset lights of %d", m.selected)
			}

		case "s":
			m.status = m.snapshot()
		}

	case EventMsg:
		m.log = append(m.log, fmt.Sprintf("%s  %s", time.Now().Format("15:04:05"), msg.Event))
		if len(m.log) > logLines {
			m.log = m.log[len(m.log)-logLines:]
		}
		return m, ListenForEvents(m.events)

	case TickMsg:
		return m, tick()
	}

	return m, nil
}

func (m Model) snapshot() string {
	state := widgets.State(m.Controller, m.selected)
	name := fmt.Sprintf("apc-%d-%s.png", m.selected, time.Now().Format("150405"))
	path := filepath.Join(m.SnapshotDir, name)
	if err := widgets.SaveSnapshot(path, state.Pads, snapshotSize); err != nil {
		return fmt.Sprintf("snapshot: %v", err)
	}
	return "saved " + path
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	c := m.Controller
	opts := c.Options()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.BG()).
		Padding(0, 1)

	shift := ""
	if c.Shift() {
		shift = "  SHIFT"
	}
	header := headerStyle.Render(fmt.Sprintf("apcmini  %d/%d connected  %gbpm  id:%d%s",
		c.ConnectedCount(), opts.MaxControllers, opts.BPM, m.selected, shift))

	ports := c.ConnectedControllers()
	for _, name := range c.PendingControllers() {
		ports = append(ports, name+" (choosing id)")
	}
	if len(ports) == 0 {
		ports = append(ports, "no controllers")
	}

	state := widgets.State(c, m.selected)
	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		widgets.RenderPadGrid(state, m.Theme),
		"    ",
		widgets.RenderSliders(c.SliderValues(m.selected), m.Theme),
	)

	help := dimStyle.Render("1-8:controller  r:reset lights  s:snapshot  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(strings.Join(ports, ", ")))
	out.WriteString("\n\n")
	out.WriteString(panels)
	out.WriteString("\n\n")
	out.WriteString(strings.Join(m.log, "\n"))
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}

	return out.String()
}
