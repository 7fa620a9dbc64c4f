package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-apcmini/apc"
	"go-apcmini/colors"
	"go-apcmini/grid"
	"go-apcmini/protocol"
	"go-apcmini/theme"
)

// GridState is everything one controller shows, pads by physical index.
type GridState struct {
	Pads       [grid.Pads]colors.RGB
	Pressed    [grid.Pads]bool
	Horizontal [protocol.Buttons]apc.LinearMode
	Vertical   [protocol.Buttons]apc.LinearMode
}

// State reads the state of controller id at the current phase.
func State(c *apc.Controller, id int) GridState {
	opts := c.Options()
	s := GridState{
		Pads:    c.PadColors(id, apc.Phase(opts.Now(), opts.BPM)),
		Pressed: c.PadStates(id),
	}
	s.Horizontal, s.Vertical = c.LinearLights(id)
	return s
}

// RenderPad renders a single colored pad
func RenderPad(c colors.RGB, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	return style.Render(string(symbol))
}

func padSymbol(sym theme.Symbols, c colors.RGB, pressed bool) rune {
	switch {
	case pressed:
		return sym.PadPressed
	case c.IsBlack():
		return sym.PadOff
	}
	return sym.PadLit
}

func linearSymbol(sym theme.Symbols, m apc.LinearMode) rune {
	switch m {
	case apc.LinearOn:
		return sym.LinearOn
	case apc.LinearBlink:
		return sym.LinearBlink
	}
	return sym.LinearOff
}

// RenderPadGrid renders the 8x8 grid as the device is laid out: pad row 0 at
// the bottom, vertical buttons down the right, horizontal buttons underneath.
func RenderPadGrid(s GridState, th *theme.Theme) string {
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	lit := lipgloss.NewStyle().Foreground(th.Warning())
	linear := func(m apc.LinearMode) string {
		r := string(linearSymbol(th.Symbols, m))
		if m == apc.LinearOn || m == apc.LinearBlink {
			return lit.Render(r)
		}
		return dim.Render(r)
	}

	var lines []string
	for row := grid.Size - 1; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col < grid.Size; col++ {
			i := grid.CoordToIndex(grid.Coord{X: col, Y: row})
			c := s.Pads[i]
			symbol := padSymbol(th.Symbols, c, s.Pressed[i])
			if c.IsBlack() {
				line.WriteString(dim.Render(string(symbol)))
			} else {
				line.WriteString(RenderPad(c, symbol))
			}
			line.WriteString(" ")
		}
		line.WriteString(" ")
		line.WriteString(linear(s.Vertical[grid.Size-1-row]))
		lines = append(lines, line.String())
	}

	var bottom strings.Builder
	for i := 0; i < protocol.Buttons; i++ {
		bottom.WriteString(linear(s.Horizontal[i]))
		bottom.WriteString(" ")
	}
	lines = append(lines, bottom.String())
	return strings.Join(lines, "\n")
}

// RenderSliders renders the nine faders as short bars.
func RenderSliders(values [protocol.Sliders]int, th *theme.Theme) string {
	const width = 8
	bar := lipgloss.NewStyle().Foreground(th.Accent())
	dim := lipgloss.NewStyle().Foreground(th.Muted())

	var lines []string
	for i, v := range values {
		filled := v * width / 127
		lines = append(lines, fmt.Sprintf("%d %s%s %3d", i+1,
			bar.Render(strings.Repeat("█", filled)),
			dim.Render(strings.Repeat("░", width-filled)), v))
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
