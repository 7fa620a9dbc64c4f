package theme

import (
	"github.com/charmbracelet/lipgloss"

	"go-apcmini/colors"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Pad grid
	PadLit     rune // ■ lit pad
	PadOff     rune // · dark pad
	PadPressed rune // ● held down

	// Side buttons
	LinearOn    rune // ▮ on
	LinearBlink rune // ▯ blinking
	LinearOff   rune // · off
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			PadLit:     '■',
			PadOff:     '·',
			PadPressed: '●',

			LinearOn:    '▮',
			LinearBlink: '▯',
			LinearOff:   '·',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleMuted   = 0.25
	RoleFG      = 0.5
	RoleAccent  = 0.6
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value, for lighting pads.
func (t *Theme) RGB(norm float64) colors.RGB {
	return t.Palette.Lookup(norm)
}

func toLipgloss(c colors.RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
