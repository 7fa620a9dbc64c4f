// Package protocol builds and parses the messages the APC Mini mk2 understands.
//
// Note mapping
//
//	Pads:        notes 0-63 (physical index, bottom-left is 0)
//	Horizontal:  notes 100-107
//	Vertical:    notes 112-119 (112 is also the id selector stop button)
//	Shift:       note 122
//	Sliders:     CC 48-56
package protocol

const (
	PadNoteFirst uint8 = 0
	PadNoteLast  uint8 = 63

	HorizontalNoteFirst uint8 = 100
	HorizontalNoteLast  uint8 = 107

	VerticalNoteFirst uint8 = 112
	VerticalNoteLast  uint8 = 119

	ShiftNote uint8 = 122

	SliderCCFirst uint8 = 48
	SliderCCLast  uint8 = 56

	Pads    = 64
	Buttons = 8
	Sliders = 9
)

// StopNote cancels manual id selection.
const StopNote = VerticalNoteFirst

// Velocities for the single-colour horizontal and vertical lights.
const (
	LinearOff   uint8 = 0
	LinearOn    uint8 = 1
	LinearBlink uint8 = 2
)

// MaxPadsPerFrame bounds the pads carried by one bulk RGB message.
const MaxPadsPerFrame = 32

const (
	sysexStart uint8 = 0xF0
	sysexEnd   uint8 = 0xF7

	manufacturerAkai  uint8 = 0x47
	deviceAll         uint8 = 0x7F
	productAPCMiniMk2 uint8 = 0x4F

	msgPadColors      uint8 = 0x24
	msgSliderRequest  uint8 = 0x60
	msgSliderResponse uint8 = 0x61
	msgModeReset      uint8 = 0x62
)

var header = []byte{sysexStart, manufacturerAkai, deviceAll, productAPCMiniMk2}

var (
	modeReset     = []byte{0xF0, 0x47, 0x7F, 0x4F, msgModeReset, 0x00, 0x01, 0x00, 0xF7}
	sliderRequest = []byte{0xF0, 0x47, 0x7F, 0x4F, msgSliderRequest, 0x00, 0x04, 0x00, 0x01, 0x00, 0x00, 0xF7}
)

// Kind classifies a note number.
type Kind int

const (
	KindUnknown Kind = iota
	KindPad
	KindHorizontal
	KindVertical
	KindShift
)

// ClassifyNote maps a note number to its control and index within that control.
func ClassifyNote(note uint8) (Kind, int) {
	switch {
	case note <= PadNoteLast:
		return KindPad, int(note)
	case note >= HorizontalNoteFirst && note <= HorizontalNoteLast:
		return KindHorizontal, int(note - HorizontalNoteFirst)
	case note >= VerticalNoteFirst && note <= VerticalNoteLast:
		return KindVertical, int(note - VerticalNoteFirst)
	case note == ShiftNote:
		return KindShift, 0
	}
	return KindUnknown, -1
}

// SliderIndex maps a controller number to a slider index (0-8).
func SliderIndex(cc uint8) (int, bool) {
	if cc < SliderCCFirst || cc > SliderCCLast {
		return -1, false
	}
	return int(cc - SliderCCFirst), true
}

func HorizontalNote(i int) uint8 { return HorizontalNoteFirst + uint8(i) }
func VerticalNote(i int) uint8 { return VerticalNoteFirst + uint8(i) }
