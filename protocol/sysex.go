package protocol

import "bytes"

// PadColor is one entry of a bulk RGB message.
type PadColor struct {
	Pad     uint8
	R, G, B uint8
}

const bytesPerPad = 8

// EncodePadColors frames pads into bulk RGB sysex messages of at most
// MaxPadsPerFrame pads each. Every returned message is complete (F0 ... F7).
//
//	F0 47 7F 4F 24 <lenMSB> <lenLSB> { start end rMSB rLSB gMSB gLSB bMSB bLSB }... F7
//
// start and end are a pad range; a single pad is sent as start == end.
func EncodePadColors(pads []PadColor) [][]byte {
	var frames [][]byte
	for len(pads) > 0 {
		n := min(len(pads), MaxPadsPerFrame)
		frames = append(frames, encodeFrame(pads[:n]))
		pads = pads[n:]
	}
	return frames
}

func encodeFrame(pads []PadColor) []byte {
	size := len(pads) * bytesPerPad
	msg := make([]byte, 0, len(header)+3+size+1)
	msg = append(msg, header...)
	msg = append(msg, msgPadColors, byte(size>>7)&0x7F, byte(size)&0x7F)
	for _, p := range pads {
		pad := p.Pad & 0x7F
		msg = append(msg, pad, pad)
		msg = appendChannel(msg, p.R)
		msg = appendChannel(msg, p.G)
		msg = appendChannel(msg, p.B)
	}
	return append(msg, sysexEnd)
}

func appendChannel(b []byte, v uint8) []byte {
	return append(b, (v>>7)&0x7F, v&0x7F)
}

// ModeReset returns the command that forces the device back into its default
// mode. It is sent on connect and whenever the device echoes something else.
func ModeReset() []byte {
	return bytes.Clone(modeReset)
}

// SliderRequest asks the device for the current position of all sliders.
func SliderRequest() []byte {
	return bytes.Clone(sliderRequest)
}

// IsModeReset reports whether msg is exactly the mode reset sequence.
func IsModeReset(msg []byte) bool {
	return bytes.Equal(msg, modeReset)
}

// IsSliderResponse reports whether msg is a slider snapshot reply.
func IsSliderResponse(msg []byte) bool {
	return len(msg) > 4 && msg[4] == msgSliderResponse
}

// ParseSliderResponse extracts the nine slider values from a slider snapshot
// reply. Truncated or foreign messages return false.
func ParseSliderResponse(msg []byte) ([Sliders]uint8, bool) {
	var values [Sliders]uint8
	if !IsSliderResponse(msg) || len(msg) < 7+Sliders {
		return values, false
	}
	for i := range values {
		values[i] = msg[7+i] & 0x7F
	}
	return values, true
}

// Frame wraps a sysex body in F0/F7 unless it already carries them.
func Frame(body []byte) []byte {
	if len(body) > 0 && body[0] == sysexStart {
		return body
	}
	msg := make([]byte, 0, len(body)+2)
	msg = append(msg, sysexStart)
	msg = append(msg, body...)
	return append(msg, sysexEnd)
}
