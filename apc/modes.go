package apc

import (
	"fmt"
	"math"
	"time"

	"go-apcmini/colors"
	"go-apcmini/protocol"
)

// Brightness is a named multiplier applied to a colour when it is cached.
type Brightness string

const (
	Brightness10  Brightness = "brightness_10"
	Brightness25  Brightness = "brightness_25"
	Brightness50  Brightness = "brightness_50"
	Brightness65  Brightness = "brightness_65"
	Brightness75  Brightness = "brightness_75"
	Brightness90  Brightness = "brightness_90"
	Brightness100 Brightness = "brightness_100"
)

var brightnessFactors = map[Brightness]float64{
	Brightness10:  0.10,
	Brightness25:  0.25,
	Brightness50:  0.50,
	Brightness65:  0.65,
	Brightness75:  0.75,
	Brightness90:  0.90,
	Brightness100: 1,
}

// Factor returns the multiplier for b.
func (b Brightness) Factor() (float64, error) {
	f, ok := brightnessFactors[b]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBrightness, string(b))
	}
	return f, nil
}

// Mode names a pad effect and its period.
type Mode string

const (
	Static Mode = "static"

	PulsingHalf      Mode = "pulsing_1/2"
	PulsingQuarter   Mode = "pulsing_1/4"
	PulsingEighth    Mode = "pulsing_1/8"
	PulsingSixteenth Mode = "pulsing_1/16"

	BlinkingHalf         Mode = "blinking_1/2"
	BlinkingQuarter      Mode = "blinking_1/4"
	BlinkingEighth       Mode = "blinking_1/8"
	BlinkingSixteenth    Mode = "blinking_1/16"
	BlinkingTwentyFourth Mode = "blinking_1/24" // short blinking

	FadeInHalf      Mode = "fade_in_1/2"
	FadeInQuarter   Mode = "fade_in_1/4"
	FadeInEighth    Mode = "fade_in_1/8"
	FadeInSixteenth Mode = "fade_in_1/16"

	FadeOutHalf      Mode = "fade_out_1/2"
	FadeOutQuarter   Mode = "fade_out_1/4"
	FadeOutEighth    Mode = "fade_out_1/8"
	FadeOutSixteenth Mode = "fade_out_1/16"
)

type effectKind int

const (
	effectStatic effectKind = iota
	effectPulsing
	effectBlinking
	effectFadeIn
	effectFadeOut
)

// Effect is a parsed Mode: an intensity function and its period as a
// fraction of two beats.
type Effect struct {
	kind   effectKind
	period float64
}

var modeEffects = map[Mode]Effect{
	Static: {effectStatic, 1},

	PulsingHalf:      {effectPulsing, 1.0 / 2},
	PulsingQuarter:   {effectPulsing, 1.0 / 4},
	PulsingEighth:    {effectPulsing, 1.0 / 8},
	PulsingSixteenth: {effectPulsing, 1.0 / 16},

	BlinkingHalf:         {effectBlinking, 1.0 / 2},
	BlinkingQuarter:      {effectBlinking, 1.0 / 4},
	BlinkingEighth:       {effectBlinking, 1.0 / 8},
	BlinkingSixteenth:    {effectBlinking, 1.0 / 16},
	BlinkingTwentyFourth: {effectBlinking, 1.0 / 24},

	FadeInHalf:      {effectFadeIn, 1.0 / 2},
	FadeInQuarter:   {effectFadeIn, 1.0 / 4},
	FadeInEighth:    {effectFadeIn, 1.0 / 8},
	FadeInSixteenth: {effectFadeIn, 1.0 / 16},

	FadeOutHalf:      {effectFadeOut, 1.0 / 2},
	FadeOutQuarter:   {effectFadeOut, 1.0 / 4},
	FadeOutEighth:    {effectFadeOut, 1.0 / 8},
	FadeOutSixteenth: {effectFadeOut, 1.0 / 16},
}

// Effect parses m.
func (m Mode) Effect() (Effect, error) {
	e, ok := modeEffects[m]
	if !ok {
		return Effect{}, fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
	}
	return e, nil
}

// PhaseWrap is the length of one phase cycle: two beats at 60 BPM, in ms.
const PhaseWrap = 2000

// Phase is the shared time base of every effect: milliseconds scaled by
// bpm/60, wrapping at PhaseWrap.
func Phase(now time.Time, bpm float64) int {
	scaled := int64(math.Round(float64(now.UnixMilli()) * bpm / 60))
	p := scaled % PhaseWrap
	if p < 0 {
		p += PhaseWrap
	}
	return int(p)
}

// Multiplier returns the intensity (0-1) of the effect at phase.
func (e Effect) Multiplier(phase int) float64 {
	if e.kind == effectStatic {
		return 1
	}
	half := PhaseWrap * e.period
	p := math.Mod(float64(phase), 2*half)
	switch e.kind {
	case effectBlinking:
		if p < half {
			return 1
		}
		return 0
	case effectPulsing:
		if p < half {
			return p / half
		}
		return 1 - (p-half)/half
	case effectFadeIn:
		if p < half {
			return p / half
		}
		return 0
	case effectFadeOut:
		if p < half {
			return 1 - p/half
		}
		return 0
	}
	return 1
}

// Apply evaluates the effect for base at phase.
func (e Effect) Apply(base colors.RGB, phase int) colors.RGB {
	if e.kind == effectStatic {
		return base
	}
	return base.Scale(e.Multiplier(phase))
}

// LinearMode is the state of a horizontal or vertical button light. Blinking
// is done by the device itself.
type LinearMode string

const (
	LinearOff   LinearMode = "off"
	LinearOn    LinearMode = "on"
	LinearBlink LinearMode = "blink"
)

func (m LinearMode) velocity() (uint8, error) {
	switch m {
	case LinearOff, "":
		return protocol.LinearOff, nil
	case LinearOn:
		return protocol.LinearOn, nil
	case LinearBlink:
		return protocol.LinearBlink, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
}
