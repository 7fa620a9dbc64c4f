package theme

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"go-apcmini/colors"
)

type Palette struct {
	Name   string
	Colors []colors.RGB
}

// Default is the palette used when no GPL file is given: the dark-to-bright
// ramp of the device's own palette, from black through purple to warm white.
func Default() *Palette {
	return &Palette{
		Name: "apc",
		Colors: []colors.RGB{
			{R: 0x12, G: 0x0b, B: 0x1e},
			{R: 0x2e, G: 0x1a, B: 0x47},
			{R: 0x6b, G: 0x2f, B: 0x8a},
			{R: 0xb0, G: 0x4b, B: 0xa8},
			{R: 0xff, G: 0x4c, B: 0x4c},
			{R: 0xff, G: 0x9e, B: 0x3d},
			{R: 0xff, G: 0xe6, B: 0x6d},
		},
	}
}

// LoadGPL reads a GIMP palette file.
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// first 3 fields are R G B, the rest is a name
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		var rgb [3]uint8
		ok := true
		for i := range rgb {
			v, err := strconv.Atoi(fields[i])
			if err != nil || v < 0 || v > 255 {
				ok = false
				break
			}
			rgb[i] = uint8(v)
		}
		if ok {
			p.Colors = append(p.Colors, colors.RGB{R: rgb[0], G: rgb[1], B: rgb[2]})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found in palette %s", path)
	}

	return p, nil
}

// Lookup returns interpolated color for normalized value 0-1. Neighbouring
// colors are blended in Lab space.
func (p *Palette) Lookup(norm float64) colors.RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := toColorful(p.Colors[i])
	c1 := toColorful(p.Colors[i+1])
	r, g, b := c0.BlendLab(c1, frac).Clamped().RGB255()
	return colors.RGB{R: r, G: g, B: b}
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) colors.RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}

func toColorful(c colors.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
