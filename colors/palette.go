package colors

import "sort"

// Palette is the fixed 128-colour device palette, indexed by velocity.
// Used only by the legacy velocity-based colour path.
var Palette = [128]string{
	"#000000", "#1E1E1E", "#7F7F7F", "#FFFFFF", "#FF4C4C", "#FF0000", "#590000", "#190000",
	"#FFBD6C", "#FF5400", "#591D00", "#271B00", "#FFFF4C", "#FFFF00", "#595900", "#191900",
	"#88FF4C", "#54FF00", "#1D5900", "#142B00", "#4CFF4C", "#00FF00", "#005900", "#001900",
	"#4CFF5E", "#00FF19", "#00590D", "#001902", "#4CFF88", "#00FF55", "#00591D", "#001F12",
	"#4CFFB7", "#00FF99", "#005935", "#001912", "#4CC3FF", "#00A9FF", "#004152", "#001019",
	"#4C88FF", "#0055FF", "#001D59", "#000819", "#4C4CFF", "#0000FF", "#000059", "#000019",
	"#874CFF", "#5400FF", "#190064", "#0F0030", "#FF4CFF", "#FF00FF", "#590059", "#190019",
	"#FF4C87", "#FF0054", "#59001D", "#220013", "#FF1500", "#993500", "#795100", "#436400",
	"#033900", "#005735", "#00547F", "#0000FF", "#00454F", "#2500CC", "#7F7F7F", "#202020",
	"#FF0000", "#BDFF2D", "#AFED06", "#64FF09", "#108B00", "#00FF87", "#00A9FF", "#002AFF",
	"#3F00FF", "#7A00FF", "#B21A7D", "#402100", "#FF4A00", "#88E106", "#72FF15", "#00FF00",
	"#3BFF26", "#59FF71", "#38FFCC", "#5B8AFF", "#3151C6", "#877FE9", "#D31DFF", "#FF005D",
	"#FF7F00", "#B9B000", "#90FF00", "#835D07", "#392b00", "#144C10", "#0D5038", "#15152A",
	"#16205A", "#693C1C", "#A8000A", "#DE513D", "#D86A1C", "#FFE126", "#9EE12F", "#67B50F",
	"#1E1E30", "#DCFF6B", "#80FFBD", "#9A99FF", "#8E66FF", "#404040", "#757575", "#E0FFFF",
	"#A00000", "#350000", "#1AD000", "#074200", "#B9B000", "#3F3100", "#B35F00", "#4B1502",
}

var paletteRGB [128]RGB

func init() {
	for i, hex := range Palette {
		c, err := ParseHex(hex)
		if err != nil {
			panic("colors: bad palette entry " + hex)
		}
		paletteRGB[i] = c
	}
}

// Difference is the per-channel absolute difference between two colours.
type Difference struct {
	Red, Green, Blue int
	Average          float64
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Diff compares two colours channel by channel.
func Diff(a, b RGB) Difference {
	d := Difference{
		Red:   absDiff(a.R, b.R),
		Green: absDiff(a.G, b.G),
		Blue:  absDiff(a.B, b.B),
	}
	d.Average = float64(d.Red+d.Green+d.Blue) / 3
	return d
}

// NearestPaletteIndex returns the velocity of the palette colour closest to
// hex by average channel difference. Ties go to the earlier palette entry.
func NearestPaletteIndex(hex string) (uint8, error) {
	target, err := ParseHex(hex)
	if err != nil {
		return 0, err
	}
	return nearest(target), nil
}

func nearest(target RGB) uint8 {
	type candidate struct {
		index int
		diff  float64
	}
	cands := make([]candidate, len(paletteRGB))
	for i, c := range paletteRGB {
		cands[i] = candidate{index: i, diff: Diff(target, c).Average}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].diff < cands[j].diff
	})
	return uint8(cands[0].index)
}

// DarkPaletteIndex is NearestPaletteIndex after dimming hex to 15%.
func DarkPaletteIndex(hex string) (uint8, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return 0, err
	}
	return nearest(c.Scale(0.15)), nil
}
