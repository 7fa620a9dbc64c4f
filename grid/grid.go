// Package grid maps between physical pad indices on the 8x8 pad grid and
// caller-chosen virtual coordinate systems.
package grid

import (
	"fmt"
	"strings"
)

// Size is the edge length of the pad grid.
const Size = 8

// Pads is the number of pads on the grid.
const Pads = Size * Size

// Coord is an X-Y position on the grid, both in 0..7.
type Coord struct {
	X, Y int
}

func (c Coord) Valid() bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// IndexToCoord converts a physical pad index (0..63) to physical coordinates.
// Pad 0 is bottom-left on the device.
func IndexToCoord(index int) Coord {
	return Coord{X: index % Size, Y: index / Size}
}

// CoordToIndex converts physical coordinates to a pad index.
func CoordToIndex(c Coord) int {
	return c.X + c.Y*Size
}

// ValidIndex reports whether index addresses a pad.
func ValidIndex(index int) bool {
	return index >= 0 && index < Pads
}

// AxisX is the direction in which virtual X grows.
type AxisX int

const (
	LeftToRight AxisX = iota
	RightToLeft
)

// AxisY is the direction in which virtual Y grows.
type AxisY int

const (
	TopToBottom AxisY = iota
	BottomToTop
)

// Orientation describes a virtual coordinate system. With Columns set the
// roles of the x and y axes are swapped (column-major layouts).
type Orientation struct {
	X       AxisX
	Y       AxisY
	Columns bool
}

// Default is rows, left to right, top to bottom.
var Default = Orientation{X: LeftToRight, Y: TopToBottom}

func flip(v int, on bool) int {
	if on {
		return Size - 1 - v
	}
	return v
}

// ToPhysical transforms virtual coordinates into physical coordinates.
func (o Orientation) ToPhysical(c Coord) Coord {
	fx := o.X == RightToLeft
	fy := o.Y == TopToBottom
	if o.Columns {
		return Coord{X: flip(c.Y, fx), Y: flip(c.X, fy)}
	}
	return Coord{X: flip(c.X, fx), Y: flip(c.Y, fy)}
}

// ToVirtual is the inverse of ToPhysical.
func (o Orientation) ToVirtual(c Coord) Coord {
	fx := o.X == RightToLeft
	fy := o.Y == TopToBottom
	if o.Columns {
		return Coord{X: flip(c.Y, fy), Y: flip(c.X, fx)}
	}
	return Coord{X: flip(c.X, fx), Y: flip(c.Y, fy)}
}

// Index returns the physical pad index for virtual coordinates c.
func (o Orientation) Index(c Coord) int {
	return CoordToIndex(o.ToPhysical(c))
}

// Coord returns the virtual coordinates of a physical pad index.
func (o Orientation) Coord(index int) Coord {
	return o.ToVirtual(IndexToCoord(index))
}

func (o Orientation) String() string {
	layout := "rows"
	if o.Columns {
		layout = "columns"
	}
	x := "left->right"
	if o.X == RightToLeft {
		x = "right->left"
	}
	y := "top->bottom"
	if o.Y == BottomToTop {
		y = "bottom->top"
	}
	return fmt.Sprintf("%s_(%s)_(%s)", layout, x, y)
}

// All lists the eight valid orientations.
func All() []Orientation {
	var out []Orientation
	for _, cols := range []bool{false, true} {
		for _, x := range []AxisX{LeftToRight, RightToLeft} {
			for _, y := range []AxisY{TopToBottom, BottomToTop} {
				out = append(out, Orientation{X: x, Y: y, Columns: cols})
			}
		}
	}
	return out
}

// ParseOrientation parses names such as "rows_(left->right)_(top->bottom)".
// The empty string yields Default.
func ParseOrientation(name string) (Orientation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default, nil
	}
	for _, o := range All() {
		if o.String() == name {
			return o, nil
		}
	}
	return Orientation{}, fmt.Errorf("unknown orientation %q", name)
}
