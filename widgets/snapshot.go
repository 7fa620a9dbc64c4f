package widgets

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"go-apcmini/colors"
	"go-apcmini/grid"
)

// Image returns the pads as an 8x8 image, top row first.
func Image(pads [grid.Pads]colors.RGB) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Size, grid.Size))
	for i, c := range pads {
		p := grid.IndexToCoord(i)
		img.Set(p.X, grid.Size-1-p.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	}
	return img
}

// WriteSnapshot writes the pads as a PNG with each pad scale pixels wide.
func WriteSnapshot(w io.Writer, pads [grid.Pads]colors.RGB, scale int) error {
	if scale < 1 {
		return fmt.Errorf("snapshot scale %d must be >= 1", scale)
	}
	src := Image(pads)
	dst := image.NewRGBA(image.Rect(0, 0, grid.Size*scale, grid.Size*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return png.Encode(w, dst)
}

// SaveSnapshot writes a PNG snapshot to path.
func SaveSnapshot(path string, pads [grid.Pads]colors.RGB, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, pads, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
