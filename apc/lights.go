package apc

import (
	"fmt"

	"go-apcmini/colors"
	"go-apcmini/grid"
	"go-apcmini/protocol"
)

type padLight struct {
	color  colors.RGB // brightness already applied
	effect Effect
}

// lightSet is the cached lighting of one controller id. It outlives the
// connection so a reconnecting controller shows the same lights.
type lightSet struct {
	pads       [grid.Pads]padLight
	horizontal [protocol.Buttons]LinearMode
	vertical   [protocol.Buttons]LinearMode
}

func (c *Controller) lightsLocked(id int) *lightSet {
	set, ok := c.lights[id]
	if !ok {
		set = &lightSet{}
		c.lights[id] = set
	}
	return set
}

func (c *Controller) checkLightIDLocked(id int) error {
	if id < 0 || id >= c.opts.MaxControllers {
		return fmt.Errorf("id %d: %w", id, ErrInvalidID)
	}
	return nil
}

func newPadLight(brightness Brightness, mode Mode, hex string) (padLight, error) {
	factor, err := brightness.Factor()
	if err != nil {
		return padLight{}, err
	}
	effect, err := mode.Effect()
	if err != nil {
		return padLight{}, err
	}
	color, err := colors.ParseHex(hex)
	if err != nil {
		return padLight{}, err
	}
	return padLight{color: color.Scale(factor), effect: effect}, nil
}

// setPadsLocked validates everything before changing anything.
func (c *Controller) setPadsLocked(id int, pads []int, brightness Brightness, mode Mode, hex string) error {
	if err := c.checkLightIDLocked(id); err != nil {
		return err
	}
	light, err := newPadLight(brightness, mode, hex)
	if err != nil {
		return err
	}
	for _, pad := range pads {
		if !grid.ValidIndex(pad) {
			return fmt.Errorf("pad %d: %w", pad, ErrInvalidPosition)
		}
	}
	set := c.lightsLocked(id)
	for _, pad := range pads {
		set.pads[pad] = light
	}
	return nil
}

func (c *Controller) coordsToPads(coords []grid.Coord) ([]int, error) {
	pads := make([]int, 0, len(coords))
	for _, coord := range coords {
		if !coord.Valid() {
			return nil, fmt.Errorf("pad %s: %w", coord, ErrInvalidPosition)
		}
		pads = append(pads, c.opts.Orientation.Index(coord))
	}
	return pads, nil
}

// SetRGBLights sets pads, given as physical indices, on controller id.
// Errors are returned and published as ErrorEvent; nothing changes on error.
func (c *Controller) SetRGBLights(id int, pads []int, brightness Brightness, mode Mode, hex string) error {
	c.mu.Lock()
	defer c.unlock()
	if err := c.setPadsLocked(id, pads, brightness, mode, hex); err != nil {
		return c.fail(fmt.Errorf("set rgb lights: %w", err))
	}
	return nil
}

// SetRGBLightsAt is SetRGBLights for coordinates in the configured orientation.
func (c *Controller) SetRGBLightsAt(id int, coords []grid.Coord, brightness Brightness, mode Mode, hex string) error {
	c.mu.Lock()
	defer c.unlock()
	pads, err := c.coordsToPads(coords)
	if err == nil {
		err = c.setPadsLocked(id, pads, brightness, mode, hex)
	}
	if err != nil {
		return c.fail(fmt.Errorf("set rgb lights: %w", err))
	}
	return nil
}

// FillRGBLights sets a width x height rectangle starting at origin, in the
// configured orientation.
func (c *Controller) FillRGBLights(id int, origin grid.Coord, width, height int, brightness Brightness, mode Mode, hex string) error {
	c.mu.Lock()
	defer c.unlock()

	var err error
	var coords []grid.Coord
	// compare against the space left, origin+size can overflow
	if !origin.Valid() {
		err = fmt.Errorf("pad %s: %w", origin, ErrInvalidPosition)
	} else if width < 1 || height < 1 || width > grid.Size-origin.X || height > grid.Size-origin.Y {
		err = fmt.Errorf("rectangle %dx%d at %s: %w", width, height, origin, ErrInvalidPosition)
	}
	for x := origin.X; err == nil && x < origin.X+width; x++ {
		for y := origin.Y; y < origin.Y+height; y++ {
			coords = append(coords, grid.Coord{X: x, Y: y})
		}
	}
	var pads []int
	if err == nil {
		pads, err = c.coordsToPads(coords)
	}
	if err == nil {
		err = c.setPadsLocked(id, pads, brightness, mode, hex)
	}
	if err != nil {
		return c.fail(fmt.Errorf("fill rgb lights: %w", err))
	}
	return nil
}

func (c *Controller) setLinearLocked(id int, indices []int, mode LinearMode, horizontal bool) error {
	if err := c.checkLightIDLocked(id); err != nil {
		return err
	}
	if _, err := mode.velocity(); err != nil {
		return err
	}
	for _, i := range indices {
		if i < 0 || i >= protocol.Buttons {
			return fmt.Errorf("button %d: %w", i, ErrInvalidPosition)
		}
	}
	set := c.lightsLocked(id)
	for _, i := range indices {
		if horizontal {
			set.horizontal[i] = mode
		} else {
			set.vertical[i] = mode
		}
	}
	return nil
}

// SetHorizontalLights sets the lights of the horizontal buttons (0-7).
func (c *Controller) SetHorizontalLights(id int, indices []int, mode LinearMode) error {
	c.mu.Lock()
	defer c.unlock()
	if err := c.setLinearLocked(id, indices, mode, true); err != nil {
		return c.fail(fmt.Errorf("set horizontal lights: %w", err))
	}
	return nil
}

// SetVerticalLights sets the lights of the vertical buttons (0-7).
func (c *Controller) SetVerticalLights(id int, indices []int, mode LinearMode) error {
	c.mu.Lock()
	defer c.unlock()
	if err := c.setLinearLocked(id, indices, mode, false); err != nil {
		return c.fail(fmt.Errorf("set vertical lights: %w", err))
	}
	return nil
}

// ResetLights turns every light of controller id off.
func (c *Controller) ResetLights(id int) error {
	c.mu.Lock()
	defer c.unlock()
	if err := c.checkLightIDLocked(id); err != nil {
		return c.fail(fmt.Errorf("reset lights: %w", err))
	}
	c.lights[id] = &lightSet{}
	return nil
}

// ResetAllLights turns every light of every controller off.
func (c *Controller) ResetAllLights() {
	c.mu.Lock()
	defer c.unlock()
	for id := range c.lights {
		c.lights[id] = &lightSet{}
	}
}

// PadColors returns what the renderer sends for controller id at phase, by
// physical index.
func (c *Controller) PadColors(id int, phase int) [grid.Pads]colors.RGB {
	c.mu.Lock()
	defer c.unlock()
	return c.padColorsLocked(id, phase)
}

func (c *Controller) padColorsLocked(id int, phase int) [grid.Pads]colors.RGB {
	var out [grid.Pads]colors.RGB
	set := c.lights[id]
	if set == nil {
		return out
	}
	for i, l := range set.pads {
		out[i] = l.effect.Apply(l.color, phase)
	}
	return out
}

// LinearLights returns the cached horizontal and vertical modes of id.
func (c *Controller) LinearLights(id int) (horizontal, vertical [protocol.Buttons]LinearMode) {
	c.mu.Lock()
	defer c.unlock()
	var set lightSet
	if s := c.lights[id]; s != nil {
		set = *s
	}
	for i := range horizontal {
		horizontal[i], vertical[i] = orOff(set.horizontal[i]), orOff(set.vertical[i])
	}
	return horizontal, vertical
}

func orOff(m LinearMode) LinearMode {
	if m == "" {
		return LinearOff
	}
	return m
}
