package apc

import (
	"go-apcmini/debug"
	"go-apcmini/grid"
	"go-apcmini/protocol"
)

// renderTick draws every connected controller from the cache and advances
// the id selectors.
func (c *Controller) renderTick() {
	now := c.opts.Now()

	c.mu.Lock()
	if c.closed {
		c.unlock()
		return
	}
	phase := Phase(now, c.opts.BPM)
	for _, conn := range c.sortedConnsLocked() {
		c.renderConnectionLocked(conn, phase)
	}
	jobs := c.advanceSelectorsLocked(now)
	c.unlock()

	c.drawAnimations(jobs)
	debug.LogEvery(200, "render", "phase=%d", phase)
}

func (c *Controller) renderConnectionLocked(conn *connection, phase int) {
	cached := c.padColorsLocked(conn.id, phase)
	pads := make([]protocol.PadColor, grid.Pads)
	for i, rgb := range cached {
		pads[i] = protocol.PadColor{Pad: uint8(i), R: rgb.R, G: rgb.G, B: rgb.B}
	}
	sendPads(conn.out, pads)

	var horizontal, vertical [protocol.Buttons]LinearMode
	if set := c.lights[conn.id]; set != nil {
		horizontal, vertical = set.horizontal, set.vertical
	}
	for i := 0; i < protocol.Buttons; i++ {
		h, _ := horizontal[i].velocity()
		v, _ := vertical[i].velocity()
		sendLinear(conn.out, protocol.HorizontalNote(i), h)
		sendLinear(conn.out, protocol.VerticalNote(i), v)
	}
}
