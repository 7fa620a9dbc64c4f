package apc

import (
	"fmt"
	"slices"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-apcmini/colors"
	"go-apcmini/debug"
	"go-apcmini/grid"
	"go-apcmini/midi"
	"go-apcmini/protocol"
)

// selectorState is the phase of manual id selection for one device.
//
//	intro -> wait -> outro -> done
//	  \_______\______________> stopped (stop button or unplug)
type selectorState int

const (
	selectorIntro selectorState = iota
	selectorWait
	selectorOutro
	selectorDone
	selectorStopped
)

func (s selectorState) String() string {
	switch s {
	case selectorIntro:
		return "intro"
	case selectorWait:
		return "wait"
	case selectorOutro:
		return "outro"
	case selectorDone:
		return "done"
	case selectorStopped:
		return "stopped"
	}
	return fmt.Sprintf("selectorState(%d)", int(s))
}

// pendingConnection is a device waiting for the user to pick its id.
type pendingConnection struct {
	name    string
	in      midi.In
	out     midi.Out
	state   selectorState
	started time.Time // start of the current state

	// set from the input callback, applied on the next render tick
	choice int
	stop   bool

	chosen int
}

// Animation draws one frame of the id selection screen. elapsed is the time
// since the current phase (intro, wait or outro) started.
type Animation func(elapsed time.Duration, frame *Frame)

type animations struct {
	intro, wait, outro           Animation
	introDuration, outroDuration time.Duration
}

// Frame is the pad grid drawn by an Animation. Unset pads are black.
type Frame struct {
	orientation grid.Orientation
	pads        [grid.Pads]colors.RGB
}

func NewFrame(o grid.Orientation) *Frame {
	return &Frame{orientation: o}
}

// Set colours the pad at physical index pad.
func (f *Frame) Set(pad int, hex string) error {
	if !grid.ValidIndex(pad) {
		return fmt.Errorf("pad %d: %w", pad, ErrInvalidPosition)
	}
	c, err := colors.ParseHex(hex)
	if err != nil {
		return err
	}
	f.pads[pad] = c
	return nil
}

// SetAt colours the pad at virtual coordinates c.
func (f *Frame) SetAt(c grid.Coord, hex string) error {
	if !c.Valid() {
		return fmt.Errorf("pad %s: %w", c, ErrInvalidPosition)
	}
	return f.Set(f.orientation.Index(c), hex)
}

// Fill colours every pad.
func (f *Frame) Fill(hex string) error {
	c, err := colors.ParseHex(hex)
	if err != nil {
		return err
	}
	for i := range f.pads {
		f.pads[i] = c
	}
	return nil
}

// Get returns the colour of the pad at physical index pad.
func (f *Frame) Get(pad int) colors.RGB {
	if !grid.ValidIndex(pad) {
		return colors.Black
	}
	return f.pads[pad]
}

func (f *Frame) padColors() []protocol.PadColor {
	pads := make([]protocol.PadColor, grid.Pads)
	for i, c := range f.pads {
		pads[i] = protocol.PadColor{Pad: uint8(i), R: c.R, G: c.G, B: c.B}
	}
	return pads
}

// SetIntroAnimation sets the animation played for d when a device enters
// id selection. A nil fn skips the intro.
func (c *Controller) SetIntroAnimation(fn Animation, d time.Duration) {
	c.mu.Lock()
	defer c.unlock()
	c.animations.intro, c.animations.introDuration = fn, d
}

// SetWaitAnimation sets the animation looped while waiting for a choice.
func (c *Controller) SetWaitAnimation(fn Animation) {
	c.mu.Lock()
	defer c.unlock()
	c.animations.wait = fn
}

// SetOutroAnimation sets the animation played for d after an id is chosen.
func (c *Controller) SetOutroAnimation(fn Animation, d time.Duration) {
	c.mu.Lock()
	defer c.unlock()
	c.animations.outro, c.animations.outroDuration = fn, d
}

func (c *Controller) pendingLocked() []*pendingConnection {
	pending := make([]*pendingConnection, 0, len(c.pending))
	for _, p := range c.pending {
		pending = append(pending, p)
	}
	slices.SortFunc(pending, func(a, b *pendingConnection) int { return strings.Compare(a.name, b.name) })
	return pending
}

func (c *Controller) startSelectorLocked(name string) error {
	switch {
	case c.pending[name] != nil:
		return fmt.Errorf("select id for %s: %w", name, ErrAlreadyPending)
	case c.conns[name] != nil:
		return fmt.Errorf("select id for %s: %w", name, ErrAlreadyConnected)
	case c.ignored[name]:
		return fmt.Errorf("select id for %s: %w", name, ErrIgnored)
	case len(c.conns) >= c.opts.MaxControllers:
		return fmt.Errorf("select id for %s: %w", name, ErrCapacityExceeded)
	}

	in, out, err := openPorts(c.opts.Transport, name)
	if err != nil {
		return fmt.Errorf("select id for %s: %w", name, err)
	}
	p := &pendingConnection{
		name:    name,
		in:      in,
		out:     out,
		state:   selectorIntro,
		started: c.opts.Now(),
		choice:  -1,
		chosen:  -1,
	}

	sendSysEx(out, protocol.ModeReset())
	c.renderAvailabilityLocked(out, false)
	if err := in.Listen(func(msg gomidi.Message) { c.handleSelectorInput(p, msg) }); err != nil {
		c.deferClose(name, in, out)
		return fmt.Errorf("select id for %s: %w: %w", name, ErrConnectFailed, err)
	}
	c.pending[name] = p
	debug.Log("selector", "waiting for id selection on %s", name)
	return nil
}

// renderAvailabilityLocked lights one horizontal button per free id and the
// stop button. reset turns them all off.
func (c *Controller) renderAvailabilityLocked(out midi.Out, reset bool) {
	for i := 0; i < protocol.Buttons; i++ {
		vel := protocol.LinearOff
		if !reset && i < c.opts.MaxControllers && !c.usedLocked(i) {
			vel = protocol.LinearOn
		}
		sendLinear(out, protocol.HorizontalNote(i), vel)
	}
	vel := protocol.LinearOn
	if reset {
		vel = protocol.LinearOff
	}
	sendLinear(out, protocol.StopNote, vel)
}

func (c *Controller) handleSelectorInput(p *pendingConnection, msg gomidi.Message) {
	ev := midi.Decode(msg)
	if ev.Type != midi.EventNoteOn {
		return
	}

	c.mu.Lock()
	defer c.unlock()
	if c.pending[p.name] != p {
		return
	}
	switch kind, index := protocol.ClassifyNote(ev.Note); {
	case kind == protocol.KindHorizontal && index < c.opts.MaxControllers && !c.usedLocked(index):
		if p.state == selectorIntro || p.state == selectorWait {
			p.choice = index
			debug.Log("selector", "%s chose id %d", p.name, index)
		}
	case kind == protocol.KindVertical && ev.Note == protocol.StopNote:
		p.stop = true
		debug.Log("selector", "%s stopped", p.name)
	}
}

// animationJob is a frame to draw outside the lock.
type animationJob struct {
	p       *pendingConnection
	state   selectorState
	fn      Animation
	elapsed time.Duration
}

// advanceSelectorsLocked applies pending choices, moves every selector
// through its states and returns the animations to draw this tick.
func (c *Controller) advanceSelectorsLocked(now time.Time) []animationJob {
	var jobs []animationJob
	a := c.animations

	for _, p := range c.pendingLocked() {
		if p.stop {
			c.stopSelectorLocked(p)
			continue
		}

		if p.choice >= 0 && (p.state == selectorIntro || p.state == selectorWait) {
			id := p.choice
			p.choice = -1
			if c.checkIDLocked(id) == nil {
				p.chosen = id
				if a.outro == nil || a.outroDuration <= 0 {
					c.finishSelectorLocked(p)
					continue
				}
				p.state, p.started = selectorOutro, now
			}
		}

		elapsed := now.Sub(p.started)
		if p.state == selectorIntro {
			if a.intro != nil && elapsed < a.introDuration {
				jobs = append(jobs, animationJob{p, p.state, a.intro, elapsed})
				continue
			}
			p.state, p.started, elapsed = selectorWait, now, 0
			debug.Log("selector", "%s intro finished", p.name)
		}

		switch p.state {
		case selectorWait:
			if a.wait != nil {
				jobs = append(jobs, animationJob{p, p.state, a.wait, elapsed})
			}
		case selectorOutro:
			if a.outro != nil && elapsed < a.outroDuration {
				jobs = append(jobs, animationJob{p, p.state, a.outro, elapsed})
			} else {
				c.finishSelectorLocked(p)
			}
		}
	}
	return jobs
}

// stopSelectorLocked drops p and ignores its device until it is replugged.
func (c *Controller) stopSelectorLocked(p *pendingConnection) {
	delete(c.pending, p.name)
	p.state = selectorStopped
	c.renderAvailabilityLocked(p.out, true)
	blank(p.out)
	c.deferClose(p.name, p.in, p.out)
	c.ignored[p.name] = true
	debug.Log("selector", "ignoring %s until replugged", p.name)
}

// finishSelectorLocked hands p's ports to a new connection with the chosen id.
func (c *Controller) finishSelectorLocked(p *pendingConnection) {
	delete(c.pending, p.name)
	p.state = selectorDone
	c.renderAvailabilityLocked(p.out, true)
	blank(p.out)

	err := c.checkConnectLocked(p.name)
	if err == nil {
		err = c.checkIDLocked(p.chosen)
	}
	if err == nil {
		err = c.attachLocked(p.name, p.chosen, p.in, p.out)
	} else {
		c.deferClose(p.name, p.in, p.out)
	}
	if err != nil {
		debug.Log("selector", "finish %s: %v", p.name, err)
		c.fail(err)
	}
}

// drawAnimations evaluates the jobs without the lock and sends the frames to
// selectors that have not moved on in the meantime.
func (c *Controller) drawAnimations(jobs []animationJob) {
	if len(jobs) == 0 {
		return
	}
	frames := make([]*Frame, len(jobs))
	for i, job := range jobs {
		frame := NewFrame(c.opts.Orientation)
		if err := runAnimation(job.fn, job.elapsed, frame); err != nil {
			c.bus.Publish(ErrorEvent{Err: err})
			continue
		}
		frames[i] = frame
	}

	c.mu.Lock()
	defer c.unlock()
	for i, job := range jobs {
		if frames[i] == nil || c.pending[job.p.name] != job.p || job.p.state != job.state {
			continue
		}
		sendPads(job.p.out, frames[i].padColors())
	}
}

func runAnimation(fn Animation, elapsed time.Duration, frame *Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("animation panicked: %v", r)
		}
	}()
	fn(elapsed, frame)
	return nil
}
