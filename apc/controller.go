// Package apc drives one or more Akai APC Mini mk2 controllers: it finds and
// connects them, keeps their lights rendered and publishes button and slider
// events.
package apc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-apcmini/debug"
	"go-apcmini/midi"
	"go-apcmini/protocol"
)

var ErrClosed = errors.New("controller closed")

// Controller owns every connection, the light cache and the button state.
// All methods are safe for concurrent use. Event listeners and animations
// run without the internal lock held and may call back into the Controller.
type Controller struct {
	opts Options
	bus  *Bus

	mu         sync.Mutex
	conns      map[string]*connection
	pending    map[string]*pendingConnection
	ignored    map[string]bool
	lights     map[int]*lightSet
	buttons    map[int]*buttonState
	shift      bool
	animations animations
	closers    []func()
	closed     bool

	loopMu      sync.Mutex
	autoConnect *loop
	sweep       *loop
	render      *loop
}

// New creates a Controller. Nothing is scanned or connected until Start or
// StartAutoConnect is called.
func New(opts Options) *Controller {
	return &Controller{
		opts:    opts.withDefaults(),
		bus:     &Bus{},
		conns:   make(map[string]*connection),
		pending: make(map[string]*pendingConnection),
		ignored: make(map[string]bool),
		lights:  make(map[int]*lightSet),
		buttons: make(map[int]*buttonState),
	}
}

// Bus returns the event bus. Use Subscribe or the On helpers to listen.
func (c *Controller) Bus() *Bus {
	return c.bus
}

func (c *Controller) Options() Options {
	return c.opts
}

// unlock releases mu, closes ports queued while it was held and delivers
// queued events, in that order.
func (c *Controller) unlock() {
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	for _, fn := range closers {
		fn()
	}
	c.bus.drain()
}

func (c *Controller) emit(ev Event) {
	c.bus.enqueue(ev)
}

// fail publishes err as an ErrorEvent and returns it.
func (c *Controller) fail(err error) error {
	c.emit(ErrorEvent{Err: err})
	return err
}

// deferClose closes the ports once mu is released. Some drivers join their
// callback thread on close, and that thread may be waiting for mu.
func (c *Controller) deferClose(name string, in midi.In, out midi.Out) {
	c.closers = append(c.closers, func() { closePorts(name, in, out) })
}

// Start runs the disconnect sweep and the renderer until Close.
func (c *Controller) Start() error {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if c.sweep == nil {
		c.sweep = startLoop(c.opts.SweepInterval, c.sweepTick)
	}
	if c.render == nil {
		c.render = startLoop(c.opts.RenderInterval, c.renderTick)
	}
	return nil
}

// Run starts the Controller and closes it when ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return c.Close()
}

// Close stops auto-connect, the sweep and the renderer, then disconnects
// every controller, blanking its lights. The light cache is kept.
func (c *Controller) Close() error {
	c.loopMu.Lock()
	c.autoConnect.stop()
	c.sweep.stop()
	c.render.stop()
	c.autoConnect, c.sweep, c.render = nil, nil, nil
	c.loopMu.Unlock()

	c.mu.Lock()
	defer c.unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	for _, name := range c.trackedNamesLocked() {
		c.disconnectLocked(name)
	}
	debug.Log("lifecycle", "controller closed")
	return nil
}

// StartAutoConnect connects every available controller now and then once
// per AutoConnectInterval until StopAutoConnect.
func (c *Controller) StartAutoConnect() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	c.autoConnect.stop()
	c.autoConnect = startLoop(c.opts.AutoConnectInterval, c.autoConnectTick)
	go c.autoConnectTick()
}

func (c *Controller) StopAutoConnect() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	c.autoConnect.stop()
	c.autoConnect = nil
}

// scan lists the matching device names. It runs without the lock because the
// transport may block.
func (c *Controller) scan() ([]string, error) {
	ports, err := c.opts.Transport.Ports()
	if err != nil {
		return nil, err
	}
	prefix := strings.ToLower(c.opts.PortPrefix)
	var names []string
	for _, name := range ports.Shared() {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (c *Controller) availableLocked(all []string) []string {
	var available []string
	for _, name := range all {
		if c.conns[name] == nil && c.pending[name] == nil && !c.ignored[name] {
			available = append(available, name)
		}
	}
	return available
}

func (c *Controller) trackedNamesLocked() []string {
	var names []string
	for name := range c.conns {
		names = append(names, name)
	}
	for name := range c.pending {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *Controller) autoConnectTick() {
	all, err := c.scan()
	if err != nil {
		debug.Log("lifecycle", "auto-connect scan: %v", err)
		return
	}

	c.mu.Lock()
	defer c.unlock()
	if c.closed {
		return
	}
	for _, name := range c.availableLocked(all) {
		if err := c.connectLocked(name, 0, false); err != nil {
			debug.Log("lifecycle", "auto-connect %s: %v", name, err)
		}
	}
}

// sweepTick disconnects everything whose port vanished and refreshes the
// availability lights of pending controllers.
func (c *Controller) sweepTick() {
	all, err := c.scan()
	if err != nil {
		// a hung driver must not look like every device was unplugged
		debug.Log("lifecycle", "sweep scan: %v", err)
		return
	}

	c.mu.Lock()
	defer c.unlock()
	if c.closed {
		return
	}

	live := make(map[string]bool, len(all))
	for _, name := range all {
		live[name] = true
	}
	gone := slices.DeleteFunc(c.trackedNamesLocked(), func(name string) bool { return live[name] })
	for name := range c.ignored {
		if !live[name] {
			gone = append(gone, name)
		}
	}
	for _, name := range gone {
		debug.Log("lifecycle", "%s vanished", name)
		c.disconnectLocked(name)
	}

	for _, p := range c.pendingLocked() {
		c.renderAvailabilityLocked(p.out, false)
	}
}

func (c *Controller) usedLocked(id int) bool {
	for _, conn := range c.conns {
		if conn.id == id {
			return true
		}
	}
	return false
}

func (c *Controller) lowestUnusedIDLocked() int {
	id := 0
	for c.usedLocked(id) {
		id++
	}
	return id
}

// connectLocked assigns an id to name. Without an id in manual mode it
// starts id selection instead.
func (c *Controller) connectLocked(name string, id int, hasID bool) error {
	if c.closed {
		return ErrClosed
	}
	if !hasID && c.opts.ManualIDs {
		return c.startSelectorLocked(name)
	}
	if err := c.checkConnectLocked(name); err != nil {
		return err
	}
	if !hasID {
		id = c.lowestUnusedIDLocked()
	}
	if err := c.checkIDLocked(id); err != nil {
		return err
	}

	in, out, err := openPorts(c.opts.Transport, name)
	if err != nil {
		return fmt.Errorf("connect %s: %w", name, err)
	}
	return c.attachLocked(name, id, in, out)
}

func (c *Controller) checkConnectLocked(name string) error {
	switch {
	case len(c.conns) >= c.opts.MaxControllers:
		return fmt.Errorf("connect %s: %w", name, ErrCapacityExceeded)
	case c.pending[name] != nil:
		return fmt.Errorf("connect %s: %w", name, ErrAlreadyPending)
	case c.conns[name] != nil:
		return fmt.Errorf("connect %s: %w", name, ErrAlreadyConnected)
	case c.ignored[name]:
		return fmt.Errorf("connect %s: %w", name, ErrIgnored)
	}
	return nil
}

func (c *Controller) checkIDLocked(id int) error {
	if id < 0 || id >= c.opts.MaxControllers {
		return fmt.Errorf("id %d: %w", id, ErrInvalidID)
	}
	if c.usedLocked(id) {
		return fmt.Errorf("id %d: %w", id, ErrIDInUse)
	}
	return nil
}

// attachLocked turns open ports into a connection.
func (c *Controller) attachLocked(name string, id int, in midi.In, out midi.Out) error {
	conn := &connection{id: id, name: name, session: uuid.New(), in: in, out: out}

	sendSysEx(out, protocol.ModeReset(), protocol.SliderRequest())
	if err := in.Listen(func(msg gomidi.Message) { c.handleInput(conn, msg) }); err != nil {
		c.deferClose(name, in, out)
		return fmt.Errorf("connect %s: %w: %w", name, ErrConnectFailed, err)
	}

	c.conns[name] = conn
	debug.Log("lifecycle", "connected %s as %d (session %s)", name, id, conn.session)
	c.emit(ConnectEvent{ID: id, Name: name, Session: conn.session})

	for _, p := range c.pendingLocked() {
		c.renderAvailabilityLocked(p.out, false)
	}
	return nil
}

// disconnectLocked forgets name wherever it is tracked. It never fails.
func (c *Controller) disconnectLocked(name string) {
	if conn := c.conns[name]; conn != nil {
		delete(c.conns, name)
		blank(conn.out)
		c.deferClose(name, conn.in, conn.out)
		debug.Log("lifecycle", "disconnected %s (id %d)", name, conn.id)
		c.emit(DisconnectEvent{ID: conn.id, Name: name, Session: conn.session})
	}
	if p := c.pending[name]; p != nil {
		delete(c.pending, name)
		p.state = selectorStopped
		c.renderAvailabilityLocked(p.out, true)
		blank(p.out)
		c.deferClose(name, p.in, p.out)
		debug.Log("selector", "dropped pending %s", name)
	}
	delete(c.ignored, name)
}

// Connect connects name with the lowest free id, or starts id selection in
// manual mode. Failures are also published as ErrorEvent.
func (c *Controller) Connect(name string) error {
	c.mu.Lock()
	defer c.unlock()
	if err := c.connectLocked(name, 0, false); err != nil {
		return c.fail(err)
	}
	return nil
}

// ConnectWithID connects name as id, skipping id selection.
func (c *Controller) ConnectWithID(name string, id int) error {
	c.mu.Lock()
	defer c.unlock()
	if err := c.connectLocked(name, id, true); err != nil {
		return c.fail(err)
	}
	return nil
}

// DisconnectName disconnects a connected or pending controller.
func (c *Controller) DisconnectName(name string) error {
	c.mu.Lock()
	defer c.unlock()
	if c.conns[name] == nil && c.pending[name] == nil {
		return fmt.Errorf("%s: %w", name, ErrNotConnected)
	}
	c.disconnectLocked(name)
	return nil
}

func (c *Controller) DisconnectID(id int) error {
	c.mu.Lock()
	defer c.unlock()
	for name, conn := range c.conns {
		if conn.id == id {
			c.disconnectLocked(name)
			return nil
		}
	}
	return fmt.Errorf("id %d: %w", id, ErrNotConnected)
}

// AvailableControllers lists matching ports that are not connected, pending
// or ignored.
func (c *Controller) AvailableControllers() ([]string, error) {
	all, err := c.scan()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.unlock()
	return c.availableLocked(all), nil
}

// ConnectedControllers lists connected names ordered by id.
func (c *Controller) ConnectedControllers() []string {
	c.mu.Lock()
	defer c.unlock()
	var names []string
	for _, conn := range c.sortedConnsLocked() {
		names = append(names, conn.name)
	}
	return names
}

// PendingControllers lists names waiting for id selection.
func (c *Controller) PendingControllers() []string {
	c.mu.Lock()
	defer c.unlock()
	var names []string
	for _, p := range c.pendingLocked() {
		names = append(names, p.name)
	}
	return names
}

func (c *Controller) UsedIDs() []int {
	c.mu.Lock()
	defer c.unlock()
	var ids []int
	for _, conn := range c.sortedConnsLocked() {
		ids = append(ids, conn.id)
	}
	return ids
}

func (c *Controller) ConnectedCount() int {
	c.mu.Lock()
	defer c.unlock()
	return len(c.conns)
}

func (c *Controller) sortedConnsLocked() []*connection {
	conns := make([]*connection, 0, len(c.conns))
	for _, conn := range c.conns {
		conns = append(conns, conn)
	}
	slices.SortFunc(conns, func(a, b *connection) int { return a.id - b.id })
	return conns
}
