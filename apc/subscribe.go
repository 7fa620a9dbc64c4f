package apc

// The On helpers subscribe to one kind of event. Each returns a function
// that removes the listener.

func (c *Controller) OnConnect(fn func(ConnectEvent)) func() {
	return Subscribe(c.bus, fn)
}

func (c *Controller) OnDisconnect(fn func(DisconnectEvent)) func() {
	return Subscribe(c.bus, fn)
}

func (c *Controller) OnError(fn func(ErrorEvent)) func() {
	return Subscribe(c.bus, fn)
}

func (c *Controller) OnPadButtonChanged(fn func(PadButtonEvent)) func() {
	return Subscribe(c.bus, fn)
}

func (c *Controller) OnPadButtonPressed(fn func(PadButtonEvent)) func() {
	return Subscribe(c.bus, func(e PadButtonEvent) {
		if e.Pressed {
			fn(e)
		}
	})
}

func (c *Controller) OnPadButtonReleased(fn func(PadButtonEvent)) func() {
	return Subscribe(c.bus, func(e PadButtonEvent) {
		if !e.Pressed {
			fn(e)
		}
	})
}

func (c *Controller) OnHorizontalButtonChanged(fn func(HorizontalButtonEvent)) func() {
	return Subscribe(c.bus, fn)
}

func (c *Controller) OnHorizontalButtonPressed(fn func(HorizontalButtonEvent)) func() {
	return Subscribe(c.bus, func(e HorizontalButtonEvent) {
		if e.Pressed {
			fn(e)
		}
	})
}

func (c *Controller) OnHorizontalButtonReleased(fn func(HorizontalButtonEvent)) func() {
	return Subscribe(c.bus, func(e HorizontalButtonEvent) {
		if !e.Pressed {
			fn(e)
		}
	})
}

func (c *Controller) OnVerticalButtonChanged(fn func(VerticalButtonEvent)) func() {
	return Subscribe(c.bus, fn)
}

func (c *Controller) OnVerticalButtonPressed(fn func(VerticalButtonEvent)) func() {
	return Subscribe(c.bus, func(e VerticalButtonEvent) {
		if e.Pressed {
			fn(e)
		}
	})
}

func (c *Controller) OnVerticalButtonReleased(fn func(VerticalButtonEvent)) func() {
	return Subscribe(c.bus, func(e VerticalButtonEvent) {
		if !e.Pressed {
			fn(e)
		}
	})
}

func (c *Controller) OnShiftChanged(fn func(ShiftEvent)) func() {
	return Subscribe(c.bus, fn)
}

func (c *Controller) OnSliderChanged(fn func(SliderEvent)) func() {
	return Subscribe(c.bus, fn)
}

// OnEvent receives every event.
func (c *Controller) OnEvent(fn func(Event)) func() {
	return Subscribe(c.bus, fn)
}
