package apc

import (
	"context"
	"time"
)

// loop calls tick every interval until stopped.
type loop struct {
	cancel context.CancelFunc
}

func startLoop(interval time.Duration, tick func()) *loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				tick()
			}
		}
	}()
	return l
}

// stop cancels the loop without waiting for a running tick, so it is safe
// to call from inside one.
func (l *loop) stop() {
	if l != nil {
		l.cancel()
	}
}
