// Package midi is the port layer under the controller: it enumerates named
// ports, opens them and moves raw messages in and out.
package midi

import (
	"errors"
	"slices"

	gomidi "gitlab.com/gomidi/midi/v2"
)

var (
	ErrPortNotFound = errors.New("midi port not found")
	ErrPortClosed   = errors.New("midi port closed")
)

// Transport enumerates and opens ports.
type Transport interface {
	Ports() (Ports, error)
	OpenIn(name string) (In, error)
	OpenOut(name string) (Out, error)
}

// In is an open input port.
type In interface {
	Name() string
	// Listen replaces any previous listener. Sysex is delivered framed (F0 ... F7).
	Listen(fn func(gomidi.Message)) error
	StopListening()
	Close() error
}

// Out is an open output port.
type Out interface {
	Name() string
	Send(msg gomidi.Message) error
	Close() error
}

// Ports is one enumeration of input and output port names.
type Ports struct {
	In  []string
	Out []string
}

// Shared returns the names present as both an input and an output, in input order.
func (p Ports) Shared() []string {
	var shared []string
	for _, name := range p.In {
		if slices.Contains(p.Out, name) && !slices.Contains(shared, name) {
			shared = append(shared, name)
		}
	}
	return shared
}
