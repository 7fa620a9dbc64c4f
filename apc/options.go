package apc

import (
	"runtime"
	"time"

	"go-apcmini/grid"
	"go-apcmini/midi"
)

const (
	DefaultBPM            = 60
	DefaultRenderInterval = 50 * time.Millisecond
	DefaultSweepInterval  = 500 * time.Millisecond
	DefaultAutoConnect    = time.Second
)

// Options configures a Controller. Zero values take the defaults.
type Options struct {
	// Transport defaults to midi.NewSystem().
	Transport midi.Transport

	MaxControllers int // default 1
	ManualIDs      bool
	Orientation    grid.Orientation
	BPM            float64 // default 60

	// PortPrefix is matched case-insensitively against port names.
	// Defaults to DefaultPortPrefix().
	PortPrefix string

	RenderInterval      time.Duration
	SweepInterval       time.Duration
	AutoConnectInterval time.Duration

	Now func() time.Time
}

// DefaultPortPrefix is the port name prefix of the APC Mini mk2 on this
// platform. macOS exposes a second "Notes" port per device.
func DefaultPortPrefix() string {
	if runtime.GOOS == "darwin" {
		return "apc mini mk2 control"
	}
	return "apc mini mk2"
}

func (o Options) withDefaults() Options {
	if o.Transport == nil {
		o.Transport = midi.NewSystem()
	}
	if o.MaxControllers <= 0 {
		o.MaxControllers = 1
	}
	if o.BPM <= 0 {
		o.BPM = DefaultBPM
	}
	if o.PortPrefix == "" {
		o.PortPrefix = DefaultPortPrefix()
	}
	if o.RenderInterval <= 0 {
		o.RenderInterval = DefaultRenderInterval
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.AutoConnectInterval <= 0 {
		o.AutoConnectInterval = DefaultAutoConnect
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
