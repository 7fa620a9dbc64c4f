package apc

import (
	"errors"

	"go-apcmini/colors"
)

var (
	ErrInvalidColor      = colors.ErrInvalidColor
	ErrInvalidPosition   = errors.New("invalid pad position")
	ErrInvalidMode       = errors.New("invalid light mode")
	ErrInvalidBrightness = errors.New("invalid brightness")

	ErrCapacityExceeded = errors.New("maximum number of controllers connected")
	ErrAlreadyConnected = errors.New("controller already connected")
	ErrAlreadyPending   = errors.New("controller is waiting for id selection")
	ErrIgnored          = errors.New("controller is ignored until replugged")
	ErrIDInUse          = errors.New("controller id already in use")
	ErrInvalidID        = errors.New("controller id out of range")
	ErrConnectFailed    = errors.New("failed to open controller ports")
	ErrNotConnected     = errors.New("controller not connected")

	ErrListenerPanic = errors.New("event listener panicked")
)
