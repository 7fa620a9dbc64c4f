package main

import (
	"time"

	"go-apcmini/apc"
	"go-apcmini/config"
	"go-apcmini/debug"
	"go-apcmini/grid"
	"go-apcmini/theme"
)

// lightDemo lights a few pads and side buttons on the first two controllers.
func lightDemo(c *apc.Controller) error {
	steps := []func() error{
		func() error { return c.SetRGBLights(0, []int{0}, apc.Brightness100, apc.Static, "#00ffff") },
		func() error { return c.SetRGBLights(0, []int{1, 2}, apc.Brightness100, apc.Static, "#ff0000") },
		func() error { return c.SetRGBLights(0, []int{63}, apc.Brightness10, apc.BlinkingHalf, "#ffffff") },
		func() error {
			return c.SetRGBLightsAt(0, []grid.Coord{{X: 3, Y: 3}}, apc.Brightness10, apc.BlinkingHalf, "#ffffff")
		},
		func() error {
			return c.FillRGBLights(0, grid.Coord{X: 5, Y: 5}, 3, 3, apc.Brightness65, apc.PulsingQuarter, "#ff8000")
		},
		func() error { return c.SetHorizontalLights(0, []int{0, 2, 3, 6}, apc.LinearBlink) },
	}
	if c.Options().MaxControllers > 1 {
		steps = append(steps,
			func() error { return c.SetRGBLights(1, []int{0, 1, 2}, apc.Brightness100, apc.FadeOutHalf, "#0000ff") },
			func() error { return c.SetVerticalLights(1, []int{0, 1, 2, 3, 4, 7}, apc.LinearOn) },
		)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// setSelectorAnimations installs palette based animations for the id
// selector: rows sweep in, the grid breathes while waiting, then fades out.
func setSelectorAnimations(c *apc.Controller, th *theme.Theme, cfg config.AnimationsConfig) {
	if intro := cfg.Intro(); intro > 0 {
		c.SetIntroAnimation(introAnimation(th, intro), intro)
	}
	c.SetWaitAnimation(waitAnimation(th))
	if outro := cfg.Outro(); outro > 0 {
		c.SetOutroAnimation(outroAnimation(th, outro), outro)
	}
}

// introAnimation lights one more row every d/8. Frame errors are logged and
// end the frame.
func introAnimation(th *theme.Theme, d time.Duration) apc.Animation {
	return func(elapsed time.Duration, f *apc.Frame) {
		rows := int(float64(grid.Size) * float64(elapsed) / float64(d))
		for y := 0; y <= rows && y < grid.Size; y++ {
			hex := th.RGB(float64(y) / (grid.Size - 1)).Hex()
			for x := 0; x < grid.Size; x++ {
				if err := f.SetAt(grid.Coord{X: x, Y: y}, hex); err != nil {
					debug.Warn("selector", "intro frame: %v", err)
					return
				}
			}
		}
	}
}

func waitAnimation(th *theme.Theme) apc.Animation {
	return func(elapsed time.Duration, f *apc.Frame) {
		const period = 2 * time.Second
		t := float64(elapsed%period) / float64(period)
		if t > 0.5 {
			t = 1 - t
		}
		for y := 0; y < grid.Size; y++ {
			for x := 0; x < grid.Size; x++ {
				norm := t + float64(x+y)/(4*grid.Size)
				if err := f.SetAt(grid.Coord{X: x, Y: y}, th.RGB(norm).Scale(0.3).Hex()); err != nil {
					debug.Warn("selector", "wait frame: %v", err)
					return
				}
			}
		}
	}
}

func outroAnimation(th *theme.Theme, d time.Duration) apc.Animation {
	return func(elapsed time.Duration, f *apc.Frame) {
		left := 1 - float64(elapsed)/float64(d)
		if err := f.Fill(th.RGB(1).Scale(left).Hex()); err != nil {
			debug.Warn("selector", "outro frame: %v", err)
		}
	}
}
