package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-apcmini/apc"
	"go-apcmini/config"
	"go-apcmini/debug"
	"go-apcmini/midi"
	"go-apcmini/theme"
	"go-apcmini/tui"
	"go-apcmini/widgets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaultConfig, _ := config.ConfigPath()

	configPath := flag.String("config", defaultConfig, "path to config.yaml")
	debugLog := flag.Bool("debug", false, "write a debug log to "+debug.DefaultPath())
	simulate := flag.Int("simulate", 0, "use N simulated controllers instead of real MIDI ports")
	demo := flag.Bool("demo", false, "light a demo pattern")
	snapshot := flag.String("snapshot", "", "write the demo pattern of controller 0 as a PNG and exit")
	headless := flag.Bool("headless", false, "log events to stderr instead of running the TUI")
	palettePath := flag.String("palette", "", "GIMP palette for the TUI and selector animations")
	flag.Parse()

	cfg, err := loadConfig(*configPath, defaultConfig)
	if err != nil {
		return err
	}

	if err := setupLogging(cfg, *debugLog, *headless); err != nil {
		return err
	}
	defer debug.Disable()

	palette := theme.Default()
	if *palettePath != "" {
		if palette, err = theme.LoadGPL(*palettePath); err != nil {
			return err
		}
	}
	th := theme.New(palette)

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if *simulate > 0 {
		tr := midi.NewMemoryTransport()
		for i := 1; i <= *simulate; i++ {
			tr.Plug(fmt.Sprintf("APC mini mk2 Control #%d", i))
		}
		opts.Transport = tr
		opts.PortPrefix = "apc mini mk2"
	}

	c := apc.New(opts)
	if cfg.Controllers.ManualIDs {
		setSelectorAnimations(c, th, cfg.Animations)
	}
	if *demo || *snapshot != "" {
		if err := lightDemo(c); err != nil {
			return err
		}
	}

	if *snapshot != "" {
		o := c.Options()
		pads := c.PadColors(0, apc.Phase(o.Now(), o.BPM))
		if err := widgets.SaveSnapshot(*snapshot, pads, 32); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *snapshot)
		return c.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Run(ctx) })
	c.StartAutoConnect()

	if *headless {
		g.Go(func() error {
			logEvents(c)
			<-ctx.Done()
			return nil
		})
		return g.Wait()
	}

	events, off := tui.Forward(c, 64)
	defer off()
	p := tea.NewProgram(tui.NewModel(c, events, th), tea.WithAltScreen())

	g.Go(func() error {
		_, err := p.Run()
		stop()
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		p.Quit()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func loadConfig(path, defaultPath string) (*config.Config, error) {
	if path == defaultPath {
		return config.Load()
	}
	return config.LoadFile(path)
}

func setupLogging(cfg *config.Config, debugLog, headless bool) error {
	switch {
	case debugLog:
		return debug.Enable(debug.DefaultPath())
	case cfg.Logging.File != "":
		return debug.Enable(cfg.Logging.File)
	case headless:
		return debug.EnableConsole(cfg.Logging.Level)
	}
	return nil
}

func logEvents(c *apc.Controller) {
	log := debug.Logger()
	c.OnError(func(e apc.ErrorEvent) {
		log.Error("controller error", zap.Error(e.Err))
	})
	c.OnEvent(func(e apc.Event) {
		if _, ok := e.(apc.ErrorEvent); ok {
			return
		}
		log.Info(e.String(), zap.String("event", fmt.Sprintf("%T", e)))
	})
}
