package main

import (
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-apcmini/apc"
	"go-apcmini/midi"
	"go-apcmini/protocol"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	sys := midi.NewSystem()
	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts(sys)
	case "reset":
		err = reset(sys)
	case "sliders":
		err = sliders(sys)
	case "listen":
		err = listen(sys)
	case "poll":
		err = poll(sys)
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("APC Mini mk2 probe")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  reset    - Send the mode reset sysex and blank all lights")
	fmt.Println("  sliders  - Ask for the current slider positions")
	fmt.Println("  listen   - Print decoded input until Ctrl+C")
	fmt.Println("  poll     - Poll for device changes")
}

func listPorts(sys *midi.System) error {
	fmt.Println("=== MIDI Ports ===")
	fmt.Printf("(waiting up to %s...)\n", sys.ScanTimeout)

	ports, err := sys.Ports()
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	for i, name := range ports.In {
		fmt.Printf("  in  %d: %s\n", i, name)
	}
	for i, name := range ports.Out {
		fmt.Printf("  out %d: %s\n", i, name)
	}
	fmt.Println("\nAPC Mini mk2 ports:")
	for _, name := range findAPC(ports) {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func findAPC(ports midi.Ports) []string {
	prefix := apc.DefaultPortPrefix()
	var found []string
	for _, name := range ports.Shared() {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			found = append(found, name)
		}
	}
	return found
}

func openFirst(sys *midi.System) (midi.In, midi.Out, error) {
	ports, err := sys.Ports()
	if err != nil {
		return nil, nil, err
	}
	found := findAPC(ports)
	if len(found) == 0 {
		return nil, nil, fmt.Errorf("no APC Mini mk2 found")
	}
	fmt.Printf("Using %s\n", found[0])

	in, err := sys.OpenIn(found[0])
	if err != nil {
		return nil, nil, err
	}
	out, err := sys.OpenOut(found[0])
	if err != nil {
		in.Close()
		return nil, nil, err
	}
	return in, out, nil
}

func reset(sys *midi.System) error {
	in, out, err := openFirst(sys)
	if err != nil {
		return err
	}
	defer in.Close()
	defer out.Close()

	fmt.Println("Sending: mode reset")
	if err := out.Send(gomidi.Message(protocol.ModeReset())); err != nil {
		return err
	}

	pads := make([]protocol.PadColor, protocol.Pads)
	for i := range pads {
		pads[i].Pad = uint8(i)
	}
	for _, frame := range protocol.EncodePadColors(pads) {
		if err := out.Send(gomidi.Message(frame)); err != nil {
			return err
		}
	}
	for i := 0; i < protocol.Buttons; i++ {
		out.Send(gomidi.NoteOn(0, protocol.HorizontalNote(i), protocol.LinearOff))
		out.Send(gomidi.NoteOn(0, protocol.VerticalNote(i), protocol.LinearOff))
	}
	fmt.Println("Done! All lights off")
	return nil
}

func sliders(sys *midi.System) error {
	in, out, err := openFirst(sys)
	if err != nil {
		return err
	}
	defer in.Close()
	defer out.Close()

	got := make(chan [protocol.Sliders]uint8, 1)
	err = in.Listen(func(msg gomidi.Message) {
		if values, ok := protocol.ParseSliderResponse(msg); ok {
			select {
			case got <- values:
			default:
			}
		}
	})
	if err != nil {
		return err
	}
	if err := out.Send(gomidi.Message(protocol.SliderRequest())); err != nil {
		return err
	}

	select {
	case values := <-got:
		for i, v := range values {
			fmt.Printf("  slider %d: %3d\n", i+1, v)
		}
		return nil
	case <-time.After(2 * time.Second):
		return fmt.Errorf("no slider response")
	}
}

func listen(sys *midi.System) error {
	in, out, err := openFirst(sys)
	if err != nil {
		return err
	}
	defer in.Close()
	defer out.Close()

	out.Send(gomidi.Message(protocol.ModeReset()))
	err = in.Listen(func(msg gomidi.Message) {
		ev := midi.Decode(msg)
		switch ev.Type {
		case midi.EventNoteOn, midi.EventNoteOff:
			kind, index := protocol.ClassifyNote(ev.Note)
			fmt.Printf("[%s] %s kind=%d index=%d vel=%d\n", time.Now().Format("15:04:05.000"), msg, kind, index, ev.Velocity)
		case midi.EventControlChange:
			slider, _ := protocol.SliderIndex(ev.Note)
			fmt.Printf("[%s] slider %d = %d\n", time.Now().Format("15:04:05.000"), slider, ev.Velocity)
		case midi.EventSysEx:
			fmt.Printf("[%s] sysex % X\n", time.Now().Format("15:04:05.000"), ev.Data)
		}
	})
	if err != nil {
		return err
	}

	fmt.Println("Press buttons and move sliders. Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return nil
}

func poll(sys *midi.System) error {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect the APC to test. Ctrl+C to exit.")

	var last []string
	for {
		ports, err := sys.Ports()
		if err != nil {
			fmt.Printf("scan failed: %v\n", err)
		} else if names := ports.Shared(); !slices.Equal(names, last) {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Ports: %v\n", names)
			for _, name := range findAPC(ports) {
				fmt.Printf("  -> %s\n", name)
			}
			last = names
		}
		time.Sleep(2 * time.Second)
	}
}
