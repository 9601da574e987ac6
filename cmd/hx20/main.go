// Command hx20 emulates the Epson HX-20's two-HD6301 hardware: a
// master MCU driving keyboard/RTC/LCD and a slave MCU driving
// cassette/piezo/micro-printer, joined by a serial channel (spec §2).
// Grounded on original_source/main.c's startup sequence: load ROMs,
// wire peripherals, optionally stage an autoload program, then run the
// macro-tick loop until a fatal condition drops into the debugger.
package main

import (
	"fmt"
	"os"

	"github.com/hx20emu/hx20/internal/autoload"
	"github.com/hx20emu/hx20/internal/bus"
	"github.com/hx20emu/hx20/internal/config"
	"github.com/hx20emu/hx20/internal/debugger"
	"github.com/hx20emu/hx20/internal/hd6301"
	"github.com/hx20emu/hx20/internal/keyboard"
	"github.com/hx20emu/hx20/internal/lcd"
	"github.com/hx20emu/hx20/internal/printer"
	"github.com/hx20emu/hx20/internal/rom"
	"github.com/hx20emu/hx20/internal/serialbridge"
	"github.com/hx20emu/hx20/internal/trace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		return err
	}

	ramMax := uint16(hd6301.RAMMaxDefault)
	if cfg.RAMExpansion {
		ramMax = hd6301.RAMMaxExpansion
	}

	masterMem := hd6301.NewMemory(true, ramMax)
	slaveMem := hd6301.NewMemory(false, 0)

	if err := loadROMs(cfg, masterMem, slaveMem); err != nil {
		return err
	}

	surface := lcd.NewSurface()
	masterMem.LCD = surface

	matrix := keyboard.NewMatrix(masterMem.ScanLine)
	masterMem.Keyboard = matrix

	master := hd6301.NewMCU(0, masterMem)
	slave := hd6301.NewMCU(1, slaveMem)
	master.Trace = hd6301.NewTrace()
	slave.Trace = hd6301.NewTrace()
	master.Reset(masterMem)
	slave.Reset(slaveMem)

	m := bus.New(master, slave, masterMem, slaveMem)
	m.Warp = cfg.Warp

	if cfg.PrinterOut != "" {
		f, err := os.OpenFile(cfg.PrinterOut, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("hx20: opening printer output: %w", err)
		}
		defer f.Close()
		p := printer.New(f)
		defer p.Close()
		m.Printer = p
	}

	if cfg.TTYDevice != "" {
		b, err := serialbridge.Open(cfg.TTYDevice)
		if err != nil {
			return fmt.Errorf("hx20: opening serial bridge: %w", err)
		}
		defer b.Close()
		b.Trace = trace.NewSCIRing()
		m.External = b
	}

	var audio *piezoSink
	if !cfg.DisableAudio {
		audio, err = newPiezoSink(m)
		if err != nil {
			return fmt.Errorf("hx20: opening audio: %w", err)
		}
		defer audio.Close()
	}

	var loader *autoload.Loader
	if cfg.AutoloadFile != "" {
		if cfg.AutoloadSrec {
			loader, err = autoload.NewSRecord(cfg.AutoloadFile, &m.Warp)
		} else {
			loader, err = autoload.NewBasicFile(cfg.AutoloadFile, &m.Warp)
		}
		if err != nil {
			return fmt.Errorf("hx20: staging autoload file: %w", err)
		}
	}
	if loader != nil {
		m.OnTick(func(m *bus.Machine) {
			if !loader.Done() {
				loader.Tick(m.MasterMem)
			}
		})
	}

	dbg := debugger.New(os.Stdin, os.Stdout)
	step := cfg.BreakOnStart

	for {
		if step || m.Panicked() {
			if m.Panicked() {
				fmt.Fprintln(os.Stdout, m.PanicMessage())
			}
			m.ClearPanic()
			var quit bool
			step, quit = dbg.Run(m)
			if quit {
				os.Exit(0)
			}
		}
		m.Tick()
	}
}

// loadROMs installs the four master ROM images, the one slave ROM
// image, and an optional option ROM, per original_source/main.c.
func loadROMs(cfg *config.Config, masterMem, slaveMem *hd6301.Memory) error {
	for _, img := range rom.Master {
		data, err := rom.Load(cfg.ROMDir, img)
		if err != nil {
			return err
		}
		masterMem.WriteArea(img.Address, data)
	}

	slaveData, err := rom.Load(cfg.ROMDir, rom.Slave)
	if err != nil {
		return err
	}
	slaveMem.WriteArea(rom.Slave.Address, slaveData)

	if cfg.OptionROM != "" {
		data, err := rom.LoadOption(cfg.OptionROM)
		if err != nil {
			return err
		}
		masterMem.WriteArea(rom.OptionROMAddress, data)
	}

	return nil
}
