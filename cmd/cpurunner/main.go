package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/escrichov/gbemulator/internal/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM to run from 0x0000 until FF50 disables it")
	steps := flag.Int("steps", 5_000_000, "max CPU steps to run")
	trace := flag.Bool("trace", false, "print PC/opcodes")
	until := flag.String("until", "Passed", "stop when serial output contains this substring (case-insensitive); empty to disable")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	flag.Parse()

	if *romPath == "" && flag.NArg() > 0 {
		*romPath = flag.Arg(0)
	}
	if *romPath == "" {
		log.Fatal("-rom is required")
	}

	m := emu.New(emu.Config{})
	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
		m.SetBootROM(boot)
	}
	if err := m.LoadROMFromFile(*romPath); err != nil {
		log.Fatalf("load rom: %v", err)
	}

	// Stream serial to stdout and capture in-memory for pattern detection
	var ser bytes.Buffer
	w := io.Writer(os.Stdout)
	if *until != "" {
		w = io.MultiWriter(os.Stdout, &ser)
	}
	m.SetSerialWriter(w)

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	c := m.CPU()
	b := m.Bus()
	for i := 0; i < *steps; i++ {
		pc := c.PC
		var op byte
		if *trace {
			op = b.Read(pc)
		}
		cyc, err := m.Step()
		if err != nil {
			fmt.Printf("\nFatal: %v\n", err)
			fmt.Printf("Done: steps=%d cycles=%d elapsed=%s\n", i, m.Cycles(), time.Since(start).Truncate(time.Millisecond))
			os.Exit(1)
		}
		if *trace {
			fmt.Printf("PC=%04X OP=%02X cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t IF=%02X IE=%02X\n",
				pc, op, cyc, c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.IME, b.Read(0xFF0F), b.Read(0xFFFF))
		}
		if *until != "" && strings.Contains(strings.ToLower(ser.String()), strings.ToLower(*until)) {
			fmt.Printf("\nDetected '%s' in serial output.\n", *until)
			fmt.Printf("Done: steps=%d cycles=%d elapsed=%s\n", i+1, m.Cycles(), time.Since(start).Truncate(time.Millisecond))
			return
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			os.Exit(2)
		}
	}
	fmt.Printf("\nDone: steps=%d cycles=%d elapsed=%s\n", *steps, m.Cycles(), time.Since(start).Truncate(time.Millisecond))
}
