package emu

import (
	"errors"
	"io"
	"os"

	"github.com/escrichov/gbemulator/internal/bus"
	"github.com/escrichov/gbemulator/internal/cart"
	"github.com/escrichov/gbemulator/internal/cpu"
	"github.com/escrichov/gbemulator/internal/ppu"
)

// Screen dimensions re-exported for front ends.
const (
	FrameWidth  = ppu.FrameWidth
	FrameHeight = ppu.FrameHeight
)

// Buttons is the host-side joypad state.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

// Machine wires CPU, bus, and PPU into a steppable DMG system. One Step
// executes one instruction and advances the PPU and timers by the cycles it
// consumed; StepFrame runs until the PPU signals a completed frame.
type Machine struct {
	cfg Config

	bus *bus.Bus
	cpu *cpu.CPU

	rom     []byte
	boot    []byte
	romPath string
	header  *cart.Header

	onFrame ppu.FrameListener
	serial  io.Writer

	cycles uint64
}

func New(cfg Config) *Machine {
	m := &Machine{cfg: cfg}
	m.wire()
	return m
}

// wire builds a fresh bus+CPU around the current ROM and boot ROM.
func (m *Machine) wire() {
	rom := m.rom
	if len(rom) == 0 {
		rom = make([]byte, 0x8000)
	}
	m.bus = bus.New(rom)
	m.bus.PPU().SetUseFetcherBG(m.cfg.UseFetcherBG)
	if m.onFrame != nil {
		m.bus.PPU().SetFrameListener(m.onFrame)
	}
	if m.serial != nil {
		m.bus.SetSerialWriter(m.serial)
	}
	m.cpu = cpu.New(m.bus)
	m.cycles = 0

	if len(m.boot) >= 0x100 {
		m.bus.SetBootROM(m.boot)
		// Boot ROM path: start at 0x0000 and let it initialise IO.
		return
	}
	m.cpu.ResetNoBoot()
	m.applyPostBootIO()
}

// applyPostBootIO sets the IO registers to DMG post-boot defaults
// (LCD on, BG palette, timers off).
func (m *Machine) applyPostBootIO() {
	m.bus.Write(0xFF00, 0xCF)
	m.bus.Write(0xFF05, 0x00) // TIMA
	m.bus.Write(0xFF06, 0x00) // TMA
	m.bus.Write(0xFF07, 0x00) // TAC
	m.bus.Write(0xFF40, 0x91) // LCDC on with BG enabled
	m.bus.Write(0xFF42, 0x00) // SCY
	m.bus.Write(0xFF43, 0x00) // SCX
	m.bus.Write(0xFF45, 0x00) // LYC
	m.bus.Write(0xFF47, 0xFC) // BGP
	m.bus.Write(0xFF48, 0xFF) // OBP0
	m.bus.Write(0xFF49, 0xFF) // OBP1
	m.bus.Write(0xFF4A, 0x00) // WY
	m.bus.Write(0xFF4B, 0x00) // WX
	m.bus.Write(0xFFFF, 0x00) // IE
}

// SetBootROM installs a 256-byte DMG boot ROM and rewires to run it from
// 0x0000.
func (m *Machine) SetBootROM(data []byte) {
	m.boot = data
	m.wire()
}

// LoadCartridge validates the header and wires a new bus around the image.
// A checksum mismatch on a ROM that carries the Nintendo logo is surfaced as
// cart.ErrBadHeaderChecksum; logo-less homebrew is loaded as-is.
func (m *Machine) LoadCartridge(rom []byte) error {
	h, err := cart.Validate(rom)
	switch {
	case err == nil:
	case len(rom) < 0x150:
		h = nil // headerless test image; run it anyway
	case errors.Is(err, cart.ErrBadHeaderChecksum) && h != nil && !h.LogoOK:
		// logo-less homebrew rarely bothers with the checksum
	default:
		return err
	}
	m.rom = rom
	m.header = h
	m.wire()
	return nil
}

// LoadROMFromFile reads a ROM image from disk and loads it.
func (m *Machine) LoadROMFromFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(rom); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

func (m *Machine) ROMPath() string { return m.romPath }

func (m *Machine) ROMTitle() string {
	if m.header == nil {
		return ""
	}
	return m.header.Title
}

func (m *Machine) Header() *cart.Header { return m.header }

// ResetWithBoot restarts from the boot ROM (if one is installed).
func (m *Machine) ResetWithBoot() { m.wire() }

// ResetPostBoot restarts at 0x0100 with post-boot register defaults,
// skipping any installed boot ROM.
func (m *Machine) ResetPostBoot() {
	boot := m.boot
	m.boot = nil
	m.wire()
	m.boot = boot
}

// Step executes one instruction and advances timers and the PPU by the
// cycles it consumed. Returns the T-cycles and any fatal decode error.
func (m *Machine) Step() (int, error) {
	cycles, err := m.cpu.Step()
	if err != nil {
		return 0, err
	}
	m.bus.Tick(cycles)
	m.cycles += uint64(cycles)
	return cycles, nil
}

// StepFrame runs until the PPU completes the next frame. With the LCD
// disabled no frame is ever signalled, so the loop also stops after one
// frame's worth of cycles.
func (m *Machine) StepFrame() error {
	p := m.bus.PPU()
	target := p.FrameCount() + 1
	remaining := ppu.CyclesPerFrame
	for p.FrameCount() < target && remaining > 0 {
		cycles, err := m.Step()
		if err != nil {
			return err
		}
		remaining -= cycles
	}
	return nil
}

// Cycles returns total T-cycles executed since the last reset.
func (m *Machine) Cycles() uint64 { return m.cycles }

// Framebuffer returns the PPU's RGBA 160x144 frame.
func (m *Machine) Framebuffer() []byte { return m.bus.PPU().Frame() }

// SetFrameListener registers the host callback fired on each VBlank entry.
func (m *Machine) SetFrameListener(fn ppu.FrameListener) {
	m.onFrame = fn
	m.bus.PPU().SetFrameListener(fn)
}

// SetSerialWriter streams serial-port bytes to w.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.serial = w
	m.bus.SetSerialWriter(w)
}

// SetButtons maps host joypad state onto the P1 lines.
func (m *Machine) SetButtons(b Buttons) {
	var mask byte
	if b.Right {
		mask |= bus.JoypRight
	}
	if b.Left {
		mask |= bus.JoypLeft
	}
	if b.Up {
		mask |= bus.JoypUp
	}
	if b.Down {
		mask |= bus.JoypDown
	}
	if b.A {
		mask |= bus.JoypA
	}
	if b.B {
		mask |= bus.JoypB
	}
	if b.Select {
		mask |= bus.JoypSelectBtn
	}
	if b.Start {
		mask |= bus.JoypStart
	}
	m.bus.SetJoypadState(mask)
}

// CPU and Bus expose the wired components for tests and tools.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }
func (m *Machine) Bus() *bus.Bus { return m.bus }
