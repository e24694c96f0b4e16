package cart

// Banked is a bank-register stub: it latches a ROM bank number written to
// 0x2000–0x3FFF and maps 0x4000–0x7FFF through it, plus a single flat
// external RAM window behind the usual 0x0A enable. It is not a full MBC;
// RAM banking, mode select, and RTC are out of scope.
type Banked struct {
	rom []byte
	ram []byte

	romBank    byte // 0 remaps to 1
	ramEnabled bool
}

func NewBanked(rom []byte, ramSize int) *Banked {
	b := &Banked{rom: rom, romBank: 1}
	if ramSize > 0 {
		b.ram = make([]byte, ramSize)
	}
	return b
}

func (b *Banked) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(b.rom) {
			return b.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		off := int(b.romBank)*0x4000 + int(addr-0x4000)
		if off < len(b.rom) {
			return b.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !b.ramEnabled || len(b.ram) == 0 {
			return 0xFF
		}
		off := int(addr - 0xA000)
		if off < len(b.ram) {
			return b.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (b *Banked) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		// RAM enable: low 4 bits must be 0x0A
		b.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		// ROM bank select (0 maps to 1)
		b.romBank = value & 0x1F
		if b.romBank == 0 {
			b.romBank = 1
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !b.ramEnabled || len(b.ram) == 0 {
			return
		}
		off := int(addr - 0xA000)
		if off < len(b.ram) {
			b.ram[off] = value
		}
	}
}
