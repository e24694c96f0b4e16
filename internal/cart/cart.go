package cart

// Cartridge defines what the bus needs from a ROM image. Addresses are CPU
// addresses: ROM at 0x0000–0x7FFF, external RAM at 0xA000–0xBFFF.
type Cartridge interface {
	Read(addr uint16) byte
	// Write handles bank-register writes (0x0000–0x7FFF) and external RAM
	// writes (0xA000–0xBFFF). ROM bytes themselves are immutable.
	Write(addr uint16, value byte)
}

// NewCartridge picks an implementation based on the ROM image. Images that
// fit the fixed 32 KiB window with no external RAM map flat; anything else
// gets the bank-register stub.
func NewCartridge(rom []byte) Cartridge {
	h, err := ParseHeader(rom)
	if err != nil {
		return NewROMOnly(rom)
	}
	if len(rom) <= 0x8000 && h.RAMSizeBytes == 0 {
		return NewROMOnly(rom)
	}
	return NewBanked(rom, h.RAMSizeBytes)
}
