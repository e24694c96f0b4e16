package cpu

import "github.com/escrichov/gbemulator/internal/bits"

// handler executes one decoded instruction and returns the T-cycles it
// consumed, including the taken bonus for conditional flow.
type handler func(*CPU) int

// opcodes is the dense primary decode table. The eleven DMG holes (0xD3,
// 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD) stay nil and
// fault in Step.
var opcodes [256]handler

// Branch condition encoding shared by JR/JP/CALL/RET cc: NZ, Z, NC, C.
var conditions = [4]func(*CPU) bool{
	func(c *CPU) bool { return !c.flag(flagZ) },
	func(c *CPU) bool { return c.flag(flagZ) },
	func(c *CPU) bool { return !c.flag(flagC) },
	func(c *CPU) bool { return c.flag(flagC) },
}

func init() {
	// LD r,r' / LD r,(HL) / LD (HL),r — 0x40..0x7F, with 0x76 = HALT.
	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			continue
		}
		dst := byte(op>>3) & 7
		src := byte(op) & 7
		opcodes[op] = func(c *CPU) int {
			c.setReg(dst, c.getReg(src))
			if dst == 6 || src == 6 {
				return 8
			}
			return 4
		}
	}
	opcodes[0x76] = func(c *CPU) int { c.halted = true; return 4 }

	// ALU A, r — 0x80..0xBF: ADD/ADC/SUB/SBC/AND/XOR/OR/CP by bits 5..3.
	alu := [8]func(c *CPU, v byte){
		func(c *CPU, v byte) { c.add8(v, 0) },
		func(c *CPU, v byte) { c.add8(v, c.carryIn()) },
		func(c *CPU, v byte) { c.sub8(v, 0) },
		func(c *CPU, v byte) { c.sub8(v, c.carryIn()) },
		func(c *CPU, v byte) { c.and8(v) },
		func(c *CPU, v byte) { c.xor8(v) },
		func(c *CPU, v byte) { c.or8(v) },
		func(c *CPU, v byte) { c.cp8(v) },
	}
	for op := 0x80; op <= 0xBF; op++ {
		fn := alu[(op>>3)&7]
		src := byte(op) & 7
		opcodes[op] = func(c *CPU) int {
			fn(c, c.getReg(src))
			if src == 6 {
				return 8
			}
			return 4
		}
	}
	// ALU A, d8 — 0xC6/CE/D6/DE/E6/EE/F6/FE.
	for i := 0; i < 8; i++ {
		fn := alu[i]
		opcodes[0xC6+i*8] = func(c *CPU) int { fn(c, c.fetch8()); return 8 }
	}

	// INC r / DEC r / LD r,d8 — one per register row, (HL) included.
	for idx := byte(0); idx < 8; idx++ {
		idx := idx
		rw := 4
		if idx == 6 {
			rw = 12
		}
		opcodes[0x04+idx*8] = func(c *CPU) int { c.setReg(idx, c.inc8(c.getReg(idx))); return rw }
		opcodes[0x05+idx*8] = func(c *CPU) int { c.setReg(idx, c.dec8(c.getReg(idx))); return rw }
		ld := 8
		if idx == 6 {
			ld = 12
		}
		opcodes[0x06+idx*8] = func(c *CPU) int { c.setReg(idx, c.fetch8()); return ld }
	}

	opcodes[0x00] = func(c *CPU) int { return 4 }
	opcodes[0x10] = func(c *CPU) int {
		c.fetch8() // STOP consumes a padding byte
		c.stopped = true
		return 4
	}

	// 16-bit immediate loads and SP store.
	opcodes[0x01] = func(c *CPU) int { c.setBC(c.fetch16()); return 12 }
	opcodes[0x11] = func(c *CPU) int { c.setDE(c.fetch16()); return 12 }
	opcodes[0x21] = func(c *CPU) int { c.setHL(c.fetch16()); return 12 }
	opcodes[0x31] = func(c *CPU) int { c.SP = c.fetch16(); return 12 }
	opcodes[0x08] = func(c *CPU) int { c.write16(c.fetch16(), c.SP); return 20 }

	// A <-> (BC)/(DE), with HL post-increment/decrement variants.
	opcodes[0x02] = func(c *CPU) int { c.write8(c.getBC(), c.A); return 8 }
	opcodes[0x12] = func(c *CPU) int { c.write8(c.getDE(), c.A); return 8 }
	opcodes[0x0A] = func(c *CPU) int { c.A = c.read8(c.getBC()); return 8 }
	opcodes[0x1A] = func(c *CPU) int { c.A = c.read8(c.getDE()); return 8 }
	opcodes[0x22] = func(c *CPU) int {
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl + 1)
		return 8
	}
	opcodes[0x2A] = func(c *CPU) int {
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl + 1)
		return 8
	}
	opcodes[0x32] = func(c *CPU) int {
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl - 1)
		return 8
	}
	opcodes[0x3A] = func(c *CPU) int {
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl - 1)
		return 8
	}

	// High-page loads: 0xFF00+n and 0xFF00+C.
	opcodes[0xE0] = func(c *CPU) int { c.write8(0xFF00+uint16(c.fetch8()), c.A); return 12 }
	opcodes[0xF0] = func(c *CPU) int { c.A = c.read8(0xFF00 + uint16(c.fetch8())); return 12 }
	opcodes[0xE2] = func(c *CPU) int { c.write8(0xFF00+uint16(c.C), c.A); return 8 }
	opcodes[0xF2] = func(c *CPU) int { c.A = c.read8(0xFF00 + uint16(c.C)); return 8 }
	opcodes[0xEA] = func(c *CPU) int { c.write8(c.fetch16(), c.A); return 16 }
	opcodes[0xFA] = func(c *CPU) int { c.A = c.read8(c.fetch16()); return 16 }

	// 16-bit INC/DEC — no flag effects.
	opcodes[0x03] = func(c *CPU) int { c.setBC(c.getBC() + 1); return 8 }
	opcodes[0x13] = func(c *CPU) int { c.setDE(c.getDE() + 1); return 8 }
	opcodes[0x23] = func(c *CPU) int { c.setHL(c.getHL() + 1); return 8 }
	opcodes[0x33] = func(c *CPU) int { c.SP++; return 8 }
	opcodes[0x0B] = func(c *CPU) int { c.setBC(c.getBC() - 1); return 8 }
	opcodes[0x1B] = func(c *CPU) int { c.setDE(c.getDE() - 1); return 8 }
	opcodes[0x2B] = func(c *CPU) int { c.setHL(c.getHL() - 1); return 8 }
	opcodes[0x3B] = func(c *CPU) int { c.SP--; return 8 }

	opcodes[0x09] = func(c *CPU) int { c.addHL(c.getBC()); return 8 }
	opcodes[0x19] = func(c *CPU) int { c.addHL(c.getDE()); return 8 }
	opcodes[0x29] = func(c *CPU) int { c.addHL(c.getHL()); return 8 }
	opcodes[0x39] = func(c *CPU) int { c.addHL(c.SP); return 8 }

	// SP/HL transfers with the low-byte flag quirk.
	opcodes[0xE8] = func(c *CPU) int { c.SP = c.addSP(c.fetch8()); return 16 }
	opcodes[0xF8] = func(c *CPU) int { c.setHL(c.addSP(c.fetch8())); return 12 }
	opcodes[0xF9] = func(c *CPU) int { c.SP = c.getHL(); return 8 }

	// Accumulator rotates: Z is always cleared, unlike the CB forms.
	opcodes[0x07] = func(c *CPU) int {
		carry := c.A >> 7
		c.A = c.A<<1 | carry
		c.setZNHC(false, false, false, carry == 1)
		return 4
	}
	opcodes[0x0F] = func(c *CPU) int {
		carry := c.A & 1
		c.A = c.A>>1 | carry<<7
		c.setZNHC(false, false, false, carry == 1)
		return 4
	}
	opcodes[0x17] = func(c *CPU) int {
		carry := c.A >> 7
		c.A = c.A<<1 | c.carryIn()
		c.setZNHC(false, false, false, carry == 1)
		return 4
	}
	opcodes[0x1F] = func(c *CPU) int {
		carry := c.A & 1
		c.A = c.A>>1 | c.carryIn()<<7
		c.setZNHC(false, false, false, carry == 1)
		return 4
	}

	opcodes[0x27] = func(c *CPU) int { c.daa(); return 4 }
	opcodes[0x2F] = func(c *CPU) int {
		c.A = ^c.A
		c.F = c.F&(flagZ|flagC) | flagN | flagH
		return 4
	}
	opcodes[0x37] = func(c *CPU) int { c.F = c.F&flagZ | flagC; return 4 }
	opcodes[0x3F] = func(c *CPU) int { c.F = c.F&(flagZ|flagC) ^ flagC; return 4 }

	// Relative jumps. The displacement is signed and applied after the
	// operand byte has been consumed.
	opcodes[0x18] = func(c *CPU) int {
		off := c.fetch8()
		c.PC = uint16(int32(c.PC) + int32(bits.SignExtend8(off)))
		return 12
	}
	for i := 0; i < 4; i++ {
		cond := conditions[i]
		opcodes[0x20+i*8] = func(c *CPU) int {
			off := c.fetch8()
			if cond(c) {
				c.PC = uint16(int32(c.PC) + int32(bits.SignExtend8(off)))
				return 12
			}
			return 8
		}
	}

	// Absolute jumps, calls, returns.
	opcodes[0xC3] = func(c *CPU) int { c.PC = c.fetch16(); return 16 }
	opcodes[0xE9] = func(c *CPU) int { c.PC = c.getHL(); return 4 } // JP (HL): no dereference
	opcodes[0xCD] = func(c *CPU) int {
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	}
	opcodes[0xC9] = func(c *CPU) int { c.PC = c.pop16(); return 16 }
	opcodes[0xD9] = func(c *CPU) int {
		c.PC = c.pop16()
		c.IME = true // RETI enables immediately, no EI delay
		return 16
	}
	for i := 0; i < 4; i++ {
		cond := conditions[i]
		opcodes[0xC2+i*8] = func(c *CPU) int {
			addr := c.fetch16()
			if cond(c) {
				c.PC = addr
				return 16
			}
			return 12
		}
		opcodes[0xC4+i*8] = func(c *CPU) int {
			addr := c.fetch16()
			if cond(c) {
				c.push16(c.PC)
				c.PC = addr
				return 24
			}
			return 12
		}
		opcodes[0xC0+i*8] = func(c *CPU) int {
			if cond(c) {
				c.PC = c.pop16()
				return 20
			}
			return 8
		}
	}

	// RST vectors 0x00..0x38.
	for i := 0; i < 8; i++ {
		vec := uint16(i * 8)
		opcodes[0xC7+i*8] = func(c *CPU) int {
			c.push16(c.PC)
			c.PC = vec
			return 16
		}
	}

	// PUSH/POP. POP AF masks the low nibble of F to zero.
	opcodes[0xC5] = func(c *CPU) int { c.push16(c.getBC()); return 16 }
	opcodes[0xD5] = func(c *CPU) int { c.push16(c.getDE()); return 16 }
	opcodes[0xE5] = func(c *CPU) int { c.push16(c.getHL()); return 16 }
	opcodes[0xF5] = func(c *CPU) int { c.push16(c.getAF()); return 16 }
	opcodes[0xC1] = func(c *CPU) int { c.setBC(c.pop16()); return 12 }
	opcodes[0xD1] = func(c *CPU) int { c.setDE(c.pop16()); return 12 }
	opcodes[0xE1] = func(c *CPU) int { c.setHL(c.pop16()); return 12 }
	opcodes[0xF1] = func(c *CPU) int { c.setAF(c.pop16()); return 12 }

	// Interrupt master enable.
	opcodes[0xF3] = func(c *CPU) int {
		c.IME = false
		c.eiPending = false
		return 4
	}
	opcodes[0xFB] = func(c *CPU) int { c.eiPending = true; return 4 }

	// CB prefix: dispatch through the second table; no holes there.
	opcodes[0xCB] = func(c *CPU) int {
		return cbOpcodes[c.fetch8()](c)
	}
}
