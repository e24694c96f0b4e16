package ppu

// Four grey shades, lightest to darkest, indexed by the 2-bit value a
// palette register maps a colour index to.
var shades = [4][4]byte{
	{0xFF, 0xFF, 0xFF, 0xFF},
	{0xC0, 0xC0, 0xC0, 0xFF},
	{0x60, 0x60, 0x60, 0xFF},
	{0x00, 0x00, 0x00, 0xFF},
}

// paletteShade maps a 2-bit colour index through a palette register (BGP,
// OBP0, OBP1) to a shade number 0..3.
func paletteShade(pal, ci byte) byte {
	return (pal >> (ci * 2)) & 0x03
}

// renderScanline composes BG, window, and sprites for one visible line into
// the framebuffer. Runs on entry to pixel transfer.
func (p *PPU) renderScanline(line int) {
	if line < 0 || line >= FrameHeight {
		return
	}

	// BG colour indices for the line; sprites need them for priority.
	var bgIdx [FrameWidth]byte
	if (p.lcdc & 0x01) != 0 {
		if p.useFetcher {
			mapBase := uint16(0x9800)
			if (p.lcdc & 0x08) != 0 {
				mapBase = 0x9C00
			}
			bgIdx = RenderBGScanlineUsingFetcher(p, mapBase, (p.lcdc&0x10) != 0, p.scx, p.scy, byte(line))
		} else {
			p.bgScanline(line, &bgIdx)
		}
		if (p.lcdc&0x20) != 0 && line >= int(p.wy) {
			p.windowScanline(&bgIdx)
		}
	}
	// With BG disabled the line stays at colour index 0 (palette colour 0).

	for x := 0; x < FrameWidth; x++ {
		p.putPixel(x, line, paletteShade(p.bgp, bgIdx[x]))
	}

	if (p.lcdc & 0x02) != 0 {
		p.spriteScanline(line, &bgIdx)
	}
}

// bgScanline fills out with BG colour indices via the decoded tile cache.
func (p *PPU) bgScanline(line int, out *[FrameWidth]byte) {
	mapBase := uint16(0x1800) // 0x9800 relative to VRAM
	if (p.lcdc & 0x08) != 0 {
		mapBase = 0x1C00
	}
	unsignedData := (p.lcdc & 0x10) != 0

	y := (line + int(p.scy)) & 0xFF
	mapRow := uint16(y >> 3)
	fineY := y & 7

	for i := 0; i < FrameWidth; i++ {
		x := (i + int(p.scx)) & 0xFF
		mapCol := uint16(x >> 3)
		idx := p.vram[mapBase+mapRow*32+mapCol]
		tile := int(idx)
		if !unsignedData {
			// Signed indices select the 0x8800–0x97FF block (cache tiles
			// 128..255 for negative values, 256..383 for the rest).
			tile = 256 + int(int8(idx))
		}
		out[i] = p.tiles[tile][fineY][x&7]
	}
}

// windowScanline overlays the window layer starting at WX-7 for the current
// internal window line, then advances it.
func (p *PPU) windowScanline(out *[FrameWidth]byte) {
	startX := int(p.wx) - 7
	if startX >= FrameWidth {
		return
	}
	if startX < 0 {
		startX = 0
	}
	mapBase := uint16(0x1800)
	if (p.lcdc & 0x40) != 0 {
		mapBase = 0x1C00
	}
	unsignedData := (p.lcdc & 0x10) != 0

	mapRow := uint16(p.winLine >> 3)
	fineY := p.winLine & 7

	for i := startX; i < FrameWidth; i++ {
		mapCol := uint16(i-startX) >> 3
		idx := p.vram[mapBase+mapRow*32+mapCol]
		tile := int(idx)
		if !unsignedData {
			tile = 256 + int(int8(idx))
		}
		out[i] = p.tiles[tile][fineY][(i-startX)&7]
	}
	p.winLine++
}

// spriteScanline draws up to 10 objects on the line. Earlier OAM entries win
// overlaps; a sprite with the priority flag set loses to BG pixels whose
// colour index is non-zero.
func (p *PPU) spriteScanline(line int, bgIdx *[FrameWidth]byte) {
	height := 8
	if (p.lcdc & 0x04) != 0 {
		height = 16
	}

	// OAM search: first 10 sprites covering this line, in table order.
	var selected [10]int
	count := 0
	for i := 0; i < 40 && count < 10; i++ {
		sy := int(p.oam[i*4]) - 16
		if line >= sy && line < sy+height {
			selected[count] = i
			count++
		}
	}

	var drawn [FrameWidth]bool
	for k := 0; k < count; k++ {
		i := selected[k]
		sy := int(p.oam[i*4]) - 16
		sx := int(p.oam[i*4+1]) - 8
		tile := int(p.oam[i*4+2])
		flags := p.oam[i*4+3]

		row := line - sy
		if flags&0x40 != 0 { // Y flip
			row = height - 1 - row
		}
		if height == 16 {
			tile &^= 1
			if row >= 8 {
				tile |= 1
				row -= 8
			}
		}

		pal := p.obp0
		if flags&0x10 != 0 {
			pal = p.obp1
		}
		behindBG := flags&0x80 != 0

		for px := 0; px < 8; px++ {
			x := sx + px
			if x < 0 || x >= FrameWidth || drawn[x] {
				continue
			}
			col := px
			if flags&0x20 != 0 { // X flip
				col = 7 - px
			}
			ci := p.tiles[tile][row][col]
			if ci == 0 {
				continue // colour 0 is transparent for objects
			}
			if behindBG && bgIdx[x] != 0 {
				continue
			}
			p.putPixel(x, line, paletteShade(pal, ci))
			drawn[x] = true
		}
	}
}

func (p *PPU) putPixel(x, y int, shade byte) {
	off := (y*FrameWidth + x) * 4
	c := shades[shade]
	p.frame[off+0] = c[0]
	p.frame[off+1] = c[1]
	p.frame[off+2] = c[2]
	p.frame[off+3] = c[3]
}
