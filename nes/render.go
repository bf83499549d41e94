package nes

import "github.com/user-none/nescore/emucore"

const (
	tilesPerRow = emucore.ScreenWidth / 8  // 32
	tilesPerCol = emucore.ScreenHeight / 8 // 30
)

// renderFrame fills the frame buffer with the cartridge's CHR pattern
// data laid out as a 32x30 tile grid. Tiles are read through the mapper
// so bank switching is visible in the output. The 2-bit pixel values map
// to a 4-entry sub-palette derived from the sampled buttons, which makes
// controller input observable in the frame without any CPU emulation.
func (c *Core) renderFrame() {
	// Only the PPU-visible 8 KiB pattern window is drawn; larger CHR is
	// reached through mapper bank switching, same as real hardware.
	window := len(c.cart.chr())
	if window > 8192 {
		window = 8192
	}
	tileCount := window / tileBytes
	if tileCount == 0 {
		c.clearFrame()
		return
	}

	sub := c.subPalette()

	for ty := 0; ty < tilesPerCol; ty++ {
		for tx := 0; tx < tilesPerRow; tx++ {
			tile := (ty*tilesPerRow + tx + c.scroll) % tileCount
			if tile < 0 {
				tile += tileCount
			}
			c.drawTile(tx*8, ty*8, tile, sub)
		}
	}
}

// drawTile decodes one 16-byte CHR tile (two bitplanes, low plane first)
// at pixel position (px, py).
func (c *Core) drawTile(px, py int, tile int, sub [4]byte) {
	base := uint16(tile * tileBytes)
	for row := 0; row < 8; row++ {
		lo := c.mapper.ReadCHR(base + uint16(row))
		hi := c.mapper.ReadCHR(base + uint16(row) + 8)
		dst := (py+row)*emucore.ScreenWidth + px
		for bit := 0; bit < 8; bit++ {
			shift := uint(7 - bit)
			v := ((lo >> shift) & 1) | (((hi >> shift) & 1) << 1)
			c.frame[dst+bit] = sub[v]
		}
	}
}

// subPalette picks the four palette indexes for the 2-bit pixel values.
// The hue shifts with the A/B buttons and the brightness row with
// Start/Select, all from the state sampled at AdvanceFrame.
func (c *Core) subPalette() [4]byte {
	hue := byte(0)
	if c.lastButtons&(1<<emucore.ButtonA) != 0 {
		hue += 0x04
	}
	if c.lastButtons&(1<<emucore.ButtonB) != 0 {
		hue += 0x08
	}

	row := byte(0x10)
	if c.lastButtons&(1<<emucore.ButtonSelect) != 0 {
		row = 0x00
	}
	if c.lastButtons&(1<<emucore.ButtonStart) != 0 {
		row = 0x20
	}

	return [4]byte{
		colorBlack,
		row + hue,
		row + 0x10 + hue,
		0x30 + hue,
	}
}
