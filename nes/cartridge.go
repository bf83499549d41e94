package nes

import (
	"github.com/user-none/nescore/ines"
)

// cartridge is a loaded iNES image split into its memory regions. The
// core copies the regions out of the caller's buffer so the image stays
// valid however the caller reuses its bytes.
type cartridge struct {
	header ines.Header
	prgROM []byte
	chrROM []byte // CHR ROM, empty when the cartridge carries CHR RAM
	chrRAM []byte // 8 KiB, allocated when header.CHRBanks == 0
}

// chrRAMSize is the conventional CHR RAM allocation for chrBanks == 0.
const chrRAMSize = 8192

// newCartridge builds a cartridge from an already-validated image.
func newCartridge(data []byte, h ines.Header) *cartridge {
	_, prg, chr := ines.Split(data, h)

	c := &cartridge{
		header: h,
		prgROM: append([]byte(nil), prg...),
		chrROM: append([]byte(nil), chr...),
	}
	if h.CHRBanks == 0 {
		c.chrRAM = make([]byte, chrRAMSize)
	}
	return c
}

// chr returns the active character memory: ROM when present, RAM otherwise.
func (c *cartridge) chr() []byte {
	if len(c.chrROM) > 0 {
		return c.chrROM
	}
	return c.chrRAM
}

// resetRAM clears writable cartridge memory to its power-on state.
func (c *cartridge) resetRAM() {
	for i := range c.chrRAM {
		c.chrRAM[i] = 0
	}
}
