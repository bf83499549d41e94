package nes

import "github.com/user-none/nescore/ines"

// mapper models cartridge bank-switching hardware. Addresses follow the
// CPU ($8000-$FFFF for PRG) and PPU ($0000-$1FFF for CHR) views.
type mapper interface {
	ReadPRG(addr uint16) byte
	WritePRG(addr uint16, value byte)
	ReadCHR(addr uint16) byte
	WriteCHR(addr uint16, value byte)
}

// mapperConstructors is the explicit table of supported mappers. Unknown
// numbers are rejected at load time rather than approximated: best-effort
// emulation of unknown bank-switching hardware produces garbage that is
// much harder to diagnose than a clean load failure.
var mapperConstructors = map[uint8]func(*cartridge) mapper{
	0: newNROM,
	2: newUxROM,
}

// SupportedMappers lists the mapper numbers this core implements, for
// host-side capability reporting.
func SupportedMappers() []uint8 {
	return []uint8{0, 2}
}

// nrom is mapper 0: no bank switching. A single 16 KiB PRG bank is
// mirrored across the 32 KiB window (NROM-128); 32 KiB maps directly
// (NROM-256).
type nrom struct {
	cart *cartridge
}

func newNROM(c *cartridge) mapper {
	return &nrom{cart: c}
}

func (m *nrom) ReadPRG(addr uint16) byte {
	offset := int(addr-0x8000) % len(m.cart.prgROM)
	return m.cart.prgROM[offset]
}

func (m *nrom) WritePRG(addr uint16, value byte) {
	// PRG is ROM; writes have no effect on NROM.
}

func (m *nrom) ReadCHR(addr uint16) byte {
	chr := m.cart.chr()
	return chr[int(addr)%len(chr)]
}

func (m *nrom) WriteCHR(addr uint16, value byte) {
	if m.cart.chrRAM != nil {
		m.cart.chrRAM[int(addr)%len(m.cart.chrRAM)] = value
	}
}

// uxrom is mapper 2: 16 KiB switchable PRG bank at $8000-$BFFF, last bank
// fixed at $C000-$FFFF, bank select by writing anywhere in PRG space.
type uxrom struct {
	cart  *cartridge
	banks int
	bank  int
}

func newUxROM(c *cartridge) mapper {
	return &uxrom{
		cart:  c,
		banks: len(c.prgROM) / ines.PRGBankSize,
	}
}

func (m *uxrom) ReadPRG(addr uint16) byte {
	if addr < 0xC000 {
		return m.cart.prgROM[m.bank*ines.PRGBankSize+int(addr-0x8000)]
	}
	return m.cart.prgROM[(m.banks-1)*ines.PRGBankSize+int(addr-0xC000)]
}

func (m *uxrom) WritePRG(addr uint16, value byte) {
	m.bank = int(value) % m.banks
}

func (m *uxrom) ReadCHR(addr uint16) byte {
	chr := m.cart.chr()
	return chr[int(addr)%len(chr)]
}

func (m *uxrom) WriteCHR(addr uint16, value byte) {
	if m.cart.chrRAM != nil {
		m.cart.chrRAM[int(addr)%len(m.cart.chrRAM)] = value
	}
}
