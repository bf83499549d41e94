// Package ines parses and validates the iNES cartridge file format.
// Parsing is pure: no I/O, no mutation of the input.
package ines

import (
	"bytes"
	"errors"
	"fmt"
)

// iNES layout constants.
const (
	HeaderSize  = 16
	TrainerSize = 512
	PRGBankSize = 16384 // 16 KiB per PRG-ROM bank
	CHRBankSize = 8192  // 8 KiB per CHR-ROM bank
)

// magic is "NES" followed by the MS-DOS EOF byte.
var magic = []byte{0x4E, 0x45, 0x53, 0x1A}

var (
	// ErrHeaderTooShort is returned when fewer than 16 bytes are given.
	ErrHeaderTooShort = errors.New("iNES header too short")

	// ErrInvalidMagic is returned when the first 4 bytes are not NES\x1A.
	ErrInvalidMagic = errors.New("invalid iNES magic")

	// ErrZeroPRGBanks is returned by Validate for a cartridge that
	// declares no program ROM.
	ErrZeroPRGBanks = errors.New("cartridge declares zero PRG banks")

	// ErrTruncated is returned by Validate when the image is smaller
	// than the banks declared in its header require.
	ErrTruncated = errors.New("image smaller than declared banks")
)

// Mirroring is the nametable mirroring arrangement from flags 6.
type Mirroring int

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorFourScreen
)

// Header is the parsed, immutable iNES header.
//
// A CHRBanks of 0 means the cartridge uses 8 KiB of writable CHR RAM
// instead of CHR ROM.
type Header struct {
	PRGBanks int // 16 KiB units
	CHRBanks int // 8 KiB units
	Mapper   uint8
	Mirror   Mirroring

	HasBattery   bool
	HasTrainer   bool
	VSUnisystem  bool
	PlayChoice10 bool
	NES2         bool
}

// ParseHeader parses the first 16 bytes of an iNES image. It does not
// check that the image body matches the declared bank counts; use
// Validate for that.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrHeaderTooShort, len(data))
	}
	if !bytes.Equal(data[0:4], magic) {
		return Header{}, fmt.Errorf("%w: % 02X", ErrInvalidMagic, data[0:4])
	}

	flags6 := data[6]
	flags7 := data[7]

	h := Header{
		PRGBanks:     int(data[4]),
		CHRBanks:     int(data[5]),
		Mapper:       (flags6 >> 4) | (flags7 & 0xF0),
		HasBattery:   flags6&0x02 != 0,
		HasTrainer:   flags6&0x04 != 0,
		VSUnisystem:  flags7&0x01 != 0,
		PlayChoice10: flags7&0x02 != 0,
		NES2:         flags7&0x0C == 0x08,
	}

	switch {
	case flags6&0x08 != 0:
		h.Mirror = MirrorFourScreen
	case flags6&0x01 != 0:
		h.Mirror = MirrorVertical
	default:
		h.Mirror = MirrorHorizontal
	}

	return h, nil
}

// MinSize returns the smallest valid image length for the header's
// declared trainer and bank counts.
func (h Header) MinSize() int {
	size := HeaderSize
	if h.HasTrainer {
		size += TrainerSize
	}
	return size + h.PRGBanks*PRGBankSize + h.CHRBanks*CHRBankSize
}

// Validate checks the image body against its parsed header. An
// unrecognized mapper number is deliberately not a validation failure;
// that is a compatibility concern surfaced by the core at load time.
func Validate(data []byte, h Header) error {
	if h.PRGBanks == 0 {
		return ErrZeroPRGBanks
	}
	if min := h.MinSize(); len(data) < min {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrTruncated, len(data), min)
	}
	return nil
}

// Split returns the trainer, PRG-ROM and CHR-ROM regions of a validated
// image. The returned slices alias data; callers that keep them past the
// caller's ownership of data must copy. CHR is empty when the cartridge
// uses CHR RAM.
func Split(data []byte, h Header) (trainer, prg, chr []byte) {
	off := HeaderSize
	if h.HasTrainer {
		trainer = data[off : off+TrainerSize]
		off += TrainerSize
	}
	prg = data[off : off+h.PRGBanks*PRGBankSize]
	off += h.PRGBanks * PRGBankSize
	chr = data[off : off+h.CHRBanks*CHRBankSize]
	return trainer, prg, chr
}
