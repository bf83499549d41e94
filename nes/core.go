// Package nes implements emucore.Core for iNES cartridges.
//
// The core validates and loads cartridges through the full mapper model
// but renders frames with a deterministic CHR preview pipeline instead of
// a cycle-accurate CPU/PPU: each frame is a pure function of the loaded
// cartridge, the frame counter and the sampled controller state.
// TODO: replace the preview renderer with a 6502/PPU pipeline.
package nes

import (
	"fmt"

	"github.com/user-none/nescore/emucore"
	"github.com/user-none/nescore/ines"
)

type coreState int

const (
	stateUninitialized coreState = iota
	stateInitialized
	stateLoaded
)

// tileBytes is the storage size of one 8x8 CHR tile (two bitplanes).
const tileBytes = 16

// Core is an emucore.Core backed by the CHR preview renderer. Not safe
// for concurrent use; a single caller drives it.
type Core struct {
	state  coreState
	cart   *cartridge
	mapper mapper

	frame   []byte
	palette []byte

	buttons     uint8 // pending state written by SetButton
	lastButtons uint8 // state sampled by the most recent AdvanceFrame
	frameCount  uint64
	scroll      int
}

// New returns an uninitialized core. Call Init before use.
func New() *Core {
	return &Core{}
}

// Init allocates the frame buffer and palette. Idempotent.
func (c *Core) Init() error {
	if c.state != stateUninitialized {
		return nil
	}

	spec := c.FrameSpec()
	c.frame = make([]byte, spec.BufferSize())
	c.palette = buildPalette()
	c.clearFrame()

	c.state = stateInitialized
	return nil
}

// LoadCartridge validates rom as an iNES image and loads it. The header
// is re-parsed here regardless of what the caller already checked.
func (c *Core) LoadCartridge(rom []byte) error {
	if c.state == stateUninitialized {
		return emucore.ErrNotInitialized
	}

	h, err := ines.ParseHeader(rom)
	if err != nil {
		return fmt.Errorf("%w: %v", emucore.ErrInvalidCartridge, err)
	}
	if err := ines.Validate(rom, h); err != nil {
		return fmt.Errorf("%w: %v", emucore.ErrInvalidCartridge, err)
	}

	construct, ok := mapperConstructors[h.Mapper]
	if !ok {
		return fmt.Errorf("%w: mapper %d", emucore.ErrUnsupportedMapper, h.Mapper)
	}

	c.cart = newCartridge(rom, h)
	c.mapper = construct(c.cart)
	c.state = stateLoaded
	c.powerOn()
	return nil
}

// AdvanceFrame steps one video frame, sampling the controller bitmask
// exactly once. Fails loudly before a cartridge is loaded.
func (c *Core) AdvanceFrame() error {
	if c.state == stateUninitialized {
		return emucore.ErrNotInitialized
	}
	if c.state != stateLoaded {
		return emucore.ErrNoCartridge
	}

	c.lastButtons = c.buttons
	c.stepScroll()
	c.renderFrame()
	c.frameCount++
	return nil
}

// Reset returns the loaded cartridge to power-on state. No-op when no
// cartridge is loaded.
func (c *Core) Reset() {
	if c.state != stateLoaded {
		return
	}
	c.cart.resetRAM()
	c.mapper = mapperConstructors[c.cart.header.Mapper](c.cart)
	c.powerOn()
}

// SetButton records one button edge. Out-of-range indices are ignored so
// forward-compatible callers with more buttons stay harmless. The change
// takes effect at the next AdvanceFrame.
func (c *Core) SetButton(index int, pressed bool) {
	if index < 0 || index >= emucore.ButtonCount {
		return
	}
	mask := uint8(1) << uint(index)
	if pressed {
		c.buttons |= mask
	} else {
		c.buttons &^= mask
	}
}

// FrameBuffer returns the core-owned pixel buffer for the most recent
// frame; all-black until the first AdvanceFrame.
func (c *Core) FrameBuffer() []byte {
	return c.frame
}

// FrameSpec reports 256x240 indexed pixels.
func (c *Core) FrameSpec() emucore.FrameSpec {
	return emucore.FrameSpec{
		Width:  emucore.ScreenWidth,
		Height: emucore.ScreenHeight,
		Format: emucore.FormatIndexed8,
	}
}

// Palette returns the 256-entry RGBA lookup table.
func (c *Core) Palette() []byte {
	return c.palette
}

// Close releases the core's buffers.
func (c *Core) Close() {
	c.frame = nil
	c.palette = nil
	c.cart = nil
	c.mapper = nil
	c.state = stateUninitialized
}

// powerOn resets transient video and controller state, keeping the
// cartridge image in place.
func (c *Core) powerOn() {
	c.buttons = 0
	c.lastButtons = 0
	c.frameCount = 0
	c.scroll = 0
	c.clearFrame()
}

func (c *Core) clearFrame() {
	for i := range c.frame {
		c.frame[i] = colorBlack
	}
}

// stepScroll consumes the sampled d-pad state: one tile column/row of
// drift per held direction per frame.
func (c *Core) stepScroll() {
	if c.lastButtons&(1<<emucore.ButtonRight) != 0 {
		c.scroll++
	}
	if c.lastButtons&(1<<emucore.ButtonLeft) != 0 {
		c.scroll--
	}
	if c.lastButtons&(1<<emucore.ButtonDown) != 0 {
		c.scroll += tilesPerRow
	}
	if c.lastButtons&(1<<emucore.ButtonUp) != 0 {
		c.scroll -= tilesPerRow
	}
}
