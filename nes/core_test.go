package nes

import (
	"bytes"
	"errors"
	"testing"

	"github.com/user-none/nescore/emucore"
	"github.com/user-none/nescore/ines"
)

// buildROM assembles a loadable iNES image. PRG bytes carry their bank
// number in the high nibble so bank switching is observable; CHR banks
// get a repeating pattern so rendered frames have recognizable content.
func buildROM(t *testing.T, prgBanks, chrBanks int, mapper uint8) []byte {
	t.Helper()
	header := []byte{
		'N', 'E', 'S', 0x1A,
		byte(prgBanks), byte(chrBanks),
		(mapper & 0x0F) << 4, mapper & 0xF0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	prg := make([]byte, prgBanks*ines.PRGBankSize)
	for i := range prg {
		prg[i] = byte(i/ines.PRGBankSize)<<4 | byte(i)&0x0F
	}
	chr := make([]byte, chrBanks*ines.CHRBankSize)
	for i := range chr {
		chr[i] = byte(i * 7)
	}
	return append(append(header, prg...), chr...)
}

// newLoadedCore is the common Init+LoadCartridge fixture.
func newLoadedCore(t *testing.T, rom []byte) *Core {
	t.Helper()
	c := New()
	if err := c.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := c.LoadCartridge(rom); err != nil {
		t.Fatalf("LoadCartridge failed: %v", err)
	}
	return c
}

func TestInit_Idempotent(t *testing.T) {
	c := New()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	fb := c.FrameBuffer()
	if err := c.Init(); err != nil {
		t.Fatalf("second Init must be a no-op success: %v", err)
	}
	if &fb[0] != &c.FrameBuffer()[0] {
		t.Error("second Init must not reallocate the frame buffer")
	}
}

func TestAdvanceFrame_RequiresInit(t *testing.T) {
	c := New()
	if err := c.AdvanceFrame(); !errors.Is(err, emucore.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestAdvanceFrame_RequiresCartridge(t *testing.T) {
	c := New()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if err := c.AdvanceFrame(); !errors.Is(err, emucore.ErrNoCartridge) {
		t.Errorf("expected ErrNoCartridge, got %v", err)
	}
}

func TestLoadCartridge_RequiresInit(t *testing.T) {
	c := New()
	err := c.LoadCartridge(buildROM(t, 1, 1, 0))
	if !errors.Is(err, emucore.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestLoadCartridge_RevalidatesHeader(t *testing.T) {
	c := New()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name string
		rom  []byte
	}{
		{"garbage", []byte("definitely not a rom")},
		{"short", []byte{0x4E, 0x45, 0x53, 0x1A}},
		{"truncated", buildROM(t, 1, 1, 0)[:17]},
		{"zero prg", buildROM(t, 0, 1, 0)},
	}
	for _, tc := range testCases {
		if err := c.LoadCartridge(tc.rom); !errors.Is(err, emucore.ErrInvalidCartridge) {
			t.Errorf("%s: expected ErrInvalidCartridge, got %v", tc.name, err)
		}
	}
}

func TestLoadCartridge_UnsupportedMapper(t *testing.T) {
	c := New()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	err := c.LoadCartridge(buildROM(t, 1, 1, 4))
	if !errors.Is(err, emucore.ErrUnsupportedMapper) {
		t.Fatalf("expected ErrUnsupportedMapper, got %v", err)
	}
	// A load failure must not leave a half-loaded cartridge behind.
	if err := c.AdvanceFrame(); !errors.Is(err, emucore.ErrNoCartridge) {
		t.Errorf("core must stay cartridge-less after failed load, got %v", err)
	}
}

func TestEndToEnd_MinimalCartridge(t *testing.T) {
	// Minimal valid cartridge: 1 PRG bank, 1 CHR bank, mapper 0.
	rom := append(
		[]byte{0x4E, 0x45, 0x53, 0x1A, 0x01, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		make([]byte, ines.PRGBankSize+ines.CHRBankSize)...,
	)
	c := newLoadedCore(t, rom)

	if err := c.AdvanceFrame(); err != nil {
		t.Fatal(err)
	}

	spec := c.FrameSpec()
	want := 256 * 240 * spec.Format.BytesPerPixel()
	if len(c.FrameBuffer()) != want {
		t.Errorf("frame buffer length %d, want %d", len(c.FrameBuffer()), want)
	}
}

func TestFrameBuffer_BaselineBeforeFirstFrame(t *testing.T) {
	c := newLoadedCore(t, buildROM(t, 1, 1, 0))

	fb := c.FrameBuffer()
	pal := c.Palette()
	for i, idx := range fb {
		p := int(idx) * 4
		if pal[p] != 0 || pal[p+1] != 0 || pal[p+2] != 0 || pal[p+3] != 0xFF {
			t.Fatalf("pixel %d: baseline must be opaque black, index %#x", i, idx)
		}
	}
}

func TestPalette_IndexedFormatContract(t *testing.T) {
	c := newLoadedCore(t, buildROM(t, 1, 1, 0))

	spec := c.FrameSpec()
	if spec.Width != 256 || spec.Height != 240 {
		t.Errorf("dimensions %dx%d, want 256x240", spec.Width, spec.Height)
	}
	if spec.Format != emucore.FormatIndexed8 {
		t.Errorf("format %v, want INDEXED8", spec.Format)
	}
	if len(c.Palette()) != 256*4 {
		t.Errorf("palette length %d, want %d", len(c.Palette()), 256*4)
	}
}

func TestAdvanceFrame_Deterministic(t *testing.T) {
	rom := buildROM(t, 1, 1, 0)

	frameAfter := func(buttons []int) []byte {
		c := newLoadedCore(t, rom)
		for _, b := range buttons {
			c.SetButton(b, true)
		}
		if err := c.AdvanceFrame(); err != nil {
			t.Fatal(err)
		}
		return append([]byte(nil), c.FrameBuffer()...)
	}

	plain := frameAfter(nil)
	if !bytes.Equal(plain, frameAfter(nil)) {
		t.Error("identical inputs must produce identical frames")
	}
	if bytes.Equal(plain, frameAfter([]int{emucore.ButtonA})) {
		t.Error("controller state must be consumed by the next frame")
	}
}

func TestSetButton_EffectIsNotRetroactive(t *testing.T) {
	c := newLoadedCore(t, buildROM(t, 1, 1, 0))

	if err := c.AdvanceFrame(); err != nil {
		t.Fatal(err)
	}
	before := append([]byte(nil), c.FrameBuffer()...)

	// Pressing after the frame completed must not alter that frame.
	c.SetButton(emucore.ButtonA, true)
	if !bytes.Equal(before, c.FrameBuffer()) {
		t.Error("SetButton mutated the already-rendered frame")
	}
}

func TestSetButton_OutOfRangeIgnored(t *testing.T) {
	c := newLoadedCore(t, buildROM(t, 1, 1, 0))

	c.SetButton(-1, true)
	c.SetButton(8, true)
	c.SetButton(255, true)
	if err := c.AdvanceFrame(); err != nil {
		t.Fatal(err)
	}
	if c.lastButtons != 0 {
		t.Errorf("out-of-range buttons leaked into state: %#x", c.lastButtons)
	}
}

func TestReset_KeepsCartridge(t *testing.T) {
	c := newLoadedCore(t, buildROM(t, 1, 1, 0))

	c.SetButton(emucore.ButtonA, true)
	for i := 0; i < 3; i++ {
		if err := c.AdvanceFrame(); err != nil {
			t.Fatal(err)
		}
	}

	c.Reset()
	if c.frameCount != 0 || c.buttons != 0 {
		t.Error("Reset must clear transient state")
	}
	// Still loaded: stepping works without another LoadCartridge.
	if err := c.AdvanceFrame(); err != nil {
		t.Errorf("AdvanceFrame after Reset failed: %v", err)
	}
}

func TestReset_NoCartridgeIsNoOp(t *testing.T) {
	c := New()
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	c.Reset() // must not panic
}

func TestLoadCartridge_ResetsToPowerOn(t *testing.T) {
	c := newLoadedCore(t, buildROM(t, 1, 1, 0))
	c.SetButton(emucore.ButtonStart, true)
	if err := c.AdvanceFrame(); err != nil {
		t.Fatal(err)
	}

	if err := c.LoadCartridge(buildROM(t, 1, 1, 0)); err != nil {
		t.Fatal(err)
	}
	if c.buttons != 0 || c.frameCount != 0 {
		t.Error("loading a cartridge must reset controller and video state")
	}
	for _, idx := range c.FrameBuffer() {
		if idx != colorBlack {
			t.Fatal("frame must return to the black baseline on load")
		}
	}
}
