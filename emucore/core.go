// Package emucore defines the contract every emulation core must satisfy.
// Hosts (the standalone player, stream capture, test drivers) program
// against these interfaces and never against a concrete core.
package emucore

import "time"

// NES controller button bit positions. The order matches the wire contract
// used by the publishing layer: bit 0 is Right through bit 7 is A.
const (
	ButtonRight  = 0
	ButtonLeft   = 1
	ButtonDown   = 2
	ButtonUp     = 3
	ButtonStart  = 4
	ButtonSelect = 5
	ButtonB      = 6
	ButtonA      = 7

	ButtonCount = 8
)

// FrameRate is the NTSC NES vertical refresh rate in Hz.
const FrameRate = 60.098

// FrameInterval is the target wall-clock duration of one video frame.
var frameNanos = float64(time.Second) / FrameRate

var FrameInterval = time.Duration(frameNanos)

// Core is the interface every emulator backend must implement.
//
// Cores are not safe for concurrent use: a single caller drives the state
// machine Uninitialized -> Initialized -> CartridgeLoaded and owns the
// returned buffers. FrameBuffer and Palette return storage owned by the
// core which may be overwritten by the next AdvanceFrame; callers needing
// persistence must copy.
type Core interface {
	// Init allocates the frame buffer, palette and hardware state.
	// Idempotent: calling Init on an initialized core is a no-op success.
	// An allocation failure here is fatal and must be returned, never
	// downgraded to a degraded rendering mode.
	Init() error

	// LoadCartridge validates and loads an iNES image. The core re-parses
	// the header itself rather than trusting the caller. Returns
	// ErrUnsupportedMapper or ErrInvalidCartridge as recoverable failures.
	// On success controller and video state return to power-on baseline.
	LoadCartridge(rom []byte) error

	// AdvanceFrame steps the emulated hardware forward by exactly one
	// video frame, sampling the current button state once. Calling it
	// before a cartridge is loaded fails with ErrNoCartridge.
	AdvanceFrame() error

	// Reset returns the loaded cartridge to power-on state without
	// discarding the cartridge image. No-op when nothing is loaded.
	Reset()

	// SetButton sets one button's pressed state. Indices outside [0,7]
	// are silently ignored. The change is visible starting from the next
	// AdvanceFrame call, never retroactively.
	SetButton(index int, pressed bool)

	// FrameBuffer returns the pixels of the most recently completed
	// frame. Before any AdvanceFrame it returns a defined all-black
	// baseline. Length is always FrameSpec().BufferSize().
	FrameBuffer() []byte

	// FrameSpec reports the frame dimensions and pixel format. The format
	// may only change across a LoadCartridge call, never between frames.
	FrameSpec() FrameSpec

	// Palette returns the indexed-color lookup table, or nil when the
	// format is not Indexed8. Entry size and count are constant for the
	// lifetime of the loaded cartridge.
	Palette() []byte

	// Close releases any resources held by the core.
	Close()
}

// AudioProvider is an optional capability: cores that synthesize audio
// expose the samples produced by the last AdvanceFrame as interleaved
// stereo 16-bit PCM.
type AudioProvider interface {
	// AudioSamples returns the audio generated by the last frame.
	AudioSamples() []int16
}
