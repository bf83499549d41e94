package emucore

import "errors"

// Shared failure modes for Core implementations. Load-time errors are
// recoverable: the caller may try another cartridge or abort gracefully.
var (
	// ErrNotInitialized is returned when an operation requires Init first.
	ErrNotInitialized = errors.New("core not initialized")

	// ErrNoCartridge is returned by AdvanceFrame before a cartridge load.
	ErrNoCartridge = errors.New("no cartridge loaded")

	// ErrUnsupportedMapper is returned by LoadCartridge when the image is
	// valid iNES but uses a mapper the core does not implement.
	ErrUnsupportedMapper = errors.New("unsupported mapper")

	// ErrInvalidCartridge is returned by LoadCartridge when the image
	// fails header parsing or size validation.
	ErrInvalidCartridge = errors.New("invalid cartridge")
)
