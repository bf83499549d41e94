package emucore

import "fmt"

// NES video output dimensions, fixed by the NTSC standard.
const (
	ScreenWidth  = 256
	ScreenHeight = 240
)

// PixelFormat identifies the encoding of a core's frame buffer.
type PixelFormat int

const (
	// FormatRGB24 is 3 bytes per pixel, R G B.
	FormatRGB24 PixelFormat = iota
	// FormatRGBA32 is 4 bytes per pixel, R G B A, straight alpha.
	FormatRGBA32
	// FormatIndexed8 is 1 byte per pixel indexing into the core's palette.
	FormatIndexed8
)

// BytesPerPixel returns the storage size of one pixel in the format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB24:
		return 3
	case FormatRGBA32:
		return 4
	case FormatIndexed8:
		return 1
	default:
		return 0
	}
}

// String returns the display name of the pixel format.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB24:
		return "RGB24"
	case FormatRGBA32:
		return "RGBA32"
	case FormatIndexed8:
		return "INDEXED8"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// FrameSpec describes a core's frame buffer layout. Width and height are
// always 256x240 for NES cores; the format may differ per core and may only
// change immediately after a cartridge load.
type FrameSpec struct {
	Width  int
	Height int
	Format PixelFormat
}

// BufferSize returns the exact byte length a frame buffer must have.
func (s FrameSpec) BufferSize() int {
	return s.Width * s.Height * s.Format.BytesPerPixel()
}
