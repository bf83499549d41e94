// Package blit converts core frame buffers into canonical RGBA8 pixels:
// top-left origin, row-major, straight alpha. This is the single
// validation gate between a core and the presentation surface.
package blit

import (
	"errors"
	"fmt"
	"image"

	"github.com/user-none/nescore/emucore"
)

var (
	// ErrMissingPalette is returned for an Indexed8 frame with no
	// palette. Hosts should report this once, not once per frame.
	ErrMissingPalette = errors.New("indexed frame without palette")

	// ErrBufferSizeMismatch is returned when the frame buffer length
	// does not match the declared format exactly.
	ErrBufferSizeMismatch = errors.New("frame buffer size mismatch")
)

// ToRGBA converts src (described by spec, with palette for Indexed8) into
// dst as RGBA8. dst must be exactly width*height*4 bytes.
func ToRGBA(dst, src []byte, spec emucore.FrameSpec, palette []byte) error {
	if want := spec.BufferSize(); len(src) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %s %dx%d",
			ErrBufferSizeMismatch, len(src), want, spec.Format, spec.Width, spec.Height)
	}
	if want := spec.Width * spec.Height * 4; len(dst) != want {
		return fmt.Errorf("%w: destination is %d bytes, want %d",
			ErrBufferSizeMismatch, len(dst), want)
	}

	switch spec.Format {
	case emucore.FormatRGBA32:
		copy(dst, src)

	case emucore.FormatRGB24:
		for si, di := 0, 0; si < len(src); si, di = si+3, di+4 {
			dst[di+0] = src[si+0]
			dst[di+1] = src[si+1]
			dst[di+2] = src[si+2]
			dst[di+3] = 0xFF
		}

	case emucore.FormatIndexed8:
		if len(palette) == 0 {
			return ErrMissingPalette
		}
		return expandIndexed(dst, src, palette)

	default:
		return fmt.Errorf("%w: unknown format %s", ErrBufferSizeMismatch, spec.Format)
	}

	return nil
}

// expandIndexed resolves each index byte through the palette. Palettes
// are 64 or 256 entries of 3 (RGB) or 4 (RGBA) bytes; a total length of
// exactly 256*4 selects 4-byte entries, anything else is read as 3-byte.
// Indexes are reduced modulo the entry count so a short palette can never
// cause an out-of-range read.
func expandIndexed(dst, src, palette []byte) error {
	entrySize := 3
	if len(palette) == 256*4 {
		entrySize = 4
	}
	entries := len(palette) / entrySize
	if entries == 0 {
		return ErrMissingPalette
	}

	for si, di := 0, 0; si < len(src); si, di = si+1, di+4 {
		pi := (int(src[si]) % entries) * entrySize
		dst[di+0] = palette[pi+0]
		dst[di+1] = palette[pi+1]
		dst[di+2] = palette[pi+2]
		if entrySize == 4 {
			dst[di+3] = palette[pi+3]
		} else {
			dst[di+3] = 0xFF
		}
	}
	return nil
}

// Convert is ToRGBA with an allocated destination.
func Convert(src []byte, spec emucore.FrameSpec, palette []byte) ([]byte, error) {
	dst := make([]byte, spec.Width*spec.Height*4)
	if err := ToRGBA(dst, src, spec, palette); err != nil {
		return nil, err
	}
	return dst, nil
}

// Image converts a frame into a standard image.RGBA, for PNG encoding and
// other image pipeline uses.
func Image(src []byte, spec emucore.FrameSpec, palette []byte) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	if err := ToRGBA(img.Pix, src, spec, palette); err != nil {
		return nil, err
	}
	return img, nil
}
