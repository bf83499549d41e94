package standalone

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"
)

// ScreenshotSaver writes PNG captures of the current frame to the
// working directory. Frames are upscaled by an integer factor with
// nearest-neighbor sampling so pixels stay crisp.
type ScreenshotSaver struct {
	scale int
	dir   string
}

// NewScreenshotSaver creates a saver with the given integer upscale
// factor (minimum 1), writing into the current working directory.
func NewScreenshotSaver(scale int) *ScreenshotSaver {
	if scale < 1 {
		scale = 1
	}
	return &ScreenshotSaver{scale: scale, dir: "."}
}

// Save writes the RGBA frame as a timestamped PNG and returns the path.
func (s *ScreenshotSaver) Save(rgba []byte, width, height int) (string, error) {
	if len(rgba) < width*height*4 {
		return "", fmt.Errorf("frame buffer too small for %dx%d capture", width, height)
	}

	src := &image.RGBA{
		Pix:    rgba[:width*height*4],
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	out := image.Image(src)
	if s.scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, width*s.scale, height*s.scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		out = dst
	}

	name := fmt.Sprintf("screenshot-%d.png", time.Now().Unix())
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, out); err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return path, nil
}
