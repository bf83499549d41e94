// Package standalone is the desktop host: an ebiten window that drives
// an emucore.Core at its native frame rate, with keyboard and gamepad
// input, oto audio output and PNG screenshots.
package standalone

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/user-none/nescore/blit"
	"github.com/user-none/nescore/emucore"
	"github.com/user-none/nescore/pacer"
)

// Options configures the player window.
type Options struct {
	Title      string
	Scale      int  // initial window scale factor, minimum 1
	Fullscreen bool // start in fullscreen
}

// Player implements ebiten.Game around a loaded core. The core, the
// pacer and the frame buffers are all touched from ebiten's update
// thread only; the sole cross-thread traffic is audio bytes handed to
// oto through the ring buffer.
type Player struct {
	core emucore.Core

	pacer      *pacer.Pacer
	start      time.Time
	rgba       []byte // blitted copy of the core's most recent frame
	paused     bool
	blitWarned bool
	renderer   *FramebufferRenderer
	player     *AudioPlayer
	shots      *ScreenshotSaver
}

// Run opens the window and plays the loaded core until the window is
// closed. The core must already have a cartridge loaded.
func Run(core emucore.Core, opts Options) error {
	spec := core.FrameSpec()

	scale := opts.Scale
	if scale < 1 {
		scale = 1
	}

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(spec.Width*scale, spec.Height*scale)
	ebiten.SetWindowSizeLimits(spec.Width, spec.Height, -1, -1)
	ebiten.SetFullscreen(opts.Fullscreen)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	p := &Player{
		core:     core,
		rgba:     make([]byte, spec.Width*spec.Height*4),
		renderer: NewFramebufferRenderer(),
		shots:    NewScreenshotSaver(2),
	}
	p.pacer = pacer.New(emucore.FrameInterval, p.stepFrame, p.presentFrame)

	audio, err := NewAudioPlayer(1.0)
	if err != nil {
		log.Printf("audio unavailable, continuing silent: %v", err)
	} else {
		p.player = audio
	}

	p.start = time.Now()
	err = ebiten.RunGame(p)
	p.close()
	return err
}

// stepFrame advances the core one frame and queues its audio. Called by
// the pacer for presented and catch-up frames alike so the audio stream
// stays gapless.
func (p *Player) stepFrame() error {
	if err := p.core.AdvanceFrame(); err != nil {
		return err
	}
	if p.player != nil {
		if ap, ok := p.core.(emucore.AudioProvider); ok {
			p.player.QueueSamples(ap.AudioSamples())
		}
	}
	return nil
}

// presentFrame converts the core's frame to RGBA for Draw. Catch-up
// frames never reach here. A conversion failure is logged once, not
// once per frame.
func (p *Player) presentFrame() {
	err := blit.ToRGBA(p.rgba, p.core.FrameBuffer(), p.core.FrameSpec(), p.core.Palette())
	if err != nil && !p.blitWarned {
		p.blitWarned = true
		log.Printf("frame conversion failed: %v", err)
	}
}

// Update implements ebiten.Game. Ebiten calls it at display rate; the
// pacer decides how many emulated frames that translates to.
func (p *Player) Update() error {
	p.pollButtons()
	p.handleHotkeys()

	if p.paused {
		return nil
	}

	if err := p.pacer.Tick(time.Since(p.start)); err != nil {
		// Stop the loop with the failure surfaced rather than presenting
		// a frozen window.
		return fmt.Errorf("emulation stalled: %w", err)
	}
	return nil
}

// Draw implements ebiten.Game.
func (p *Player) Draw(screen *ebiten.Image) {
	spec := p.core.FrameSpec()
	p.renderer.DrawFramebuffer(screen, p.rgba, spec.Width, spec.Height)
}

// Layout implements ebiten.Game.
func (p *Player) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

// pollButtons samples keyboard and gamepad state into the core.
func (p *Player) pollButtons() {
	mask := PollButtons()
	for i := 0; i < emucore.ButtonCount; i++ {
		p.core.SetButton(i, mask&(1<<uint(i)) != 0)
	}
}

// handleHotkeys processes host-level keys: pause, reset, fullscreen and
// screenshots.
func (p *Player) handleHotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		spec := p.core.FrameSpec()
		if path, err := p.shots.Save(p.rgba, spec.Width, spec.Height); err != nil {
			log.Printf("screenshot failed: %v", err)
		} else {
			log.Printf("screenshot saved: %s", path)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		p.paused = !p.paused
		if p.paused {
			// Stopping the pacer re-anchors timing on resume instead of
			// fast-forwarding through the paused span.
			p.pacer.Stop()
			if p.player != nil {
				p.player.ClearQueue()
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		p.core.Reset()
		p.pacer.Stop()
		if p.player != nil {
			p.player.ClearQueue()
		}
	}
}

func (p *Player) close() {
	p.pacer.Stop()
	if skipped := p.pacer.Skipped(); skipped > 0 {
		log.Printf("dropped %d frame presentations to stay on schedule", skipped)
	}
	if p.player != nil {
		p.player.Close()
	}
	p.core.Close()
}

var _ ebiten.Game = (*Player)(nil)
