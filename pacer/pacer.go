// Package pacer keeps emulated game time synchronized to wall-clock time.
// The host's display-refresh callback feeds monotonic timestamps into Tick;
// the pacer decides how many frames the core must advance and which single
// frame gets presented.
package pacer

import (
	"math"
	"time"
)

// DefaultMaxCatchUp bounds the number of catch-up frames advanced for a
// single tick. A host suspended for minutes should not replay minutes of
// game time; beyond the cap the baseline re-anchors.
const DefaultMaxCatchUp = 5

// Pacer drives a step function at a fixed frame interval. It is not safe
// for concurrent use; the single display callback owns it.
type Pacer struct {
	interval   time.Duration
	step       func() error
	present    func()
	maxCatchUp int

	started bool
	last    time.Duration // frame-grid-aligned time of the last paced tick
	skipped uint64
	err     error
}

// New creates a pacer that calls step to advance one frame and present to
// deliver the just-stepped frame. interval is the target frame duration
// (emucore.FrameInterval for NTSC NES). present may be nil for headless
// stepping.
func New(interval time.Duration, step func() error, present func()) *Pacer {
	return &Pacer{
		interval:   interval,
		step:       step,
		present:    present,
		maxCatchUp: DefaultMaxCatchUp,
	}
}

// SetMaxCatchUp overrides the catch-up bound. Values below 0 disable
// catch-up entirely (late ticks advance a single frame).
func (p *Pacer) SetMaxCatchUp(n int) {
	p.maxCatchUp = n
}

// Tick processes one display callback carrying the monotonic timestamp
// now. The first tick after construction or Stop only records the
// baseline; nothing is advanced or presented. Later ticks advance the
// core once per elapsed frame interval: the newest frame is presented,
// earlier ones are catch-up steps that only move emulated time forward.
//
// A step failure latches: the error is returned from this and every
// following Tick until Stop, and nothing further is advanced. The host
// distinguishes this stalled state from normal pacing.
func (p *Pacer) Tick(now time.Duration) error {
	if p.err != nil {
		return p.err
	}

	// Normalize onto the frame grid so jittery callback timestamps do
	// not accumulate drift.
	excess := now % p.interval
	aligned := now - excess

	if !p.started {
		p.started = true
		p.last = aligned
		return nil
	}

	n := int(math.Round(float64(aligned-p.last) / float64(p.interval)))
	if n <= 0 {
		// Callback fired faster than one frame's worth of time.
		return nil
	}
	p.last = aligned

	catchUp := n - 1
	if p.maxCatchUp >= 0 && catchUp > p.maxCatchUp {
		// Re-anchor instead of replaying a long suspension. The frames
		// are still counted as skipped for diagnostics.
		p.skipped += uint64(catchUp - p.maxCatchUp)
		catchUp = p.maxCatchUp
	}

	// Catch-up frames advance state only and are never presented:
	// rendering stale frames out of order is worse than dropping them.
	for i := 0; i < catchUp; i++ {
		if err := p.step(); err != nil {
			p.err = err
			return err
		}
		p.skipped++
	}

	if err := p.step(); err != nil {
		p.err = err
		return err
	}
	if p.present != nil {
		p.present()
	}
	return nil
}

// Stop clears the timing baseline and any latched error. No frame is
// advanced after Stop returns; the next Tick is treated as the initial
// tick, so a pause can never be misread as hundreds of missed frames.
func (p *Pacer) Stop() {
	p.started = false
	p.err = nil
}

// Skipped returns the total number of catch-up (non-presented) frames.
func (p *Pacer) Skipped() uint64 {
	return p.skipped
}

// Err returns the latched step error, if any.
func (p *Pacer) Err() error {
	return p.err
}
