package main

import "time"

// player is the bounded-cursor state machine every visualizer shares: an
// integer cursor with inclusive bounds, a wrap target for auto-advance, and
// a playing flag. All seven panels previously carried their own copy of this
// logic; it lives here once and is parameterized per concept.
//
// player is not goroutine-safe; the owning session serializes access.
type player struct {
	Cursor   int
	Min      int
	Max      int
	Wrap     int // restart cursor after advancing past Max (often Min, not always)
	Playing  bool
	Interval time.Duration
}

const (
	minTickInterval = 60 * time.Millisecond
	maxTickInterval = 2000 * time.Millisecond
)

func newPlayer(min, max, wrap int, interval time.Duration) *player {
	p := &player{Min: min, Max: max, Wrap: wrap, Interval: interval}
	p.Wrap = clampInt(p.Wrap, min, max)
	p.Cursor = p.Min
	p.clampInterval()
	return p
}

func (p *player) clampInterval() {
	if p.Interval < minTickInterval {
		p.Interval = minTickInterval
	}
	if p.Interval > maxTickInterval {
		p.Interval = maxTickInterval
	}
}

// Advance moves the cursor one step under auto-play, wrapping to Wrap past
// the upper bound. It never leaves [Min, Max].
func (p *player) Advance() {
	if p.Cursor >= p.Max {
		p.Cursor = p.Wrap
		return
	}
	p.Cursor++
}

func (p *player) Play()  { p.Playing = true }
func (p *player) Pause() { p.Playing = false }

// Manual transport controls. Each one pauses playback so the animation
// never fights an explicit user positioning.

func (p *player) StepForward() {
	p.Playing = false
	p.Cursor = clampInt(p.Cursor+1, p.Min, p.Max)
}

func (p *player) StepBack() {
	p.Playing = false
	p.Cursor = clampInt(p.Cursor-1, p.Min, p.Max)
}

func (p *player) Scrub(to int) {
	p.Playing = false
	p.Cursor = clampInt(to, p.Min, p.Max)
}

func (p *player) Reset() {
	p.Playing = false
	p.Cursor = p.Min
}

// SetSpeed updates the tick interval, clamped to the supported range.
func (p *player) SetSpeed(interval time.Duration) {
	p.Interval = interval
	p.clampInterval()
}

// Reclamp adjusts the bounds (e.g. a parameter change shrank the sequence)
// and pulls the cursor and wrap target back into range. The player is reset,
// not destroyed: playing state is left untouched.
func (p *player) Reclamp(min, max, wrap int) {
	p.Min = min
	p.Max = max
	p.Wrap = clampInt(wrap, min, max)
	p.Cursor = clampInt(p.Cursor, min, max)
}
