package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlayerAdvanceWraps(t *testing.T) {
	p := newPlayer(2, 10, 2, 500*time.Millisecond)
	p.Play()

	p.Cursor = 10
	p.Advance()
	assert.Equal(t, 2, p.Cursor, "advancing past the upper bound must wrap to the restart value")
	assert.True(t, p.Playing, "auto-advance must not pause playback")

	// A full sweep never leaves the bounds.
	for i := 0; i < 50; i++ {
		p.Advance()
		assert.GreaterOrEqual(t, p.Cursor, p.Min)
		assert.LessOrEqual(t, p.Cursor, p.Max)
	}
}

func TestPlayerManualControlsPause(t *testing.T) {
	cases := []struct {
		name string
		op   func(p *player)
	}{
		{"step", func(p *player) { p.StepForward() }},
		{"step_back", func(p *player) { p.StepBack() }},
		{"scrub", func(p *player) { p.Scrub(4) }},
		{"reset", func(p *player) { p.Reset() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPlayer(0, 9, 0, 200*time.Millisecond)
			p.Play()
			tc.op(p)
			assert.False(t, p.Playing, "manual %s must pause playback", tc.name)
		})
	}
}

func TestPlayerStepClampsAtBounds(t *testing.T) {
	p := newPlayer(0, 3, 0, 200*time.Millisecond)

	p.StepBack()
	assert.Equal(t, 0, p.Cursor, "stepping back at the lower bound stays put")

	p.Scrub(3)
	p.StepForward()
	assert.Equal(t, 3, p.Cursor, "manual stepping clamps instead of wrapping")

	p.Scrub(99)
	assert.Equal(t, 3, p.Cursor)
	p.Scrub(-5)
	assert.Equal(t, 0, p.Cursor)
}

func TestPlayerReclampPullsCursorIntoRange(t *testing.T) {
	p := newPlayer(0, 30, 0, 200*time.Millisecond)
	p.Play()
	p.Cursor = 25

	p.Reclamp(0, 10, 0)
	assert.Equal(t, 10, p.Cursor, "shrinking the bounds re-clamps the cursor")
	assert.True(t, p.Playing, "a bounds change is not a manual interaction")
}

func TestPlayerIntervalClamped(t *testing.T) {
	p := newPlayer(0, 5, 0, time.Millisecond)
	assert.Equal(t, minTickInterval, p.Interval)

	p.SetSpeed(time.Hour)
	assert.Equal(t, maxTickInterval, p.Interval)

	p.SetSpeed(300 * time.Millisecond)
	assert.Equal(t, 300*time.Millisecond, p.Interval)
}

func TestPlayerWrapOutsideBoundsIsClamped(t *testing.T) {
	p := newPlayer(0, 5, 42, 200*time.Millisecond)
	p.Cursor = 5
	p.Advance()
	assert.Equal(t, 5, p.Cursor, "wrap target is clamped into the bounds")
}
