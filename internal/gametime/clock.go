// Package gametime tracks the frame clock used by tasks.
package gametime

import (
	"fmt"

	"github.com/samdwyer/corun/internal/token"
)

// Stream selects which clock a duration is measured on.
type Stream uint8

const (
	// Game time is dilated and stops while paused.
	Game Stream = iota
	// Audio time stops while paused but ignores dilation.
	Audio
	// Real time always advances at wall-clock rate.
	Real
	streamCount
)

// String returns the stream name.
func (s Stream) String() string {
	switch s {
	case Game:
		return "game"
	case Audio:
		return "audio"
	case Real:
		return "real"
	default:
		return fmt.Sprintf("stream(%d)", uint8(s))
	}
}

// Clock accumulates per-frame deltas for each stream. Pausing is token
// based: the clock is paused while any pause token is held.
type Clock struct {
	dt       [streamCount]float64
	elapsed  [streamCount]float64
	dilation float64
	frame    uint64

	pauses token.Flags
}

// NewClock returns a clock at time zero with a dilation of 1.
func NewClock() *Clock {
	return &Clock{dilation: 1}
}

// Advance starts a new frame that lasted realDT seconds of wall time.
func (c *Clock) Advance(realDT float64) {
	if realDT < 0 {
		realDT = 0
	}
	c.frame++
	c.dt[Real] = realDT
	if c.pauses.HasTokens() {
		c.dt[Game] = 0
		c.dt[Audio] = 0
	} else {
		c.dt[Game] = realDT * c.dilation
		c.dt[Audio] = realDT
	}
	for s := range c.dt {
		c.elapsed[s] += c.dt[s]
	}
}

// DT returns the delta of the current frame on stream s.
func (c *Clock) DT(s Stream) float64 { return c.dt[s] }

// Time returns the total time accumulated on stream s.
func (c *Clock) Time(s Stream) float64 { return c.elapsed[s] }

// TimeFunc returns a time source on stream s for task.WaitSeconds and
// task.Timeout.
func (c *Clock) TimeFunc(s Stream) func() float64 {
	return func() float64 { return c.elapsed[s] }
}

// Frame returns the number of frames advanced so far.
func (c *Clock) Frame() uint64 { return c.frame }

// Dilation returns the game time scale.
func (c *Clock) Dilation() float64 { return c.dilation }

// SetDilation scales game time. Negative values are clamped to zero.
func (c *Clock) SetDilation(d float64) {
	if d < 0 {
		d = 0
	}
	c.dilation = d
}

// Pause holds the clock paused until the returned token is released.
func (c *Clock) Pause(reason string) *token.Token[struct{}] {
	return c.pauses.TakeFlag(reason)
}

// IsPaused reports whether any pause token is held.
func (c *Clock) IsPaused() bool { return c.pauses.HasTokens() }

// PauseReasons describes the live pause tokens.
func (c *Clock) PauseReasons() string { return c.pauses.DebugString() }
