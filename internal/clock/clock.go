// Package clock keeps the per-player countdown of a timed game.
package clock

import (
	"fmt"
	"time"

	"github.com/hailam/pocketchess/internal/board"
)

// Clock holds the remaining time of both players. A Clock created with a
// zero length is untimed and never flags.
//
// Clock is not safe for concurrent use; its owner serializes access.
type Clock struct {
	length    time.Duration
	remaining [2]time.Duration
}

// New creates a clock giving each player length. Zero means untimed.
func New(length time.Duration) *Clock {
	if length < 0 {
		length = 0
	}
	return &Clock{
		length:    length,
		remaining: [2]time.Duration{length, length},
	}
}

// Untimed reports whether the clock never runs out.
func (c *Clock) Untimed() bool {
	return c.length == 0
}

// Length returns the time each player started with.
func (c *Clock) Length() time.Duration {
	return c.length
}

// Remaining returns the time left for color.
func (c *Clock) Remaining(color board.Color) time.Duration {
	if color >= board.NoColor {
		return 0
	}
	return c.remaining[color]
}

// Set restores the time left for color, e.g. when resuming a saved game.
func (c *Clock) Set(color board.Color, d time.Duration) {
	if c.Untimed() || color >= board.NoColor {
		return
	}
	c.remaining[color] = max(0, min(d, c.length))
}

// Tick charges d to color and reports whether color has run out of time.
// Remaining time never goes below zero.
func (c *Clock) Tick(color board.Color, d time.Duration) bool {
	if c.Untimed() || color >= board.NoColor || d <= 0 {
		return c.Flagged(color)
	}
	c.remaining[color] = max(0, c.remaining[color]-d)
	return c.remaining[color] == 0
}

// Flagged reports whether color has no time left.
func (c *Clock) Flagged(color board.Color) bool {
	return !c.Untimed() && color < board.NoColor && c.remaining[color] == 0
}

// Format renders a duration as m:ss, or "--:--" for an untimed clock.
func (c *Clock) Format(color board.Color) string {
	if c.Untimed() {
		return "--:--"
	}
	return FormatDuration(c.Remaining(color))
}

// FormatDuration renders d as m:ss, rounding partial seconds up so that a
// player is never shown 0:00 while time remains.
func FormatDuration(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
