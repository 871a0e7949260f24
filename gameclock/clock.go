// Package gameclock provides the simulated game clock.
//
// Game time advances with real time multiplied by the current acceleration
// rate, so at high acceleration a single step can cover hours of game time.
package gameclock

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidLevel is returned for an acceleration level outside Levels.
var ErrInvalidLevel = errors.New("invalid acceleration level")

// Levels are the available acceleration rates. Level 0 is paused.
var Levels = []float64{0, 1, 10, 100, 1000, 10000}

// Epoch is the calendar date of game time zero.
var Epoch = time.Date(3200, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock tracks game time in seconds. It is owned by the simulation goroutine.
type Clock struct {
	now    float64
	level  int
	resume int // level restored by Resume
}

// New creates a clock at start seconds running at 1x.
func New(start float64) *Clock {
	return &Clock{now: start, level: 1, resume: 1}
}

// Now returns the current game time in seconds.
func (c *Clock) Now() float64 { return c.now }

// Advance moves game time forward by real scaled by the current rate.
// It returns the new game time.
func (c *Clock) Advance(real time.Duration) float64 {
	if real > 0 {
		c.now += real.Seconds() * c.Rate()
	}
	return c.now
}

// Rate returns game seconds per real second.
func (c *Clock) Rate() float64 { return Levels[c.level] }

// Level returns the current acceleration level index.
func (c *Clock) Level() int { return c.level }

// Paused reports whether game time is frozen.
func (c *Clock) Paused() bool { return c.level == 0 }

// SetLevel selects an acceleration level.
func (c *Clock) SetLevel(level int) error {
	if level < 0 || level >= len(Levels) {
		return ErrInvalidLevel
	}
	c.level = level
	if level > 0 {
		c.resume = level
	}
	return nil
}

// Faster steps up one acceleration level, saturating at the top.
func (c *Clock) Faster() {
	if c.level < len(Levels)-1 {
		c.SetLevel(c.level + 1)
	}
}

// Slower steps down one acceleration level without pausing.
func (c *Clock) Slower() {
	if c.level > 1 {
		c.SetLevel(c.level - 1)
	}
}

// Pause freezes game time.
func (c *Clock) Pause() { c.level = 0 }

// Resume restores the level in use before Pause.
func (c *Clock) Resume() {
	if c.level == 0 {
		c.level = c.resume
	}
}

const secondsPerDay = 86400

// Date returns the game time as a calendar date.
// Whole days are added separately so dates past the range of
// time.Duration (about 292 years) stay correct.
func (c *Clock) Date() time.Time {
	days := math.Floor(c.now / secondsPerDay)
	return Epoch.AddDate(0, 0, int(days)).Add(Duration(c.now - days*secondsPerDay))
}

// Duration converts game seconds to a time.Duration, saturating at the
// bounds of time.Duration instead of overflowing.
func Duration(seconds float64) time.Duration {
	ns := seconds * float64(time.Second)
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}
