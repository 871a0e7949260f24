package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/drake/stardate/gameclock"
)

// Status is a snapshot of the simulation pushed by the session after each step.
type Status struct {
	GameTime float64
	Date     time.Time
	Rate     float64
	Paused   bool

	Pending int
	NextDue float64
	HasNext bool
	Fired   uint64
	Failed  uint64
}

// RateLabel renders the acceleration, e.g. "1,000x" or "PAUSED".
func (s Status) RateLabel() string {
	if s.Paused {
		return "PAUSED"
	}
	return humanize.Comma(int64(s.Rate)) + "x"
}

// NextLabel describes when the next timer fires in game time.
func (s Status) NextLabel() string {
	if !s.HasNext {
		return "none"
	}
	due := s.Date.Add(gameclock.Duration(s.NextDue - s.GameTime))
	return humanize.RelTime(s.Date, due, "from now", "ago")
}

// FormatStatus renders a one-line summary for the console.
func FormatStatus(s Status) string {
	return fmt.Sprintf("%s | t=%ss | %s | timers: %s pending, next %s | fired %s, failed %s",
		s.Date.Format("2006-01-02 15:04:05"),
		humanize.Comma(int64(s.GameTime)),
		s.RateLabel(),
		formatCount(s.Pending),
		s.NextLabel(),
		humanize.Comma(int64(s.Fired)),
		humanize.Comma(int64(s.Failed)),
	)
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}
