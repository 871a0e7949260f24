package gameclock

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestAdvanceScalesByRate(t *testing.T) {
	tests := []struct {
		name  string
		level int
		real  time.Duration
		want  float64
	}{
		{"paused", 0, time.Second, 0},
		{"realtime", 1, 500 * time.Millisecond, 0.5},
		{"10x", 2, time.Second, 10},
		{"10000x", 5, 2 * time.Second, 20000},
		{"negative ignored", 3, -time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(0)
			if err := c.SetLevel(tt.level); err != nil {
				t.Fatal(err)
			}
			if got := c.Advance(tt.real); got != tt.want {
				t.Errorf("Advance(%v) at level %d = %v, want %v", tt.real, tt.level, got, tt.want)
			}
		})
	}
}

func TestSetLevelRejectsOutOfRange(t *testing.T) {
	c := New(0)
	for _, level := range []int{-1, len(Levels)} {
		if err := c.SetLevel(level); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("SetLevel(%d): expected ErrInvalidLevel, got %v", level, err)
		}
	}
	if c.Level() != 1 {
		t.Errorf("level changed after rejected SetLevel: %d", c.Level())
	}
}

func TestFasterSlowerSaturate(t *testing.T) {
	c := New(0)

	for i := 0; i < 10; i++ {
		c.Faster()
	}
	if c.Level() != len(Levels)-1 {
		t.Errorf("Faster should saturate at top level, got %d", c.Level())
	}

	for i := 0; i < 10; i++ {
		c.Slower()
	}
	if c.Level() != 1 || c.Paused() {
		t.Errorf("Slower should stop at 1x, got level %d", c.Level())
	}
}

func TestPauseResumeRestoresLevel(t *testing.T) {
	c := New(100)
	c.SetLevel(3)
	c.Pause()

	if !c.Paused() {
		t.Fatal("expected paused")
	}
	if got := c.Advance(time.Hour); got != 100 {
		t.Fatalf("time moved while paused: %v", got)
	}

	c.Resume()
	if c.Level() != 3 {
		t.Fatalf("expected resume to level 3, got %d", c.Level())
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		now  float64
		want time.Time
	}{
		{"epoch", 0, Epoch},
		{"one day", 86400, time.Date(3200, time.January, 2, 0, 0, 0, 0, time.UTC)},
		{"fractional", 90.5, time.Date(3200, time.January, 1, 0, 1, 30, 500000000, time.UTC)},
		{"past duration range", 1e10, time.Date(3516, time.November, 20, 17, 46, 40, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.now).Date(); !got.Equal(tt.want) {
				t.Errorf("Date() at %v = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestDateMonotonicPastDurationRange(t *testing.T) {
	prev := New(9e9).Date()
	for _, now := range []float64{1e10, 3.2e10, 1e12} {
		got := New(now).Date()
		if !got.After(prev) {
			t.Fatalf("Date() at %v = %v, not after %v", now, got, prev)
		}
		prev = got
	}
}

func TestDurationSaturates(t *testing.T) {
	tests := []struct {
		seconds float64
		want    time.Duration
	}{
		{1.5, 1500 * time.Millisecond},
		{-2, -2 * time.Second},
		{1e10, time.Duration(math.MaxInt64)},
		{math.Inf(1), time.Duration(math.MaxInt64)},
		{-1e10, time.Duration(math.MinInt64)},
	}
	for _, tt := range tests {
		if got := Duration(tt.seconds); got != tt.want {
			t.Errorf("Duration(%v) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}
