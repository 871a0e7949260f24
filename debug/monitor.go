// Package debug provides runtime monitoring and diagnostics.
package debug

import (
	"context"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/drake/stardate/session"
)

// Enabled returns true if debug mode is active (STARDATE_DEBUG=1).
func Enabled() bool {
	return os.Getenv("STARDATE_DEBUG") == "1"
}

// StatsSource is implemented by *session.Session.
type StatsSource interface {
	Stats() session.Stats
}

// Monitor periodically logs session statistics when debug mode is enabled.
type Monitor struct {
	source   StatsSource
	interval time.Duration
	ctx      context.Context
	logger   *log.Logger
}

// NewMonitor creates a new monitor for the given session.
// If debug mode is not enabled, returns nil.
func NewMonitor(ctx context.Context, s StatsSource, w io.Writer) *Monitor {
	if !Enabled() {
		return nil
	}

	return &Monitor{
		source:   s,
		interval: 5 * time.Second,
		ctx:      ctx,
		logger:   log.New(w, "", log.LstdFlags),
	}
}

// Start begins the monitoring loop in a goroutine.
func (m *Monitor) Start() {
	if m == nil {
		return
	}
	go m.run()
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Println("[DEBUG] Monitor started")

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Println("[DEBUG] Monitor stopped")
			return
		case <-ticker.C:
			m.logStats()
		}
	}
}

func (m *Monitor) logStats() {
	s := m.source.Stats()

	m.logger.Printf("[DEBUG] steps=%d game=%.1f rate=%gx goroutines=%d | timers: pending=%d fired=%d failed=%d canceled=%d | out: dropped=%d | lua: stack=%d chunks=%d | js: programs=%d",
		s.Steps,
		s.GameTime,
		s.Rate,
		runtime.NumGoroutine(),
		s.Timer.Pending,
		s.Timer.Fired,
		s.Timer.Failed,
		s.Timer.Canceled,
		s.OutputDropped,
		s.LuaStack,
		s.LuaChunks,
		s.JSPrograms,
	)
}
