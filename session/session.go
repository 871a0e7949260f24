package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/drake/stardate/config"
	"github.com/drake/stardate/event"
	"github.com/drake/stardate/gameclock"
	"github.com/drake/stardate/internal/buffer"
	"github.com/drake/stardate/js"
	"github.com/drake/stardate/lua"
	"github.com/drake/stardate/timer"
	"github.com/drake/stardate/ui"
)

// ErrUnknownScript is returned for a script whose extension is not .lua or .js.
var ErrUnknownScript = errors.New("unknown script type")

// Ensure Session implements the engine hosts at compile time
var (
	_ lua.Host = (*Session)(nil)
	_ js.Host  = (*Session)(nil)
)

// UI is the presentation layer driven by the session.
type UI interface {
	Run() error
	Quit()
	Print(text string)
	SetStatus(st ui.Status)
	Input() <-chan string
}

// Options holds dependencies that are not user configuration.
type Options struct {
	FS     afero.Fs    // Script filesystem; defaults to the OS filesystem
	Logger *log.Logger // Diagnostics; nil discards
}

// Stats is a snapshot for the debug monitor. OutputDropped counts script
// output lines discarded when the UI falls behind: the output queue keeps
// the newest lines and drops the oldest once full.
type Stats struct {
	Steps    uint64
	GameTime float64
	Rate     float64
	Timer    timer.Stats

	OutputDropped uint64
	LuaStack      int
	LuaChunks     int
	JSPrograms    int
}

// Session owns the game clock, the scheduler and the script engines, and
// runs them all on a single goroutine.
type Session struct {
	// Components
	ui    UI
	clock *gameclock.Clock
	sched *timer.Scheduler
	lua   *lua.Engine
	js    *js.Engine

	// Script output, decoupled from the UI
	outIn   chan<- string
	outOut  <-chan string
	dropped atomic.Uint64

	config config.Config
	fs     afero.Fs
	logger *log.Logger

	steps uint64

	statsMu sync.Mutex
	stats   Stats

	cancel context.CancelFunc
}

// New creates a new Session. It is passive - no goroutines start here
// except the output buffer.
func New(u UI, cfg config.Config, opts Options) *Session {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = config.Defaults().TickRate
	}

	s := &Session{
		ui:     u,
		clock:  gameclock.New(cfg.StartTime),
		config: cfg,
		fs:     opts.FS,
		logger: opts.Logger,
	}
	if err := s.clock.SetLevel(cfg.Level); err != nil {
		s.logger.Printf("[SESSION] level %d: %v, using 1x", cfg.Level, err)
	}

	s.outIn, s.outOut = buffer.Unbounded[string](100, 50000, func(string) {
		s.dropped.Add(1)
	})

	s.sched = timer.NewScheduler(s.clock, s.logger)
	s.sched.SetErrorHandler(func(err *timer.CallbackError) {
		s.printError("timer: " + err.Error())
	})
	s.lua = lua.NewEngine(s, s.sched, s.fs)
	s.js = js.NewEngine(s, s.sched, s.fs)

	return s
}

// Run boots the scripts, starts the simulation loop and blocks on the UI.
// It returns when the UI exits or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	if err := s.boot(); err != nil {
		s.printError(fmt.Sprintf("[System] Boot Error: %v", err))
	}
	s.publish()

	rendererDone := make(chan struct{})
	go func() {
		defer close(rendererDone)
		for line := range s.outOut {
			s.ui.Print(line)
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		s.loop(ctx)
	}()

	go func() {
		<-ctx.Done()
		s.ui.Quit()
	}()

	err := s.ui.Run()

	// Ensure shutdown of the loop before touching the engines
	cancel()
	<-loopDone
	close(s.outIn)
	<-rendererDone
	s.lua.Close()
	s.js.Close()
	return err
}

// loop is the simulation loop. It is the only goroutine touching the
// clock, scheduler and engines once Run has started it.
func (s *Session) loop(ctx context.Context) {
	ticker := time.NewTicker(s.config.TickRate)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Step(now.Sub(last))
			last = now
		case line := <-s.ui.Input():
			s.HandleCommand(line)
		}
	}
}

// Step advances the game clock by real time and fires due timers.
func (s *Session) Step(real time.Duration) {
	now := s.clock.Advance(real)
	s.setGameTime(now)
	s.sched.Tick(now)
	s.steps++
	s.publish()
}

// setGameTime pushes game time into both engines.
func (s *Session) setGameTime(now float64) {
	s.lua.SetGameTime(now)
	if err := s.js.SetGameTime(now); err != nil {
		s.logger.Printf("[JS] Game.time not updated: %v", err)
	}
}

// boot clears every timer and loads init scripts and CLI scripts into fresh
// engines. Load failures are collected rather than stopping at the first.
func (s *Session) boot() error {
	s.sched.Clear()
	if err := s.lua.Init(); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	if err := s.js.Init(); err != nil {
		return fmt.Errorf("js: %w", err)
	}
	s.setGameTime(s.clock.Now())

	var result *multierror.Error

	for _, path := range config.InitScripts(s.config.Dir) {
		if ok, _ := afero.Exists(s.fs, path); !ok {
			continue
		}
		if err := s.LoadScript(path); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for _, path := range s.config.Scripts {
		if err := s.LoadScript(path); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// LoadScript runs a script in the engine matching its extension.
func (s *Session) LoadScript(path string) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		err = s.lua.DoFile(path)
	case ".js":
		err = s.js.DoFile(path)
	default:
		err = ErrUnknownScript
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// HandleCommand parses and applies a command line.
func (s *Session) HandleCommand(line string) {
	op, ok, err := event.Parse(line)
	if err != nil {
		s.printError(err.Error())
		return
	}
	if ok {
		s.handleControl(op)
	}
}

// handleControl processes system control events.
func (s *Session) handleControl(ctrl event.ControlOp) {
	switch ctrl.Action {
	case event.ActionQuit:
		if s.cancel != nil {
			s.cancel()
		}
	case event.ActionFaster:
		s.clock.Faster()
	case event.ActionSlower:
		s.clock.Slower()
	case event.ActionPause:
		s.clock.Pause()
	case event.ActionResume:
		s.clock.Resume()
	case event.ActionToggle:
		if s.clock.Paused() {
			s.clock.Resume()
		} else {
			s.clock.Pause()
		}
	case event.ActionSetLevel:
		if err := s.clock.SetLevel(ctrl.Level); err != nil {
			s.printError(fmt.Sprintf("accel %d: %v", ctrl.Level, err))
			return
		}
	case event.ActionLoadScript:
		if err := s.LoadScript(ctrl.ScriptPath); err != nil {
			s.printError("Load Failed: " + err.Error())
			return
		}
		s.Print("Loaded " + ctrl.ScriptPath)
	case event.ActionReload:
		if err := s.boot(); err != nil {
			s.printError("Reload Failed: " + err.Error())
		} else {
			s.Print("Reloaded")
		}
	case event.ActionStatus:
		s.Print(ui.FormatStatus(s.status()))
	case event.ActionHelp:
		for _, line := range event.Help {
			s.Print(line)
		}
	}
	s.publish()
}

// --- Host Implementation ---

// Print queues script output for the UI. Never blocks the simulation.
func (s *Session) Print(text string) {
	s.outIn <- text
}

func (s *Session) printError(text string) {
	s.Print("\033[31m" + text + "\033[0m")
}

// --- Status ---

func (s *Session) status() ui.Status {
	next, hasNext := s.sched.NextDue()
	st := s.sched.Stats()
	return ui.Status{
		GameTime: s.clock.Now(),
		Date:     s.clock.Date(),
		Rate:     s.clock.Rate(),
		Paused:   s.clock.Paused(),
		Pending:  st.Pending,
		NextDue:  next,
		HasNext:  hasNext,
		Fired:    st.Fired,
		Failed:   st.Failed,
	}
}

// publish pushes status to the UI and refreshes the monitor snapshot.
func (s *Session) publish() {
	s.ui.SetStatus(s.status())

	luaStack, luaChunks := s.lua.Stats()
	snapshot := Stats{
		Steps:         s.steps,
		GameTime:      s.clock.Now(),
		Rate:          s.clock.Rate(),
		Timer:         s.sched.Stats(),
		OutputDropped: s.dropped.Load(),
		LuaStack:      luaStack,
		LuaChunks:     luaChunks,
		JSPrograms:    s.js.CachedPrograms(),
	}

	s.statsMu.Lock()
	s.stats = snapshot
	s.statsMu.Unlock()
}

// Stats returns the snapshot taken after the latest step. Safe from any goroutine.
func (s *Session) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}
