// Package js exposes the game timer to JavaScript mission scripts.
package js

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/drake/stardate/timer"
)

const programCacheSize = 64

// Host receives script output.
type Host interface {
	Print(text string)
}

// Engine wraps a goja runtime with the Timer, Game and print globals.
type Engine struct {
	vm   *goja.Runtime
	fs   afero.Fs
	host Host

	sched    *timer.Scheduler
	game     *goja.Object
	programs *lru.Cache[string, *goja.Program]
}

// NewEngine creates an Engine. Scripts are read through fs.
func NewEngine(host Host, sched *timer.Scheduler, fs afero.Fs) *Engine {
	cache, _ := lru.New[string, *goja.Program](programCacheSize)
	return &Engine{
		fs:       fs,
		host:     host,
		sched:    sched,
		programs: cache,
	}
}

// Init creates a fresh runtime. Callbacks owned by the previous runtime
// cancel themselves on their next firing.
func (e *Engine) Init() error {
	vm := goja.New()

	if err := vm.Set("print", e.print); err != nil {
		return err
	}

	game := vm.NewObject()
	if err := game.Set("time", 0); err != nil {
		return err
	}
	if err := vm.Set("Game", game); err != nil {
		return err
	}

	timerObj := vm.NewObject()
	if err := timerObj.Set("callAt", e.callAt); err != nil {
		return err
	}
	if err := timerObj.Set("callEvery", e.callEvery); err != nil {
		return err
	}
	if err := vm.Set("Timer", timerObj); err != nil {
		return err
	}

	e.vm = vm
	e.game = game
	return nil
}

// Close drops the runtime.
func (e *Engine) Close() {
	e.vm = nil
	e.game = nil
}

// SetGameTime pushes the current game time to Game.time. It fails if a
// script has made Game.time read-only, e.g. with Object.freeze(Game).
func (e *Engine) SetGameTime(now float64) error {
	if e.game == nil {
		return nil
	}
	return e.game.Set("time", now)
}

// DoString runs code; name is used in stack traces.
func (e *Engine) DoString(name, code string) error {
	_, err := e.vm.RunScript(name, code)
	return err
}

// DoFile runs a script read through the engine's filesystem.
func (e *Engine) DoFile(path string) error {
	prog, err := e.load(path)
	if err != nil {
		return err
	}
	_, err = e.vm.RunProgram(prog)
	return err
}

func (e *Engine) load(path string) (*goja.Program, error) {
	info, err := e.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	if prog, ok := e.programs.Get(key); ok {
		return prog, nil
	}

	src, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return nil, err
	}
	prog, err := goja.Compile(path, string(src), false)
	if err != nil {
		return nil, err
	}
	e.programs.Add(key, prog)
	return prog, nil
}

// CachedPrograms returns the number of compiled scripts held.
func (e *Engine) CachedPrograms() int {
	return e.programs.Len()
}

func (e *Engine) print(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, v := range call.Arguments {
		parts[i] = v.String()
	}
	e.host.Print(strings.Join(parts, " "))
	return goja.Undefined()
}

// Timer.callAt(time, fn)
func (e *Engine) callAt(call goja.FunctionCall) goja.Value {
	at, fn := e.checkArgs(call, "callAt")
	if err := e.sched.ScheduleOnce(at, e.wrap(fn)); err != nil {
		panic(e.vm.NewGoError(errors.New("Timer.callAt: specified time is in the past")))
	}
	return goja.Undefined()
}

// Timer.callEvery(interval, fn)
func (e *Engine) callEvery(call goja.FunctionCall) goja.Value {
	every, fn := e.checkArgs(call, "callEvery")
	if err := e.sched.ScheduleEvery(every, e.wrap(fn)); err != nil {
		panic(e.vm.NewGoError(errors.New("Timer.callEvery: specified interval must be greater than zero")))
	}
	return goja.Undefined()
}

// checkArgs validates (number, function) and throws a TypeError otherwise.
func (e *Engine) checkArgs(call goja.FunctionCall, method string) (float64, goja.Callable) {
	var n float64
	switch v := call.Argument(0).Export().(type) {
	case int64:
		n = float64(v)
	case float64:
		n = v
	default:
		panic(e.vm.NewTypeError("Timer.%s: argument 1 must be a number", method))
	}
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(e.vm.NewTypeError("Timer.%s: argument 2 must be a function", method))
	}
	return n, fn
}

func (e *Engine) wrap(fn goja.Callable) *callback {
	return &callback{e: e, vm: e.vm, fn: fn}
}

// callback adapts a JS function to timer.Callback.
type callback struct {
	e  *Engine
	vm *goja.Runtime // runtime the function belongs to
	fn goja.Callable
}

// Call invokes the function. Only a boolean true cancels.
func (c *callback) Call() (bool, error) {
	if c.e.vm != c.vm {
		return true, nil
	}
	v, err := c.fn(goja.Undefined())
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	cancel, ok := v.Export().(bool)
	return ok && cancel, nil
}
