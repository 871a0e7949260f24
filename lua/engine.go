package lua

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	glua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/drake/stardate/timer"
)

const protoCacheSize = 64

// Engine wraps gopher-lua and exposes the game timer to mission scripts.
// It is a pure mechanism: it runs Lua code and registers the API.
// It does NOT decide which scripts to load or when the scheduler ticks.
type Engine struct {
	L  *glua.LState
	fs afero.Fs

	// Compiled chunks survive Init so reloads skip parsing unchanged files.
	protos *lru.Cache[string, *glua.FunctionProto]

	host  Host
	sched *timer.Scheduler

	// Cached table reference, updated every step
	gameTable *glua.LTable
}

// NewEngine creates an Engine. Scripts are read through fs.
func NewEngine(host Host, sched *timer.Scheduler, fs afero.Fs) *Engine {
	cache, _ := lru.New[string, *glua.FunctionProto](protoCacheSize)
	return &Engine{
		fs:     fs,
		protos: cache,
		host:   host,
		sched:  sched,
	}
}

// --- Lifecycle ---

// Init initializes (or re-initializes) the Lua VM with fresh state.
// Callbacks scheduled by a previous VM become inert; the caller is expected
// to clear the scheduler when reloading.
func (e *Engine) Init() error {
	if e.L != nil {
		e.L.Close()
	}

	e.L = glua.NewState()

	e.registerCoreFuncs()
	e.registerGameTable()
	e.registerTimerFuncs()

	return nil
}

// Close cleans up the Lua state.
func (e *Engine) Close() {
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
	e.gameTable = nil
}

// --- Execution Primitives ---

// DoString executes a raw string of Lua code.
// The name parameter is used for stack traces.
func (e *Engine) DoString(name, code string) error {
	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	e.L.Push(fn)
	return e.L.PCall(0, 0, nil)
}

// DoFile executes a Lua file read through the engine's filesystem.
// It temporarily adjusts package.path to allow local requires.
func (e *Engine) DoFile(path string) error {
	path = expandTilde(path)

	proto, err := e.load(path)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	// Temporarily prepend script's directory to package.path
	pkg := e.L.GetGlobal("package").(*glua.LTable)
	oldPath := e.L.GetField(pkg, "path").String()
	e.L.SetField(pkg, "path", glua.LString(dir+"/?.lua;"+oldPath))

	e.L.Push(e.L.NewFunctionFromProto(proto))
	err = e.L.PCall(0, 0, nil)

	// Restore original path
	e.L.SetField(pkg, "path", glua.LString(oldPath))

	return err
}

// load returns the compiled chunk for path, compiling on a cache miss.
// The key includes size and mtime so edited files are recompiled.
func (e *Engine) load(path string) (*glua.FunctionProto, error) {
	info, err := e.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	if proto, ok := e.protos.Get(key); ok {
		return proto, nil
	}

	src, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return nil, err
	}
	chunk, err := parse.Parse(bytes.NewReader(src), path)
	if err != nil {
		return nil, err
	}
	proto, err := glua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}
	e.protos.Add(key, proto)
	return proto, nil
}

// Stats reports VM and cache sizes for the debug monitor.
func (e *Engine) Stats() (stackSize, cachedChunks int) {
	if e.L != nil {
		stackSize = e.L.GetTop()
	}
	return stackSize, e.protos.Len()
}

// expandTilde expands ~ to home directory.
func expandTilde(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
