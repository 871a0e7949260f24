package lua

import (
	glua "github.com/yuin/gopher-lua"
)

// callback adapts a Lua function to timer.Callback.
type callback struct {
	e  *Engine
	L  *glua.LState // VM the function belongs to
	fn *glua.LFunction
}

// Call runs the function under a protected call. Only a Lua true cancels;
// nil, false and every other value keep a repeating timer alive.
func (c *callback) Call() (bool, error) {
	if c.e.L != c.L {
		return true, nil // Belonged to a previous VM
	}
	if err := c.L.CallByParam(glua.P{
		Fn:      c.fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		return false, err
	}
	ret := c.L.Get(-1)
	c.L.Pop(1)
	return ret == glua.LTrue, nil
}

// registerTimerFuncs creates the global Timer object.
// Methods take the object as their first argument (Timer:CallAt(...)).
func (e *Engine) registerTimerFuncs() {
	timerTable := e.L.NewTable()
	e.L.SetGlobal("Timer", timerTable)

	// Timer:CallAt(time, fn): call fn once at absolute game time
	e.L.SetField(timerTable, "CallAt", e.L.NewFunction(func(L *glua.LState) int {
		L.CheckTable(1)
		at := L.CheckNumber(2)
		fn := L.CheckFunction(3)

		if err := e.sched.ScheduleOnce(float64(at), &callback{e: e, L: e.L, fn: fn}); err != nil {
			L.RaiseError("Specified time is in the past")
		}
		return 0
	}))

	// Timer:CallEvery(interval, fn): call fn every interval seconds until it returns true
	e.L.SetField(timerTable, "CallEvery", e.L.NewFunction(func(L *glua.LState) int {
		L.CheckTable(1)
		every := L.CheckNumber(2)
		fn := L.CheckFunction(3)

		if err := e.sched.ScheduleEvery(float64(every), &callback{e: e, L: e.L, fn: fn}); err != nil {
			L.RaiseError("Specified interval must be greater than zero")
		}
		return 0
	}))
}
