package lua

import glua "github.com/yuin/gopher-lua"

// registerGameTable creates the Game table.
// This table is read-only from Lua's perspective - Go pushes updates.
func (e *Engine) registerGameTable() {
	e.gameTable = e.L.NewTable()
	e.L.SetGlobal("Game", e.gameTable)
	e.L.SetField(e.gameTable, "time", glua.LNumber(0))
}

// SetGameTime pushes the current game time to Game.time.
// Called by the session before every Tick.
func (e *Engine) SetGameTime(now float64) {
	if e.L == nil || e.gameTable == nil {
		return
	}
	e.L.SetField(e.gameTable, "time", glua.LNumber(now))
}
