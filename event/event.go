// Package event defines the control operations the session loop accepts.
package event

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCommand is returned by Parse for an unrecognised command word.
var ErrUnknownCommand = errors.New("unknown command")

// Control action constants
const (
	ActionQuit       = "quit"
	ActionFaster     = "faster"
	ActionSlower     = "slower"
	ActionPause      = "pause"
	ActionResume     = "resume"
	ActionToggle     = "toggle" // pause if running, resume if paused
	ActionSetLevel   = "accel"
	ActionLoadScript = "load"
	ActionReload     = "reload"
	ActionStatus     = "status"
	ActionHelp       = "help"
)

// ControlOp contains control operation details
type ControlOp struct {
	Action     string // Use Action* constants
	Level      int    // For ActionSetLevel
	ScriptPath string // For ActionLoadScript
}

// Help lists the commands accepted by Parse.
var Help = []string{
	"faster | slower        step time acceleration up or down",
	"pause | resume | toggle freeze or restore game time",
	"accel <level>          select acceleration level (0 = paused)",
	"load <path>            run a .lua or .js script",
	"reload                 clear timers and reload all scripts",
	"status                 show clock and timer state",
	"quit                   exit",
}

// Parse turns a command line into a ControlOp. Blank input yields ok=false.
func Parse(line string) (op ControlOp, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ControlOp{}, false, nil
	}

	action := strings.ToLower(fields[0])
	args := fields[1:]

	switch action {
	case ActionQuit, "exit", "q":
		return ControlOp{Action: ActionQuit}, true, nil
	case ActionFaster, "+":
		return ControlOp{Action: ActionFaster}, true, nil
	case ActionSlower, "-":
		return ControlOp{Action: ActionSlower}, true, nil
	case ActionPause, ActionResume, ActionToggle, ActionReload, ActionStatus, ActionHelp:
		return ControlOp{Action: action}, true, nil
	case ActionSetLevel:
		if len(args) != 1 {
			return ControlOp{}, false, fmt.Errorf("usage: accel <level>")
		}
		level, err := strconv.Atoi(args[0])
		if err != nil {
			return ControlOp{}, false, fmt.Errorf("accel: %w", err)
		}
		return ControlOp{Action: ActionSetLevel, Level: level}, true, nil
	case ActionLoadScript:
		if len(args) == 0 {
			return ControlOp{}, false, fmt.Errorf("usage: load <path>")
		}
		// Rest of the line verbatim so paths keep inner whitespace
		path := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		return ControlOp{Action: ActionLoadScript, ScriptPath: path}, true, nil
	}

	return ControlOp{}, false, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
}
