package lua

// Host provides the bridge between Engine and the rest of the system.
// This abstraction decouples Engine from the session and UI,
// making it testable without full infrastructure.
type Host interface {
	// Print receives script output (the Lua print function).
	Print(text string)
}
