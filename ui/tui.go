package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI implements the session UI using Bubble Tea.
// It bridges the session's push-based calls with Bubble Tea's
// model/update/view event loop.
type TUI struct {
	program   *tea.Program
	inputChan chan string

	// Messages queued before the program starts
	ready        chan struct{}
	readyOnce    sync.Once
	pendingMsgs  []tea.Msg
	pendingMsgMu sync.Mutex
}

// NewTUI creates a new Bubble Tea-based UI.
func NewTUI() *TUI {
	inputChan := make(chan string, 64)
	return &TUI{
		program:   tea.NewProgram(NewModel(inputChan), tea.WithAltScreen()),
		inputChan: inputChan,
		ready:     make(chan struct{}),
	}
}

// sendOrQueue sends a message to the program, or queues it if not ready yet.
func (t *TUI) sendOrQueue(msg tea.Msg) {
	select {
	case <-t.ready:
		t.program.Send(msg)
		return
	default:
	}

	t.pendingMsgMu.Lock()
	select {
	case <-t.ready:
		// Flushed while we waited for the lock
		t.pendingMsgMu.Unlock()
		t.program.Send(msg)
	default:
		t.pendingMsgs = append(t.pendingMsgs, msg)
		t.pendingMsgMu.Unlock()
	}
}

// Print appends a line to the log pane.
func (t *TUI) Print(text string) {
	t.sendOrQueue(LineMsg(text))
}

// SetStatus replaces the header snapshot.
func (t *TUI) SetStatus(st Status) {
	t.sendOrQueue(StatusMsg(st))
}

// Input returns the channel of commands produced by key bindings.
func (t *TUI) Input() <-chan string {
	return t.inputChan
}

// Run starts the TUI and blocks until exit.
func (t *TUI) Run() error {
	// Drain the queue in order; ready closes only once it is empty, so
	// later messages cannot overtake queued ones.
	go func() {
		for {
			t.pendingMsgMu.Lock()
			msgs := t.pendingMsgs
			t.pendingMsgs = nil
			if len(msgs) == 0 {
				t.readyOnce.Do(func() {
					close(t.ready)
				})
				t.pendingMsgMu.Unlock()
				return
			}
			t.pendingMsgMu.Unlock()

			// Send blocks until the event loop is running
			for _, msg := range msgs {
				t.program.Send(msg)
			}
		}
	}()

	_, err := t.program.Run()
	return err
}

// Quit requests the program to exit.
func (t *TUI) Quit() {
	t.program.Quit()
}
