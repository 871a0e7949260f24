package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleUI implements a simple line-based UI: commands on stdin, output on stdout.
type ConsoleUI struct {
	in  io.Reader
	out io.Writer

	inputChan chan string
	done      chan struct{}
	doneOnce  sync.Once

	mu sync.Mutex // serialises writes to out
}

// NewConsoleUI initializes a stdin/stdout based interface.
func NewConsoleUI() *ConsoleUI {
	return newConsoleUI(os.Stdin, os.Stdout)
}

func newConsoleUI(in io.Reader, out io.Writer) *ConsoleUI {
	return &ConsoleUI{
		in:        in,
		out:       out,
		inputChan: make(chan string, 64),
		done:      make(chan struct{}),
	}
}

// Print outputs a line.
func (c *ConsoleUI) Print(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

// SetStatus is a no-op; the console shows status only on request.
func (c *ConsoleUI) SetStatus(Status) {}

// Input returns the channel of command lines.
func (c *ConsoleUI) Input() <-chan string {
	return c.inputChan
}

// Run reads commands until stdin closes or Quit is called.
func (c *ConsoleUI) Run() error {
	scanner := bufio.NewScanner(c.in)
	scanDone := make(chan error, 1)

	go func() {
		for scanner.Scan() {
			select {
			case <-c.done:
				scanDone <- nil
				return
			case c.inputChan <- scanner.Text():
			}
		}
		scanDone <- scanner.Err()
	}()

	select {
	case <-c.done:
		return nil
	case err := <-scanDone:
		return err
	}
}

// Quit requests the console UI to exit.
func (c *ConsoleUI) Quit() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}
