package lua

import "sync"

// MockHost implements Host for testing.
type MockHost struct {
	mu sync.Mutex

	// Captured calls
	PrintCalls []string
}

func NewMockHost() *MockHost {
	return &MockHost{}
}

func (m *MockHost) Print(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PrintCalls = append(m.PrintCalls, text)
}

// Helper methods for tests

func (m *MockHost) DrainPrintCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.PrintCalls
	m.PrintCalls = nil
	return calls
}

// testClock is a settable game clock.
type testClock struct{ now float64 }

func (c *testClock) Now() float64 { return c.now }
