package lua

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/drake/stardate/timer"
)

// step advances the game clock to Time and ticks the scheduler once.
type step struct {
	Time            float64  `json:"time"`
	ExpectedPrints  []string `json:"expected_prints,omitempty"`
	ExpectedPending *int     `json:"expected_pending,omitempty"`
}

// testCase represents a single test case from JSON
type testCase struct {
	Name           string  `json:"name"`
	StartTime      float64 `json:"start_time"`
	SetupLua       any     `json:"setup_lua"`
	SetupError     string  `json:"setup_error,omitempty"`
	Steps          []step  `json:"steps,omitempty"`
	ExpectedErrors int     `json:"expected_errors,omitempty"`
}

type testDataFile struct {
	Tests []testCase `json:"tests"`
}

// testEnv bundles everything a scenario touches.
type testEnv struct {
	engine *Engine
	host   *MockHost
	sched  *timer.Scheduler
	clock  *testClock
	errors []*timer.CallbackError
}

// setupTest creates a test environment and returns a cleanup function
func setupTest(t *testing.T, start float64, fs afero.Fs) (*testEnv, func()) {
	t.Helper()

	env := &testEnv{
		host:  NewMockHost(),
		clock: &testClock{now: start},
	}
	env.sched = timer.NewScheduler(env.clock, nil)
	env.sched.SetErrorHandler(func(err *timer.CallbackError) {
		env.errors = append(env.errors, err)
	})
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	env.engine = NewEngine(env.host, env.sched, fs)

	if err := env.engine.Init(); err != nil {
		t.Fatal("Failed to initialize engine:", err)
	}
	env.engine.SetGameTime(start)

	cleanup := func() {
		env.engine.Close()
	}

	return env, cleanup
}

// advance mirrors one session step: move the clock, publish Game.time, tick.
func (env *testEnv) advance(now float64) {
	env.clock.now = now
	env.engine.SetGameTime(now)
	env.sched.Tick(now)
}

func loadTestData(t *testing.T, filename string) testDataFile {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("Failed to read test data %s: %v", filename, err)
	}

	var testData testDataFile
	if err := json.Unmarshal(data, &testData); err != nil {
		t.Fatalf("Failed to parse test data %s: %v", filename, err)
	}
	return testData
}

// executeSetupLua handles both string and []string Lua setup code.
// It returns the first error instead of failing so setup_error cases can assert it.
func executeSetupLua(env *testEnv, setup any) error {
	switch lua := setup.(type) {
	case string:
		return env.engine.DoString("setup", lua)
	case []interface{}:
		for _, cmd := range lua {
			if err := env.engine.DoString("setup", cmd.(string)); err != nil {
				return err
			}
		}
	}
	return nil
}

// executeTest runs a single test case
func executeTest(t *testing.T, feature string, tt testCase) {
	t.Helper()
	testName := fmt.Sprintf("%s/%s", feature, tt.Name)
	t.Run(testName, func(t *testing.T) {
		env, cleanup := setupTest(t, tt.StartTime, nil)
		defer cleanup()

		err := executeSetupLua(env, tt.SetupLua)
		if tt.SetupError != "" {
			if err == nil || !strings.Contains(err.Error(), tt.SetupError) {
				t.Fatalf("expected setup error containing %q, got %v", tt.SetupError, err)
			}
			if env.sched.Len() != 0 {
				t.Fatalf("rejected registration left %d entries", env.sched.Len())
			}
			return
		}
		if err != nil {
			t.Fatalf("Failed to execute setup Lua code: %v", err)
		}
		// Drop anything printed during setup
		env.host.DrainPrintCalls()

		for i, st := range tt.Steps {
			env.advance(st.Time)
			assertPrints(t, i, st.Time, env.host.DrainPrintCalls(), st.ExpectedPrints)
			if st.ExpectedPending != nil && env.sched.Len() != *st.ExpectedPending {
				t.Errorf("step %d (t=%v): expected %d pending, got %d", i, st.Time, *st.ExpectedPending, env.sched.Len())
			}
		}

		if len(env.errors) != tt.ExpectedErrors {
			t.Errorf("expected %d callback errors, got %d: %v", tt.ExpectedErrors, len(env.errors), env.errors)
		}
	})
}

// assertPrints verifies printed lines are received in order
func assertPrints(t *testing.T, stepIdx int, now float64, actual, expected []string) {
	t.Helper()

	if len(actual) != len(expected) {
		t.Errorf("step %d (t=%v): expected prints %q, got %q", stepIdx, now, expected, actual)
		return
	}
	for i, exp := range expected {
		if actual[i] != exp {
			t.Errorf("step %d (t=%v) print %d: expected %q, got %q", stepIdx, now, i, exp, actual[i])
		}
	}
}

// TestFeatures runs all feature tests from JSON files
func TestFeatures(t *testing.T) {
	files, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("Failed to read testdata directory: %v", err)
	}

	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), "_tests.json") {
			feature := strings.TrimSuffix(file.Name(), "_tests.json")
			t.Run(feature, func(t *testing.T) {
				testData := loadTestData(t, file.Name())

				for _, tt := range testData.Tests {
					executeTest(t, feature, tt)
				}
			})
		}
	}
}

func TestGameTimeVisibleAtLoad(t *testing.T) {
	env, cleanup := setupTest(t, 1234.5, nil)
	defer cleanup()

	if err := env.engine.DoString("t", `print(Game.time)`); err != nil {
		t.Fatal(err)
	}
	prints := env.host.DrainPrintCalls()
	if len(prints) != 1 || prints[0] != "1234.5" {
		t.Fatalf("expected Game.time 1234.5, got %q", prints)
	}
}

func TestPrintJoinsArguments(t *testing.T) {
	env, cleanup := setupTest(t, 0, nil)
	defer cleanup()

	if err := env.engine.DoString("t", `print("a", 1, true, nil)`); err != nil {
		t.Fatal(err)
	}
	prints := env.host.DrainPrintCalls()
	if len(prints) != 1 || prints[0] != "a\t1\ttrue\tnil" {
		t.Fatalf("unexpected print output %q", prints)
	}
}

func TestDoFileCachesCompiledChunk(t *testing.T) {
	fs := afero.NewMemMapFs()
	script := `Timer:CallAt(Game.time + 1, function() print("from file") end)`
	if err := afero.WriteFile(fs, "/missions/delivery.lua", []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	env, cleanup := setupTest(t, 0, fs)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if err := env.engine.DoFile("/missions/delivery.lua"); err != nil {
			t.Fatalf("DoFile #%d: %v", i, err)
		}
	}
	if _, cached := env.engine.Stats(); cached != 1 {
		t.Errorf("expected 1 cached chunk, got %d", cached)
	}
	if env.sched.Len() != 3 {
		t.Fatalf("expected 3 pending timers, got %d", env.sched.Len())
	}

	env.advance(1)
	if got := env.host.DrainPrintCalls(); len(got) != 3 {
		t.Errorf("expected 3 prints, got %q", got)
	}
}

func TestDoFileMissing(t *testing.T) {
	env, cleanup := setupTest(t, 0, nil)
	defer cleanup()

	if err := env.engine.DoFile("/nope.lua"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDoFileSyntaxError(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/bad.lua", []byte(`Timer:CallAt(`), 0644)

	env, cleanup := setupTest(t, 0, fs)
	defer cleanup()

	if err := env.engine.DoFile("/bad.lua"); err == nil {
		t.Fatal("expected syntax error")
	}
	if _, cached := env.engine.Stats(); cached != 0 {
		t.Errorf("failed compile should not be cached, got %d", cached)
	}
}

func TestReinitMakesOldCallbacksInert(t *testing.T) {
	env, cleanup := setupTest(t, 0, nil)
	defer cleanup()

	if err := env.engine.DoString("t", `Timer:CallEvery(1, function() print("old vm") end)`); err != nil {
		t.Fatal(err)
	}
	if err := env.engine.Init(); err != nil {
		t.Fatal(err)
	}

	env.advance(1)
	if got := env.host.DrainPrintCalls(); len(got) != 0 {
		t.Fatalf("callback from previous VM ran: %q", got)
	}
	if env.sched.Len() != 0 {
		t.Fatalf("stale callback should cancel itself, %d pending", env.sched.Len())
	}
	if len(env.errors) != 0 {
		t.Fatalf("stale callback should not report errors: %v", env.errors)
	}
}
