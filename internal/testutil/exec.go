// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type (
	// MockCommandRecorder captures the commands a component would run and
	// replaces each with a re-exec of the test binary (the TestHelperProcess
	// pattern). Packages using it declare:
	//
	//	func TestHelperProcess(t *testing.T) { testutil.HelperProcess() }
	MockCommandRecorder struct {
		mu sync.Mutex
		// Invocations records each call in order.
		Invocations []MockInvocation
		// ExitCode, Stdout and Stderr are the default result.
		ExitCode int
		Stdout   string
		Stderr   string
		// Responses override the default for matching command lines; the first match wins.
		Responses []MockResponse
		// OnInvoke runs in the test process before the helper command is built.
		OnInvoke func(inv MockInvocation)
	}

	// MockInvocation is one recorded command.
	MockInvocation struct {
		Name string
		Args []string
	}

	// MockResponse applies when Match is a substring of the space-joined command line.
	MockResponse struct {
		Match    string
		ExitCode int
		Stdout   string
		Stderr   string
	}
)

// NewMockCommandRecorder creates a recorder whose commands succeed silently.
func NewMockCommandRecorder() *MockCommandRecorder {
	return &MockCommandRecorder{}
}

// CommandLine returns the space-joined name and args.
func (i MockInvocation) CommandLine() string {
	return strings.Join(append([]string{i.Name}, i.Args...), " ")
}

// ContextCommandFunc returns a function matching exec.CommandContext.
func (m *MockCommandRecorder) ContextCommandFunc(t testing.TB) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		inv := MockInvocation{Name: name, Args: append([]string(nil), args...)}

		m.mu.Lock()
		m.Invocations = append(m.Invocations, inv)
		code, stdout, stderr := m.ExitCode, m.Stdout, m.Stderr
		for _, r := range m.Responses {
			if strings.Contains(inv.CommandLine(), r.Match) {
				code, stdout, stderr = r.ExitCode, r.Stdout, r.Stderr
				break
			}
		}
		onInvoke := m.OnInvoke
		m.mu.Unlock()

		if onInvoke != nil {
			onInvoke(inv)
		}

		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		//nolint:gosec // TestHelperProcess is a test-only pattern
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			"GO_HELPER_EXIT_CODE=" + strconv.Itoa(code),
			"GO_HELPER_STDOUT=" + stdout,
			"GO_HELPER_STDERR=" + stderr,
		}
		return cmd
	}
}

// Calls returns a copy of the recorded invocations.
func (m *MockCommandRecorder) Calls() []MockInvocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockInvocation(nil), m.Invocations...)
}

// CommandLines returns every recorded invocation as a command line.
func (m *MockCommandRecorder) CommandLines() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.CommandLine()
	}
	return out
}

// AssertInvocationCount verifies the number of command invocations.
func (m *MockCommandRecorder) AssertInvocationCount(t testing.TB, expected int) {
	t.Helper()
	if got := len(m.Calls()); got != expected {
		t.Errorf("expected %d invocations, got %d: %v", expected, got, m.CommandLines())
	}
}

// HelperProcess is the body of each package's TestHelperProcess. It is a no-op
// unless the process was started by a MockCommandRecorder.
func HelperProcess() {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	if stderr := os.Getenv("GO_HELPER_STDERR"); stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
	}

	exitCode, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	os.Exit(exitCode)
}
