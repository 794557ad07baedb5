// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentpack/agentpack/internal/logging"
)

// DefaultPython is used when no interpreter path is configured.
const DefaultPython = "python3"

const purelibScript = "import sysconfig; print(sysconfig.get_paths()['purelib'])"

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures a Manager.
	Option func(*Manager)

	// Manager owns one environment directory.
	Manager struct {
		path        string
		python      string
		pipArgs     []string
		execCommand ExecCommandFunc
		logger      *slog.Logger
	}
)

// WithExecCommand sets a custom exec command function (for testing).
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(m *Manager) {
		m.execCommand = fn
	}
}

// WithPython selects the interpreter that runs virtualenv. Empty keeps DefaultPython.
func WithPython(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.python = path
		}
	}
}

// WithPipArgs adds arguments to every pip install call.
func WithPipArgs(args ...string) Option {
	return func(m *Manager) {
		m.pipArgs = append(m.pipArgs, args...)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New returns a Manager for the environment at path. Nothing is created yet.
func New(path string, opts ...Option) *Manager {
	m := &Manager{
		path:        filepath.Clean(path),
		python:      DefaultPython,
		execCommand: exec.CommandContext,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Path() string { return m.path }

// Exists reports whether path already holds an environment (bin/activate is present).
func (m *Manager) Exists() bool {
	info, err := os.Stat(filepath.Join(m.path, "bin", "activate"))
	return err == nil && !info.IsDir()
}

// Create runs `python -m virtualenv <path>`.
func (m *Manager) Create(ctx context.Context) error {
	if m.Exists() {
		return fmt.Errorf("%w: %s", ErrEnvironmentExists, m.path)
	}
	if _, err := m.run(ctx, m.CreateCommand()); err != nil {
		return commandError(ErrCreateFailed, m.path, err)
	}
	return nil
}

// Install runs `pip install [pip args] <source>`.
func (m *Manager) Install(ctx context.Context, source string) error {
	if _, err := m.run(ctx, m.InstallCommand(source)); err != nil {
		return commandError(ErrInstallFailed, source, err)
	}
	return nil
}

// InstallRequirements runs `pip install [pip args] -r <file>`.
func (m *Manager) InstallRequirements(ctx context.Context, file string) error {
	if _, err := m.run(ctx, m.RequirementsCommand(file)); err != nil {
		return commandError(ErrInstallFailed, file, err)
	}
	return nil
}

// Uninstall runs `pip uninstall -y <name>`.
func (m *Manager) Uninstall(ctx context.Context, name string) error {
	if _, err := m.run(ctx, m.UninstallCommand(name)); err != nil {
		return commandError(ErrUninstallFailed, name, err)
	}
	return nil
}

// Freeze returns the non-empty lines of `pip freeze`.
func (m *Manager) Freeze(ctx context.Context) ([]string, error) {
	cmd := m.execCommand(ctx, m.pip(), "freeze")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	m.logger.Debug("running", "cmd", logging.CommandLine(cmd.Args...))

	out, err := cmd.Output()
	if err != nil {
		return nil, &CommandError{Kind: ErrListFailed, Target: m.path, Output: tail(stderr.String()), Err: err}
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// SitePackages locates the environment's purelib directory. The first
// lib/python*/site-packages match wins; otherwise the environment's own
// interpreter is asked.
func (m *Manager) SitePackages(ctx context.Context) (string, error) {
	matches, err := filepath.Glob(filepath.Join(m.path, "lib", "python*", "site-packages"))
	if err == nil && len(matches) > 0 {
		slices.Sort(matches)
		return matches[0], nil
	}

	cmd := m.execCommand(ctx, filepath.Join(m.path, "bin", "python"), "-c", purelibScript)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("locate site-packages in %s: %w", m.path, err)
	}
	dir := strings.TrimSpace(string(out))
	if dir == "" {
		return "", fmt.Errorf("locate site-packages in %s: interpreter printed nothing", m.path)
	}
	return dir, nil
}

// Remove deletes the environment directory.
func (m *Manager) Remove() error {
	if err := os.RemoveAll(m.path); err != nil {
		return fmt.Errorf("remove environment %s: %w", m.path, err)
	}
	return nil
}

// CreateCommand returns the argv Create runs.
func (m *Manager) CreateCommand() []string {
	return []string{m.python, "-m", "virtualenv", m.path}
}

// InstallCommand returns the argv Install runs.
func (m *Manager) InstallCommand(source string) []string {
	argv := append([]string{m.pip(), "install"}, m.pipArgs...)
	return append(argv, source)
}

// RequirementsCommand returns the argv InstallRequirements runs.
func (m *Manager) RequirementsCommand(file string) []string {
	argv := append([]string{m.pip(), "install"}, m.pipArgs...)
	return append(argv, "-r", file)
}

// UninstallCommand returns the argv Uninstall runs.
func (m *Manager) UninstallCommand(name string) []string {
	return []string{m.pip(), "uninstall", "-y", name}
}

func (m *Manager) pip() string {
	return filepath.Join(m.path, "bin", "pip")
}

// run executes argv and logs its combined output at debug level.
func (m *Manager) run(ctx context.Context, argv []string) ([]byte, error) {
	cmd := m.execCommand(ctx, argv[0], argv[1:]...)
	m.logger.Debug("running", "cmd", logging.CommandLine(argv...))

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		m.logger.Debug("output", "cmd", filepath.Base(argv[0]), "text", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return out, &runError{output: out, err: err}
	}
	return out, nil
}

type runError struct {
	output []byte
	err    error
}

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

func commandError(kind error, target string, err error) error {
	ce := &CommandError{Kind: kind, Target: target, Err: err}
	var re *runError
	if errors.As(err, &re) {
		ce.Output = tail(string(re.output))
		ce.Err = re.err
	}
	return ce
}

func tail(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > outputTailLines {
		lines = lines[len(lines)-outputTailLines:]
	}
	return strings.Join(lines, "\n")
}
