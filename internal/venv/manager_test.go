// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/agentpack/agentpack/internal/testutil"
)

func TestHelperProcess(t *testing.T) { testutil.HelperProcess() }

func newMocked(t *testing.T, path string, rec *testutil.MockCommandRecorder, opts ...Option) *Manager {
	t.Helper()
	opts = append(opts, WithExecCommand(rec.ContextCommandFunc(t)))
	return New(path, opts...)
}

func TestManager_Create(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "env")
	rec := testutil.NewMockCommandRecorder()
	m := newMocked(t, dir, rec, WithPython("/usr/bin/python3.11"))

	if err := m.Create(context.Background()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	want := "/usr/bin/python3.11 -m virtualenv " + dir
	if got := rec.CommandLines(); !slices.Equal(got, []string{want}) {
		t.Errorf("commands = %v, want [%s]", got, want)
	}
}

func TestManager_CreateDefaultPython(t *testing.T) {
	t.Parallel()

	m := New("cloudify/env", WithPython(""))
	if got := m.CreateCommand(); !slices.Equal(got, []string{"python3", "-m", "virtualenv", "cloudify/env"}) {
		t.Errorf("CreateCommand() = %v", got)
	}
}

func TestManager_CreateExisting(t *testing.T) {
	t.Parallel()

	dir := testutil.FakeEnvironment(t, filepath.Join(t.TempDir(), "env"))
	rec := testutil.NewMockCommandRecorder()
	m := newMocked(t, dir, rec)

	if !m.Exists() {
		t.Fatal("Exists() = false for an environment with bin/activate")
	}
	if err := m.Create(context.Background()); !errors.Is(err, ErrEnvironmentExists) {
		t.Fatalf("Create() error = %v, want ErrEnvironmentExists", err)
	}
	rec.AssertInvocationCount(t, 0)
}

func TestManager_CreateFailure(t *testing.T) {
	t.Parallel()

	rec := testutil.NewMockCommandRecorder()
	rec.ExitCode = 1
	rec.Stderr = "No module named virtualenv\n"
	m := newMocked(t, filepath.Join(t.TempDir(), "env"), rec)

	err := m.Create(context.Background())
	if !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("Create() error = %v, want ErrCreateFailed", err)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Error("error should expose the *exec.ExitError")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || !strings.Contains(ce.Output, "No module named virtualenv") {
		t.Errorf("CommandError should carry process output: %+v", ce)
	}
}

func TestManager_InstallCommands(t *testing.T) {
	t.Parallel()

	rec := testutil.NewMockCommandRecorder()
	m := newMocked(t, "cloudify/env", rec, WithPipArgs("--no-cache-dir"))
	ctx := context.Background()

	if err := m.Install(ctx, "cloudify-rest-client"); err != nil {
		t.Fatal(err)
	}
	if err := m.InstallRequirements(ctx, "reqs.txt"); err != nil {
		t.Fatal(err)
	}
	if err := m.Uninstall(ctx, "cloudify-diamond-plugin"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"cloudify/env/bin/pip install --no-cache-dir cloudify-rest-client",
		"cloudify/env/bin/pip install --no-cache-dir -r reqs.txt",
		"cloudify/env/bin/pip uninstall -y cloudify-diamond-plugin",
	}
	if got := rec.CommandLines(); !slices.Equal(got, want) {
		t.Errorf("commands =\n%v\nwant\n%v", got, want)
	}
}

func TestManager_InstallFailureNamesPackage(t *testing.T) {
	t.Parallel()

	rec := testutil.NewMockCommandRecorder()
	rec.Responses = []testutil.MockResponse{{Match: "install broken-pkg", ExitCode: 1, Stdout: "ERROR: No matching distribution\n"}}
	m := newMocked(t, "env", rec)

	if err := m.Install(context.Background(), "good-pkg"); err != nil {
		t.Fatalf("good-pkg: %v", err)
	}
	err := m.Install(context.Background(), "broken-pkg")
	if !errors.Is(err, ErrInstallFailed) {
		t.Fatalf("Install() error = %v, want ErrInstallFailed", err)
	}
	if !strings.Contains(err.Error(), "broken-pkg") {
		t.Errorf("error should name the package: %v", err)
	}
}

func TestManager_UninstallFailure(t *testing.T) {
	t.Parallel()

	rec := testutil.NewMockCommandRecorder()
	rec.ExitCode = 2
	m := newMocked(t, "env", rec)

	if err := m.Uninstall(context.Background(), "x"); !errors.Is(err, ErrUninstallFailed) {
		t.Fatalf("Uninstall() error = %v, want ErrUninstallFailed", err)
	}
}

func TestManager_Freeze(t *testing.T) {
	t.Parallel()

	rec := testutil.NewMockCommandRecorder()
	rec.Stdout = "cloudify-agent==4.0\n\n-e git+https://github.com/x/y@abc#egg=cloudify_script_plugin\nsix==1.16.0\n"
	m := newMocked(t, "env", rec)

	lines, err := m.Freeze(context.Background())
	if err != nil {
		t.Fatalf("Freeze() error: %v", err)
	}
	if len(lines) != 3 || lines[0] != "cloudify-agent==4.0" {
		t.Errorf("Freeze() = %q", lines)
	}
	if got := rec.CommandLines()[0]; got != "env/bin/pip freeze" {
		t.Errorf("command = %q", got)
	}
}

func TestManager_FreezeFailure(t *testing.T) {
	t.Parallel()

	rec := testutil.NewMockCommandRecorder()
	rec.ExitCode = 1
	m := newMocked(t, "env", rec)

	if _, err := m.Freeze(context.Background()); !errors.Is(err, ErrListFailed) {
		t.Fatalf("Freeze() error = %v, want ErrListFailed", err)
	}
}

func TestManager_SitePackages(t *testing.T) {
	t.Parallel()

	dir := testutil.FakeEnvironment(t, filepath.Join(t.TempDir(), "env"))
	rec := testutil.NewMockCommandRecorder()
	m := newMocked(t, dir, rec)

	got, err := m.SitePackages(context.Background())
	if err != nil {
		t.Fatalf("SitePackages() error: %v", err)
	}
	if want := filepath.Join(dir, testutil.SitePackagesRel); got != want {
		t.Errorf("SitePackages() = %q, want %q", got, want)
	}
	rec.AssertInvocationCount(t, 0)
}

func TestManager_SitePackagesAsksInterpreter(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "env")
	rec := testutil.NewMockCommandRecorder()
	rec.Stdout = "/opt/env/lib64/python3.9/site-packages\n"
	m := newMocked(t, dir, rec)

	got, err := m.SitePackages(context.Background())
	if err != nil {
		t.Fatalf("SitePackages() error: %v", err)
	}
	if got != "/opt/env/lib64/python3.9/site-packages" {
		t.Errorf("SitePackages() = %q", got)
	}
	inv := rec.Calls()[0]
	if inv.Name != filepath.Join(dir, "bin", "python") || inv.Args[0] != "-c" {
		t.Errorf("unexpected interpreter call: %v", inv)
	}
}

func TestManager_Remove(t *testing.T) {
	t.Parallel()

	dir := testutil.FakeEnvironment(t, filepath.Join(t.TempDir(), "env"))
	m := New(dir)
	if err := m.Remove(); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if m.Exists() {
		t.Error("environment still exists after Remove()")
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := range 30 {
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("\n")
	}
	lines := strings.Split(tail(b.String()), "\n")
	if len(lines) != outputTailLines {
		t.Errorf("tail kept %d lines, want %d", len(lines), outputTailLines)
	}
	if lines[len(lines)-1] != strings.Repeat("x", 29) {
		t.Error("tail should keep the last lines")
	}
}
