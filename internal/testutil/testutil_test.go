// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestFakeEnvironment(t *testing.T) {
	t.Parallel()

	root := FakeEnvironment(t, filepath.Join(t.TempDir(), "env"))
	for _, rel := range []string{"bin/activate", "bin/pip", SitePackagesRel} {
		if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}
}

func TestMustWriteFile_CreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	MustWriteFile(t, path, "hello")
	if got := MustReadFile(t, path); got != "hello" {
		t.Errorf("content = %q, want hello", got)
	}
}

func TestMustChdir_Restores(t *testing.T) {
	before, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	t.Run("inner", func(t *testing.T) {
		MustChdir(t, dir)
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		resolved, _ := filepath.EvalSymlinks(dir)
		if wd != dir && wd != resolved {
			t.Errorf("wd = %s, want %s", wd, dir)
		}
	})

	after, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("wd not restored: %s != %s", after, before)
	}
}

func TestMustUnsetenv_Restores(t *testing.T) {
	t.Setenv("AGENTPACK_TESTUTIL_VAR", "kept")

	t.Run("inner", func(t *testing.T) {
		MustUnsetenv(t, "AGENTPACK_TESTUTIL_VAR")
		if _, ok := os.LookupEnv("AGENTPACK_TESTUTIL_VAR"); ok {
			t.Error("variable should be unset")
		}
	})

	if got := os.Getenv("AGENTPACK_TESTUTIL_VAR"); got != "kept" {
		t.Errorf("variable = %q, want kept", got)
	}
}

func TestHelperProcess(t *testing.T) { HelperProcess() }

func TestMockCommandRecorder(t *testing.T) {
	t.Parallel()

	rec := NewMockCommandRecorder()
	rec.Stdout = "default"
	rec.Responses = []MockResponse{{Match: "pip uninstall", ExitCode: 3, Stderr: "nope"}}
	run := rec.ContextCommandFunc(t)

	out, err := run(context.Background(), "pip", "freeze").Output()
	if err != nil {
		t.Fatalf("default command failed: %v", err)
	}
	if string(out) != "default" {
		t.Errorf("stdout = %q, want default", out)
	}

	err = run(context.Background(), "pip", "uninstall", "-y", "x").Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("matched response should exit 3, got %v", err)
	}

	rec.AssertInvocationCount(t, 2)
	if got := rec.CommandLines(); got[1] != "pip uninstall -y x" {
		t.Errorf("CommandLines()[1] = %q", got[1])
	}
}
