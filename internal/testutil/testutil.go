// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test
// immediately on setup errors, reducing boilerplate in table-driven tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SitePackagesRel is the site-packages directory FakeEnvironment creates.
const SitePackagesRel = "lib/python3.11/site-packages"

// MustChdir changes the current working directory to dir and restores the
// original directory when the test ends. Tests using it must not call t.Parallel.
func MustChdir(t testing.TB, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	})
}

// MustUnsetenv unsets key for the duration of the test and restores it afterwards.
func MustUnsetenv(t testing.TB, key string) {
	t.Helper()
	originalValue, hadValue := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadValue {
			if err := os.Setenv(key, originalValue); err != nil {
				t.Errorf("failed to restore env %s: %v", key, err)
			}
		}
	})
}

// MustMkdirAll creates a directory along with any necessary parents.
func MustMkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, path, content string) string {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// MustReadFile returns the content of path.
func MustReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// WriteConfig writes a config.yaml into dir and returns its path.
func WriteConfig(t testing.TB, dir, content string) string {
	t.Helper()
	return MustWriteFile(t, filepath.Join(dir, "config.yaml"), content)
}

// FakeEnvironment lays out the directories a virtualenv has after creation:
// bin/activate, bin/pip and an empty site-packages. It returns root.
func FakeEnvironment(t testing.TB, root string) string {
	t.Helper()
	MustWriteFile(t, filepath.Join(root, "bin", "activate"), "# activate\n")
	MustWriteFile(t, filepath.Join(root, "bin", "pip"), "#!/bin/sh\n")
	MustMkdirAll(t, filepath.Join(root, SitePackagesRel))
	return root
}
