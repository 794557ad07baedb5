// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"errors"
	"fmt"
)

var (
	// ErrEnvironmentExists is returned when the target directory already holds an environment.
	ErrEnvironmentExists = errors.New("environment already exists")
	// ErrCreateFailed is returned when virtualenv exits non-zero.
	ErrCreateFailed = errors.New("environment creation failed")
	// ErrInstallFailed is returned when pip install exits non-zero.
	ErrInstallFailed = errors.New("package install failed")
	// ErrUninstallFailed is returned when pip uninstall exits non-zero.
	ErrUninstallFailed = errors.New("package uninstall failed")
	// ErrListFailed is returned when pip freeze exits non-zero.
	ErrListFailed = errors.New("listing installed packages failed")
)

// outputTailLines bounds how much process output a CommandError keeps.
const outputTailLines = 20

// CommandError describes a failed external command. It matches both its
// category sentinel and the underlying exec error with errors.Is.
type CommandError struct {
	// Kind is one of the package sentinels.
	Kind error
	// Target is the package, requirements file or directory involved.
	Target string
	// Output is the tail of the combined stdout/stderr.
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
