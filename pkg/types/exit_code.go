// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared between the CLI layer and
// scripting consumers of agentpack.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Stable process exit codes. Each failure category maps to exactly one code
// and the numbers are never reassigned.
const (
	ExitOK                 ExitCode = 0
	ExitFailure            ExitCode = 1
	ExitConfigUnreadable   ExitCode = 2
	ExitInvalidYAML        ExitCode = 3
	ExitEnvironmentExists  ExitCode = 4
	ExitInstallFailed      ExitCode = 5
	ExitUninstallFailed    ExitCode = 6
	ExitDownloadFailed     ExitCode = 7
	ExitArchiveFailed      ExitCode = 8
	ExitValidationFailed   ExitCode = 9
	ExitMissingAgentSource ExitCode = 10
	ExitEnvironmentCreate  ExitCode = 11
	ExitInvalidConfig      ExitCode = 12
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// Describe returns the short category name scripting consumers see in
// `agentpack --help` output.
func (c ExitCode) Describe() string {
	switch c {
	case ExitOK:
		return "success"
	case ExitFailure:
		return "unclassified failure"
	case ExitConfigUnreadable:
		return "config file missing or unreadable"
	case ExitInvalidYAML:
		return "config file is not valid YAML"
	case ExitEnvironmentExists:
		return "environment already exists"
	case ExitInstallFailed:
		return "package install failed"
	case ExitUninstallFailed:
		return "package uninstall failed"
	case ExitDownloadFailed:
		return "download failed"
	case ExitArchiveFailed:
		return "archive creation failed"
	case ExitValidationFailed:
		return "validation failed"
	case ExitMissingAgentSource:
		return "no agent source specified"
	case ExitEnvironmentCreate:
		return "environment creation failed"
	case ExitInvalidConfig:
		return "invalid configuration value"
	}
	return "unknown"
}

// KnownExitCodes lists every stable exit code in ascending order.
func KnownExitCodes() []ExitCode {
	return []ExitCode{
		ExitOK, ExitFailure, ExitConfigUnreadable, ExitInvalidYAML,
		ExitEnvironmentExists, ExitInstallFailed, ExitUninstallFailed,
		ExitDownloadFailed, ExitArchiveFailed, ExitValidationFailed,
		ExitMissingAgentSource, ExitEnvironmentCreate, ExitInvalidConfig,
	}
}
