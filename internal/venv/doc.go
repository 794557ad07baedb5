// SPDX-License-Identifier: MPL-2.0

// Package venv drives an isolated Python environment through the virtualenv
// and pip binaries. Every external call goes through an injectable
// ExecCommandFunc so tests can replace the processes.
package venv
