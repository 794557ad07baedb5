// SPDX-License-Identifier: MPL-2.0

// Package issue holds the remediation catalog shown for packaging failures.
//
// ActionableError carries the failing step and hints in its Error/Format output;
// its Issue field points at a Markdown catalog entry that the CLI renders with
// glamour when --verbose is set.
package issue
