// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the agentpack command tree.
//
// Command handlers never call os.Exit. Failures are rendered to stderr and
// returned as *ExitError; Execute maps them to the process exit status.
package cmd
