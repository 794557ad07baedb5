// SPDX-License-Identifier: MPL-2.0

// Package config loads the agentpack YAML configuration.
//
// A file goes through three stages: the raw bytes are checked against the
// embedded CUE schema, the package tables are decoded with yaml.v3 so their
// key order survives, and the scalar settings are resolved through viper
// (defaults, legacy aliases, AGENTPACK_* environment overrides and CLI flags).
// The resulting Config is never mutated after Load returns.
package config
