// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE validation utilities.
//
// Configuration files are written in YAML but validated against an embedded
// CUE schema, so errors carry JSON paths such as `core_plugins.cloudify-script-plugin`.
//
// # Usage
//
//	//go:embed config_schema.cue
//	var schemaBytes []byte
//
//	if _, err := cueutil.ValidateYAML(schemaBytes, data, "#Config",
//	    cueutil.WithFilename("config.yaml"),
//	); err != nil {
//	    return err // Error includes the CUE path for debugging
//	}
package cueutil
