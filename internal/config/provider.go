// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath is the YAML file to read. Empty means DefaultConfigFile.
	ConfigFilePath string
	// OutputPath overrides output_path when set (the --output flag).
	OutputPath string
	// PipArgs are appended to pip_args (the repeatable --pip-arg flag).
	PipArgs []string
	// OSReleasePaths overrides the os-release lookup used for host detection.
	OSReleasePaths []string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider backed by the filesystem.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}
