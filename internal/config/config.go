// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/agentpack/agentpack/internal/issue"
	"github.com/agentpack/agentpack/pkg/cueutil"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is read when no --config flag is given.
	DefaultConfigFile = "config.yaml"
	// DefaultEnvironmentPath is where the virtualenv is created.
	DefaultEnvironmentPath = "cloudify/env"
	// EnvPrefix prefixes the environment variables that override scalar keys.
	EnvPrefix = "AGENTPACK"
)

//go:embed config_schema.cue
var configSchema []byte

// legacyAliases maps old key names to their canonical replacements.
var legacyAliases = [][2]string{
	{"cloudify_agent_package", "agent_package_source"},
	{"cloudify_agent_module", "agent_package_source"},
	{"cloudify_agent_version", "agent_version"},
	{"output_tar", "output_path"},
	{"keep_virtualenv", "keep_environment"},
}

// DefaultConfig returns the documented default table.
func DefaultConfig() *Config {
	return &Config{
		EnvironmentPath:   DefaultEnvironmentPath,
		PythonPath:        "",
		KeepEnvironment:   false,
		WriteChecksum:     false,
		BootstrapPackages: []string{},
		PipArgs:           []string{},
	}
}

// Load reads and resolves the config file described by opts.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}

func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	path := opts.ConfigFilePath
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigNotFoundId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Pass another file with -c/--config").
				Wrap(ErrConfigNotFound).
				BuildError()
		}
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithIssue(issue.ConfigNotFoundId).
			WithSuggestion("Check that the file is readable by the current user").
			Wrap(fmt.Errorf("%w: %w", ErrConfigUnreadable, err)).
			BuildError()
	}

	v, tables, err := parseDocument(data, path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithIssue(issue.ConfigInvalidId).
			WithSuggestion("Check that the file contains valid YAML").
			WithSuggestion("Verify the configuration keys and value types").
			Wrap(fmt.Errorf("%w: %w", ErrInvalidYAML, err)).
			BuildError()
	}

	if opts.OutputPath != "" {
		v.Set("output_path", opts.OutputPath)
	}

	cfg := &Config{
		Distribution:       v.GetString("distribution"),
		Release:            v.GetString("release"),
		Version:            v.GetString("version"),
		Milestone:          v.GetString("milestone"),
		Build:              v.GetString("build"),
		AgentPackageSource: v.GetString("agent_package_source"),
		AgentVersion:       v.GetString("agent_version"),
		RequirementsFile:   v.GetString("requirements_file"),
		RequirementsSHA256: strings.ToLower(v.GetString("requirements_sha256")),
		OutputPath:         v.GetString("output_path"),
		EnvironmentPath:    v.GetString("environment_path"),
		PythonPath:         v.GetString("python_path"),
		KeepEnvironment:    v.GetBool("keep_environment"),
		WriteChecksum:      v.GetBool("write_checksum"),
		BootstrapPackages:  v.GetStringSlice("bootstrap_packages"),
		PipArgs:            append(v.GetStringSlice("pip_args"), opts.PipArgs...),
		CorePackages:       tables.corePackages(),
		CorePlugins:        tables.CorePlugins,
		AdditionalPackages: tables.additionalPackages(),
		AdditionalPlugins:  tables.AdditionalPlugins,
	}

	// Release pipelines export the archive-name segments instead of writing them.
	cfg.Version = orEnv(cfg.Version, "VERSION")
	cfg.Milestone = orEnv(cfg.Milestone, "PRERELEASE")
	cfg.Build = orEnv(cfg.Build, "BUILD")

	if cfg.Distribution == "" || cfg.Release == "" {
		distribution, release, err := DetectHost(opts.OSReleasePaths...)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("detect host distribution").
				WithIssue(issue.HostUndetectedId).
				WithSuggestion("Set distribution and release in the config file").
				Wrap(err).
				BuildError()
		}
		if cfg.Distribution == "" {
			cfg.Distribution = distribution
		}
		if cfg.Release == "" {
			cfg.Release = release
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.InvalidConfigValueId).
			Wrap(err).
			BuildError()
	}

	return cfg, nil
}

// parseDocument validates data against the schema and returns the scalar
// settings in a viper instance plus the ordered package tables.
func parseDocument(data []byte, path string) (*viper.Viper, *fileTables, error) {
	unified, err := cueutil.ValidateYAML(configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return nil, nil, err
	}

	var values map[string]any
	if err := unified.Decode(&values); err != nil {
		return nil, nil, cueutil.FormatError(err, path)
	}

	tables := &fileTables{}
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	for key, text := range tables.literals() {
		if _, ok := values[key]; ok && text != "" {
			values[key] = string(text)
		}
	}

	v := newViper()
	if err := v.MergeConfigMap(values); err != nil {
		return nil, nil, fmt.Errorf("merge config: %w", err)
	}
	for _, a := range legacyAliases {
		alias, key := a[0], a[1]
		// The canonical key wins when both are written.
		if v.InConfig(alias) && !v.InConfig(key) {
			v.RegisterAlias(alias, key)
		}
	}

	return v, tables, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("environment_path", defaults.EnvironmentPath)
	v.SetDefault("python_path", defaults.PythonPath)
	v.SetDefault("keep_environment", defaults.KeepEnvironment)
	v.SetDefault("write_checksum", defaults.WriteChecksum)
	v.SetDefault("bootstrap_packages", defaults.BootstrapPackages)
	v.SetDefault("pip_args", defaults.PipArgs)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func orEnv(val, env string) string {
	if val != "" {
		return val
	}
	return strings.TrimSpace(os.Getenv(env))
}

// Validate checks the constraints the schema cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.EnvironmentPath) == "" {
		return &InvalidConfigError{Key: "environment_path", Reason: "must not be empty"}
	}
	for _, p := range c.AdditionalPlugins {
		if p.Source == "" {
			return &InvalidConfigError{Key: "additional_plugins." + p.Name, Reason: "source must not be empty"}
		}
	}
	for i, p := range c.AdditionalPackages {
		if strings.TrimSpace(p) == "" {
			return &InvalidConfigError{Key: fmt.Sprintf("additional_packages[%d]", i), Reason: "must not be empty"}
		}
	}
	if c.RequirementsSHA256 != "" && c.RequirementsFile == "" {
		return &InvalidConfigError{Key: "requirements_sha256", Reason: "set without requirements_file"}
	}
	return nil
}

// fileTables holds the ordered sections of the file that viper would flatten.
type fileTables struct {
	CorePackages       PackageTable `yaml:"core_packages"`
	CoreModules        PackageTable `yaml:"core_modules"`
	CorePlugins        PackageTable `yaml:"core_plugins"`
	AdditionalPackages []string     `yaml:"additional_packages"`
	AdditionalModules  []string     `yaml:"additional_modules"`
	AdditionalPlugins  PackageTable `yaml:"additional_plugins"`

	Version              scalarText `yaml:"version"`
	Build                scalarText `yaml:"build"`
	AgentVersion         scalarText `yaml:"agent_version"`
	CloudifyAgentVersion scalarText `yaml:"cloudify_agent_version"`
}

// scalarText is a scalar exactly as written. Version-like keys accept
// numbers, and decoding 4.0 or 3.10 as floats would lose the tag.
type scalarText string

func (s *scalarText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	if node.Tag != "!!null" {
		*s = scalarText(node.Value)
	}
	return nil
}

// literals returns the source text of the keys that accept numbers.
func (t *fileTables) literals() map[string]scalarText {
	return map[string]scalarText{
		"version":                t.Version,
		"build":                  t.Build,
		"agent_version":          t.AgentVersion,
		"cloudify_agent_version": t.CloudifyAgentVersion,
	}
}

func (t *fileTables) corePackages() PackageTable {
	if t.CorePackages != nil {
		return t.CorePackages
	}
	return t.CoreModules
}

func (t *fileTables) additionalPackages() []string {
	if t.AdditionalPackages != nil {
		return t.AdditionalPackages
	}
	return t.AdditionalModules
}
