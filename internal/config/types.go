// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExcludeSource is the package-table value that drops a core package or plugin.
const ExcludeSource = "exclude"

var (
	// ErrConfigNotFound is returned when the config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrConfigUnreadable is returned for any other I/O failure on the config file.
	ErrConfigUnreadable = errors.New("config file unreadable")
	// ErrInvalidYAML is returned for YAML syntax errors and schema violations.
	ErrInvalidYAML = errors.New("invalid config file")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config value")
	// ErrHostUndetected is returned when distribution or release are unset and
	// cannot be read from os-release.
	ErrHostUndetected = errors.New("host distribution not detected")
)

type (
	// Config is the resolved configuration of one packaging run.
	Config struct {
		Distribution string `json:"distribution"`
		Release      string `json:"release"`
		// Version, Milestone and Build are the optional archive-name segments.
		Version   string `json:"version"`
		Milestone string `json:"milestone"`
		Build     string `json:"build"`

		AgentPackageSource string `json:"agent_package_source"`
		AgentVersion       string `json:"agent_version"`

		RequirementsFile   string `json:"requirements_file"`
		RequirementsSHA256 string `json:"requirements_sha256"`

		OutputPath      string `json:"output_path"`
		EnvironmentPath string `json:"environment_path"`
		PythonPath      string `json:"python_path"`
		KeepEnvironment bool   `json:"keep_environment"`
		WriteChecksum   bool   `json:"write_checksum"`

		BootstrapPackages []string `json:"bootstrap_packages"`
		PipArgs           []string `json:"pip_args"`

		CorePackages       PackageTable `json:"core_packages"`
		CorePlugins        PackageTable `json:"core_plugins"`
		AdditionalPackages []string     `json:"additional_packages"`
		AdditionalPlugins  PackageTable `json:"additional_plugins"`
	}

	// PackageEntry is one name/source pair of a PackageTable. An empty Source
	// means the table does not override the default.
	PackageEntry struct {
		Name   string
		Source string
	}

	// PackageTable is a YAML mapping of package name to source that keeps the
	// order the keys were written in. Repeated keys replace the earlier value
	// in place.
	PackageTable []PackageEntry

	// InvalidConfigError reports a value that parsed but is not allowed.
	InvalidConfigError struct {
		Key    string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Get returns the source for name and whether name is present.
func (t PackageTable) Get(name string) (string, bool) {
	for _, e := range t {
		if e.Name == name {
			return e.Source, true
		}
	}
	return "", false
}

// Names returns the keys in file order.
func (t PackageTable) Names() []string {
	names := make([]string, len(t))
	for i, e := range t {
		names[i] = e.Name
	}
	return names
}

// Set adds or replaces name. A replaced entry keeps its position.
func (t PackageTable) Set(name, source string) PackageTable {
	for i, e := range t {
		if e.Name == name {
			t[i].Source = source
			return t
		}
	}
	return append(t, PackageEntry{Name: name, Source: source})
}

// UnmarshalYAML decodes a mapping node. Null values decode to an empty source.
func (t *PackageTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*t = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of package name to source", node.Line)
	}

	var out PackageTable
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		name := strings.TrimSpace(key.Value)
		if name == "" {
			return fmt.Errorf("line %d: empty package name", key.Line)
		}
		var source string
		switch {
		case val.Kind == yaml.ScalarNode && val.Tag == "!!null":
		case val.Kind == yaml.ScalarNode:
			source = strings.TrimSpace(val.Value)
		default:
			return fmt.Errorf("line %d: source of %q must be a string", val.Line, name)
		}
		out = out.Set(name, source)
	}
	*t = out
	return nil
}

// MarshalYAML encodes the table as an ordered mapping.
func (t PackageTable) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range t {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Source},
		)
	}
	return node, nil
}

// IsExclude reports whether source is the exclusion sentinel.
func IsExclude(source string) bool {
	return strings.EqualFold(strings.TrimSpace(source), ExcludeSource)
}
