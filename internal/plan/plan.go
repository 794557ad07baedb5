// SPDX-License-Identifier: MPL-2.0

// Package plan resolves a Config against the built-in defaults table into an
// immutable installation plan. Resolve performs no I/O.
package plan

import (
	"fmt"
	"strings"

	"github.com/agentpack/agentpack/internal/config"
)

type (
	// Package is one resolved core package or plugin.
	Package struct {
		Name   string `json:"name" yaml:"name" toml:"name"`
		Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
		// Excluded packages are never installed and are removed if something
		// else pulled them in.
		Excluded  bool `json:"excluded,omitempty" yaml:"excluded,omitempty" toml:"excluded,omitempty"`
		Mandatory bool `json:"mandatory,omitempty" yaml:"mandatory,omitempty" toml:"mandatory,omitempty"`
	}

	// Plan is the resolved description of what a run installs.
	Plan struct {
		BootstrapPackages  []string  `json:"bootstrap_packages" yaml:"bootstrap_packages" toml:"bootstrap_packages"`
		RequirementsFile   string    `json:"requirements_file,omitempty" yaml:"requirements_file,omitempty" toml:"requirements_file,omitempty"`
		RequirementsSHA256 string    `json:"requirements_sha256,omitempty" yaml:"requirements_sha256,omitempty" toml:"requirements_sha256,omitempty"`
		CorePackages       []Package `json:"core_packages" yaml:"core_packages" toml:"core_packages"`
		CorePlugins        []Package `json:"core_plugins" yaml:"core_plugins" toml:"core_plugins"`
		AdditionalPackages []string  `json:"additional_packages" yaml:"additional_packages" toml:"additional_packages"`
		AdditionalPlugins  []Package `json:"additional_plugins" yaml:"additional_plugins" toml:"additional_plugins"`
		AgentName          string    `json:"agent_name" yaml:"agent_name" toml:"agent_name"`
		AgentSource        string    `json:"agent_source" yaml:"agent_source" toml:"agent_source"`
	}
)

// Resolve merges cfg onto defaults.
//
// Per core id the configured source replaces the default; "exclude" marks the
// package for omission and fails for mandatory ids. agent_package_source wins
// over agent_version. Additional packages and plugins are copied in config order;
// plugin ids that normalise to the same name keep the last source.
func Resolve(defaults Defaults, cfg *config.Config) (*Plan, error) {
	corePackages, err := mergeCore("core_packages", defaults.CorePackages, cfg.CorePackages, defaults)
	if err != nil {
		return nil, err
	}
	corePlugins, err := mergeCore("core_plugins", defaults.CorePlugins, cfg.CorePlugins, defaults)
	if err != nil {
		return nil, err
	}

	agentSource, err := resolveAgentSource(defaults, cfg)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		BootstrapPackages:  append([]string{}, cfg.BootstrapPackages...),
		RequirementsFile:   cfg.RequirementsFile,
		RequirementsSHA256: cfg.RequirementsSHA256,
		CorePackages:       corePackages,
		CorePlugins:        corePlugins,
		AdditionalPackages: append([]string{}, cfg.AdditionalPackages...),
		AdditionalPlugins:  make([]Package, 0, len(cfg.AdditionalPlugins)),
		AgentName:          defaults.AgentName,
		AgentSource:        agentSource,
	}
	p.AdditionalPlugins = mergeAdditional(p.AdditionalPlugins, cfg.AdditionalPlugins)

	return p, nil
}

// mergeAdditional appends plugins keyed by normalised name. A later id that
// normalises to an earlier one replaces its source at the earlier position.
func mergeAdditional(out []Package, plugins config.PackageTable) []Package {
	index := make(map[string]int, len(plugins))
	for _, e := range plugins {
		name := ModuleName(e.Name)
		if i, ok := index[name]; ok {
			out[i].Source = e.Source
			continue
		}
		index[name] = len(out)
		out = append(out, Package{Name: name, Source: e.Source})
	}
	return out
}

func mergeCore(table string, known []Entry, overrides config.PackageTable, defaults Defaults) ([]Package, error) {
	byName := make(map[string]string, len(overrides))
	for _, o := range overrides {
		name := ModuleName(o.Name)
		if !containsEntry(known, name) {
			return nil, &UnknownCorePackageError{Table: table, Name: o.Name, Known: entryNames(known)}
		}
		byName[name] = o.Source
	}

	out := make([]Package, 0, len(known))
	for _, k := range known {
		name := ModuleName(k.Name)
		pkg := Package{Name: name, Source: k.Source, Mandatory: defaults.isMandatory(name)}
		if src, ok := byName[name]; ok && src != "" {
			pkg.Source = src
		}
		if config.IsExclude(pkg.Source) {
			if pkg.Mandatory {
				return nil, &MandatoryExcludedError{Name: name}
			}
			pkg.Source = ""
			pkg.Excluded = true
		}
		out = append(out, pkg)
	}
	return out, nil
}

func resolveAgentSource(defaults Defaults, cfg *config.Config) (string, error) {
	if src := strings.TrimSpace(cfg.AgentPackageSource); src != "" {
		return src, nil
	}
	if v := strings.TrimSpace(cfg.AgentVersion); v != "" {
		tmpl := defaults.AgentURLTemplate
		if tmpl == "" {
			tmpl = AgentURLTemplate
		}
		return fmt.Sprintf(tmpl, v), nil
	}
	return "", ErrNoAgentSource
}

func containsEntry(entries []Entry, name string) bool {
	for _, e := range entries {
		if ModuleName(e.Name) == name {
			return true
		}
	}
	return false
}

func entryNames(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Excluded returns the names of excluded core packages then excluded core plugins.
func (p *Plan) Excluded() []string {
	var out []string
	for _, group := range [][]Package{p.CorePackages, p.CorePlugins} {
		for _, pkg := range group {
			if pkg.Excluded {
				out = append(out, pkg.Name)
			}
		}
	}
	return out
}
