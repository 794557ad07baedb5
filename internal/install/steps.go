// SPDX-License-Identifier: MPL-2.0

package install

import (
	"github.com/agentpack/agentpack/internal/plan"
)

const (
	// PhaseBootstrap installs bootstrap_packages before anything else.
	PhaseBootstrap Phase = "bootstrap"
	// PhaseRequirements installs the requirements file.
	PhaseRequirements Phase = "requirements"
	// PhaseCore installs core packages then core plugins.
	PhaseCore Phase = "core"
	// PhaseAdditionalPackages installs additional_packages verbatim.
	PhaseAdditionalPackages Phase = "additional-packages"
	// PhaseAdditionalPlugins installs additional_plugins.
	PhaseAdditionalPlugins Phase = "additional-plugins"
	// PhaseAgent installs the agent package last.
	PhaseAgent Phase = "agent"
)

const (
	// KindInstall installs Source with pip install.
	KindInstall StepKind = iota
	// KindRequirements installs the file at Source with pip install -r.
	KindRequirements
)

const (
	// RecordNone leaves the Result Set unchanged.
	RecordNone Record = iota
	// RecordPackage appends the step's name to the installed packages.
	RecordPackage
	// RecordPlugin appends the step's name to the installed plugins.
	RecordPlugin
)

type (
	// Phase groups steps; phases run in the order Steps returns them.
	Phase string

	// StepKind selects the pip invocation a Step runs.
	StepKind int

	// Record says which Result Set list a successful step appends to.
	Record int

	// Step is one pip invocation of a run.
	Step struct {
		Phase  Phase
		Kind   StepKind
		Source string
		// Name is the identifier recorded in the Result Set.
		Name   string
		Record Record
	}

	// CommandBuilder renders steps as argv, implemented by *venv.Manager.
	CommandBuilder interface {
		InstallCommand(source string) []string
		RequirementsCommand(file string) []string
	}
)

// Steps returns the ordered pip invocations for p. requirements is the local
// path of the requirements file (empty when none).
//
// Order: bootstrap packages, requirements file, core packages then core plugins
// in canonical order, additional packages, additional plugins, agent. Core
// entries without a source and excluded entries produce no step.
func Steps(p *plan.Plan, requirements string) []Step {
	var steps []Step

	for _, pkg := range p.BootstrapPackages {
		steps = append(steps, Step{Phase: PhaseBootstrap, Kind: KindInstall, Source: pkg})
	}

	if requirements != "" {
		steps = append(steps, Step{Phase: PhaseRequirements, Kind: KindRequirements, Source: requirements})
	}

	for _, pkg := range p.CorePackages {
		if pkg.Excluded || pkg.Source == "" {
			continue
		}
		steps = append(steps, Step{Phase: PhaseCore, Kind: KindInstall, Source: pkg.Source, Name: pkg.Name, Record: RecordPackage})
	}
	for _, pkg := range p.CorePlugins {
		if pkg.Excluded || pkg.Source == "" {
			continue
		}
		steps = append(steps, Step{Phase: PhaseCore, Kind: KindInstall, Source: pkg.Source, Name: pkg.Name, Record: RecordPlugin})
	}

	for _, pkg := range p.AdditionalPackages {
		steps = append(steps, Step{Phase: PhaseAdditionalPackages, Kind: KindInstall, Source: pkg})
	}

	for _, pkg := range p.AdditionalPlugins {
		steps = append(steps, Step{Phase: PhaseAdditionalPlugins, Kind: KindInstall, Source: pkg.Source, Name: pkg.Name, Record: RecordPlugin})
	}

	steps = append(steps, Step{Phase: PhaseAgent, Kind: KindInstall, Source: p.AgentSource, Name: p.AgentName, Record: RecordPackage})

	return steps
}

// Argv renders the step with b.
func (s Step) Argv(b CommandBuilder) []string {
	if s.Kind == KindRequirements {
		return b.RequirementsCommand(s.Source)
	}
	return b.InstallCommand(s.Source)
}

// Label is the name shown in logs: the identifier when known, else the source.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Source
}
