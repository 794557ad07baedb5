// SPDX-License-Identifier: MPL-2.0

package packager

import (
	"errors"

	"github.com/agentpack/agentpack/internal/archive"
	"github.com/agentpack/agentpack/internal/config"
	"github.com/agentpack/agentpack/internal/install"
	"github.com/agentpack/agentpack/internal/issue"
	"github.com/agentpack/agentpack/internal/plan"
	"github.com/agentpack/agentpack/internal/venv"
)

// Preview is everything a run would do, computed without side effects.
type Preview struct {
	Distribution string
	Release      string
	Environment  string
	// EnvironmentExists is true when the run would reuse an environment.
	EnvironmentExists bool
	Archive           string
	Plan              *plan.Plan
	// Commands are the argv of every process the run would start, in order.
	Commands [][]string
}

// ArchivePath returns output_path when set, else the generated archive name.
func ArchivePath(cfg *config.Config) string {
	if cfg.OutputPath != "" {
		return cfg.OutputPath
	}
	return archive.Name(cfg.Distribution, cfg.Release, cfg.Version, cfg.Milestone, cfg.Build)
}

// BuildPreview resolves cfg and lists the commands a run would execute.
func BuildPreview(cfg *config.Config, defaults plan.Defaults, opts ...venv.Option) (*Preview, error) {
	p, err := resolve(defaults, cfg)
	if err != nil {
		return nil, err
	}

	m := newManager(cfg, opts...)
	pv := &Preview{
		Distribution:      cfg.Distribution,
		Release:           cfg.Release,
		Environment:       m.Path(),
		EnvironmentExists: m.Exists(),
		Archive:           ArchivePath(cfg),
		Plan:              p,
	}

	if !pv.EnvironmentExists {
		pv.Commands = append(pv.Commands, m.CreateCommand())
	}
	for _, step := range install.Steps(p, p.RequirementsFile) {
		pv.Commands = append(pv.Commands, step.Argv(m))
	}
	return pv, nil
}

func resolve(defaults plan.Defaults, cfg *config.Config) (*plan.Plan, error) {
	p, err := plan.Resolve(defaults, cfg)
	if err == nil {
		return p, nil
	}

	ctx := issue.NewErrorContext().WithOperation("resolve installation plan").Wrap(err)
	switch {
	case errors.Is(err, plan.ErrNoAgentSource):
		ctx.WithIssue(issue.MissingAgentSourceId).
			WithSuggestion("Set agent_package_source to a pip source or agent_version to a release tag")
	case errors.Is(err, plan.ErrMandatoryExcluded):
		ctx.WithIssue(issue.InvalidConfigValueId).
			WithSuggestion("Remove the \"exclude\" value for mandatory core packages")
	default:
		ctx.WithIssue(issue.InvalidConfigValueId)
	}
	return nil, ctx.BuildError()
}

func newManager(cfg *config.Config, opts ...venv.Option) *venv.Manager {
	all := []venv.Option{venv.WithPython(cfg.PythonPath), venv.WithPipArgs(cfg.PipArgs...)}
	return venv.New(cfg.EnvironmentPath, append(all, opts...)...)
}
