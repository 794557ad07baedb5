// SPDX-License-Identifier: MPL-2.0

// Package install runs the ordered pip phases of a packaging run against an
// Environment and records what was installed.
package install

import (
	"context"
	"log/slog"

	"github.com/agentpack/agentpack/internal/issue"
	"github.com/agentpack/agentpack/internal/plan"
	"github.com/agentpack/agentpack/internal/venv"
)

type (
	// Environment is the subset of *venv.Manager the installer needs.
	Environment interface {
		Install(ctx context.Context, source string) error
		InstallRequirements(ctx context.Context, file string) error
		Uninstall(ctx context.Context, name string) error
		Freeze(ctx context.Context) ([]string, error)
	}

	Installer struct {
		env    Environment
		logger *slog.Logger
	}
)

func New(env Environment, logger *slog.Logger) *Installer {
	return &Installer{env: env, logger: logger}
}

// Install executes Steps(p, requirements) in order and stops at the first
// failure. Core entries the agent provides are recorded after the agent step.
func (i *Installer) Install(ctx context.Context, p *plan.Plan, requirements string) (*ResultSet, error) {
	result := &ResultSet{Packages: []string{}, Plugins: []string{}}

	for _, step := range Steps(p, requirements) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		i.logger.Info("installing", "phase", string(step.Phase), "package", step.Label(), "source", step.Source)

		var err error
		if step.Kind == KindRequirements {
			err = i.env.InstallRequirements(ctx, step.Source)
		} else {
			err = i.env.Install(ctx, step.Source)
		}
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("install "+string(step.Phase)+" package").
				WithResource(step.Label()).
				WithIssue(issue.InstallFailedId).
				WithSuggestion("Run with --verbose to see pip's output").
				Wrap(err).
				BuildError()
		}

		switch step.Record {
		case RecordPackage:
			result.addPackage(step.Name)
		case RecordPlugin:
			result.addPlugin(step.Name)
		}
	}

	for _, pkg := range p.CorePackages {
		if !pkg.Excluded && pkg.Source == "" {
			result.addPackage(pkg.Name)
		}
	}
	for _, pkg := range p.CorePlugins {
		if !pkg.Excluded && pkg.Source == "" {
			result.addPlugin(pkg.Name)
		}
	}

	return result, nil
}

// RemoveExcluded uninstalls excluded core entries that are present anyway,
// usually pulled in by the agent package's own dependencies. It returns the
// names it removed.
func (i *Installer) RemoveExcluded(ctx context.Context, p *plan.Plan) ([]string, error) {
	excluded := p.Excluded()
	if len(excluded) == 0 {
		return nil, nil
	}

	lines, err := i.env.Freeze(ctx)
	if err != nil {
		return nil, issue.WrapWithContext(err, "list installed packages", "")
	}
	present := make(map[string]bool, len(lines))
	for _, line := range lines {
		if name := venv.PackageName(line); name != "" {
			present[name] = true
		}
	}

	var removed []string
	for _, name := range excluded {
		if !present[name] {
			i.logger.Debug("excluded package not installed", "package", name)
			continue
		}
		i.logger.Info("removing excluded package", "package", name)
		if err := i.env.Uninstall(ctx, name); err != nil {
			return removed, issue.NewErrorContext().
				WithOperation("uninstall excluded package").
				WithResource(name).
				WithIssue(issue.UninstallFailedId).
				Wrap(err).
				BuildError()
		}
		removed = append(removed, name)
	}
	return removed, nil
}
