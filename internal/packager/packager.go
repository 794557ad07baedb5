// SPDX-License-Identifier: MPL-2.0

package packager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/agentpack/agentpack/internal/archive"
	"github.com/agentpack/agentpack/internal/config"
	"github.com/agentpack/agentpack/internal/download"
	"github.com/agentpack/agentpack/internal/install"
	"github.com/agentpack/agentpack/internal/issue"
	"github.com/agentpack/agentpack/internal/logging"
	"github.com/agentpack/agentpack/internal/manifest"
	"github.com/agentpack/agentpack/internal/plan"
	"github.com/agentpack/agentpack/internal/venv"
	"github.com/agentpack/agentpack/internal/verify"
)

// ErrNoConfig is returned when Run is called without a configuration.
var ErrNoConfig = errors.New("no configuration given")

type (
	// Options are the inputs of one run.
	Options struct {
		Config *config.Config
		// Defaults replaces plan.DefaultDefaults when it names any core entry.
		Defaults plan.Defaults
		// Force reuses an existing environment and replaces an existing archive.
		Force        bool
		DryRun       bool
		NoValidation bool
		Logger       *slog.Logger
		// ExecCommand replaces exec.CommandContext for every external process.
		ExecCommand venv.ExecCommandFunc
		Downloader  *download.Client
	}

	// Result describes a finished run.
	Result struct {
		Preview   *Preview
		Installed *install.ResultSet
		// Removed lists excluded packages uninstalled after the agent install.
		Removed  []string
		Manifest string
		Archive  string
		Checksum string
		// Freeze is the final `pip freeze` listing of the environment.
		Freeze     []string
		EnvRemoved bool
		DryRun     bool
		Validated  bool
	}
)

// Run executes one packaging run. With DryRun set it only returns the Preview.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, ErrNoConfig
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	defaults := opts.Defaults
	if len(defaults.CorePackages) == 0 && len(defaults.CorePlugins) == 0 {
		defaults = plan.DefaultDefaults()
	}

	if cfg.AgentPackageSource != "" && cfg.AgentVersion != "" {
		logger.Warn("both agent_package_source and agent_version are set, using agent_package_source",
			"agent_package_source", cfg.AgentPackageSource, "agent_version", cfg.AgentVersion)
	}

	mopts := []venv.Option{venv.WithLogger(logger)}
	if opts.ExecCommand != nil {
		mopts = append(mopts, venv.WithExecCommand(opts.ExecCommand))
	}

	pv, err := BuildPreview(cfg, defaults, mopts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("distribution", "value", pv.Distribution)
	logger.Debug("release", "value", pv.Release)
	logger.Debug("python", "value", cfg.PythonPath)
	logger.Debug("destination archive", "path", pv.Archive)

	if data, err := pv.Plan.JSON(); err == nil {
		logger.Debug("packages and plugins to install", "plan", string(data))
	}

	result := &Result{Preview: pv}
	if opts.DryRun {
		result.DryRun = true
		logger.Info("dry run complete", "commands", len(pv.Commands))
		return result, nil
	}

	m := newManager(cfg, mopts...)
	if err := handleOutputFile(pv.Archive, opts.Force, logger); err != nil {
		return nil, err
	}
	if err := prepareEnvironment(ctx, m, opts.Force, logger); err != nil {
		return nil, err
	}

	requirements, cleanup, err := fetchRequirements(ctx, pv.Plan, opts.Downloader, logger)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	installer := install.New(m, logger)
	if result.Installed, err = installer.Install(ctx, pv.Plan, requirements); err != nil {
		return nil, err
	}
	if result.Removed, err = installer.RemoveExcluded(ctx, pv.Plan); err != nil {
		return nil, err
	}

	if opts.NoValidation {
		logger.Info("skipping validation")
	} else {
		logger.Info("validating installation")
		if err := verify.Validate(ctx, m, result.Installed.All()); err != nil {
			return nil, validationError(err)
		}
		result.Validated = true
	}

	site, err := m.SitePackages(ctx)
	if err != nil {
		return nil, issue.WrapWithContext(err, "locate site-packages", m.Path())
	}
	if result.Manifest, err = manifest.Generate(site, result.Installed.Plugins); err != nil {
		return nil, issue.WrapWithContext(err, "write plugin manifest", site)
	}
	logger.Info("wrote plugin manifest", "path", result.Manifest, "plugins", len(result.Installed.Plugins))

	logger.Info("creating archive", "path", pv.Archive)
	if err := archive.Pack(ctx, m.Path(), pv.Archive, archive.Options{Overwrite: opts.Force}); err != nil {
		return nil, archiveError(err, pv.Archive)
	}
	result.Archive = pv.Archive

	if cfg.WriteChecksum {
		if result.Checksum, err = archive.WriteChecksum(pv.Archive); err != nil {
			return nil, archiveError(err, pv.Archive)
		}
		logger.Info("wrote checksum", "path", result.Checksum)
	}

	if result.Freeze, err = m.Freeze(ctx); err != nil {
		logger.Warn("could not list installed packages", "error", err)
	} else {
		logger.Info("the following packages were installed in the agent", "packages", strings.Join(result.Freeze, " "))
	}

	if !cfg.KeepEnvironment && !pv.EnvironmentExists {
		logger.Info("removing environment", "path", m.Path())
		if err := m.Remove(); err != nil {
			return nil, issue.WrapWithContext(err, "remove environment", m.Path())
		}
		result.EnvRemoved = true
	}

	logger.Info("process complete", "archive", result.Archive)
	return result, nil
}

func handleOutputFile(path string, force bool, logger *slog.Logger) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil && force && !info.IsDir() {
		logger.Info("removing previous agent package", "path", path)
		if err := os.Remove(path); err != nil {
			return archiveError(&archive.PackError{Path: path, Err: err}, path)
		}
		return nil
	}
	if err != nil {
		return archiveError(&archive.PackError{Path: path, Err: err}, path)
	}
	return archiveError(fmt.Errorf("%w: %s", archive.ErrDestinationExists, path), path)
}

func prepareEnvironment(ctx context.Context, m *venv.Manager, force bool, logger *slog.Logger) error {
	if m.Exists() {
		if !force {
			return issue.NewErrorContext().
				WithOperation("prepare environment").
				WithResource(m.Path()).
				WithIssue(issue.EnvironmentExistsId).
				WithSuggestion("Use --force to install within the existing environment").
				Wrap(fmt.Errorf("%w: %s", venv.ErrEnvironmentExists, m.Path())).
				BuildError()
		}
		logger.Info("installing within existing environment", "path", m.Path())
		return nil
	}

	logger.Info("creating environment", "path", m.Path())
	if err := m.Create(ctx); err != nil {
		return issue.NewErrorContext().
			WithOperation("create environment").
			WithResource(m.Path()).
			WithIssue(issue.EnvironmentCreateFailedId).
			WithSuggestion("Check that python_path points to an interpreter with virtualenv installed").
			Wrap(err).
			BuildError()
	}
	return nil
}

// fetchRequirements returns a local path for the plan's requirements file,
// downloading remote files into a temporary directory removed by cleanup.
func fetchRequirements(ctx context.Context, p *plan.Plan, client *download.Client, logger *slog.Logger) (path string, cleanup func(), err error) {
	cleanup = func() {}
	if p.RequirementsFile == "" || !download.IsRemote(p.RequirementsFile) {
		return p.RequirementsFile, cleanup, nil
	}

	if client == nil {
		client = download.NewClient()
	}
	dir, err := os.MkdirTemp("", "agentpack-")
	if err != nil {
		return "", cleanup, issue.WrapWithContext(err, "create download directory", "")
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	logger.Info("downloading requirements file", "url", p.RequirementsFile)
	path, err = client.Fetch(ctx, p.RequirementsFile, dir, p.RequirementsSHA256)
	if err != nil {
		cleanup()
		id := issue.DownloadFailedId
		if errors.Is(err, download.ErrChecksumMismatch) {
			id = issue.ChecksumMismatchId
		}
		return "", func() {}, issue.NewErrorContext().
			WithOperation("download requirements file").
			WithResource(p.RequirementsFile).
			WithIssue(id).
			Wrap(err).
			BuildError()
	}
	return path, cleanup, nil
}

func validationError(err error) error {
	var ve *verify.ValidationError
	if !errors.As(err, &ve) {
		return issue.WrapWithContext(err, "validate installation", "")
	}
	return issue.NewErrorContext().
		WithOperation("validate installation").
		WithIssue(issue.ValidationFailedId).
		WithSuggestion("Run `pip freeze` inside the environment to inspect what was installed").
		WithSuggestion("Use --no-validation to package anyway").
		Wrap(err).
		BuildError()
}

func archiveError(err error, path string) error {
	id := issue.ArchiveFailedId
	ctx := issue.NewErrorContext().WithOperation("create archive").WithResource(path).Wrap(err)
	if errors.Is(err, archive.ErrDestinationExists) {
		id = issue.DestinationExistsId
		ctx.WithSuggestion("Use --force to overwrite it or set output_path")
	}
	return ctx.WithIssue(id).BuildError()
}
