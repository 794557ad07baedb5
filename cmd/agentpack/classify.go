// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/agentpack/agentpack/internal/archive"
	"github.com/agentpack/agentpack/internal/config"
	"github.com/agentpack/agentpack/internal/download"
	"github.com/agentpack/agentpack/internal/issue"
	"github.com/agentpack/agentpack/internal/plan"
	"github.com/agentpack/agentpack/internal/venv"
	"github.com/agentpack/agentpack/internal/verify"
	"github.com/agentpack/agentpack/pkg/types"
)

// classifyError maps a failure to its stable exit code and the issue catalog
// entry explaining it. Checksum mismatches are tested before generic download
// failures and uninstall before install.
func classifyError(err error) (types.ExitCode, issue.Id) {
	switch {
	case err == nil:
		return types.ExitOK, 0
	case errors.Is(err, config.ErrConfigNotFound), errors.Is(err, config.ErrConfigUnreadable):
		return types.ExitConfigUnreadable, issue.ConfigNotFoundId
	case errors.Is(err, config.ErrInvalidYAML):
		return types.ExitInvalidYAML, issue.ConfigInvalidId
	case errors.Is(err, plan.ErrNoAgentSource):
		return types.ExitMissingAgentSource, issue.MissingAgentSourceId
	case errors.Is(err, config.ErrHostUndetected):
		return types.ExitInvalidConfig, issue.HostUndetectedId
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, plan.ErrMandatoryExcluded),
		errors.Is(err, plan.ErrUnknownCorePackage):
		return types.ExitInvalidConfig, issue.InvalidConfigValueId
	case errors.Is(err, venv.ErrEnvironmentExists):
		return types.ExitEnvironmentExists, issue.EnvironmentExistsId
	case errors.Is(err, venv.ErrCreateFailed):
		return types.ExitEnvironmentCreate, issue.EnvironmentCreateFailedId
	case errors.Is(err, download.ErrChecksumMismatch):
		return types.ExitDownloadFailed, issue.ChecksumMismatchId
	case errors.Is(err, download.ErrDownloadFailed):
		return types.ExitDownloadFailed, issue.DownloadFailedId
	case errors.Is(err, venv.ErrUninstallFailed):
		return types.ExitUninstallFailed, issue.UninstallFailedId
	case errors.Is(err, venv.ErrInstallFailed):
		return types.ExitInstallFailed, issue.InstallFailedId
	case errors.Is(err, verify.ErrValidationFailed):
		return types.ExitValidationFailed, issue.ValidationFailedId
	case errors.Is(err, archive.ErrDestinationExists):
		return types.ExitArchiveFailed, issue.DestinationExistsId
	case errors.Is(err, archive.ErrPackagingFailed):
		return types.ExitArchiveFailed, issue.ArchiveFailedId
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return types.ExitFailure, ae.Issue
	}
	return types.ExitFailure, 0
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors carry their own layout; verbose adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
