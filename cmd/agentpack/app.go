// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/agentpack/agentpack/internal/config"
	"github.com/agentpack/agentpack/internal/packager"
	"github.com/agentpack/agentpack/internal/venv"
)

const defaultIssueStyle = "dark"

type (
	// App is the composition root of the CLI layer. Command handlers receive
	// it and reach configuration and packaging only through its interfaces.
	App struct {
		Config   ConfigProvider
		Packager PackagerService
		// ExecCommand replaces exec.CommandContext for external processes.
		ExecCommand venv.ExecCommandFunc
		// OSReleasePaths overrides host detection input.
		OSReleasePaths []string
		stdout         io.Writer
		stderr         io.Writer
		issueStyle     string
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config         ConfigProvider
		Packager       PackagerService
		ExecCommand    venv.ExecCommandFunc
		OSReleasePaths []string
		Stdout         io.Writer
		Stderr         io.Writer
		// IssueStyle is the glamour style for remediation entries.
		IssueStyle string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// PackagerService performs one packaging run.
	PackagerService interface {
		Run(ctx context.Context, opts packager.Options) (*packager.Result, error)
	}

	defaultPackager struct{}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:         deps.Config,
		Packager:       deps.Packager,
		ExecCommand:    deps.ExecCommand,
		OSReleasePaths: deps.OSReleasePaths,
		stdout:         deps.Stdout,
		stderr:         deps.Stderr,
		issueStyle:     deps.IssueStyle,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Packager == nil {
		app.Packager = defaultPackager{}
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.issueStyle == "" {
		app.issueStyle = defaultIssueStyle
	}
	return app
}

func (defaultPackager) Run(ctx context.Context, opts packager.Options) (*packager.Result, error) {
	return packager.Run(ctx, opts)
}

func (a *App) loadConfig(ctx context.Context, f *rootFlags) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: f.configPath,
		OutputPath:     f.output,
		PipArgs:        f.pipArgs,
		OSReleasePaths: a.OSReleasePaths,
	})
}
