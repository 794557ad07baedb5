// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/agentpack/agentpack/internal/issue"
	"github.com/agentpack/agentpack/internal/logging"
	"github.com/agentpack/agentpack/internal/packager"
	"github.com/agentpack/agentpack/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the parsed flags of one invocation.
type rootFlags struct {
	configPath   string
	force        bool
	dryRun       bool
	noValidation bool
	verbose      bool
	output       string
	pipArgs      []string
	logFormat    string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:   "agentpack",
		Short: "Package a Cloudify agent and its plugins into a tarball",
		Long: TitleStyle.Render("agentpack") + SubtitleStyle.Render(" - Cloudify agent packager") + `

agentpack creates a Python virtualenv, installs the agent together with its
core packages, core plugins and any additional packages or plugins from the
config file, validates the result and writes it as a tar.gz archive named
<distribution>-<release>-agent[_<version>][-<milestone>][-b<build>].tar.gz.

` + SubtitleStyle.Render("Exit codes:") + "\n" + exitCodeHelp(),
		Example: `  # Package using ./config.yaml
  agentpack

  # Show what would be installed without touching anything
  agentpack -c agent.yaml --dryrun

  # Reuse an existing environment and overwrite the archive
  agentpack -f -o /tmp/agent.tar.gz`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPackage(cmd, app, f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "config file (default is ./config.yaml)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	pf.StringVarP(&f.output, "output", "o", "", "archive path (overrides output_path)")
	pf.StringArrayVar(&f.pipArgs, "pip-arg", nil, "extra argument for every pip install (repeatable)")
	pf.StringVar(&f.logFormat, "log-format", logging.FormatText, "log format: text or json")

	fl := root.Flags()
	fl.BoolVarP(&f.force, "force", "f", false, "install within an existing environment and overwrite the archive")
	fl.BoolVarP(&f.dryRun, "dryrun", "d", false, "print the plan and commands without installing anything")
	fl.BoolVar(&f.dryRun, "dry-run", false, "alias for --dryrun")
	_ = fl.MarkHidden("dry-run")
	fl.BoolVarP(&f.noValidation, "no-validation", "n", false, "skip checking that every package was installed")

	root.AddCommand(newPlanCommand(app, f))
	root.AddCommand(newNameCommand(app, f))

	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

func exitCodeHelp() string {
	var b strings.Builder
	for _, code := range types.KnownExitCodes() {
		fmt.Fprintf(&b, "  %3d  %s\n", code, code.Describe())
	}
	return strings.TrimRight(b.String(), "\n")
}

// Execute runs the command tree and exits with the classified exit code.
// This is called by main.main().
func Execute() {
	root := NewRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleFangError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// handleFangError prints errors that command handlers did not render
// themselves, such as unknown flags.
func handleFangError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func (f *rootFlags) logger(w io.Writer) (*slog.Logger, error) {
	level := "info"
	if f.verbose {
		level = "debug"
	}
	return logging.New(f.logFormat, level, w)
}

func runPackage(cmd *cobra.Command, app *App, f *rootFlags) error {
	ctx := cmd.Context()

	logger, err := f.logger(app.stderr)
	if err != nil {
		return app.fail(err, f.verbose)
	}

	cfg, err := app.loadConfig(ctx, f)
	if err != nil {
		return app.fail(err, f.verbose)
	}

	result, err := app.Packager.Run(ctx, packager.Options{
		Config:       cfg,
		Force:        f.force,
		DryRun:       f.dryRun,
		NoValidation: f.noValidation,
		Logger:       logger,
		ExecCommand:  app.ExecCommand,
	})
	if err != nil {
		return app.fail(err, f.verbose)
	}

	if result.DryRun {
		return renderDryRun(app.stdout, result.Preview)
	}
	renderSummary(app.stdout, result)
	return nil
}

// fail renders err with its remediation entry and wraps it in an ExitError.
func (a *App) fail(err error, verbose bool) error {
	code, id := classifyError(err)

	fmt.Fprintf(a.stderr, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	if verbose {
		a.renderIssue(id)
	}

	return &ExitError{Code: code, Err: err}
}

// renderIssue writes the catalog entry for id. When glamour fails the raw
// markdown is printed instead.
func (a *App) renderIssue(id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(a.issueStyle)
	if err != nil {
		fmt.Fprintf(a.stderr, "\n%s could not render remediation: %v\n%s\n", WarningStyle.Render("!"), err, entry.MarkdownMsg())
		return
	}
	fmt.Fprint(a.stderr, rendered)
}
