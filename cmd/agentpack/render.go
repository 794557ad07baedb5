// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentpack/agentpack/internal/logging"
	"github.com/agentpack/agentpack/internal/packager"
)

// renderDryRun prints everything a run would do. The output depends only on
// the preview, so equal configurations render byte-identical text.
func renderDryRun(w io.Writer, pv *packager.Preview) error {
	data, err := pv.Plan.JSON()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)
	field(w, "Distribution:", pv.Distribution)
	field(w, "Release:", pv.Release)
	env := pv.Environment
	if pv.EnvironmentExists {
		env += " (exists)"
	}
	field(w, "Environment:", env)
	field(w, "Archive:", pv.Archive)

	fmt.Fprintln(w)
	fmt.Fprintln(w, SubtitleStyle.Render("Plan:"))
	for line := range strings.SplitSeq(strings.TrimRight(string(data), "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, SubtitleStyle.Render("Commands:"))
	for _, argv := range pv.Commands {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(logging.CommandLine(argv...)))
	}
	fmt.Fprintln(w)
	return nil
}

func renderSummary(w io.Writer, result *packager.Result) {
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), "Agent package created")
	field(w, "Archive:", result.Archive)
	if result.Checksum != "" {
		field(w, "Checksum:", result.Checksum)
	}
	if result.Installed != nil {
		field(w, "Packages:", strings.Join(result.Installed.Packages, ", "))
		field(w, "Plugins:", strings.Join(result.Installed.Plugins, ", "))
	}
	if len(result.Removed) > 0 {
		field(w, "Removed:", strings.Join(result.Removed, ", "))
	}
	if !result.Validated {
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("!"), "Installation was not validated")
	}
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render(label), value)
}
