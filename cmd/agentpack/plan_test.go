// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentpack/agentpack/internal/plan"
	"github.com/agentpack/agentpack/internal/testutil"
	"github.com/agentpack/agentpack/pkg/types"
)

func testPlan() *plan.Plan {
	return &plan.Plan{AgentName: "cloudify-agent", AgentSource: "cloudify-agent==4.0"}
}

func writeConfig(t *testing.T, extra string) string {
	t.Helper()

	dir := t.TempDir()
	return testutil.WriteConfig(t, dir, "distribution: Ubuntu\nrelease: trusty\n"+
		"version: 3.3.0\nmilestone: m4\nbuild: 666\n"+
		"environment_path: "+filepath.Join(dir, "env")+"\n"+extra)
}

func TestPlanCommand(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "agent_version: \"4.0\"\ncore_plugins:\n  cloudify-diamond-plugin: exclude\n")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "json",
			args: []string{"plan", "-c", path},
			want: []string{`"agent_source": "https://github.com/cloudify-cosmo/cloudify-agent/archive/4.0.tar.gz"`, `"excluded": true`},
		},
		{
			name: "yaml",
			args: []string{"plan", "-c", path, "--format", "yaml"},
			want: []string{"agent_source: https://github.com/cloudify-cosmo/cloudify-agent/archive/4.0.tar.gz", "excluded: true"},
		},
		{
			name: "toml",
			args: []string{"plan", "-c", path, "--format", "toml"},
			want: []string{"agent_source = ", "cloudify-agent/archive/4.0.tar.gz"},
		},
		{
			name: "commands",
			args: []string{"plan", "-c", path, "--commands", "--pip-arg", "--no-cache-dir"},
			want: []string{"-m virtualenv", "bin/pip install --no-cache-dir https://github.com/cloudify-cosmo/cloudify-agent/archive/4.0.tar.gz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, stderr, err := execute(t, Dependencies{}, tt.args...)
			if err != nil {
				t.Fatalf("execute() error = %v\n%s", err, stderr)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("output missing %q:\n%s", want, stdout)
				}
			}
		})
	}
}

func TestPlanCommand_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "agent_version: \"4.0\"\n")
		_, _, err := execute(t, Dependencies{}, "plan", "-c", path, "--format", "ini")
		if code := exitCode(t, err); code != types.ExitFailure {
			t.Errorf("code = %d, want %d", code, types.ExitFailure)
		}
	})

	t.Run("no agent source", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "")
		_, stderr, err := execute(t, Dependencies{}, "plan", "-c", path)
		if code := exitCode(t, err); code != types.ExitMissingAgentSource {
			t.Errorf("code = %d, want %d", code, types.ExitMissingAgentSource)
		}
		if !strings.Contains(stderr, "agent_version") {
			t.Errorf("stderr missing suggestion:\n%s", stderr)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "core_plugins: [unclosed\n")
		_, _, err := execute(t, Dependencies{}, "plan", "-c", path)
		if code := exitCode(t, err); code != types.ExitInvalidYAML {
			t.Errorf("code = %d, want %d", code, types.ExitInvalidYAML)
		}
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, Dependencies{}, "plan", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
		if code := exitCode(t, err); code != types.ExitConfigUnreadable {
			t.Errorf("code = %d, want %d", code, types.ExitConfigUnreadable)
		}
	})
}

func TestNameCommand(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "")

	stdout, _, err := execute(t, Dependencies{}, "name", "-c", path)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if got := strings.TrimSpace(stdout); got != "Ubuntu-trusty-agent_3.3.0-m4-b666.tar.gz" {
		t.Errorf("name = %q", got)
	}

	stdout, _, err = execute(t, Dependencies{}, "name", "-c", path, "-o", "custom.tar.gz")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if got := strings.TrimSpace(stdout); got != "custom.tar.gz" {
		t.Errorf("name with --output = %q", got)
	}
}
