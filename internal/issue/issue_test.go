// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"
)

func TestId_Constants(t *testing.T) {
	t.Parallel()

	if ConfigNotFoundId != 1 {
		t.Errorf("ConfigNotFoundId = %d, want 1", ConfigNotFoundId)
	}
	if lastId != ArchiveFailedId {
		t.Errorf("lastId = %d, want ArchiveFailedId", lastId)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ConfigNotFoundId, false, "Config file not found"},
		{ConfigInvalidId, false, "could not be parsed"},
		{InvalidConfigValueId, false, "cannot be excluded"},
		{HostUndetectedId, false, "/etc/os-release"},
		{MissingAgentSourceId, false, "agent_package_source"},
		{EnvironmentExistsId, false, "--force"},
		{EnvironmentCreateFailedId, false, "virtualenv"},
		{InstallFailedId, false, "--pip-arg"},
		{UninstallFailedId, false, "excluded package"},
		{DownloadFailedId, false, "requirements_file"},
		{ChecksumMismatchId, false, "requirements_sha256"},
		{ValidationFailedId, false, "--no-validation"},
		{DestinationExistsId, false, "output_path"},
		{ArchiveFailedId, false, "tar.gz"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			t.Parallel()

			issue := Get(tt.id)
			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}
			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Get(%d).Id() = %d", tt.id, issue.Id())
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(lastId) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), lastId)
	}
	for i, issue := range values {
		if issue.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), i+1)
		}
		if strings.TrimSpace(string(issue.MarkdownMsg())) == "" {
			t.Errorf("issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	t.Parallel()

	issue := &Issue{
		id:       Id(9999),
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://pip.pypa.io"},
	}

	docs := issue.DocLinks()
	docs[0] = "modified"
	if issue.DocLinks()[0] != "https://docs.example.com" {
		t.Error("DocLinks() should return a clone")
	}

	ext := issue.ExtLinks()
	ext[0] = "modified"
	if issue.ExtLinks()[0] != "https://pip.pypa.io" {
		t.Error("ExtLinks() should return a clone")
	}
}

// Render tests swap the package-level renderer, so they do not run in parallel.

func TestIssue_Render_WithLinks(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	testIssue := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	rendered, err := testIssue.Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	for _, want := range []string{"## See also", "- <https://docs.example.com>", "- <https://external.example.com>"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() output missing %q:\n%s", want, rendered)
		}
	}
}

func TestIssue_Render_NoLinks(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, stylePath string) (string, error) {
		return in, nil
	}

	rendered, err := Get(ValidationFailedId).Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}
	if !strings.Contains(rendered, "pip freeze") {
		t.Error("Render() should contain the message body")
	}
}

func TestAllIssuesRenderWithGlamour(t *testing.T) {
	t.Parallel()

	for _, issue := range Values() {
		rendered, err := glamourRender(issue)
		if err != nil {
			t.Errorf("issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("issue %d rendered to empty string", issue.Id())
		}
	}
}

// glamourRender bypasses the swappable renderer so the real Markdown pipeline is exercised.
func glamourRender(i *Issue) (string, error) {
	return glamour.Render(string(i.MarkdownMsg()), "notty")
}
