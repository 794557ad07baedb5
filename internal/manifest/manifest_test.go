// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/agentpack/agentpack/internal/testutil"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous []string
		current  []string
		want     []string
	}{
		{name: "previous first", previous: []string{"p1", "p2"}, current: []string{"p2", "p3"}, want: []string{"p1", "p2", "p3"}},
		{name: "no previous", current: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "duplicates in current", current: []string{"a", "a"}, want: []string{"a"}},
		{name: "empty", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Merge(tt.previous, tt.current); !slices.Equal(got, tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	got, err := Render([]string{"cloudify-script-plugin", "cloudify-fabric-plugin"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "included_plugins = [\n    'cloudify-script-plugin',\n    'cloudify-fabric-plugin',\n]\n"
	if string(got) != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}

	empty, err := Render(nil)
	if err != nil {
		t.Fatalf("Render(nil) error = %v", err)
	}
	if string(empty) != "included_plugins = [\n]\n" {
		t.Errorf("Render(nil) = %q", empty)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want []string
	}{
		{name: "rendered form", data: "included_plugins = [\n    'a',\n    'b',\n]\n", want: []string{"a", "b"}},
		{name: "single line double quotes", data: `included_plugins = ["a", "b"]`, want: []string{"a", "b"}},
		{name: "tuple", data: "included_plugins = ('a',)\n", want: []string{"a"}},
		{name: "other content", data: "# header\nimport os\nincluded_plugins = ['a']\nother = ['x']\n", want: []string{"a"}},
		{name: "no assignment", data: "plugins = ['a']\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Parse([]byte(tt.data)); !slices.Equal(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRoundTripsRender(t *testing.T) {
	t.Parallel()

	names := []string{"cloudify-script-plugin", "cloudify-diamond-plugin"}
	data, err := Render(names)
	if err != nil {
		t.Fatal(err)
	}
	if got := Parse(data); !slices.Equal(got, names) {
		t.Errorf("Parse(Render()) = %v, want %v", got, names)
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	site := t.TempDir()
	path, err := Generate(site, []string{"cloudify-script-plugin"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if path != filepath.Join(site, "cloudify_agent", "included_plugins.py") {
		t.Errorf("path = %s", path)
	}
	if got := testutil.MustReadFile(t, path); got != "included_plugins = [\n    'cloudify-script-plugin',\n]\n" {
		t.Errorf("manifest = %q", got)
	}
}

func TestGenerate_MergesPrevious(t *testing.T) {
	t.Parallel()

	site := t.TempDir()
	testutil.MustWriteFile(t, Path(site), "included_plugins = [\n    'p1',\n    'p2',\n]\n")

	path, err := Generate(site, []string{"p2", "p3"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := "included_plugins = [\n    'p1',\n    'p2',\n    'p3',\n]\n"
	if got := testutil.MustReadFile(t, path); got != want {
		t.Errorf("manifest =\n%s\nwant\n%s", got, want)
	}
}

func TestGenerate_UnreadablePrevious(t *testing.T) {
	t.Parallel()

	site := t.TempDir()
	// A directory where the file should be cannot be read.
	testutil.MustMkdirAll(t, Path(site))

	if _, err := Generate(site, []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadPrevious_Missing(t *testing.T) {
	t.Parallel()

	names, err := ReadPrevious(filepath.Join(t.TempDir(), "missing.py"))
	if err != nil || names != nil {
		t.Errorf("ReadPrevious() = %v, %v; want nil, nil", names, err)
	}
}
