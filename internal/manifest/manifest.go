// SPDX-License-Identifier: MPL-2.0

// Package manifest writes the included_plugins module the packaged agent
// imports at runtime to learn which plugins ship with it.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"text/template"
)

const (
	// PackageDir is the agent package directory under site-packages.
	PackageDir = "cloudify_agent"
	// FileName is the generated module.
	FileName = "included_plugins.py"
)

var (
	manifestTemplate = template.Must(template.New("included_plugins").Parse(
		"included_plugins = [\n{{range .}}    '{{.}}',\n{{end}}]\n"))

	assignmentPattern = regexp.MustCompile(`(?s)included_plugins\s*=\s*[\[(](.*?)[\])]`)
	quotedPattern     = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// Path returns the manifest location for a site-packages directory.
func Path(sitePackages string) string {
	return filepath.Join(sitePackages, PackageDir, FileName)
}

// Generate writes the manifest for plugins under sitePackages and returns its
// path. Names from an existing manifest come first; duplicates are dropped.
func Generate(sitePackages string, plugins []string) (string, error) {
	path := Path(sitePackages)

	previous, err := ReadPrevious(path)
	if err != nil {
		return "", err
	}

	data, err := Render(Merge(previous, plugins))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// ReadPrevious returns the plugin names of the manifest at path. A missing
// file yields no names.
func ReadPrevious(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading previous manifest: %w", err)
	}
	return Parse(data), nil
}

// Parse extracts the quoted names assigned to included_plugins.
func Parse(data []byte) []string {
	m := assignmentPattern.FindSubmatch(data)
	if m == nil {
		return nil
	}
	var names []string
	for _, q := range quotedPattern.FindAllSubmatch(m[1], -1) {
		names = append(names, string(q[1]))
	}
	return names
}

// Merge returns previous followed by the names of current not already seen.
func Merge(previous, current []string) []string {
	out := make([]string, 0, len(previous)+len(current))
	for _, name := range slices.Concat(previous, current) {
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// Render returns the module source for plugins.
func Render(plugins []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := manifestTemplate.Execute(&buf, plugins); err != nil {
		return nil, fmt.Errorf("rendering manifest: %w", err)
	}
	return buf.Bytes(), nil
}
