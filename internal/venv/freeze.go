// SPDX-License-Identifier: MPL-2.0

package venv

import "strings"

// PackageName extracts the distribution name from one `pip freeze` line and
// normalises it (lower-case, underscores to hyphens). It understands pinned
// requirements, direct references and editable installs; other lines yield "".
func PackageName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}

	if strings.HasPrefix(line, "-e ") || strings.HasPrefix(line, "--editable ") {
		_, egg, ok := strings.Cut(line, "#egg=")
		if !ok {
			return ""
		}
		egg, _, _ = strings.Cut(egg, "&")
		return normalize(egg)
	}

	if name, _, ok := strings.Cut(line, " @ "); ok {
		return normalize(name)
	}

	end := strings.IndexAny(line, "=<>!~;[ ")
	if end >= 0 {
		line = line[:end]
	}
	return normalize(line)
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
}
