// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// CommandLine renders argv as a bash-safe command line for logs and dry-run
// previews. Arguments that cannot be quoted (NUL bytes) are shown with %q.
func CommandLine(argv ...string) string {
	parts := make([]string, 0, len(argv))
	for _, a := range argv {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			q = strconv.Quote(a)
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}
