// SPDX-License-Identifier: MPL-2.0

package archive

import "strings"

// Suffix is appended to every generated archive name.
const Suffix = ".tar.gz"

// Name returns `<distribution>-<release>-agent[_<version>][-<milestone>][-b<build>].tar.gz`.
// Empty optional segments are omitted.
func Name(distribution, release, version, milestone, build string) string {
	var b strings.Builder
	b.WriteString(distribution)
	b.WriteByte('-')
	b.WriteString(release)
	b.WriteString("-agent")
	if version != "" {
		b.WriteString("_" + version)
	}
	if milestone != "" {
		b.WriteString("-" + milestone)
	}
	if build != "" {
		b.WriteString("-b" + build)
	}
	b.WriteString(Suffix)
	return b.String()
}
