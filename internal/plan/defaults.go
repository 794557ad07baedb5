// SPDX-License-Identifier: MPL-2.0

package plan

import "strings"

// AgentURLTemplate turns an agent_version into a pip-installable archive URL.
const AgentURLTemplate = "https://github.com/cloudify-cosmo/cloudify-agent/archive/%s.tar.gz"

type (
	// Entry is a known core package or plugin with its default source.
	// An empty Source means the agent package brings it in.
	Entry struct {
		Name   string
		Source string
	}

	// Defaults is the fixed table the resolver merges user config onto.
	// CorePackages and CorePlugins are in install order.
	Defaults struct {
		CorePackages     []Entry
		CorePlugins      []Entry
		Mandatory        []string
		AgentName        string
		AgentURLTemplate string
	}
)

// DefaultDefaults returns the built-in defaults table.
func DefaultDefaults() Defaults {
	return Defaults{
		CorePackages: []Entry{
			{Name: "cloudify-rest-client"},
			{Name: "cloudify-plugins-common"},
		},
		CorePlugins: []Entry{
			{Name: "cloudify-script-plugin"},
			{Name: "cloudify-diamond-plugin"},
		},
		Mandatory:        []string{"cloudify-rest-client", "cloudify-plugins-common"},
		AgentName:        "cloudify-agent",
		AgentURLTemplate: AgentURLTemplate,
	}
}

// ModuleName normalises a package identifier: underscores become hyphens and
// the result is lower-cased, matching how pip reports distribution names.
func ModuleName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
}

func (d Defaults) isMandatory(name string) bool {
	for _, m := range d.Mandatory {
		if ModuleName(m) == name {
			return true
		}
	}
	return false
}
